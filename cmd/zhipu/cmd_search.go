package main

import (
	"context"
	"fmt"

	"github.com/sandevgo/zhipukit/internal/providers/tools"
	"github.com/sandevgo/zhipukit/internal/providers/zhipu"
	"github.com/sandevgo/zhipukit/internal/service/search"
	"github.com/sandevgo/zhipukit/internal/service/ui"
	"github.com/spf13/cobra"
)

func init() {
	var p zhipu.SearchParams
	var topK int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the web",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Query = args[0]
			return run(cmd, true, func(ctx context.Context, a *app) error {
				var (
					res *search.Result
					err error
				)
				if topK > 0 {
					res, err = a.search.TopResults(ctx, p, topK)
				} else {
					res, err = a.search.Search(ctx, p)
				}
				if err != nil {
					return err
				}
				if jsonOut {
					return printJSON(cmd.OutOrStdout(), res)
				}
				hits := make([]ui.SearchHit, len(res.Hits))
				for i, h := range res.Hits {
					hits[i] = ui.SearchHit{Title: h.Title, Link: h.Link, Content: h.Content}
				}
				ui.RenderSearch(cmd.OutOrStdout(), res.Query, hits)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&p.Count, "count", "n", zhipu.DefaultSearchCount, "number of results, 1-50")
	cmd.Flags().StringVar(&p.Recency, "recency", "noLimit", "time filter: noLimit, day, week, month, year")
	cmd.Flags().StringVar(&p.DomainFilter, "domain", "", "restrict results to a domain")
	cmd.Flags().StringVar(&p.Engine, "engine", "", "search engine, defaults to ZHIPU_SEARCH_ENGINE")
	cmd.Flags().BoolVar(&p.Intent, "intent", false, "run intent recognition")
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "keep only the k best results")

	fetchCmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Fetch a page as plain text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, false, func(ctx context.Context, a *app) error {
				text, err := tools.NewFetch().Page(ctx, args[0])
				if err != nil {
					return err
				}
				if jsonOut {
					return printJSON(cmd.OutOrStdout(), map[string]string{"url": args[0], "text": text})
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}

	rootCmd.AddCommand(cmd, fetchCmd)
}
