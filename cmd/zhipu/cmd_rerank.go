package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/internal/service/rerank"
	"github.com/sandevgo/zhipukit/internal/service/ui"
	"github.com/spf13/cobra"
)

type rerankFlags struct {
	docs  []string
	files []string
	save  bool
	name  string
}

func (f *rerankFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.docs, "doc", nil, "candidate document (repeatable)")
	cmd.Flags().StringArrayVarP(&f.files, "file", "f", nil, "file with one document per line, - for stdin (repeatable)")
	cmd.Flags().BoolVar(&f.save, "save", false, "save the result as a snapshot")
	cmd.Flags().StringVar(&f.name, "name", "", "snapshot file name")
}

func (f *rerankFlags) documents(cmd *cobra.Command) ([]string, error) {
	return collectInputs(f.docs, f.files, cmd.InOrStdin())
}

func newRankCmd(use, short string, rank func(ctx context.Context, a *app, query string, docs []string) (*rerank.Result, error)) *cobra.Command {
	flags := &rerankFlags{}
	cmd := &cobra.Command{
		Use:   use + " <query>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := flags.documents(cmd)
			if err != nil {
				return err
			}
			return run(cmd, true, func(ctx context.Context, a *app) error {
				res, err := rank(ctx, a, args[0], docs)
				if err != nil {
					return err
				}
				return printRanked(ctx, cmd, a, res, flags)
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func printRanked(ctx context.Context, cmd *cobra.Command, a *app, res *rerank.Result, flags *rerankFlags) error {
	out := cmd.OutOrStdout()
	if jsonOut {
		if err := printJSON(out, res); err != nil {
			return err
		}
	} else {
		ui.RenderRanked(out, strings.ToUpper(cmd.Name()), res.Results, res.TotalDocuments)
	}
	if flags.save {
		path, err := a.rerank.Save(ctx, res, flags.name)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "saved to", path)
	}
	return nil
}

func init() {
	chunk := rerank.DefaultChunkConfig()
	var passages bool
	rerankCmd := newRankCmd("rerank", "Rank documents by relevance to a query",
		func(ctx context.Context, a *app, q string, docs []string) (*rerank.Result, error) {
			if passages {
				return a.rerank.RerankPassages(ctx, q, docs, chunk)
			}
			return a.rerank.Rerank(ctx, q, docs)
		})
	rerankCmd.Flags().BoolVarP(&passages, "passages", "p", false, "split long documents into passages and score each by its best passage")
	rerankCmd.Flags().IntVar(&chunk.MaxTokens, "passage-tokens", chunk.MaxTokens, "maximum tokens per passage")
	rerankCmd.Flags().IntVar(&chunk.OverlapTokens, "overlap-tokens", chunk.OverlapTokens, "tokens carried over between passages")

	var k int
	topCmd := newRankCmd("top", "Keep the k most relevant documents",
		func(ctx context.Context, a *app, q string, docs []string) (*rerank.Result, error) {
			return a.rerank.TopRelevant(ctx, q, docs, k)
		})
	topCmd.Flags().IntVarP(&k, "top-k", "k", rerank.DefaultTopK, "number of documents to keep")

	var threshold float64
	thresholdCmd := newRankCmd("threshold", "Keep documents scoring at least the threshold",
		func(ctx context.Context, a *app, q string, docs []string) (*rerank.Result, error) {
			return a.rerank.RelevantByThreshold(ctx, q, docs, threshold)
		})
	thresholdCmd.Flags().Float64VarP(&threshold, "threshold", "t", rerank.DefaultThreshold, "minimum relevance score in [0,1]")

	rootCmd.AddCommand(rerankCmd, topCmd, thresholdCmd, newBatchRerankCmd())
}

func newBatchRerankCmd() *cobra.Command {
	flags := &rerankFlags{}
	var queries, queryFiles []string
	cmd := &cobra.Command{
		Use:   "batch-rerank",
		Short: "Rank the same documents against several queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := flags.documents(cmd)
			if err != nil {
				return err
			}
			qs, err := collectInputs(queries, queryFiles, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return run(cmd, true, func(ctx context.Context, a *app) error {
				report, err := a.rerank.RerankBatch(ctx, qs, docs)
				if err != nil {
					return err
				}
				if err := printReport(cmd, report); err != nil {
					return err
				}
				if flags.save {
					path, err := a.rerank.SaveBatch(ctx, strings.Join(qs, "\n"), report, flags.name)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.ErrOrStderr(), "saved to", path)
				}
				return nil
			})
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringArrayVarP(&queries, "query", "q", nil, "query (repeatable)")
	cmd.Flags().StringArrayVar(&queryFiles, "query-file", nil, "file with one query per line (repeatable)")
	return cmd
}

func printReport(cmd *cobra.Command, report core.BatchReport) error {
	if !jsonOut {
		ui.RenderBatch(cmd.OutOrStdout(), report)
		return nil
	}
	type entry struct {
		Index  int    `json:"index"`
		Result any    `json:"result,omitempty"`
		Kind   string `json:"error_kind,omitempty"`
		Error  string `json:"error,omitempty"`
	}
	entries := make([]entry, len(report.Entries))
	for i, e := range report.Entries {
		entries[i] = entry{Index: e.Index, Result: e.Result}
		if e.Err != nil {
			entries[i].Kind = string(e.Err.Kind)
			entries[i].Error = e.Err.Error()
		}
	}
	return printJSON(cmd.OutOrStdout(), map[string]any{
		"total":     report.Len(),
		"succeeded": report.Succeeded(),
		"failed":    report.Failed(),
		"entries":   entries,
	})
}
