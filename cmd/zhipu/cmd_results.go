package main

import (
	"context"
	"errors"
	"os"

	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/internal/service/ui"
	"github.com/spf13/cobra"
)

func init() {
	resultsCmd := &cobra.Command{
		Use:   "results",
		Short: "Browse saved snapshots",
	}

	var kind string
	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k := core.KindUnknown
			if kind != "" {
				var err error
				if k, err = core.ParseKind(kind); err != nil {
					return err
				}
			}
			return run(cmd, false, func(ctx context.Context, a *app) error {
				entries, err := a.catalog.List(ctx, k, limit)
				if err != nil {
					return err
				}
				if jsonOut {
					return printJSON(cmd.OutOrStdout(), entries)
				}
				ui.RenderCatalog(cmd.OutOrStdout(), entries)
				return nil
			})
		},
	}
	listCmd.Flags().StringVarP(&kind, "kind", "k", "", "only this operation kind, e.g. rerank")
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries")

	showCmd := &cobra.Command{
		Use:   "show <path|id>",
		Short: "Print a saved snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, false, func(ctx context.Context, a *app) error {
				path := args[0]
				if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
					if entry, err := a.catalog.Get(ctx, path); err == nil {
						path = entry.Path
					}
				}
				snap, err := a.store.Load(path)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), snap)
			})
		},
	}

	resultsCmd.AddCommand(listCmd, showCmd)
	rootCmd.AddCommand(resultsCmd)
}
