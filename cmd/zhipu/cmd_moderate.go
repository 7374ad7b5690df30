package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/zhipukit/internal/service/ui"
	"github.com/spf13/cobra"
)

func init() {
	var save bool
	var name string
	moderateCmd := &cobra.Command{
		Use:   "moderate <text>",
		Short: "Check text for unsafe content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, true, func(ctx context.Context, a *app) error {
				res, err := a.moderation.Moderate(ctx, args[0])
				if err != nil {
					return err
				}
				if jsonOut {
					if err := printJSON(cmd.OutOrStdout(), res); err != nil {
						return err
					}
				} else {
					ui.RenderModeration(cmd.OutOrStdout(), res.Safe, res.Summary)
				}
				if save {
					path, err := a.moderation.Save(ctx, args[0], res, name)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.ErrOrStderr(), "saved to", path)
				}
				return nil
			})
		},
	}
	moderateCmd.Flags().BoolVar(&save, "save", false, "save the verdict as a snapshot")
	moderateCmd.Flags().StringVar(&name, "name", "", "snapshot file name")

	var texts, files []string
	var batchSave bool
	var batchName string
	batchCmd := &cobra.Command{
		Use:   "batch-moderate",
		Short: "Check several texts independently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := collectInputs(texts, files, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return run(cmd, true, func(ctx context.Context, a *app) error {
				report, err := a.moderation.BatchModerate(ctx, inputs)
				if err != nil {
					return err
				}
				if err := printReport(cmd, report); err != nil {
					return err
				}
				if batchSave {
					path, err := a.moderation.SaveBatch(ctx, strings.Join(inputs, "\n"), report, batchName)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.ErrOrStderr(), "saved to", path)
				}
				return nil
			})
		},
	}
	batchCmd.Flags().StringArrayVar(&texts, "text", nil, "text to check (repeatable)")
	batchCmd.Flags().StringArrayVarP(&files, "file", "f", nil, "file with one text per line, - for stdin (repeatable)")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "save the report as a snapshot")
	batchCmd.Flags().StringVar(&batchName, "name", "", "snapshot file name")

	rootCmd.AddCommand(moderateCmd, batchCmd)
}
