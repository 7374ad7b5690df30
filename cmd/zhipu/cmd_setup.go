package main

import (
	"errors"
	"fmt"

	"github.com/sandevgo/zhipukit/internal/config"
	"github.com/sandevgo/zhipukit/internal/service/installer"
	"github.com/sandevgo/zhipukit/internal/service/ui"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "setup",
		Short: "Configure the API key and endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := installer.RunWizard(config.GetRuntimePath())
			if errors.Is(err, installer.ErrInterrupted) {
				fmt.Fprintln(cmd.ErrOrStderr(), ui.WarnStyle.Render("setup interrupted, nothing saved"))
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "configuration saved to", state.SavedTo)
			return nil
		},
	})
}
