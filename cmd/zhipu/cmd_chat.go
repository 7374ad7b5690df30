package main

import (
	"context"
	"fmt"

	"github.com/sandevgo/zhipukit/internal/service/ui"
	"github.com/sandevgo/zhipukit/internal/transport/cli"
	"github.com/spf13/cobra"
)

func init() {
	var agentID string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to a hosted agent interactively",
		Long:  "Starts a prompt that keeps one agent conversation going. Type /new to start over and exit to quit.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, true, func(ctx context.Context, a *app) error {
				chat, err := cli.NewChat(a.agent, agentID, a.cfg.GetRuntimePath())
				if err != nil {
					return err
				}
				defer chat.Shutdown(ctx)

				if err := chat.Start(ctx); err != nil && ctx.Err() == nil {
					return err
				}
				if id := chat.ConversationID(); id != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), ui.DescStyle.Render("conversation: "+id))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&agentID, "agent", "a", "", "agent id, defaults to ZHIPU_AGENT_ID")
	rootCmd.AddCommand(cmd)
}
