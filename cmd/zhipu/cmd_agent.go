package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandevgo/zhipukit/internal/service/ui"
	"github.com/spf13/cobra"
)

func init() {
	var agentID, conversationID, fileID string
	var html bool
	cmd := &cobra.Command{
		Use:   "agent [message]",
		Short: "Send a message or an uploaded file to a hosted agent",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var message string
			if len(args) == 1 {
				message = args[0]
			}
			if message == "" && fileID == "" {
				return errors.New("pass a message, --file-id or both")
			}
			return run(cmd, true, func(ctx context.Context, a *app) error {
				reply, err := a.agent.ChatFile(ctx, agentID, fileID, message, conversationID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				switch {
				case jsonOut:
					return printJSON(out, reply)
				case html:
					fmt.Fprintln(out, reply.HTML)
				default:
					fmt.Fprintln(out, reply.Text)
				}
				if reply.ConversationID != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), ui.DescStyle.Render("conversation: "+reply.ConversationID))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&agentID, "agent", "a", "", "agent id, defaults to ZHIPU_AGENT_ID")
	cmd.Flags().StringVarP(&conversationID, "conversation", "c", "", "continue a conversation")
	cmd.Flags().StringVar(&fileID, "file-id", "", "id of a file uploaded to the vendor")
	cmd.Flags().BoolVar(&html, "html", false, "print the reply as sanitized HTML")

	rootCmd.AddCommand(cmd)
}
