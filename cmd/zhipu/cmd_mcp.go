package main

import (
	"context"
	"os"

	mcptransport "github.com/sandevgo/zhipukit/internal/transport/mcp"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "mcp",
		Short: "Serve the toolkit as an MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, true, func(ctx context.Context, a *app) error {
				server, err := mcptransport.NewServer(a.toolProviders()...)
				if err != nil {
					return err
				}
				return server.Serve(ctx, os.Stdin, os.Stdout)
			})
		},
	})
}
