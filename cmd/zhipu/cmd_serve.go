package main

import (
	"context"

	"github.com/sandevgo/zhipukit/internal/transport/web"
	"github.com/sandevgo/zhipukit/pkg/srv"
	"github.com/spf13/cobra"
)

func init() {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the toolkit over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, true, func(ctx context.Context, a *app) error {
				if addr == "" {
					addr = a.cfg.GetHTTPAddr()
				}
				server, err := web.NewServer(addr, a.toolProviders()...)
				if err != nil {
					return err
				}

				ctx, cancel := context.WithCancel(ctx)
				defer cancel()

				services := []srv.Service{srv.NewCleanup(a.Close), server}
				errs := srv.StartServices(ctx, services)

				done := make(chan error, 1)
				go func() {
					select {
					case err := <-errs:
						done <- err
						cancel()
					case <-ctx.Done():
						done <- nil
					}
				}()

				srv.ShutdownServices(ctx, services)
				return <-done
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, defaults to ZHIPU_HTTP_ADDR")
	rootCmd.AddCommand(cmd)
}
