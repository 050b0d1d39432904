package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/renatoruis/oh-institutional/pkg/server"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		addr string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the site server",
		Long: `Run the HTTP and WebSocket server.

Every URL is rendered on the server; browsers then keep a WebSocket
session open through which navigation and language changes flow.

Examples:
  openheavens serve
  openheavens serve --addr=:3000 --dev
  OH_API_BASE=https://staging.example.org openheavens serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if dev {
				cfg.Server.Dev = true
			}

			site, err := buildSite(cfg, nil)
			if err != nil {
				return err
			}
			srv := server.New(site, serverConfig(cfg))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			success(out, "Serving on %s", cfg.Server.Addr)
			info(out, "API: %s", cfg.API.Base)
			if cfg.Path() != "" {
				info(out, "Config: %s", cfg.Path())
			}
			if err := srv.Run(ctx); err != nil {
				errorMsg(cmd.ErrOrStderr(), "server stopped: %v", err)
				return err
			}
			info(out, "Stopped")
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides config)")
	cmd.Flags().BoolVar(&dev, "dev", false, "Development mode: disable client asset caching")

	return cmd
}
