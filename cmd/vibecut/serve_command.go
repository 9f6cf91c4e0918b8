package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vibecut/internal/logging"
	"vibecut/internal/render"
	"vibecut/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP render service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			if ctx.verbose() {
				logger, err = ctx.cliLogger(cfg)
				if err != nil {
					return err
				}
			}

			store, err := openHistory(cfg)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			srv, err := server.New(cfg, render.NewService(cfg, store, logger), store, logger)
			if err != nil {
				return err
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return srv.Run(runCtx)
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Override server.bind (host:port)")
	return cmd
}
