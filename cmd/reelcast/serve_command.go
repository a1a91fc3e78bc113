package main

import (
	"github.com/spf13/cobra"

	"reelcast/internal/httpapi"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve caption and timeline endpoints over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if bind != "" {
				cfg.API.Bind = bind
			}
			return httpapi.New(cfg, logger).Serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default from config)")
	return cmd
}
