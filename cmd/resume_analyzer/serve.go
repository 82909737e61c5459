package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/server"
	"github.com/jonathan/resume-analyzer/internal/server/ratelimit"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long:  `Start an HTTP server that exposes the analyze, skills and history endpoints.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv, err := buildServer(cmd.Context(), a)
			if err != nil {
				return err
			}
			return srv.Start()
		},
	}

	cmd.Flags().Int("port", 8080, "Port to listen on")
	_ = a.v.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}

// buildServer wires the configured components into an HTTP server. The
// history store is optional; without one the history endpoints return 503.
func buildServer(ctx context.Context, a *app) (*server.Server, error) {
	cfg := a.cfg

	var store db.Store
	if cfg.Database.Enabled() {
		var err error
		store, err = a.openStore(ctx)
		if err != nil {
			return nil, err
		}
		a.log.Info("history store enabled", zap.String("driver", cfg.Database.Driver))
	}

	rl := cfg.RateLimit
	srv, err := server.New(server.Config{
		Port:                    cfg.Server.Port,
		MaxUploadBytes:          cfg.Server.MaxUploadBytes,
		ReadTimeout:             cfg.Server.ReadTimeout,
		WriteTimeout:            cfg.Server.WriteTimeout,
		MinJobDescriptionLength: cfg.Analysis.MinJobDescriptionLength,
		RateLimit:               ratelimit.NewConfig(rl.Enabled, rl.RequestsPerMinute, rl.Burst, rl.Whitelist, rl.Blacklist),
	}, server.Deps{
		Analyzer: a.analyzer,
		Taxonomy: a.taxonomy,
		Store:    store,
		Logger:   a.log,
	})
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, fmt.Errorf("failed to create server: %w", err)
	}
	return srv, nil
}
