package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnemet/staffgrid"
	"github.com/gnemet/staffgrid/database/pool"
	"github.com/gnemet/staffgrid/internal/auth"
	"github.com/gnemet/staffgrid/internal/config"
	"github.com/gnemet/staffgrid/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the directory API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger := newLogger(cfg.LogLevel())
		slog.SetDefault(logger)

		dbCfg, err := cfg.DefaultDatabase()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := cfg.Pool.Options(dbCfg.Name)
		if cfg.Server.Metrics {
			opts.OnStats = server.RecordPoolStats
		}
		db, err := pool.Open(ctx, dbCfg.ConnString(), opts)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("Failed to close pool", "error", err)
			}
		}()
		logger.Info("Connected to database", "database", dbCfg.Name, "host", dbCfg.Host)

		srv := server.New(staffgrid.NewHandler(db, logger), db, server.Options{
			Addr:    net.JoinHostPort("", cfg.Server.Port),
			Metrics: cfg.Server.Metrics,
			Gate:    auth.NewGate(cfg.Server.AuthToken, cfg.Server.AllowedEmails, cfg.Server.AllowedEmailDomains),
			Logger:  logger,
		})
		return srv.Run(ctx)
	},
}
