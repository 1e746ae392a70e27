package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/uzemepizy-code/dentsun-implant-takip/internal/config"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/database"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/logger"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/server"
)

const shutdownTimeout = 10 * time.Second

func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Veritabanını hazırlar ve HTTP API'yi başlatır",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	log, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}

	db, err := database.Init(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	app := server.New(server.Deps{Config: cfg, DB: db, Log: log, Now: opts.Now})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server çalışıyor", zap.String("port", cfg.HTTPPort))
		errCh <- app.Listen(":" + cfg.HTTPPort)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server durdu: %w", err)
	case <-ctx.Done():
	}

	log.Info("Kapatılıyor")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
