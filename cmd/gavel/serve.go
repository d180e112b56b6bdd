package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/courtlab/gavel/internal/artifacts"
	"github.com/courtlab/gavel/internal/config"
	"github.com/courtlab/gavel/internal/courtroom"
	"github.com/courtlab/gavel/internal/events"
	"github.com/courtlab/gavel/internal/server"
	"github.com/courtlab/gavel/internal/store/postgres"
	"github.com/courtlab/gavel/internal/ticker"
	"github.com/courtlab/gavel/internal/viewers"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gavel HTTP server",
	// Override PersistentPreRunE so we don't create an API client.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		// Load configuration.
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		// Connect to Postgres (runs migrations).
		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}

		// Create event publisher.
		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				store.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (GAVEL_NATS_URL not set)")
		}

		// Create exhibit blob storage.
		var blobs artifacts.Store
		switch {
		case cfg.ExhibitS3Bucket != "":
			s3Store, err := artifacts.NewS3Store(context.Background(),
				cfg.ExhibitS3Bucket, cfg.ExhibitS3Prefix, cfg.ExhibitS3Region, cfg.ExhibitS3Endpoint)
			if err != nil {
				publisher.Close()
				store.Close()
				return err
			}
			blobs = s3Store
			logger.Info("exhibit storage: S3", "bucket", cfg.ExhibitS3Bucket, "prefix", cfg.ExhibitS3Prefix)
		case cfg.ExhibitDir != "":
			localStore, err := artifacts.NewLocalStore(cfg.ExhibitDir)
			if err != nil {
				publisher.Close()
				store.Close()
				return err
			}
			blobs = localStore
			logger.Info("exhibit storage: local", "dir", cfg.ExhibitDir)
		default:
			logger.Info("exhibit storage disabled (no S3 bucket or local dir configured)")
		}

		// Create the session engine and server components.
		engine := courtroom.NewEngine(store, publisher, blobs)
		engine.ExhibitMaxBytes = cfg.ExhibitMaxBytes

		registry := viewers.New()
		registry.StartReaper(nil)

		gavelServer := server.NewGavelServer(engine, registry)
		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: gavelServer.NewHTTPHandler(cfg.AuthToken),
		}

		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		// Start the timer driver unless disabled.
		var driver *ticker.Driver
		if cfg.TickInterval > 0 {
			driver = ticker.NewDriver(engine, cfg.TickInterval, logger)
			driver.Start()
			logger.Info("timer driver started", "interval", cfg.TickInterval)
		} else {
			logger.Info("timer driver disabled (GAVEL_TICK_INTERVAL=0)")
		}

		// Log startup info.
		logger.Info("gavel server started",
			"http_addr", cfg.HTTPAddr,
			"auth", cfg.AuthToken != "",
		)

		// Wait for SIGINT or SIGTERM.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		// Graceful shutdown.
		if driver != nil {
			driver.Stop()
			logger.Info("timer driver stopped")
		}

		registry.Stop()
		logger.Info("viewer reaper stopped")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := store.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}
