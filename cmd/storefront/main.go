// Copyright (C) 2025 Tienda Labs (dev@tiendalabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command storefront starts the Tienda storefront API server.
//
// The server keeps a locally cached product catalog (BadgerDB), falls
// back to the hosted product feed when the cache is empty, and exposes
// the catalog, cart, checkout, and auth endpoints under /v1.
//
// Usage:
//
//	go run ./cmd/storefront serve
//	go run ./cmd/storefront serve --config /etc/storefront/storefront.yaml
//	go run ./cmd/storefront serve --debug
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/store/health
//
//	# List the catalog
//	curl http://localhost:8080/v1/store/products | jq
//
//	# Add to the cart
//	curl -X POST http://localhost:8080/v1/store/cart/items \
//	  -H "Content-Type: application/json" \
//	  -d '{"product_id": 1, "quantity": 2}'
//
//	# Check out
//	curl -X POST http://localhost:8080/v1/store/checkout
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/tiendalabs/storefront/pkg/logging"
	"github.com/tiendalabs/storefront/services/storefront"
	"github.com/tiendalabs/storefront/services/storefront/auth"
	"github.com/tiendalabs/storefront/services/storefront/config"
	"github.com/tiendalabs/storefront/services/storefront/remote"
	"github.com/tiendalabs/storefront/services/storefront/storage"
)

var (
	configPath string
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "storefront",
		Short: "Tienda storefront API server",
		Long: `Storefront serves a locally cached product catalog with cart,
checkout, and account endpoints. The catalog is cached in BadgerDB and
refreshed from the hosted product feed on demand.`,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE:  runServe,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file path (default ~/.storefront/storefront.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug logging and Gin debug mode")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := logging.ParseLevel(cfg.Log.Level)
	if debug {
		level = logging.LevelDebug
	}
	logger := logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Log.Dir,
		Service: "storefront",
		JSON:    cfg.Log.JSON,
	})
	defer logger.Close()

	db, err := storage.Open(storage.Config{
		Path:   cfg.ExpandedDataDir(),
		Logger: logger.Slog(),
	})
	if err != nil {
		return fmt.Errorf("open catalog store: %w", err)
	}
	defer db.Close()

	session := storefront.NewSession(storefront.SessionConfig{
		Store:  storage.NewCatalogStore(db),
		Feed:   remote.NewClient(cfg.Feed.BaseURL, nil),
		Logger: logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.SeedFile != "" {
		products, err := storefront.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			return fmt.Errorf("load seed file: %w", err)
		}
		if err := session.ReplaceCatalog(ctx, products); err != nil {
			return fmt.Errorf("apply seed catalog: %w", err)
		}

		watcher, err := storefront.NewSeedWatcher(cfg.SeedFile, session, logger)
		if err != nil {
			return fmt.Errorf("create seed watcher: %w", err)
		}
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("start seed watcher: %w", err)
		}
		defer watcher.Stop()
		logger.Info("watching seed file", "path", cfg.SeedFile)
	} else if _, err := session.LoadCatalog(ctx); err != nil {
		logger.Warn("initial catalog load failed", "error", err.Error())
	}

	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if debug {
		router.Use(gin.Logger())
	}

	handlers := storefront.NewHandlers(session, auth.NewService(db))
	v1 := router.Group("/v1")
	storefront.RegisterRoutes(v1, handlers)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront listening",
			"addr", cfg.ListenAddr,
			"feed", cfg.Feed.BaseURL,
			"data_dir", cfg.ExpandedDataDir())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
