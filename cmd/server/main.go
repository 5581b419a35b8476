// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/nearby/internal/api"
	"github.com/tomtom215/nearby/internal/config"
	"github.com/tomtom215/nearby/internal/feed"
	"github.com/tomtom215/nearby/internal/logging"
	"github.com/tomtom215/nearby/internal/supervisor"
	"github.com/tomtom215/nearby/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Service:   "nearby",
	})

	logging.Info().
		Str("version", version).
		Str("store_backend", cfg.Store.Backend).
		Bool("redis_follows", cfg.Follow.Enabled()).
		Msg("Starting Nearby feed server")

	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS allows any origin; set CORS_ORIGINS for production")
	}

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

// run wires the components and blocks until a shutdown signal arrives.
func run(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	backend, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	if cfg.Store.SeedDemo {
		if err := seedIfEmpty(ctx, backend, cfg.Store.SeedCount); err != nil {
			return err
		}
	}

	follows, err := openFollowGraph(ctx, cfg, backend)
	if err != nil {
		return err
	}
	defer follows.Close()

	guarded := newBreaker(cfg, backend.repo, follows.graph)

	engine, err := feed.NewEngine(&cfg.Feed, logging.WithComponent("feed"))
	if err != nil {
		return err
	}
	engine.SetRepository(guarded)
	engine.SetFollowGraph(guarded)

	handler := api.NewHandler(engine, version)
	handler.AddReadinessCheck("repository", guarded)
	if follows.pinger != nil {
		handler.AddReadinessCheck("follow_graph", follows.pinger)
	}

	router := api.NewRouter(handler, api.NewChiMiddlewareConfig(
		cfg.Security.CORSOrigins,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
	))

	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout + time.Second
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), treeCfg)
	if err != nil {
		return err
	}

	if backend.gc != nil && cfg.Store.GCInterval > 0 {
		tree.AddDataService(services.NewStoreGCService(backend.gc, cfg.Store.GCInterval))
		logging.Info().Dur("interval", cfg.Store.GCInterval).Msg("Store GC service added")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	logging.Info().Msg("Starting supervisor tree...")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return nil
}
