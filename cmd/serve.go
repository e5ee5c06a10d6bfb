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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/festifind/festifind/internal/cache"
	"github.com/festifind/festifind/internal/database"
	"github.com/festifind/festifind/internal/events"
	"github.com/festifind/festifind/internal/handler"
	"github.com/festifind/festifind/internal/repository"
	"github.com/festifind/festifind/internal/service"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	// ── 1. Optional read cache ────────────────────────────────────────────
	var opts []database.Option
	var rdb *redis.Client
	if cfg.Cache.Enabled() {
		rdb = cache.NewRedisClient(ctx, cfg.Cache)
		if rdb == nil {
			logger.Warn("redis unreachable, running without cache", zap.String("addr", cfg.Cache.Addr))
		} else {
			defer rdb.Close()
			opts = append(opts, database.WithWrapper(func(s repository.Store) repository.Store {
				return cache.New(s, rdb, cfg.Cache, logger)
			}))
		}
	}

	// ── 2. Store accessor, resolved on the first request ─────────────────
	stores := database.NewAccessor(cfg.Store, logger, opts...)
	defer stores.Close()

	// ── 3. Optional preference events ─────────────────────────────────────
	var publisher events.Publisher = events.Noop{}
	if cfg.Events.Enabled() {
		publisher = events.NewAMQPPublisher(cfg.Events.URL, cfg.Events.Queue)
	}

	// ── 4. Wire up layers ─────────────────────────────────────────────────
	svc := service.NewFestivalService(stores, publisher, logger)
	festivalHandler := handler.NewFestivalHandler(svc, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := handler.NewMetrics(reg)

	router := handler.NewRouter(festivalHandler, metrics, logger, cfg.Server.AllowedOrigins)

	// ── 5. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
