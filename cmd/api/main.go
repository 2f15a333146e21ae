package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/healthcheckify/internal/catalog"
	"github.com/hamed0406/healthcheckify/internal/config"
	"github.com/hamed0406/healthcheckify/internal/health"
	"github.com/hamed0406/healthcheckify/internal/httpapi"
	"github.com/hamed0406/healthcheckify/internal/logging"
	"github.com/hamed0406/healthcheckify/internal/metrics"
	"github.com/hamed0406/healthcheckify/internal/pool"
	"github.com/hamed0406/healthcheckify/internal/probe"
	"github.com/hamed0406/healthcheckify/internal/scheduler"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(logging.Options{
		Dir:    cfg.LogDir,
		Level:  cfg.LogLevel,
		Stdout: cfg.LogStdout,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	targets, err := catalog.Load(cfg.TargetsFile)
	if err != nil {
		logger.Fatal("catalog_load_error", zap.String("path", cfg.TargetsFile), zap.Error(err))
	}
	logger.Info("catalog_loaded", zap.String("path", cfg.TargetsFile), zap.Int("targets", len(targets)))

	m := metrics.New()
	workers, err := pool.New(logger, cfg.Workers,
		pool.WithQueueSize(cfg.QueueSize),
		pool.WithPanicHook(m.PoolPanicked),
	)
	if err != nil {
		logger.Fatal("pool_init_error", zap.Int("workers", cfg.Workers), zap.Error(err))
	}
	m.WatchQueue(workers.QueueLen)

	reg := health.New(logger, targets, probe.NewHTTPExecutor(), workers, health.WithObserver(m))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go scheduler.NewRechecker(logger, reg, cfg.RecheckInterval).Run(ctx)

	api := httpapi.NewServer(logger, reg, m.Handler())
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.Router(cfg.PublicRPM, cfg.PublicBurst),
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("api_listen", zap.String("addr", cfg.Addr), zap.Int("workers", workers.Size()))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_serve_error", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("api_shutdown", zap.Duration("timeout", cfg.ShutdownTimeout))
	}

	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := shutdown(sctx, srv, workers); err != nil {
		logger.Warn("api_shutdown_error", zap.Error(err))
	}
	logger.Info("api_stopped")
}

// shutdown stops the HTTP server, then waits for queued and in-flight probes.
// Both steps share ctx's deadline and their failures are reported together.
func shutdown(ctx context.Context, srv *http.Server, workers *pool.Pool) error {
	err := srv.Shutdown(ctx)

	drained := make(chan struct{})
	go func() {
		workers.Shutdown()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		err = multierr.Append(err, fmt.Errorf("pool drain: %w", ctx.Err()))
	}
	return err
}
