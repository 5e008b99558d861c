package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/joho/godotenv/autoload"
	"github.com/okian/matchboard/internal/adapters/http/api"
	"github.com/okian/matchboard/internal/adapters/http/site"
	"github.com/okian/matchboard/internal/adapters/http/sse"
	"github.com/okian/matchboard/internal/adapters/http/swagger"
	service "github.com/okian/matchboard/internal/app"
	"github.com/okian/matchboard/internal/config"
	"github.com/okian/matchboard/pkg/logger"
	"github.com/okian/matchboard/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// HTTP server timeout constants. There is no write timeout because the event
// stream is long-lived.
const (
	readTimeout               = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		os.Stderr.WriteString("matchboard: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err //nolint:wrapcheck // already wrapped by config
	}

	if err := logger.Init(logger.WithFormat(logger.Format(cfg.LogFormat))); err != nil {
		return err //nolint:wrapcheck // reported as-is
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	if err := config.Watch(ctx, func(next *config.Config, err error) { applyReload(ctx, log, next, err) }); err != nil {
		log.Warn(ctx, "config watch disabled", logger.Error(err))
	}

	broker := sse.NewBroker(cfg.SSEThrottle)
	defer broker.Close()

	svc := service.FromConfig(ctx, cfg, log.Named("service"), service.WithPublisher(broker))
	if err := svc.Start(ctx); err != nil {
		return err //nolint:wrapcheck // reported as-is
	}
	defer svc.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, svc, broker, log),
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.Bool("aiLive", svc.AILive()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err //nolint:wrapcheck // reported by main
		}
		return nil
	})
	g.Go(func() error {
		runStatsUpdater(gctx, svc, cfg.StatsInterval)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(ctx, "shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// Close the stream first so open SSE connections do not hold Shutdown.
		broker.Close()
		return srv.Shutdown(shutdownCtx) //nolint:wrapcheck // reported by main
	})

	err = g.Wait()
	log.Info(ctx, "server stopped")
	return err //nolint:wrapcheck // reported by main
}

// newRouter mounts the API first so its routes win over the dashboard.
func newRouter(ctx context.Context, svc *service.Service, broker *sse.Broker, log logger.Logger) chi.Router {
	r := api.NewServer(svc, svc,
		api.WithEvents(broker),
		api.WithLogger(log.Named("api")),
	).Routes()
	swagger.Register(ctx, r)
	site.Register(ctx, r)
	return r
}

// applyReload applies the settings that can change without a restart.
func applyReload(ctx context.Context, log logger.Logger, cfg *config.Config, err error) {
	if err != nil {
		log.Warn(ctx, "config reload failed", logger.Error(err))
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "config reload: invalid log_level", logger.String("log_level", cfg.LogLevel))
		return
	}
	log.Info(ctx, "config reloaded", logger.String("log_level", cfg.LogLevel))
}

// runStatsUpdater refreshes service and system gauges until ctx is done.
func runStatsUpdater(ctx context.Context, svc *service.Service, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.GetStats()
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if m.NumGC > 0 {
		metrics.RecordSystemGCPauseTime(float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond)
	}
}
