package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	service "github.com/okian/matchboard/internal/app"
	"github.com/okian/matchboard/internal/config"
	"github.com/okian/matchboard/internal/mcpserver"
	"github.com/okian/matchboard/pkg/logger"
)

const version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		os.Stderr.WriteString("matchboard-mcp: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// run serves the tools on stdio. Logs go to stderr since stdout carries the
// protocol.
func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err //nolint:wrapcheck // already wrapped by config
	}
	if err := logger.Init(
		logger.WithWriter(os.Stderr),
		logger.WithFormat(logger.Format(cfg.LogFormat)),
	); err != nil {
		return err //nolint:wrapcheck // reported as-is
	}
	_ = logger.SetLevelString(cfg.LogLevel)

	svc := service.FromConfig(ctx, cfg, logger.Named("service"))
	if err := svc.Start(ctx); err != nil {
		return err //nolint:wrapcheck // reported as-is
	}
	defer svc.Stop()

	return mcpserver.New(svc, version).ServeStdio() //nolint:wrapcheck // reported by main
}
