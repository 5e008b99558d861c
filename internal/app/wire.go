package service

import (
	"context"

	"github.com/okian/matchboard/internal/advisor"
	"github.com/okian/matchboard/internal/config"
	"github.com/okian/matchboard/pkg/logger"
)

// FromConfig builds a Service from the loaded configuration. A Gemini client
// is created only when a credential is configured; a client that fails to
// initialize leaves the service in demo mode.
func FromConfig(ctx context.Context, cfg *config.Config, l logger.Logger, opts ...Option) *Service {
	if l == nil {
		l = logger.NewNop()
	}
	acfg := advisor.Config{APIKey: cfg.AIAPIKey, Model: cfg.AIModel}

	var client advisor.Client
	if cfg.AIEnabled() {
		gc, err := advisor.NewGeminiClient(ctx, acfg)
		if err != nil {
			l.Warn(ctx, "advisory client unavailable; running in demo mode", logger.Error(err))
		} else {
			client = gc
		}
	}

	base := []Option{
		WithLogger(l),
		WithPopulationSize(cfg.PopulationSize),
		WithSeed(cfg.Seed),
		WithActivityWindow(cfg.ActivityWindow),
		WithPipelineLimit(cfg.PipelineLimit),
		WithAdvisor(advisor.New(acfg, client, advisor.WithLogger(l.Named("advisor")))),
	}
	return New(append(base, opts...)...)
}
