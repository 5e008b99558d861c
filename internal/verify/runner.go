package verify

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/matchboard/internal/domain/funnel"
	"github.com/okian/matchboard/internal/domain/model"
	"github.com/okian/matchboard/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Run checks the service at cfg.BaseURL. It returns the report together
// with ErrFailed when any invariant is violated.
func Run(ctx context.Context, cfg Config) (Report, error) {
	cfg.defaults()
	log := cfg.Logger
	start := time.Now()

	rep := Report{BaseURL: cfg.BaseURL, CheckedAt: start.UTC()}
	log.Info(ctx, "starting verification", logger.String("baseURL", cfg.BaseURL))

	c := newClient(cfg.BaseURL, cfg.Timeout)
	if _, err := c.get(ctx, "/healthz"); err != nil {
		return rep, fmt.Errorf("service health check failed: %w", err)
	}

	var (
		ds     model.Dataset
		server FunnelView
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.getJSON(gctx, "/api/dataset", &ds) })
	g.Go(func() error { return c.getJSON(gctx, "/api/funnel", &server) })
	if err := g.Wait(); err != nil {
		return rep, fmt.Errorf("fetch failed: %w", err)
	}

	rep.Attendees, rep.Matches, rep.Outcomes = len(ds.Attendees), len(ds.Matches), len(ds.Outcomes)
	rep.Violations, rep.Warnings = Check(ds)

	rep.Funnel = viewOf(funnel.Analyze(ds.Matches))
	rep.Server = server
	if rep.Funnel != rep.Server {
		// The two fetches are not atomic, so a concurrent write can cause this.
		rep.Violations = append(rep.Violations,
			fmt.Sprintf("funnel mismatch: local %+v, server %+v", rep.Funnel, rep.Server))
	}

	rep.Duration = time.Since(start)
	rep.Passed = len(rep.Violations) == 0

	log.Info(ctx, "verification finished",
		logger.Int("attendees", rep.Attendees),
		logger.Int("matches", rep.Matches),
		logger.Int("outcomes", rep.Outcomes),
		logger.Int("violations", len(rep.Violations)),
		logger.Int("warnings", len(rep.Warnings)),
		logger.Duration("duration", rep.Duration),
	)
	for _, v := range rep.Violations {
		log.Warn(ctx, "violation", logger.String("detail", v))
	}

	if cfg.Output != "" {
		if err := Save(rep, cfg.Output, cfg.Format); err != nil {
			log.Warn(ctx, "failed to save report", logger.Error(err))
		} else {
			log.Info(ctx, "report saved", logger.String("file", cfg.Output))
		}
	}

	if !rep.Passed {
		return rep, fmt.Errorf("%w: %d violations", ErrFailed, len(rep.Violations))
	}
	return rep, nil
}
