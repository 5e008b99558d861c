package advisor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/okian/matchboard/pkg/logger"
	"github.com/okian/matchboard/pkg/metrics"
)

// Operation names used in logs and metrics.
const (
	OpSummary  = "summarize_outcome"
	OpNudge    = "generate_nudge"
	OpInsights = "graph_insights"
)

// Fallback reasons.
const (
	reasonNoCredential = "no_credential"
	reasonTransport    = "transport"
	reasonCanceled     = "canceled"
	reasonEmpty        = "empty"
	reasonMalformed    = "malformed"
)

// Gateway runs advisory operations against a Client.
type Gateway struct {
	cfg    Config
	client Client
	log    logger.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the gateway logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.log = l
		}
	}
}

// New builds a gateway. A nil client is treated like a missing credential.
func New(cfg Config, client Client, opts ...Option) *Gateway {
	g := &Gateway{cfg: cfg, client: client, log: logger.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Live reports whether calls reach the external service.
func (g *Gateway) Live() bool {
	return g.cfg.APIKey != "" && g.client != nil
}

// Model names the configured model.
func (g *Gateway) Model() string {
	return g.cfg.Model
}

// run applies the execution policy: fallback without a credential or on any
// failure, decoded response otherwise.
func run[T any](ctx context.Context, g *Gateway, req Request, fallback T, decode func(string) (T, error)) T {
	op := req.Operation
	metrics.RecordAdvisoryCall(op)

	if !g.Live() {
		metrics.RecordAdvisoryFallback(op, reasonNoCredential)
		g.log.Debug(ctx, "advisory demo mode", logger.String("operation", op))
		return fallback
	}

	start := time.Now()
	text, err := g.client.Generate(ctx, req)
	metrics.RecordAdvisoryLatency(op, float64(time.Since(start).Microseconds())/1000)

	if err != nil {
		reason := reasonTransport
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			reason = reasonCanceled
		}
		if errors.Is(err, ErrEmptyResponse) {
			reason = reasonEmpty
		}
		g.fail(ctx, op, reason, err)
		return fallback
	}
	if strings.TrimSpace(text) == "" {
		g.fail(ctx, op, reasonEmpty, ErrEmptyResponse)
		return fallback
	}

	v, err := decode(text)
	if err != nil {
		g.fail(ctx, op, reasonMalformed, err)
		return fallback
	}
	return v
}

func (g *Gateway) fail(ctx context.Context, op, reason string, err error) {
	metrics.RecordAdvisoryFallback(op, reason)
	metrics.RecordErrorByComponent("advisor", reason)
	g.log.Warn(ctx, "advisory call failed, using fallback",
		logger.String("operation", op),
		logger.String("reason", reason),
		logger.Error(err))
}
