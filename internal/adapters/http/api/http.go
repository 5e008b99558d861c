package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/okian/matchboard/internal/advisor"
	service "github.com/okian/matchboard/internal/app"
	"github.com/okian/matchboard/internal/domain/funnel"
	"github.com/okian/matchboard/internal/domain/graph"
	"github.com/okian/matchboard/internal/domain/model"
	"github.com/okian/matchboard/pkg/logger"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers.
type Dependencies interface {
	Dataset(ctx context.Context) (model.Dataset, error)
	Overview(ctx context.Context) (funnel.KPIs, error)
	Funnel(ctx context.Context) (funnel.Report, error)
	Pipeline(ctx context.Context, q service.PipelineQuery) ([]service.PipelineRow, int, error)
	Match(ctx context.Context, id string) (service.PipelineRow, error)
	AdvanceMatch(ctx context.Context, id string, to model.Status) (model.Match, error)
	LogOutcome(ctx context.Context, id string, o model.Outcome) (model.Outcome, error)
	Regenerate(ctx context.Context, count int) (service.RegeneratedEvent, error)
	Graph(ctx context.Context) (graph.Graph, error)
	GraphInsights(ctx context.Context) (advisor.Insights, error)
	SummarizeNotes(ctx context.Context, notes string) advisor.Summary
	DraftNudge(ctx context.Context, matchID string) (string, error)
	Integrations(ctx context.Context) []service.Integration
	AILive() bool
}

// Server wires HTTP routes for the organizer API.
type Server struct {
	deps   Dependencies
	health *HealthHandler
	stats  *StatsHandler
	events http.Handler
	logger logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithEvents mounts a live event stream at GET /api/events.
func WithEvents(h http.Handler) Option {
	return func(s *Server) {
		s.events = h
	}
}

// WithLogger sets a custom logger for request errors.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:   deps,
		health: NewHealthHandler(),
		stats:  NewStatsHandler(statsProvider),
		logger: logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the router with every endpoint and the shared middleware.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID, middleware.Recoverer, Metrics)

	r.Get("/healthz", s.health.HandleHealth)
	r.Get("/stats", s.stats.HandleStats)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dataset", s.handleDataset)
		r.Post("/dataset/regenerate", s.handleRegenerate)
		r.Get("/overview", s.handleOverview)
		r.Get("/funnel", s.handleFunnel)

		r.Get("/pipeline", s.handlePipeline)
		r.Route("/matches/{id}", func(r chi.Router) {
			r.Get("/", s.handleMatch)
			r.Post("/advance", s.handleAdvance)
			r.Post("/nudge", s.handleNudge)
			r.Post("/outcome", s.handleOutcome)
		})

		r.Get("/graph", s.handleGraph)
		r.Post("/graph/insights", s.handleInsights)
		r.Post("/outcomes/summarize", s.handleSummarize)

		r.Get("/settings/integrations", s.handleIntegrations)
		r.Get("/mode", s.handleMode)

		if s.events != nil {
			r.Get("/events", s.events.ServeHTTP)
		}
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	resp := errorResponse{Code: code, Message: err.Error()}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		resp.Message = "invalid request"
		resp.Details = verrs
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
		resp.Message = http.StatusText(status)
	}
	writeJSON(w, status, resp)
}

// decode reads a JSON body into v and validates it. An empty body leaves v
// at its zero value when allowEmpty is set.
func decode(r *http.Request, v validation.Validatable, allowEmpty bool) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	switch {
	case errors.Is(err, io.EOF) && allowEmpty:
	case err != nil:
		return WrapKind("decode", ErrBadRequest, fmt.Errorf("invalid JSON body: %w", err))
	}
	if err := v.Validate(); err != nil {
		return WrapKind("validate", ErrBadRequest, err)
	}
	return nil
}
