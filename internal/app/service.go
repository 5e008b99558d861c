// Package service provides the application service behind the HTTP API, the
// MCP tools and the live event stream.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/matchboard/internal/advisor"
	"github.com/okian/matchboard/internal/domain/funnel"
	"github.com/okian/matchboard/internal/domain/generator"
	"github.com/okian/matchboard/internal/domain/graph"
	"github.com/okian/matchboard/internal/domain/model"
	"github.com/okian/matchboard/pkg/logger"
	"github.com/okian/matchboard/pkg/metrics"
)

// Event types published to subscribers.
const (
	EventMatchAdvanced      = "match.advanced"
	EventOutcomeLogged      = "outcome.logged"
	EventDatasetRegenerated = "dataset.regenerated"
	EventFunnelUpdated      = "funnel.updated"
)

// Limits.
const (
	DefaultPopulationSize = 80
	MaxPopulationSize     = 5000
	DefaultPipelineLimit  = 50
	topConnectorCount     = 3
)

// Publisher fans events out to live subscribers. Coalesce keeps only the
// latest payload per type within the publisher's throttle window.
type Publisher interface {
	Publish(eventType string, data any)
	Coalesce(eventType string, data any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, any)  {}
func (nopPublisher) Coalesce(string, any) {}

// Service implements the organizer operations over the in-memory dataset.
type Service struct {
	mu sync.RWMutex

	store   *Store
	advisor *advisor.Gateway
	slots   *advisor.Slots
	pub     Publisher

	// Configuration
	populationSize int
	seed           uint64
	activityWindow time.Duration
	pipelineLimit  int
	now            func() time.Time

	// State
	started     bool
	generations uint64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithPopulationSize sets the attendee count of generated datasets.
func WithPopulationSize(n int) Option {
	return func(s *Service) {
		if n > 0 && n <= MaxPopulationSize {
			s.populationSize = n
		}
	}
}

// WithSeed makes generation reproducible. Zero keeps random seeding.
func WithSeed(seed uint64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithActivityWindow bounds generated last-activity timestamps.
func WithActivityWindow(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.activityWindow = d
		}
	}
}

// WithPipelineLimit sets the default number of pipeline rows.
func WithPipelineLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pipelineLimit = n
		}
	}
}

// WithAdvisor sets the advisory gateway.
func WithAdvisor(g *advisor.Gateway) Option {
	return func(s *Service) {
		if g != nil {
			s.advisor = g
		}
	}
}

// WithPublisher sets where change events go.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.pub = p
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Without WithAdvisor it runs in demo mode.
func New(opts ...Option) *Service {
	s := &Service{
		slots:          advisor.NewSlots(),
		pub:            nopPublisher{},
		populationSize: DefaultPopulationSize,
		activityWindow: generator.DefaultActivityWindow,
		pipelineLimit:  DefaultPipelineLimit,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.NewNop()
	}
	if s.advisor == nil {
		s.advisor = advisor.New(advisor.Config{}, nil, advisor.WithLogger(s.logger))
	}
	return s
}

// Start generates the initial dataset.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting matchboard service...")

	ds := s.generate(s.populationSize)
	s.store = NewStore(ds)
	publishSize(s.store)

	s.started = true
	s.logger.Info(ctx, "matchboard service started",
		logger.Int("attendees", len(ds.Attendees)),
		logger.Int("matches", len(ds.Matches)),
		logger.Int("outcomes", len(ds.Outcomes)),
		logger.Bool("aiLive", s.advisor.Live()),
	)
	return nil
}

// Stop marks the service stopped. The dataset is discarded.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.store = nil
	s.logger.Info(context.Background(), "matchboard service stopped")
}

// generate must be called with s.mu held for writing.
func (s *Service) generate(count int) model.Dataset {
	opts := []generator.Option{
		generator.WithClock(s.now),
		generator.WithActivityWindow(s.activityWindow),
	}
	if s.seed != 0 {
		opts = append(opts, generator.WithSeed(s.seed+s.generations))
	}
	s.generations++

	start := time.Now()
	ds := generator.Generate(count, opts...)
	metrics.RecordDatasetGenerated(float64(time.Since(start).Microseconds()) / 1000)
	return ds
}

func (s *Service) current() (*Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// Dataset returns a copy of the current dataset.
func (s *Service) Dataset(_ context.Context) (model.Dataset, error) {
	st, err := s.current()
	if err != nil {
		return model.Dataset{}, err
	}
	return st.Snapshot(), nil
}

// Overview returns the dashboard KPIs.
func (s *Service) Overview(_ context.Context) (funnel.KPIs, error) {
	st, err := s.current()
	if err != nil {
		return funnel.KPIs{}, err
	}
	var k funnel.KPIs
	st.View(func(ds *model.Dataset) {
		k = funnel.Overview(len(ds.Attendees), ds.Matches, ds.Outcomes)
	})
	return k, nil
}

// Funnel analyzes the current matches.
func (s *Service) Funnel(_ context.Context) (funnel.Report, error) {
	st, err := s.current()
	if err != nil {
		return funnel.Report{}, err
	}
	return analyze(st), nil
}

func analyze(st *Store) funnel.Report {
	var r funnel.Report
	st.View(func(ds *model.Dataset) {
		r = funnel.Analyze(ds.Matches)
	})
	return r
}

// Match returns one match with both attendees.
func (s *Service) Match(_ context.Context, id string) (PipelineRow, error) {
	st, err := s.current()
	if err != nil {
		return PipelineRow{}, err
	}
	m, ok := st.Match(id)
	if !ok {
		return PipelineRow{}, fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	row, ok := joinRow(st, m)
	if !ok {
		return PipelineRow{}, fmt.Errorf("match %s attendees: %w", id, ErrNotFound)
	}
	return row, nil
}

// AdvanceMatch moves a match forward in the lifecycle.
func (s *Service) AdvanceMatch(ctx context.Context, id string, to model.Status) (model.Match, error) {
	st, err := s.current()
	if err != nil {
		return model.Match{}, err
	}
	m, err := st.Advance(id, to, s.now())
	if err != nil {
		return model.Match{}, err
	}

	metrics.RecordMatchAdvanced(to.String())
	s.logger.Info(ctx, "match advanced", logger.String("match", id), logger.String("status", to.String()))
	s.pub.Publish(EventMatchAdvanced, m)
	s.publishFunnel(st)
	return m, nil
}

// LogOutcome records an outcome for a match and marks it Outcome Logged.
// The outcome id and match id are assigned by the store.
func (s *Service) LogOutcome(ctx context.Context, id string, o model.Outcome) (model.Outcome, error) {
	st, err := s.current()
	if err != nil {
		return model.Outcome{}, err
	}
	m, o, err := st.LogOutcome(id, o, s.now())
	if err != nil {
		return model.Outcome{}, err
	}

	metrics.RecordMatchAdvanced(model.StatusOutcomeLogged.String())
	s.logger.Info(ctx, "outcome logged", logger.String("match", id), logger.String("outcome", o.ID))
	s.pub.Publish(EventOutcomeLogged, OutcomeEvent{Match: m, Outcome: o})
	s.publishFunnel(st)
	publishSize(st)
	return o, nil
}

// OutcomeEvent is the payload of outcome.logged.
type OutcomeEvent struct {
	Match   model.Match   `json:"match"`
	Outcome model.Outcome `json:"outcome"`
}

// RegeneratedEvent is the payload of dataset.regenerated.
type RegeneratedEvent struct {
	Version   uint64 `json:"version"`
	Attendees int    `json:"attendees"`
	Matches   int    `json:"matches"`
	Outcomes  int    `json:"outcomes"`
}

// Regenerate replaces the dataset with a fresh one of count attendees. Zero
// uses the configured population size.
func (s *Service) Regenerate(ctx context.Context, count int) (RegeneratedEvent, error) {
	if count == 0 {
		count = s.populationSize
	}
	if count < 1 || count > MaxPopulationSize {
		return RegeneratedEvent{}, fmt.Errorf("%d not in [1, %d]: %w", count, MaxPopulationSize, ErrInvalidCount)
	}

	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return RegeneratedEvent{}, ErrNotStarted
	}
	ds := s.generate(count)
	st := s.store
	s.mu.Unlock()

	ev := RegeneratedEvent{
		Version:   st.Replace(ds, s.now()),
		Attendees: len(ds.Attendees),
		Matches:   len(ds.Matches),
		Outcomes:  len(ds.Outcomes),
	}
	s.logger.Info(ctx, "dataset regenerated",
		logger.Int("attendees", ev.Attendees),
		logger.Int("matches", ev.Matches),
	)
	publishSize(st)
	s.pub.Publish(EventDatasetRegenerated, ev)
	s.publishFunnel(st)
	return ev, nil
}

// Graph returns the relationship graph.
func (s *Service) Graph(_ context.Context) (graph.Graph, error) {
	st, err := s.current()
	if err != nil {
		return graph.Graph{}, err
	}
	var g graph.Graph
	st.View(func(ds *model.Dataset) { g = graph.Build(*ds) })
	return g, nil
}

// TopConnectors returns the n best-connected attendees.
func (s *Service) TopConnectors(_ context.Context, n int) ([]model.Attendee, error) {
	st, err := s.current()
	if err != nil {
		return nil, err
	}
	var top []model.Attendee
	st.View(func(ds *model.Dataset) { top = graph.TopConnectors(*ds, n) })
	return top, nil
}

// GraphInsights asks the advisor about the current graph.
func (s *Service) GraphInsights(ctx context.Context) (advisor.Insights, error) {
	g, err := s.Graph(ctx)
	if err != nil {
		return advisor.Insights{}, err
	}
	top, err := s.TopConnectors(ctx, topConnectorCount)
	if err != nil {
		return advisor.Insights{}, err
	}
	return s.advisor.GraphInsights(ctx, len(g.Nodes), len(g.Edges), graph.Names(top)), nil
}

// SummarizeNotes turns free-text meeting notes into a structured summary.
func (s *Service) SummarizeNotes(ctx context.Context, notes string) advisor.Summary {
	return s.advisor.SummarizeOutcome(ctx, notes)
}

// DraftNudge drafts a follow-up for a match. A newer draft request for the
// same match cancels this one, which then fails with ErrSuperseded.
func (s *Service) DraftNudge(ctx context.Context, matchID string) (string, error) {
	row, err := s.Match(ctx, matchID)
	if err != nil {
		return "", err
	}

	key := "nudge:" + matchID
	callCtx, token := s.slots.Begin(ctx, key)
	msg := s.advisor.GenerateNudge(callCtx, row.Match, row.Source, row.Target)
	if !s.slots.Finish(key, token) {
		metrics.RecordAdvisorySuperseded(advisor.OpNudge)
		return "", fmt.Errorf("nudge %s: %w", matchID, ErrSuperseded)
	}
	return msg, nil
}

// AILive reports whether advisory calls reach the external service.
func (s *Service) AILive() bool {
	return s.advisor.Live()
}

// Integration is one external connection shown on the settings page.
type Integration struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Connected bool   `json:"connected"`
	Detail    string `json:"detail,omitempty"`
}

// Integrations lists the configured external connections. Scheduling and
// CRM connectors are placeholders.
func (s *Service) Integrations(_ context.Context) []Integration {
	ai := Integration{Name: "Gemini", Kind: "ai", Connected: s.advisor.Live()}
	if ai.Connected {
		ai.Detail = s.advisor.Model()
	} else {
		ai.Detail = "demo mode: deterministic fallbacks"
	}
	return []Integration{
		ai,
		{Name: "Calendly", Kind: "scheduling"},
		{Name: "CRM", Kind: "crm"},
	}
}

// GetStats returns service statistics for monitoring and refreshes gauges.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	started, st := s.started, s.store
	stats := map[string]any{
		"started":        s.started,
		"populationSize": s.populationSize,
		"pipelineLimit":  s.pipelineLimit,
		"generations":    s.generations,
		"aiLive":         s.advisor.Live(),
		"pendingNudges":  s.slots.Len(),
	}
	s.mu.RUnlock()

	if started {
		version, updated := st.Version()
		var n [3]int
		st.View(func(ds *model.Dataset) {
			n = [3]int{len(ds.Attendees), len(ds.Matches), len(ds.Outcomes)}
		})
		r := analyze(st)

		stats["version"] = version
		stats["updatedAt"] = updated
		stats["attendees"] = n[0]
		stats["matches"] = n[1]
		stats["outcomes"] = n[2]
		stats["bottleneck"] = r.Bottleneck.String()

		metrics.UpdateDatasetSize(n[0], n[1], n[2])
		recordFunnel(r)
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	metrics.UpdateSystemMemoryUsage(mem.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	return stats
}

func publishSize(st *Store) {
	st.View(func(ds *model.Dataset) {
		metrics.UpdateDatasetSize(len(ds.Attendees), len(ds.Matches), len(ds.Outcomes))
	})
}

func (s *Service) publishFunnel(st *Store) {
	r := analyze(st)
	recordFunnel(r)
	s.pub.Coalesce(EventFunnelUpdated, r)
}

func recordFunnel(r funnel.Report) {
	for i, label := range funnel.StageLabels {
		metrics.UpdateFunnelStage(label, r.Counts[i])
	}
	metrics.UpdateConversionRate("connect", r.Rates.Connect)
	metrics.UpdateConversionRate("meeting", r.Rates.Meeting)
	metrics.UpdateConversionRate("success", r.Rates.Success)
}
