package api

import (
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	service "github.com/okian/matchboard/internal/app"
	"github.com/okian/matchboard/internal/domain/funnel"
	"github.com/okian/matchboard/internal/domain/model"
)

// maxPipelineLimit caps a single pipeline page.
const maxPipelineLimit = 500

func statusNames() []any {
	out := make([]any, len(model.Statuses))
	for i, s := range model.Statuses {
		out[i] = s.String()
	}
	return out
}

// advanceRequest is the body of POST /api/matches/{id}/advance.
type advanceRequest struct {
	Status string `json:"status"`
}

func (r advanceRequest) Validate() error {
	return validation.ValidateStruct(&r, //nolint:wrapcheck // ozzo errors are rendered as-is
		validation.Field(&r.Status, validation.Required, validation.In(statusNames()...)),
	)
}

// outcomeRequest is the body of POST /api/matches/{id}/outcome.
type outcomeRequest struct {
	Type         string `json:"type"`
	Value        string `json:"value"`
	Notes        string `json:"notes"`
	NextStepDate string `json:"nextStepDate"`
	Sentiment    string `json:"sentiment"`
}

func (r outcomeRequest) Validate() error {
	return validation.ValidateStruct(&r, //nolint:wrapcheck // ozzo errors are rendered as-is
		validation.Field(&r.Type, validation.Required),
		validation.Field(&r.Sentiment, validation.Required),
		validation.Field(&r.Notes, validation.Length(0, 4000)),
		validation.Field(&r.NextStepDate, validation.Length(0, 64)),
	)
}

func (r outcomeRequest) outcome() (model.Outcome, error) {
	typ, err := model.ParseOutcomeType(r.Type)
	if err != nil {
		return model.Outcome{}, err //nolint:wrapcheck // wrapped by caller
	}
	sentiment, err := model.ParseSentiment(r.Sentiment)
	if err != nil {
		return model.Outcome{}, err //nolint:wrapcheck // wrapped by caller
	}
	return model.Outcome{
		Type:         typ,
		Value:        r.Value,
		Notes:        r.Notes,
		NextStepDate: r.NextStepDate,
		Sentiment:    sentiment,
	}, nil
}

// regenerateRequest is the optional body of POST /api/dataset/regenerate.
// A zero count uses the configured population size.
type regenerateRequest struct {
	Count int `json:"count"`
}

func (r regenerateRequest) Validate() error {
	return validation.ValidateStruct(&r, //nolint:wrapcheck // ozzo errors are rendered as-is
		validation.Field(&r.Count, validation.Min(0), validation.Max(service.MaxPopulationSize)),
	)
}

// summarizeRequest is the body of POST /api/outcomes/summarize.
type summarizeRequest struct {
	Notes string `json:"notes"`
}

func (r summarizeRequest) Validate() error {
	return validation.ValidateStruct(&r, //nolint:wrapcheck // ozzo errors are rendered as-is
		validation.Field(&r.Notes, validation.Required, validation.Length(1, 8000)),
	)
}

// pipelineQuery holds the query parameters of GET /api/pipeline.
type pipelineQuery struct {
	Limit  int    `json:"limit"`
	Status string `json:"status"`
}

func parsePipelineQuery(limit, status string) (pipelineQuery, error) {
	q := pipelineQuery{Status: status}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return q, validation.Errors{"limit": validation.NewError("validation_is_int", "must be an integer")}
		}
		q.Limit = n
	}
	return q, validation.ValidateStruct(&q, //nolint:wrapcheck // ozzo errors are rendered as-is
		validation.Field(&q.Limit, validation.Min(0), validation.Max(maxPipelineLimit)),
		validation.Field(&q.Status, validation.In(statusNames()...)),
	)
}

func (q pipelineQuery) query() service.PipelineQuery {
	out := service.PipelineQuery{Limit: q.Limit}
	if q.Status != "" {
		if s, err := model.ParseStatus(q.Status); err == nil {
			out.Status = &s
		}
	}
	return out
}

// pipelineResponse is one page of the pipeline.
type pipelineResponse struct {
	Rows  []service.PipelineRow `json:"rows"`
	Total int                   `json:"total"`
}

// stageCount labels one funnel bar.
type stageCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// funnelResponse adds display labels to the analyzer report.
type funnelResponse struct {
	funnel.Report
	Stages                []stageCount `json:"stages"`
	BottleneckDescription string       `json:"bottleneckDescription,omitempty"`
}

func newFunnelResponse(r funnel.Report) funnelResponse {
	stages := make([]stageCount, len(r.Counts))
	for i, c := range r.Counts {
		stages[i] = stageCount{Label: funnel.StageLabels[i], Count: c}
	}
	return funnelResponse{
		Report:                r,
		Stages:                stages,
		BottleneckDescription: r.Bottleneck.Description(),
	}
}

type nudgeResponse struct {
	MatchID string `json:"matchId"`
	Message string `json:"message"`
}

type modeResponse struct {
	Mode   string `json:"mode"`
	AILive bool   `json:"aiLive"`
}

type integrationsResponse struct {
	Integrations []service.Integration `json:"integrations"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}
