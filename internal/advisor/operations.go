package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/matchboard/internal/domain/model"
)

const (
	defaultNextStep = "Follow up in 2 weeks"
	insightCount    = 3
	defaultHub      = "investors"
	defaultNote     = "Met at the event, good vibe."
)

var defaultSuggestions = []string{
	"Host a 'Founders & Funders' mixer to bridge the gap.",
	"Encourage hiring managers to reach out to operator nodes.",
	"Facilitate warm intros for isolated attendees.",
}

var errMissingField = errors.New("missing field")

// Summary is the structured reading of meeting notes.
type Summary struct {
	Type      model.OutcomeType `json:"type"`
	Sentiment model.Sentiment   `json:"sentiment"`
	NextStep  string            `json:"nextStep"`
}

// Insights is the organizer-facing reading of the relationship graph.
type Insights struct {
	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions"`
}

var summarySchema = &Schema{Properties: []Property{
	{Name: "type", Kind: KindString},
	{Name: "sentiment", Kind: KindString},
	{Name: "nextStep", Kind: KindString},
}}

var insightsSchema = &Schema{Properties: []Property{
	{Name: "summary", Kind: KindString},
	{Name: "suggestions", Kind: KindStringList},
}}

// FallbackSummary is the answer used when the service is unavailable.
func FallbackSummary() Summary {
	return Summary{Type: model.OutcomeOther, Sentiment: model.SentimentNeutral, NextStep: defaultNextStep}
}

// FallbackNudge greets the target by first name and mentions their company.
func FallbackNudge(target model.Attendee) string {
	return fmt.Sprintf("Hi %s, great meeting you at the event! Would love to pick up our chat about %s. let me know when you're free?",
		target.FirstName(), target.Company)
}

// FallbackInsights references the first connector, or investors when there
// are none.
func FallbackInsights(connectors []string) Insights {
	hub := defaultHub
	if len(connectors) > 0 && connectors[0] != "" {
		hub = connectors[0]
	}
	return Insights{
		Summary:     fmt.Sprintf("The network shows strong clustering around %s, indicating high engagement but potential silos.", hub),
		Suggestions: append([]string(nil), defaultSuggestions...),
	}
}

// SummarizeOutcome extracts outcome type, sentiment and next step from notes.
func (g *Gateway) SummarizeOutcome(ctx context.Context, notes string) Summary {
	req := Request{
		Operation: OpSummary,
		Prompt: fmt.Sprintf(`Extract structured data from these meeting notes.
Notes: %q

Respond with JSON:
- type: one of [%s]
- sentiment: one of [%s]
- nextStep: one short, actionable next step.`, notes, joinNames(model.OutcomeTypes), joinNames(model.Sentiments)),
		Schema: summarySchema,
	}
	return run(ctx, g, req, FallbackSummary(), decodeSummary)
}

// GenerateNudge drafts a short follow-up message from source to target.
func (g *Gateway) GenerateNudge(ctx context.Context, m model.Match, source, target model.Attendee) string {
	note := m.Notes
	if note == "" {
		note = defaultNote
	}
	req := Request{
		Operation: OpNudge,
		Prompt: fmt.Sprintf(`Draft a friendly, professional chat-style follow-up message of at most 40 words.
Sender: %s (%s)
Recipient: %s
Introduction status: %s
Latest note: %s
Tone: confident and low pressure. Reply with the message only.`, source.Name, source.Company, target.Name, m.Status, note),
	}
	return run(ctx, g, req, FallbackNudge(target), func(text string) (string, error) {
		return strings.TrimSpace(text), nil
	})
}

// GraphInsights summarizes network density and proposes three actions.
func (g *Gateway) GraphInsights(ctx context.Context, nodes, edges int, connectors []string) Insights {
	req := Request{
		Operation: OpInsights,
		Prompt: fmt.Sprintf(`You are reviewing the relationship graph of a B2B event.
Attendees: %d, active connections: %d.
Top connectors: %s.

Respond with JSON:
- summary: one sentence on how dense the network is.
- suggestions: exactly %d strategic actions the organizer can take to improve connectivity.`,
			nodes, edges, strings.Join(connectors, ", "), insightCount),
		Schema: insightsSchema,
	}
	fallback := FallbackInsights(connectors)
	return run(ctx, g, req, fallback, func(text string) (Insights, error) {
		return decodeInsights(text, fallback)
	})
}

// decodeSummary keeps recognised fields and substitutes the fallback for
// the rest.
func decodeSummary(text string) (Summary, error) {
	var raw struct {
		Type      string `json:"type"`
		Sentiment string `json:"sentiment"`
		NextStep  string `json:"nextStep"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Summary{}, err
	}

	s := FallbackSummary()
	if t, ok := matchName(model.OutcomeTypes, raw.Type); ok {
		s.Type = t
	}
	if v, ok := matchName(model.Sentiments, raw.Sentiment); ok {
		s.Sentiment = v
	}
	if step := strings.TrimSpace(raw.NextStep); step != "" {
		s.NextStep = step
	}
	return s, nil
}

// decodeInsights requires a summary and at least one suggestion. The list is
// cut or padded from the fallback to exactly insightCount entries.
func decodeInsights(text string, fallback Insights) (Insights, error) {
	var raw Insights
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Insights{}, err
	}
	raw.Summary = strings.TrimSpace(raw.Summary)
	if raw.Summary == "" {
		return Insights{}, fmt.Errorf("summary: %w", errMissingField)
	}

	out := Insights{Summary: raw.Summary, Suggestions: make([]string, 0, insightCount)}
	seen := map[string]bool{}
	for _, s := range raw.Suggestions {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] || len(out.Suggestions) == insightCount {
			continue
		}
		seen[s] = true
		out.Suggestions = append(out.Suggestions, s)
	}
	if len(out.Suggestions) == 0 {
		return Insights{}, fmt.Errorf("suggestions: %w", errMissingField)
	}
	for _, s := range fallback.Suggestions {
		if len(out.Suggestions) == insightCount {
			break
		}
		if !seen[s] {
			out.Suggestions = append(out.Suggestions, s)
		}
	}
	return out, nil
}

func matchName[T fmt.Stringer](values []T, s string) (T, bool) {
	s = strings.TrimSpace(s)
	for _, v := range values {
		if strings.EqualFold(v.String(), s) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func joinNames[T fmt.Stringer](values []T) string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = v.String()
	}
	return strings.Join(names, ", ")
}
