// Package mcpserver exposes the organizer operations as MCP tools so an
// assistant can inspect the funnel and draft follow-ups over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/okian/matchboard/internal/advisor"
	service "github.com/okian/matchboard/internal/app"
	"github.com/okian/matchboard/internal/domain/funnel"
	"github.com/okian/matchboard/internal/domain/model"
)

// Tool limits.
const (
	defaultConnectors = 3
	maxConnectors     = 50
)

// Dependencies is the slice of the application service the tools use.
type Dependencies interface {
	Overview(ctx context.Context) (funnel.KPIs, error)
	Funnel(ctx context.Context) (funnel.Report, error)
	Pipeline(ctx context.Context, q service.PipelineQuery) ([]service.PipelineRow, int, error)
	Match(ctx context.Context, id string) (service.PipelineRow, error)
	AdvanceMatch(ctx context.Context, id string, to model.Status) (model.Match, error)
	TopConnectors(ctx context.Context, n int) ([]model.Attendee, error)
	DraftNudge(ctx context.Context, matchID string) (string, error)
	SummarizeNotes(ctx context.Context, notes string) advisor.Summary
	GraphInsights(ctx context.Context) (advisor.Insights, error)
}

// Server wraps the MCP server with the organizer tools.
type Server struct {
	mcp  *server.MCPServer
	deps Dependencies
}

// New creates a new MCP server with all tools registered.
func New(deps Dependencies, version string) *Server {
	s := &Server{deps: deps}

	s.mcp = server.NewMCPServer(
		"Matchboard",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_overview",
		mcp.WithDescription("Dashboard KPIs: attendees, intros, meetings held, pipeline value and outcomes."),
	), s.getOverview)

	s.mcp.AddTool(mcp.NewTool("get_funnel",
		mcp.WithDescription("Funnel counts per lifecycle stage, conversion rates and the primary bottleneck."),
	), s.getFunnel)

	s.mcp.AddTool(mcp.NewTool("list_pipeline",
		mcp.WithDescription("List matches with both attendees, in dataset order."),
		mcp.WithNumber("limit", mcp.Description("Maximum rows (default 50)")),
		mcp.WithString("status", mcp.Description("Only this lifecycle stage"),
			mcp.Enum(statusNames()...)),
	), s.listPipeline)

	s.mcp.AddTool(mcp.NewTool("get_match",
		mcp.WithDescription("One match with both attendees and its timeline."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Match id, e.g. match-0")),
	), s.getMatch)

	s.mcp.AddTool(mcp.NewTool("advance_match",
		mcp.WithDescription("Move a match to a later lifecycle stage. Stages never move backwards."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Match id")),
		mcp.WithString("status", mcp.Required(), mcp.Description("Target stage"),
			mcp.Enum(statusNames()...)),
	), s.advanceMatch)

	s.mcp.AddTool(mcp.NewTool("top_connectors",
		mcp.WithDescription("Attendees with the most introductions."),
		mcp.WithNumber("n", mcp.Description("How many (default 3)")),
	), s.topConnectors)

	s.mcp.AddTool(mcp.NewTool("draft_nudge",
		mcp.WithDescription("Draft a short follow-up message from the source attendee to the target."),
		mcp.WithString("match_id", mcp.Required(), mcp.Description("Match id")),
	), s.draftNudge)

	s.mcp.AddTool(mcp.NewTool("summarize_notes",
		mcp.WithDescription("Turn free-text meeting notes into an outcome type, sentiment and next step."),
		mcp.WithString("notes", mcp.Required(), mcp.Description("Meeting notes")),
	), s.summarizeNotes)

	s.mcp.AddTool(mcp.NewTool("graph_insights",
		mcp.WithDescription("Strategic summary of the relationship network plus three suggestions."),
	), s.graphInsights)

	s.mcp.AddResource(
		mcp.NewResource("matchboard://lifecycle", "Match Lifecycle",
			mcp.WithResourceDescription("The ordered lifecycle stages a match moves through."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readLifecycle,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp) //nolint:wrapcheck // returned to main
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func statusNames() []string {
	out := make([]string, len(model.Statuses))
	for i, st := range model.Statuses {
		out[i] = st.String()
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getOverview(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	k, err := s.deps.Overview(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(k)
}

func (s *Server) getFunnel(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := s.deps.Funnel(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(struct {
		funnel.Report
		Stages      [5]string `json:"stages"`
		Description string    `json:"bottleneckDescription,omitempty"`
	}{r, funnel.StageLabels, r.Bottleneck.Description()})
}

func (s *Server) listPipeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := service.PipelineQuery{Limit: req.GetInt("limit", 0)}
	if name := req.GetString("status", ""); name != "" {
		st, err := model.ParseStatus(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		q.Status = &st
	}
	rows, total, err := s.deps.Pipeline(ctx, q)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"rows": rows, "total": total})
}

func (s *Server) getMatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	row, err := s.deps.Match(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(row)
}

func (s *Server) advanceMatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := model.ParseStatus(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	m, err := s.deps.AdvanceMatch(ctx, id, to)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(m)
}

func (s *Server) topConnectors(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n := req.GetInt("n", defaultConnectors)
	if n < 1 || n > maxConnectors {
		return mcp.NewToolResultError(fmt.Sprintf("n must be in [1, %d]", maxConnectors)), nil
	}
	top, err := s.deps.TopConnectors(ctx, n)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(top)
}

func (s *Server) draftNudge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("match_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	msg, err := s.deps.DraftNudge(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) summarizeNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := req.RequireString("notes")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(notes) == "" {
		return mcp.NewToolResultError("notes must not be empty"), nil
	}
	return jsonResult(s.deps.SummarizeNotes(ctx, notes))
}

func (s *Server) graphInsights(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := s.deps.GraphInsights(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(in)
}

func (s *Server) readLifecycle(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var b strings.Builder
	b.WriteString("# Match lifecycle\n\n")
	for i, st := range model.Statuses {
		fmt.Fprintf(&b, "%d. %s\n", i+1, st)
	}
	b.WriteString("\nA match only moves forward. Logging an outcome moves it to Outcome Logged.\n")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     b.String(),
		},
	}, nil
}
