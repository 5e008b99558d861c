package mcpserver

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	service "github.com/okian/matchboard/internal/app"
	"github.com/okian/matchboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func testServer() (*Server, *service.Service) {
	svc := service.New(
		service.WithSeed(7),
		service.WithPopulationSize(25),
		service.WithClock(func() time.Time { return time.Date(2024, 5, 20, 18, 0, 0, 0, time.UTC) }),
	)
	_ = svc.Start(context.Background())
	return New(svc, "test"), svc
}

type toolHandler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func call(h toolHandler, args map[string]any) *mcp.CallToolResult {
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	So(err, ShouldBeNil)
	So(res, ShouldNotBeNil)
	return res
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestToolsRegistered(t *testing.T) {
	Convey("Given a new MCP server", t, func() {
		srv, _ := testServer()

		Convey("Then every organizer tool is listed", func() {
			tools := srv.MCPServer().ListTools()
			for _, name := range []string{
				"get_overview", "get_funnel", "list_pipeline", "get_match", "advance_match",
				"top_connectors", "draft_nudge", "summarize_notes", "graph_insights",
			} {
				So(tools, ShouldContainKey, name)
			}
		})
	})
}

func TestReadTools(t *testing.T) {
	Convey("Given a server over a started service", t, func() {
		srv, svc := testServer()
		ds, err := svc.Dataset(context.Background())
		So(err, ShouldBeNil)

		Convey("get_funnel reports counts and stage labels", func() {
			res := call(srv.getFunnel, nil)
			So(res.IsError, ShouldBeFalse)
			var got struct {
				Counts [5]int    `json:"funnelCounts"`
				Stages [5]string `json:"stages"`
			}
			So(json.Unmarshal([]byte(resultText(res)), &got), ShouldBeNil)
			So(got.Counts[0], ShouldEqual, len(ds.Matches))
			So(got.Stages[4], ShouldEqual, "Outcomes")
		})

		Convey("get_overview reports the attendee count", func() {
			res := call(srv.getOverview, nil)
			So(resultText(res), ShouldContainSubstring, `"totalAttendees": 25`)
		})

		Convey("list_pipeline honours limit and status", func() {
			res := call(srv.listPipeline, map[string]any{"limit": float64(3), "status": "Suggested"})
			So(res.IsError, ShouldBeFalse)
			var got struct {
				Rows []struct {
					Status string `json:"status"`
				} `json:"rows"`
			}
			So(json.Unmarshal([]byte(resultText(res)), &got), ShouldBeNil)
			So(len(got.Rows), ShouldBeLessThanOrEqualTo, 3)
			for _, r := range got.Rows {
				So(r.Status, ShouldEqual, "Suggested")
			}
		})

		Convey("list_pipeline rejects an unknown status", func() {
			res := call(srv.listPipeline, map[string]any{"status": "Lost"})
			So(res.IsError, ShouldBeTrue)
		})

		Convey("get_match requires an id and reports unknown ones", func() {
			So(call(srv.getMatch, map[string]any{}).IsError, ShouldBeTrue)
			So(call(srv.getMatch, map[string]any{"id": "match-none"}).IsError, ShouldBeTrue)
			res := call(srv.getMatch, map[string]any{"id": ds.Matches[0].ID})
			So(res.IsError, ShouldBeFalse)
			So(resultText(res), ShouldContainSubstring, ds.Matches[0].SourceID)
		})

		Convey("top_connectors returns n attendees and bounds n", func() {
			res := call(srv.topConnectors, map[string]any{"n": float64(2)})
			var got []model.Attendee
			So(json.Unmarshal([]byte(resultText(res)), &got), ShouldBeNil)
			So(len(got), ShouldEqual, 2)
			So(call(srv.topConnectors, map[string]any{"n": float64(0)}).IsError, ShouldBeTrue)
		})
	})
}

func TestWriteAndAdvisoryTools(t *testing.T) {
	Convey("Given a server over a started service in demo mode", t, func() {
		srv, svc := testServer()
		ds, err := svc.Dataset(context.Background())
		So(err, ShouldBeNil)

		Convey("advance_match moves a match forward once", func() {
			var m model.Match
			for _, c := range ds.Matches {
				if c.Status == model.StatusScheduled {
					m = c
					break
				}
			}
			So(m.ID, ShouldNotBeEmpty)
			res := call(srv.advanceMatch, map[string]any{"id": m.ID, "status": "Held"})
			So(res.IsError, ShouldBeFalse)
			again := call(srv.advanceMatch, map[string]any{"id": m.ID, "status": "Held"})
			So(again.IsError, ShouldBeTrue)
		})

		Convey("draft_nudge falls back to the template", func() {
			m := ds.Matches[0]
			target, _ := ds.Attendee(m.TargetID)
			res := call(srv.draftNudge, map[string]any{"match_id": m.ID})
			So(res.IsError, ShouldBeFalse)
			So(resultText(res), ShouldStartWith, "Hi "+target.FirstName()+",")
		})

		Convey("summarize_notes rejects blank notes", func() {
			So(call(srv.summarizeNotes, map[string]any{"notes": "  "}).IsError, ShouldBeTrue)
			res := call(srv.summarizeNotes, map[string]any{"notes": "Agreed on a pilot."})
			So(resultText(res), ShouldContainSubstring, `"nextStep": "Follow up in 2 weeks"`)
		})

		Convey("graph_insights returns three suggestions", func() {
			res := call(srv.graphInsights, nil)
			var got struct {
				Suggestions []string `json:"suggestions"`
			}
			So(json.Unmarshal([]byte(resultText(res)), &got), ShouldBeNil)
			So(len(got.Suggestions), ShouldEqual, 3)
		})
	})
}

func TestLifecycleResource(t *testing.T) {
	Convey("Given the lifecycle resource", t, func() {
		srv, _ := testServer()
		req := mcp.ReadResourceRequest{}
		req.Params.URI = "matchboard://lifecycle"
		contents, err := srv.readLifecycle(context.Background(), req)

		Convey("Then it lists the stages in order", func() {
			So(err, ShouldBeNil)
			So(len(contents), ShouldEqual, 1)
			text := contents[0].(mcp.TextResourceContents).Text
			So(text, ShouldContainSubstring, "1. Suggested")
			So(text, ShouldContainSubstring, "5. Outcome Logged")
		})
	})
}
