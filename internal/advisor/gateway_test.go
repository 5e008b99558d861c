package advisor_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/okian/matchboard/internal/advisor"
	"github.com/okian/matchboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeClient struct {
	mu       sync.Mutex
	text     string
	err      error
	requests []advisor.Request
}

func (f *fakeClient) Generate(_ context.Context, req advisor.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.text, f.err
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

var (
	sam   = model.Attendee{ID: "att-1", Name: "Sam Wu", Company: "Nebula", Role: model.RoleFounder}
	riley = model.Attendee{ID: "att-2", Name: "Riley Patel", Company: "Orbit", Role: model.RoleInvestor}
	intro = model.Match{ID: "match-0", SourceID: "att-1", TargetID: "att-2", Status: model.StatusHeld}
)

func TestGatewayDemoMode(t *testing.T) {
	Convey("Given a gateway without a credential", t, func() {
		client := &fakeClient{text: `{"type":"Hire"}`}
		g := advisor.New(advisor.Config{}, client)
		ctx := context.Background()

		So(g.Live(), ShouldBeFalse)

		Convey("When summarizing empty notes", func() {
			s := g.SummarizeOutcome(ctx, "")

			Convey("Then the fixed summary is returned", func() {
				So(s, ShouldResemble, advisor.Summary{
					Type:      model.OutcomeOther,
					Sentiment: model.SentimentNeutral,
					NextStep:  "Follow up in 2 weeks",
				})
			})
		})

		Convey("When drafting a nudge", func() {
			msg := g.GenerateNudge(ctx, intro, sam, riley)

			Convey("Then it greets the target by first name and company", func() {
				So(msg, ShouldEqual, "Hi Riley, great meeting you at the event! Would love to pick up our chat about Orbit. let me know when you're free?")
				So(msg, ShouldContainSubstring, riley.FirstName())
				So(msg, ShouldContainSubstring, riley.Company)
			})
		})

		Convey("When asking for graph insights", func() {
			in := g.GraphInsights(ctx, 80, 120, []string{"Alex Chen", "Sam Wu"})

			Convey("Then the summary names the first connector", func() {
				So(in.Summary, ShouldEqual, "The network shows strong clustering around Alex Chen, indicating high engagement but potential silos.")
				So(in.Suggestions, ShouldResemble, []string{
					"Host a 'Founders & Funders' mixer to bridge the gap.",
					"Encourage hiring managers to reach out to operator nodes.",
					"Facilitate warm intros for isolated attendees.",
				})
			})

			Convey("And without connectors it falls back to investors", func() {
				So(g.GraphInsights(ctx, 0, 0, nil).Summary, ShouldContainSubstring, "around investors,")
			})
		})

		Convey("Then the client is never called", func() {
			g.SummarizeOutcome(ctx, "notes")
			g.GenerateNudge(ctx, intro, sam, riley)
			g.GraphInsights(ctx, 1, 1, nil)
			So(client.calls(), ShouldEqual, 0)
		})
	})

	Convey("Given a credential but no client", t, func() {
		g := advisor.New(advisor.Config{APIKey: "key"}, nil)
		So(g.Live(), ShouldBeFalse)
		So(g.SummarizeOutcome(context.Background(), "x"), ShouldResemble, advisor.FallbackSummary())
	})
}

func TestGatewayLive(t *testing.T) {
	Convey("Given a live gateway", t, func() {
		client := &fakeClient{}
		g := advisor.New(advisor.Config{APIKey: "key", Model: "m"}, client)
		ctx := context.Background()

		So(g.Live(), ShouldBeTrue)
		So(g.Model(), ShouldEqual, "m")

		Convey("When the service returns a full summary", func() {
			client.text = `{"type":"Investment","sentiment":"positive","nextStep":" Send the deck "}`
			s := g.SummarizeOutcome(ctx, "They want to lead the round.")

			Convey("Then it is parsed into the enumerations", func() {
				So(s, ShouldResemble, advisor.Summary{
					Type:      model.OutcomeInvestment,
					Sentiment: model.SentimentPositive,
					NextStep:  "Send the deck",
				})
			})

			Convey("And the request asked for structured output", func() {
				req := client.requests[0]
				So(req.Operation, ShouldEqual, advisor.OpSummary)
				So(req.Prompt, ShouldContainSubstring, "They want to lead the round.")
				So(req.Schema, ShouldNotBeNil)
				So(len(req.Schema.Properties), ShouldEqual, 3)
			})
		})

		Convey("When the summary has unknown or missing fields", func() {
			client.text = `{"type":"Merger","sentiment":"Negative"}`
			s := g.SummarizeOutcome(ctx, "meh")

			Convey("Then only those fields fall back", func() {
				So(s.Type, ShouldEqual, model.OutcomeOther)
				So(s.Sentiment, ShouldEqual, model.SentimentNegative)
				So(s.NextStep, ShouldEqual, "Follow up in 2 weeks")
			})
		})

		Convey("When the service returns malformed JSON", func() {
			client.text = `{"type":`

			Convey("Then the fallback is returned", func() {
				So(g.SummarizeOutcome(ctx, "x"), ShouldResemble, advisor.FallbackSummary())
				So(g.GraphInsights(ctx, 3, 1, []string{"A"}), ShouldResemble, advisor.FallbackInsights([]string{"A"}))
			})
		})

		Convey("When the service fails", func() {
			client.err = errors.New("503 unavailable")

			Convey("Then every operation falls back", func() {
				So(g.SummarizeOutcome(ctx, "x"), ShouldResemble, advisor.FallbackSummary())
				So(g.GenerateNudge(ctx, intro, sam, riley), ShouldEqual, advisor.FallbackNudge(riley))
				So(g.GraphInsights(ctx, 1, 0, nil), ShouldResemble, advisor.FallbackInsights(nil))
			})
		})

		Convey("When the context is canceled", func() {
			client.err = context.Canceled

			Convey("Then the fallback is returned", func() {
				So(g.GenerateNudge(ctx, intro, sam, riley), ShouldEqual, advisor.FallbackNudge(riley))
			})
		})

		Convey("When the service answers with blank text", func() {
			client.text = "  \n"

			Convey("Then the fallback is returned", func() {
				So(g.GenerateNudge(ctx, intro, sam, riley), ShouldEqual, advisor.FallbackNudge(riley))
			})
		})

		Convey("When drafting a nudge", func() {
			client.text = "  Hey Riley, loved the chat. Coffee next week?\n"
			msg := g.GenerateNudge(ctx, intro, sam, riley)

			Convey("Then the text is trimmed and the request is plain text", func() {
				So(msg, ShouldEqual, "Hey Riley, loved the chat. Coffee next week?")
				req := client.requests[0]
				So(req.Schema, ShouldBeNil)
				So(req.Prompt, ShouldContainSubstring, "Sam Wu (Nebula)")
				So(req.Prompt, ShouldContainSubstring, "Riley Patel")
				So(req.Prompt, ShouldContainSubstring, "Held")
				So(req.Prompt, ShouldContainSubstring, "Met at the event, good vibe.")
			})
		})

		Convey("When insights come back with too many suggestions", func() {
			client.text = `{"summary":"Dense core.","suggestions":["a","b","b","c","d"]}`
			in := g.GraphInsights(ctx, 10, 20, []string{"A"})

			Convey("Then exactly three distinct suggestions are kept", func() {
				So(in, ShouldResemble, advisor.Insights{Summary: "Dense core.", Suggestions: []string{"a", "b", "c"}})
			})
		})

		Convey("When insights come back with a single suggestion", func() {
			client.text = `{"summary":"Sparse.","suggestions":["Run speed networking."]}`
			in := g.GraphInsights(ctx, 10, 2, nil)

			Convey("Then the list is padded from the defaults", func() {
				So(len(in.Suggestions), ShouldEqual, 3)
				So(in.Suggestions[0], ShouldEqual, "Run speed networking.")
				So(in.Suggestions[1], ShouldEqual, "Host a 'Founders & Funders' mixer to bridge the gap.")
			})
		})

		Convey("When insights miss the summary or suggestions", func() {
			Convey("Then the fallback is returned", func() {
				client.text = `{"suggestions":["a"]}`
				So(g.GraphInsights(ctx, 1, 1, nil), ShouldResemble, advisor.FallbackInsights(nil))
				client.text = `{"summary":"ok","suggestions":[]}`
				So(g.GraphInsights(ctx, 1, 1, nil), ShouldResemble, advisor.FallbackInsights(nil))
			})
		})
	})
}
