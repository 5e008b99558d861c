// Package generator builds a synthetic, self-consistent event dataset:
// attendees, the introductions between them and the outcomes of the ones
// that made it to the end of the lifecycle.
package generator

import (
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/okian/matchboard/internal/domain/dedupe"
	"github.com/okian/matchboard/internal/domain/model"
)

// Candidate fan-out per attendee.
const (
	minCandidates = 3
	maxCandidates = 8
)

// Role skew.
const (
	investorShare = 0.3
	founderShare  = 0.4
)

// Stage thresholds over a single uniform draw. Later thresholds override earlier ones.
const (
	acceptedAbove      = 0.3
	scheduledAbove     = 0.5
	heldAbove          = 0.7
	outcomeLoggedAbove = 0.9
)

// Outcome synthesis.
const (
	investmentShare    = 0.5
	valuedOutcomeShare = 0.3
	outcomeValue       = "$50k - $100k"
	outcomeNotes       = "Promising discussion regarding seed round participation."
	outcomeNextStep    = "2024-06-01"
	matchNotes         = "Discussed initial synergy."
)

// Confidence score range, [minConfidence, minConfidence+confidenceSpan).
const (
	minConfidence  = 60
	confidenceSpan = 40
)

var (
	firstNames = []string{"Alex", "Jordan", "Taylor", "Morgan", "Casey", "Riley", "Jamie", "Avery", "Quinn", "Sam", "Dakota", "Reese"}
	lastNames  = []string{"Chen", "Smith", "Gupta", "Rivera", "Kim", "Patel", "Wu", "Johnson", "Davis", "Rodriguez", "Martinez"}
	companies  = []string{"Acme AI", "Nebula", "Vertex", "Horizon", "BlueChip", "Elevate", "Synthetix", "Orbit", "Flow", "Spark"}
)

// Generate produces count attendees plus their matches and outcomes.
// Every match references attendees of the same dataset, never pairs an
// attendee with itself, and no unordered pair appears twice. Every outcome
// references the id of the Outcome Logged match it was created with.
func Generate(count int, opts ...Option) model.Dataset {
	g := newGenerator(opts...)

	ds := model.Dataset{
		Attendees: []model.Attendee{},
		Matches:   []model.Match{},
		Outcomes:  []model.Outcome{},
	}
	if count <= 0 {
		return ds
	}

	ds.Attendees = make([]model.Attendee, count)
	for i := range ds.Attendees {
		ds.Attendees[i] = g.attendee(i)
	}

	pairs := g.pairs
	if pairs == nil {
		pairs = dedupe.NewPairDeduper(dedupe.WithExpectedPairs(count * maxCandidates))
	}

	for i := range ds.Attendees {
		source := ds.Attendees[i]
		n := minCandidates + g.rng.IntN(maxCandidates-minCandidates+1)
		for j := 0; j < n; j++ {
			target := ds.Attendees[g.rng.IntN(count)]
			if source.ID == target.ID {
				continue
			}
			if pairs.SeenAndRecord(source.ID, target.ID) {
				continue
			}

			m := g.match(len(ds.Matches), source.ID, target.ID)
			if m.Status == model.StatusOutcomeLogged {
				ds.Outcomes = append(ds.Outcomes, g.outcome(len(ds.Outcomes), m.ID))
			}
			ds.Matches = append(ds.Matches, m)
		}
	}

	return ds
}

type generator struct {
	rng    *rand.Rand
	now    func() time.Time
	window time.Duration
	pairs  dedupe.Deduper
}

func newGenerator(opts ...Option) *generator {
	g := &generator{
		now:    time.Now,
		window: DefaultActivityWindow,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // synthetic data only
	}
	return g
}

func (g *generator) attendee(i int) model.Attendee {
	role := g.role()
	return model.Attendee{
		ID:        "att-" + strconv.Itoa(i),
		Name:      pick(g.rng, firstNames) + " " + pick(g.rng, lastNames),
		Company:   pick(g.rng, companies),
		Role:      role,
		Avatar:    "https://picsum.photos/seed/" + strconv.Itoa(i) + "/64/64",
		ClusterID: role.ClusterID(),
	}
}

// role skews towards investors and founders. The uniform fallback may pick
// either again.
func (g *generator) role() model.Role {
	if g.rng.Float64() < investorShare {
		return model.RoleInvestor
	}
	if g.rng.Float64() < founderShare {
		return model.RoleFounder
	}
	return pick(g.rng, model.Roles)
}

// stage maps u in [0,1) onto the lifecycle: ~30/20/20/20/10 percent.
func stage(u float64) model.Status {
	s := model.StatusSuggested
	if u > acceptedAbove {
		s = model.StatusAccepted
	}
	if u > scheduledAbove {
		s = model.StatusScheduled
	}
	if u > heldAbove {
		s = model.StatusHeld
	}
	if u > outcomeLoggedAbove {
		s = model.StatusOutcomeLogged
	}
	return s
}

func (g *generator) match(n int, sourceID, targetID string) model.Match {
	status := stage(g.rng.Float64())
	now := g.now()

	notes := ""
	if status != model.StatusSuggested {
		notes = matchNotes
	}

	return model.Match{
		ID:              "match-" + strconv.Itoa(n),
		SourceID:        sourceID,
		TargetID:        targetID,
		Status:          status,
		LastActivity:    now.Add(-g.activityOffset()),
		ConfidenceScore: minConfidence + g.rng.IntN(confidenceSpan),
		Notes:           notes,
		Timeline:        []model.TimelineEvent{model.StatusChange(status, now)},
	}
}

func (g *generator) activityOffset() time.Duration {
	ms := g.window.Milliseconds()
	if ms <= 0 {
		return 0
	}
	return time.Duration(g.rng.Int64N(ms+1)) * time.Millisecond
}

func (g *generator) outcome(n int, matchID string) model.Outcome {
	typ := model.OutcomePartnership
	if g.rng.Float64() < investmentShare {
		typ = model.OutcomeInvestment
	}
	value := ""
	if g.rng.Float64() < valuedOutcomeShare {
		value = outcomeValue
	}
	return model.Outcome{
		ID:           "out-" + strconv.Itoa(n),
		MatchID:      matchID,
		Type:         typ,
		Value:        value,
		Notes:        outcomeNotes,
		NextStepDate: outcomeNextStep,
		Sentiment:    model.SentimentPositive,
	}
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}
