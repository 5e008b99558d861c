package verify

import (
	"fmt"

	"github.com/okian/matchboard/internal/domain/dedupe"
	"github.com/okian/matchboard/internal/domain/model"
)

// Confidence bounds of generated matches, [minConfidence, maxConfidence).
const (
	minConfidence = 60
	maxConfidence = 100
)

// Check validates dataset invariants. Violations break referential or
// lifecycle integrity; warnings flag states reachable through the API that
// generated data never contains.
func Check(ds model.Dataset) (violations, warnings []string) {
	violations = []string{}
	bad := func(format string, args ...any) {
		violations = append(violations, fmt.Sprintf(format, args...))
	}

	attendees := make(map[string]bool, len(ds.Attendees))
	for _, a := range ds.Attendees {
		if attendees[a.ID] {
			bad("attendee %s: duplicate id", a.ID)
		}
		attendees[a.ID] = true
		if !a.Role.Valid() {
			bad("attendee %s: invalid role", a.ID)
		} else if a.ClusterID != a.Role.ClusterID() {
			bad("attendee %s: cluster %d does not match role %s", a.ID, a.ClusterID, a.Role)
		}
	}

	pairs := dedupe.NewPairDeduper(dedupe.WithExpectedPairs(len(ds.Matches)))
	matches := make(map[string]model.Match, len(ds.Matches))
	for _, m := range ds.Matches {
		if _, dup := matches[m.ID]; dup {
			bad("match %s: duplicate id", m.ID)
		}
		matches[m.ID] = m

		if !attendees[m.SourceID] {
			bad("match %s: unknown source %s", m.ID, m.SourceID)
		}
		if !attendees[m.TargetID] {
			bad("match %s: unknown target %s", m.ID, m.TargetID)
		}
		if m.SourceID == m.TargetID {
			bad("match %s: pairs %s with itself", m.ID, m.SourceID)
		} else if pairs.SeenAndRecord(m.SourceID, m.TargetID) {
			bad("match %s: pair %s/%s already matched", m.ID, m.SourceID, m.TargetID)
		}
		if m.ConfidenceScore < minConfidence || m.ConfidenceScore >= maxConfidence {
			bad("match %s: confidence %d outside [%d, %d)", m.ID, m.ConfidenceScore, minConfidence, maxConfidence)
		}
		if !m.Status.Valid() {
			bad("match %s: invalid status", m.ID)
		}
		if len(m.Timeline) == 0 {
			bad("match %s: empty timeline", m.ID)
		}
	}

	linked := make(map[string]bool, len(ds.Outcomes))
	for _, o := range ds.Outcomes {
		m, ok := matches[o.MatchID]
		switch {
		case !ok:
			bad("outcome %s: unknown match %s", o.ID, o.MatchID)
		case m.Status != model.StatusOutcomeLogged:
			bad("outcome %s: match %s is %s", o.ID, o.MatchID, m.Status)
		}
		linked[o.MatchID] = true
	}
	for _, m := range ds.Matches {
		if m.Status == model.StatusOutcomeLogged && !linked[m.ID] {
			warnings = append(warnings, fmt.Sprintf("match %s: Outcome Logged without an outcome", m.ID))
		}
	}
	return violations, warnings
}
