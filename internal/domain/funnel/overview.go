package funnel

import (
	"math"

	"github.com/okian/matchboard/internal/domain/model"
)

// pipelineValuePerOutcomeK is the rough deal value credited per logged outcome, in $k.
const pipelineValuePerOutcomeK = 50

// KPIs are the headline numbers of the overview page.
type KPIs struct {
	TotalAttendees   int     `json:"totalAttendees"`
	IntrosMade       int     `json:"introsMade"`
	IntrosPerPerson  float64 `json:"introsPerPerson"`
	MeetingsHeld     int     `json:"meetingsHeld"`
	PipelineValueK   int     `json:"pipelineValueK"`
	OutcomesRecorded int     `json:"outcomesRecorded"`
}

// Overview derives the headline KPIs. Meetings held counts every match that
// reached Held, including those with an outcome logged.
func Overview(attendees int, matches []model.Match, outcomes []model.Outcome) KPIs {
	k := KPIs{
		TotalAttendees:   attendees,
		IntrosMade:       len(matches),
		OutcomesRecorded: len(outcomes),
		PipelineValueK:   len(outcomes) * pipelineValuePerOutcomeK,
	}
	for i := range matches {
		if matches[i].Status >= model.StatusHeld {
			k.MeetingsHeld++
		}
	}
	if attendees > 0 {
		k.IntrosPerPerson = math.Round(float64(len(matches))/float64(attendees)*10) / 10
	}
	return k
}
