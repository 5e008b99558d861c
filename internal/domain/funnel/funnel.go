// Package funnel computes lifecycle funnel counts, stage-to-stage conversion
// rates and the primary drop-off point over a set of matches.
//
// All functions are pure: they never mutate their input and are safe to call
// concurrently.
package funnel

import (
	"fmt"
	"math"

	"github.com/okian/matchboard/internal/domain/model"
)

const percent = 100

// Stage labels for the five funnel counts.
var StageLabels = [5]string{"Suggested", "Accepted", "Scheduled", "Meetings", "Outcomes"}

// Bottleneck names the transition with the largest drop-off.
type Bottleneck int

const (
	BottleneckNone Bottleneck = iota
	BottleneckAcceptance
	BottleneckScheduling
	BottleneckConversion
)

func (b Bottleneck) String() string {
	switch b {
	case BottleneckNone:
		return "None"
	case BottleneckAcceptance:
		return "Acceptance"
	case BottleneckScheduling:
		return "Scheduling"
	case BottleneckConversion:
		return "Conversion"
	default:
		return fmt.Sprintf("Bottleneck(%d)", int(b))
	}
}

// Description explains the drop-off to an organizer.
func (b Bottleneck) Description() string {
	switch b {
	case BottleneckAcceptance:
		return "Users are seeing intros but not accepting."
	case BottleneckScheduling:
		return "Intros accepted but meetings not booked."
	case BottleneckConversion:
		return "Meetings happening but outcomes not tracked."
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (b Bottleneck) MarshalText() ([]byte, error) {
	switch b {
	case BottleneckNone, BottleneckAcceptance, BottleneckScheduling, BottleneckConversion:
		return []byte(b.String()), nil
	default:
		return nil, fmt.Errorf("bottleneck %d: %w", int(b), model.ErrUnknownValue)
	}
}

// Rates holds the three conversion percentages.
type Rates struct {
	Connect int `json:"connectRate"` // Accepted / Suggested
	Meeting int `json:"meetingRate"` // Held / Accepted
	Success int `json:"successRate"` // Outcome Logged / Held
}

// Report is the analyzer output.
type Report struct {
	Counts     [5]int     `json:"funnelCounts"`
	Rates      Rates      `json:"conversionRates"`
	Bottleneck Bottleneck `json:"bottleneck"`
}

// Analyze computes the funnel over matches. Status is a snapshot, so the
// count for stage k is the number of matches at stage k or beyond.
func Analyze(matches []model.Match) Report {
	var r Report
	for i := range matches {
		idx := matches[i].Status.Index()
		for k := 0; k <= idx && k < len(r.Counts); k++ {
			r.Counts[k]++
		}
	}

	c := r.Counts
	r.Rates = Rates{
		Connect: rate(c[model.StatusAccepted], c[model.StatusSuggested]),
		Meeting: rate(c[model.StatusHeld], c[model.StatusAccepted]),
		Success: rate(c[model.StatusOutcomeLogged], c[model.StatusHeld]),
	}
	r.Bottleneck = bottleneck(r.Rates, c)
	return r
}

// rate is round(100*num/den), or 0 for an empty denominator.
func rate(num, den int) int {
	if den == 0 {
		return 0
	}
	return int(math.Round(percent * float64(num) / float64(den)))
}

// bottleneck keeps the strictly greatest drop, scanning in lifecycle order so
// the earliest stage wins ties. A transition with nobody entering it has no
// drop-off.
func bottleneck(r Rates, c [5]int) Bottleneck {
	best, drop := BottleneckNone, 0
	for _, s := range []struct {
		b       Bottleneck
		rate    int
		entered int
	}{
		{BottleneckAcceptance, r.Connect, c[model.StatusSuggested]},
		{BottleneckScheduling, r.Meeting, c[model.StatusAccepted]},
		{BottleneckConversion, r.Success, c[model.StatusHeld]},
	} {
		if s.entered == 0 {
			continue
		}
		if d := percent - s.rate; d > drop {
			best, drop = s.b, d
		}
	}
	return best
}
