// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrStatusRegression is returned when a match would move backwards or stay put.
var ErrStatusRegression = errors.New("status must move forward")

// Attendee is an event participant. Immutable after generation.
type Attendee struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Company   string `json:"company"`
	Role      Role   `json:"role"`
	Avatar    string `json:"avatar"`    // opaque image reference
	ClusterID int    `json:"clusterId"` // visual grouping key derived from Role
}

// FirstName returns the first token of Name.
func (a Attendee) FirstName() string {
	if f := strings.Fields(a.Name); len(f) > 0 {
		return f[0]
	}
	return a.Name
}

// TimelineEvent is one append-only entry of a match history.
type TimelineEvent struct {
	Date        time.Time         `json:"date"`
	Type        TimelineEventType `json:"type"`
	Description string            `json:"description"`
}

// Match is a directed introduction between two attendees.
type Match struct {
	ID              string          `json:"id"`
	SourceID        string          `json:"sourceId"`
	TargetID        string          `json:"targetId"`
	Status          Status          `json:"status"`
	LastActivity    time.Time       `json:"lastActivity"`
	ConfidenceScore int             `json:"confidenceScore"` // 0-100
	Notes           string          `json:"notes"`
	Timeline        []TimelineEvent `json:"timeline"`
	NextAction      string          `json:"nextAction,omitempty"`
}

// Advance moves the match to a later stage and records it on the timeline.
func (m *Match) Advance(to Status, at time.Time) error {
	if !to.Valid() {
		return fmt.Errorf("advance %s: %w", m.ID, ErrUnknownValue)
	}
	if to <= m.Status {
		return fmt.Errorf("advance %s from %s to %s: %w", m.ID, m.Status, to, ErrStatusRegression)
	}
	m.Status = to
	m.LastActivity = at
	m.Timeline = append(m.Timeline, StatusChange(to, at))
	return nil
}

// Clone returns a copy that shares no timeline storage with m.
func (m Match) Clone() Match {
	c := m
	c.Timeline = append([]TimelineEvent(nil), m.Timeline...)
	return c
}

// StatusChange builds the timeline entry recorded for a stage assignment.
func StatusChange(s Status, at time.Time) TimelineEvent {
	return TimelineEvent{
		Date:        at,
		Type:        EventStatusChange,
		Description: "Status updated to " + s.String(),
	}
}

// Outcome records what a held meeting produced.
type Outcome struct {
	ID           string      `json:"id"`
	MatchID      string      `json:"matchId"`
	Type         OutcomeType `json:"type"`
	Value        string      `json:"value,omitempty"` // e.g. "$50k - $100k"
	Notes        string      `json:"notes"`
	NextStepDate string      `json:"nextStepDate,omitempty"`
	Sentiment    Sentiment   `json:"sentiment"`
}

// Dataset is the full in-memory population for a session.
type Dataset struct {
	Attendees []Attendee `json:"attendees"`
	Matches   []Match    `json:"matches"`
	Outcomes  []Outcome  `json:"outcomes"`
}

// Attendee looks up an attendee by id.
func (d *Dataset) Attendee(id string) (Attendee, bool) {
	for _, a := range d.Attendees {
		if a.ID == id {
			return a, true
		}
	}
	return Attendee{}, false
}

// MatchIndex returns the position of the match with id, or -1.
func (d *Dataset) MatchIndex(id string) int {
	for i := range d.Matches {
		if d.Matches[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone deep-copies the dataset.
func (d Dataset) Clone() Dataset {
	c := Dataset{
		Attendees: append(make([]Attendee, 0, len(d.Attendees)), d.Attendees...),
		Matches:   make([]Match, len(d.Matches)),
		Outcomes:  append(make([]Outcome, 0, len(d.Outcomes)), d.Outcomes...),
	}
	for i, m := range d.Matches {
		c.Matches[i] = m.Clone()
	}
	return c
}
