package model

import (
	"errors"
	"fmt"
)

// ErrUnknownValue is returned when decoding a string outside a closed set.
var ErrUnknownValue = errors.New("unknown enum value")

// Role is the attendee's role at the event.
type Role int

// Roles in their fixed order. The order defines ClusterID.
const (
	RoleFounder Role = iota
	RoleInvestor
	RoleHiringManager
	RoleOperator
	RoleMedia
)

// Roles lists every role in cluster order.
var Roles = []Role{RoleFounder, RoleInvestor, RoleHiringManager, RoleOperator, RoleMedia}

func (r Role) String() string {
	switch r {
	case RoleFounder:
		return "Founder"
	case RoleInvestor:
		return "Investor"
	case RoleHiringManager:
		return "Hiring Manager"
	case RoleOperator:
		return "Operator"
	case RoleMedia:
		return "Media"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// ClusterID is the visual grouping key for the role.
func (r Role) ClusterID() int { return int(r) }

// Valid reports whether r is one of Roles.
func (r Role) Valid() bool { return r >= RoleFounder && r <= RoleMedia }

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("role %d: %w", int(r), ErrUnknownValue)
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// ParseRole maps a display string to a Role.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("role %q: %w", s, ErrUnknownValue)
}

// Status is a lifecycle stage. Stages are ordered; a match only moves forward.
type Status int

// Lifecycle stages in order.
const (
	StatusSuggested Status = iota
	StatusAccepted
	StatusScheduled
	StatusHeld
	StatusOutcomeLogged
)

// Statuses lists every stage in lifecycle order.
var Statuses = []Status{StatusSuggested, StatusAccepted, StatusScheduled, StatusHeld, StatusOutcomeLogged}

func (s Status) String() string {
	switch s {
	case StatusSuggested:
		return "Suggested"
	case StatusAccepted:
		return "Accepted"
	case StatusScheduled:
		return "Scheduled"
	case StatusHeld:
		return "Held"
	case StatusOutcomeLogged:
		return "Outcome Logged"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Index is the stage position in Statuses.
func (s Status) Index() int { return int(s) }

// Valid reports whether s is one of Statuses.
func (s Status) Valid() bool { return s >= StatusSuggested && s <= StatusOutcomeLogged }

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("status %d: %w", int(s), ErrUnknownValue)
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStatus maps a display string to a Status.
func ParseStatus(str string) (Status, error) {
	for _, s := range Statuses {
		if s.String() == str {
			return s, nil
		}
	}
	return 0, fmt.Errorf("status %q: %w", str, ErrUnknownValue)
}

// OutcomeType classifies what a held meeting produced.
type OutcomeType int

const (
	OutcomePartnership OutcomeType = iota
	OutcomeInvestment
	OutcomeHire
	OutcomePilot
	OutcomeAdvisory
	OutcomeOther
)

// OutcomeTypes lists every outcome type.
var OutcomeTypes = []OutcomeType{OutcomePartnership, OutcomeInvestment, OutcomeHire, OutcomePilot, OutcomeAdvisory, OutcomeOther}

func (t OutcomeType) String() string {
	switch t {
	case OutcomePartnership:
		return "Partnership"
	case OutcomeInvestment:
		return "Investment"
	case OutcomeHire:
		return "Hire"
	case OutcomePilot:
		return "Pilot"
	case OutcomeAdvisory:
		return "Advisory"
	case OutcomeOther:
		return "Other"
	default:
		return fmt.Sprintf("OutcomeType(%d)", int(t))
	}
}

// Valid reports whether t is one of OutcomeTypes.
func (t OutcomeType) Valid() bool { return t >= OutcomePartnership && t <= OutcomeOther }

// MarshalText implements encoding.TextMarshaler.
func (t OutcomeType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("outcome type %d: %w", int(t), ErrUnknownValue)
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *OutcomeType) UnmarshalText(b []byte) error {
	v, err := ParseOutcomeType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseOutcomeType maps a display string to an OutcomeType.
func ParseOutcomeType(s string) (OutcomeType, error) {
	for _, t := range OutcomeTypes {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("outcome type %q: %w", s, ErrUnknownValue)
}

// Sentiment is the tone recorded for an outcome.
type Sentiment int

const (
	SentimentPositive Sentiment = iota
	SentimentNeutral
	SentimentNegative
)

// Sentiments lists every sentiment.
var Sentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

func (s Sentiment) String() string {
	switch s {
	case SentimentPositive:
		return "Positive"
	case SentimentNeutral:
		return "Neutral"
	case SentimentNegative:
		return "Negative"
	default:
		return fmt.Sprintf("Sentiment(%d)", int(s))
	}
}

// Valid reports whether s is one of Sentiments.
func (s Sentiment) Valid() bool { return s >= SentimentPositive && s <= SentimentNegative }

// MarshalText implements encoding.TextMarshaler.
func (s Sentiment) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("sentiment %d: %w", int(s), ErrUnknownValue)
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Sentiment) UnmarshalText(b []byte) error {
	v, err := ParseSentiment(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSentiment maps a display string to a Sentiment.
func ParseSentiment(str string) (Sentiment, error) {
	for _, s := range Sentiments {
		if s.String() == str {
			return s, nil
		}
	}
	return 0, fmt.Errorf("sentiment %q: %w", str, ErrUnknownValue)
}

// TimelineEventType tags an entry in a match timeline.
type TimelineEventType int

const (
	EventStatusChange TimelineEventType = iota
	EventNote
	EventEmailSent
)

func (t TimelineEventType) String() string {
	switch t {
	case EventStatusChange:
		return "status_change"
	case EventNote:
		return "note"
	case EventEmailSent:
		return "email_sent"
	default:
		return fmt.Sprintf("TimelineEventType(%d)", int(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t TimelineEventType) MarshalText() ([]byte, error) {
	switch t {
	case EventStatusChange, EventNote, EventEmailSent:
		return []byte(t.String()), nil
	default:
		return nil, fmt.Errorf("timeline event type %d: %w", int(t), ErrUnknownValue)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TimelineEventType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "status_change":
		*t = EventStatusChange
	case "note":
		*t = EventNote
	case "email_sent":
		*t = EventEmailSent
	default:
		return fmt.Errorf("timeline event type %q: %w", string(b), ErrUnknownValue)
	}
	return nil
}
