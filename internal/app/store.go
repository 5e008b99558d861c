package service

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/matchboard/internal/domain/model"
)

// Store holds the current dataset in process memory. Reads hand out copies.
type Store struct {
	mu        sync.RWMutex
	ds        model.Dataset
	matches   map[string]int
	attendees map[string]int
	version   uint64
	updatedAt time.Time
}

// NewStore returns a store holding ds.
func NewStore(ds model.Dataset) *Store {
	s := &Store{}
	s.Replace(ds, time.Now())
	return s
}

// Replace swaps in a new dataset and returns the new version.
func (s *Store) Replace(ds model.Dataset, at time.Time) uint64 {
	matches := make(map[string]int, len(ds.Matches))
	for i, m := range ds.Matches {
		matches[m.ID] = i
	}
	attendees := make(map[string]int, len(ds.Attendees))
	for i, a := range ds.Attendees {
		attendees[a.ID] = i
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = ds
	s.matches = matches
	s.attendees = attendees
	s.version++
	s.updatedAt = at
	return s.version
}

// Snapshot returns a deep copy of the dataset.
func (s *Store) Snapshot() model.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds.Clone()
}

// View runs fn under the read lock without copying. fn must not retain or
// mutate the dataset.
func (s *Store) View(fn func(ds *model.Dataset)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.ds)
}

// Match returns a copy of the match with id.
func (s *Store) Match(id string) (model.Match, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.matches[id]
	if !ok {
		return model.Match{}, false
	}
	return s.ds.Matches[i].Clone(), true
}

// Attendee returns the attendee with id.
func (s *Store) Attendee(id string) (model.Attendee, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attendeeLocked(id)
}

func (s *Store) attendeeLocked(id string) (model.Attendee, bool) {
	i, ok := s.attendees[id]
	if !ok {
		return model.Attendee{}, false
	}
	return s.ds.Attendees[i], true
}

// Advance moves a match forward and returns the updated copy.
func (s *Store) Advance(id string, to model.Status, at time.Time) (model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.matches[id]
	if !ok {
		return model.Match{}, fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	if err := s.ds.Matches[i].Advance(to, at); err != nil {
		return model.Match{}, fmt.Errorf("match %s: %w", id, err)
	}
	s.version++
	s.updatedAt = at
	return s.ds.Matches[i].Clone(), nil
}

// LogOutcome moves a match to Outcome Logged and records o against it. The
// outcome id is assigned here.
func (s *Store) LogOutcome(id string, o model.Outcome, at time.Time) (model.Match, model.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.matches[id]
	if !ok {
		return model.Match{}, model.Outcome{}, fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	if err := s.ds.Matches[i].Advance(model.StatusOutcomeLogged, at); err != nil {
		return model.Match{}, model.Outcome{}, fmt.Errorf("match %s: %w", id, err)
	}

	o.ID = "out-" + strconv.Itoa(len(s.ds.Outcomes))
	o.MatchID = id
	s.ds.Outcomes = append(s.ds.Outcomes, o)
	s.version++
	s.updatedAt = at
	return s.ds.Matches[i].Clone(), o, nil
}

// Version increments on every change.
func (s *Store) Version() (uint64, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version, s.updatedAt
}
