package advisor

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Slots tracks the latest in-flight call per logical slot, e.g. one pending
// nudge per match. Starting a call cancels the one it supersedes.
type Slots struct {
	mu       sync.Mutex
	inflight map[string]slot
}

type slot struct {
	token  string
	cancel context.CancelFunc
}

// NewSlots returns an empty slot table.
func NewSlots() *Slots {
	return &Slots{inflight: make(map[string]slot)}
}

// Begin claims key. The returned context is canceled when a later Begin
// supersedes this call or when Finish releases it.
func (s *Slots) Begin(ctx context.Context, key string) (context.Context, string) {
	callCtx, cancel := context.WithCancel(ctx)
	token := uuid.NewString()

	s.mu.Lock()
	prev, ok := s.inflight[key]
	s.inflight[key] = slot{token: token, cancel: cancel}
	s.mu.Unlock()

	if ok {
		prev.cancel()
	}
	return callCtx, token
}

// Current reports whether token still owns key.
func (s *Slots) Current(key, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.inflight[key]
	return ok && cur.token == token
}

// Finish releases key if token still owns it and reports whether it did.
func (s *Slots) Finish(key, token string) bool {
	s.mu.Lock()
	cur, ok := s.inflight[key]
	owned := ok && cur.token == token
	if owned {
		delete(s.inflight, key)
	}
	s.mu.Unlock()

	if owned {
		cur.cancel()
	}
	return owned
}

// Len is the number of calls in flight.
func (s *Slots) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}
