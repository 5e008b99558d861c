package generator

import (
	"math/rand/v2"
	"time"

	"github.com/okian/matchboard/internal/domain/dedupe"
)

// DefaultActivityWindow bounds how far back a match's last activity may be.
const DefaultActivityWindow = 100_000_000 * time.Millisecond

// Option applies a configuration option to the generator.
type Option func(*generator)

// WithSeed makes the run reproducible.
func WithSeed(seed uint64) Option {
	return func(g *generator) {
		g.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // synthetic data only
	}
}

// WithRand uses the given random source.
func WithRand(rng *rand.Rand) Option {
	return func(g *generator) {
		if rng != nil {
			g.rng = rng
		}
	}
}

// WithClock sets the time source used for activity timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithActivityWindow sets the maximum age of a match's last activity.
func WithActivityWindow(d time.Duration) Option {
	return func(g *generator) {
		if d >= 0 {
			g.window = d
		}
	}
}

// WithDeduper shares a pair reservation set, e.g. across several generators
// filling one dataset.
func WithDeduper(d dedupe.Deduper) Option {
	return func(g *generator) {
		if d != nil {
			g.pairs = d
		}
	}
}
