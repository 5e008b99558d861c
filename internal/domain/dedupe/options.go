package dedupe

type options struct {
	expected int
}

// Option configures a pair deduper.
type Option func(*options)

// WithExpectedPairs pre-sizes the set for roughly n pairs.
func WithExpectedPairs(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.expected = n
		}
	}
}
