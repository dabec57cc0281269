package optics

import "math/rand/v2"

// randSource is the interface the record path needs from a random
// number generator: a uniform index draw for reservoir sampling and a
// Bernoulli trial for the quantile estimator. The default implementation
// is backed by math/rand/v2's global source, which is safe for
// concurrent use without a lock, unlike math/rand's pre-v2 default.
type randSource interface {
	// IntN returns a uniform value in [0, n). n is always > 0.
	IntN(n int) int
	// Prob returns true with probability p, p in (0,1).
	Prob(p float64) bool
}

type defaultRand struct{}

func (defaultRand) IntN(n int) int      { return rand.IntN(n) }
func (defaultRand) Prob(p float64) bool { return rand.Float64() < p }
