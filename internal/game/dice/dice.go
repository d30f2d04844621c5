// Package dice provides the randomness abstraction used by the enemy AI and
// by skills with randomized timing.
package dice

// Source is the randomness provider for the combat core.
//
// Implementations used across goroutines MUST be safe for concurrent use; the
// match tick itself only calls from one goroutine.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0, 1).
	Float64() float64
}

// Between returns a uniform value in [lo, hi) drawn from src.
//
// Precondition: lo <= hi.
func Between(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}
