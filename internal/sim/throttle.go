package sim

import "math/rand"

// ThrottlePolicy supplies the per-tick throttle scalar. The core treats
// throttle as an opaque input; the policy is injected by the host so runs
// stay reproducible.
type ThrottlePolicy interface {
	Throttle(tick int) float64
}

// FixedThrottle applies the same throttle every tick.
type FixedThrottle float64

// Throttle implements ThrottlePolicy.
func (f FixedThrottle) Throttle(int) float64 { return float64(f) }

// UniformThrottle draws each tick's throttle uniformly from [Min, Max) using
// an explicitly seeded source, so two policies built with the same seed
// produce identical runs.
type UniformThrottle struct {
	Min float64
	Max float64
	rng *rand.Rand
}

// NewUniformThrottle builds a seeded uniform throttle policy.
func NewUniformThrottle(min, max float64, seed int64) *UniformThrottle {
	return &UniformThrottle{Min: min, Max: max, rng: rand.New(rand.NewSource(seed))}
}

// Throttle implements ThrottlePolicy.
func (u *UniformThrottle) Throttle(int) float64 {
	return u.Min + u.rng.Float64()*(u.Max-u.Min)
}
