package sampler

import (
	"fmt"
	"math"

	"vmc/rng"
	"vmc/space"
)

// State is the full state of a Metropolis chain batch. It is a value:
// every sampler operation returns a new State and never writes to the one
// it was given, so states can be held, compared and replayed freely.
type State struct {
	// Configs is the current batch of configurations, one row per chain.
	Configs space.Batch
	// Key is the running random stream; consumed and replaced at each step.
	Key rng.Key
	// RuleState is the transition rule's private state, owned by this value.
	RuleState any
	// Attempted counts proposed moves since the last reset.
	Attempted int
	// Accepted counts accepted moves since the last reset.
	Accepted int
}

// AcceptanceRate is Accepted/Attempted, or NaN before any move is attempted.
func (s State) AcceptanceRate() float64 {
	if s.Attempted == 0 {
		return math.NaN()
	}
	return float64(s.Accepted) / float64(s.Attempted)
}

func (s State) String() string {
	return fmt.Sprintf("sampler.State(accepted %d/%d, %.1f%%)",
		s.Accepted, s.Attempted, 100*s.AcceptanceRate())
}
