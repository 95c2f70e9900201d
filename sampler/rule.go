package sampler

import (
	"vmc/rng"
	"vmc/space"
)

// Parameters are the machine's variational parameters. The sampler threads
// them through to the machine untouched.
type Parameters = any

// Machine evaluates the log-amplitude of each configuration in a batch,
// returning one complex value per chain. The sampled distribution is
// |machine|^machinePow, so only the real part of the log-amplitude enters
// the acceptance ratio.
type Machine func(params Parameters, configs space.Batch) []complex128

// Rule generates the Markov-chain transitions of a Metropolis sampler.
// All methods are pure functions of their inputs: rule state is built by
// Init, replaced by Reset, and never mutated in place.
type Rule interface {
	// Init builds the rule's private state before sampling starts.
	Init(s *Metropolis, machine Machine, params Parameters, key rng.Key) (any, error)

	// Reset recomputes the rule state when the chain restarts, e.g. after a
	// parameter update. It may read the sampler state but must not modify it.
	Reset(s *Metropolis, machine Machine, params Parameters, state State) (any, error)

	// Propose generates one batched proposal per chain from configs. The
	// returned slice is the per-chain additive log-correction to the
	// Metropolis ratio, or nil when the proposal density is symmetric.
	Propose(s *Metropolis, machine Machine, params Parameters, state State, key rng.Key, configs space.Batch) (space.Batch, []float64, error)

	// RandomState draws a legal configuration batch independent of the
	// chain's history, used on reset.
	RandomState(s *Metropolis, machine Machine, params Parameters, state State, key rng.Key) (space.Batch, error)
}

// defaultRule carries the rule defaults: no private state and uniform
// restarts from the configuration space.
type defaultRule struct{}

func (defaultRule) Init(*Metropolis, Machine, Parameters, rng.Key) (any, error) {
	return nil, nil
}

func (defaultRule) Reset(s *Metropolis, machine Machine, params Parameters, state State) (any, error) {
	return state.RuleState, nil
}

func (defaultRule) RandomState(s *Metropolis, machine Machine, params Parameters, state State, key rng.Key) (space.Batch, error) {
	return s.space.RandomState(key, s.chains), nil
}
