package sampler

import (
	"fmt"
	"math"

	"vmc/rng"
	"vmc/space"
)

// Metropolis is a Metropolis-Hastings sampler drawing configuration batches
// from |machine|^machinePow. Moves are generated by a transition rule and
// accepted or rejected chain-by-chain in log-space. The sampler itself is
// immutable after construction and reusable across parameter updates; all
// per-run data lives in State values.
type Metropolis struct {
	space      space.Space
	rule       Rule
	chains     int
	sweeps     int
	machinePow float64
}

type Option func(*Metropolis)

// WithChains sets the number of Markov chains run in lock-step (default 8).
func WithChains(chains int) Option {
	return func(m *Metropolis) {
		m.chains = chains
	}
}

// WithSweeps sets the number of proposal rounds per sampling step. Defaults
// to the number of sites, so one step touches every degree of freedom once
// on expectation.
func WithSweeps(sweeps int) Option {
	return func(m *Metropolis) {
		m.sweeps = sweeps
	}
}

// WithMachinePow sets the exponent p of the sampled density |machine|^p
// (default 2).
func WithMachinePow(p float64) Option {
	return func(m *Metropolis) {
		m.machinePow = p
	}
}

func NewMetropolis(hs space.Space, rule Rule, options ...Option) (*Metropolis, error) {
	if hs == nil {
		return nil, fmt.Errorf("sampler: configuration space is required")
	}
	if rule == nil {
		return nil, fmt.Errorf("sampler: transition rule is required")
	}
	m := &Metropolis{
		space:      hs,
		rule:       rule,
		chains:     8,
		machinePow: 2,
	}
	for _, option := range options {
		option(m)
	}
	if m.sweeps == 0 {
		m.sweeps = hs.Size()
	}
	if hs.Size() <= 0 {
		return nil, fmt.Errorf("sampler: configuration space has no sites")
	}
	if m.chains <= 0 {
		return nil, fmt.Errorf("sampler: chain count must be positive, got %d", m.chains)
	}
	if m.sweeps <= 0 {
		return nil, fmt.Errorf("sampler: sweep count must be positive, got %d", m.sweeps)
	}
	if m.machinePow <= 0 {
		return nil, fmt.Errorf("sampler: machine power must be positive, got %v", m.machinePow)
	}
	return m, nil
}

func (m *Metropolis) Space() space.Space  { return m.space }
func (m *Metropolis) Chains() int         { return m.chains }
func (m *Metropolis) Sweeps() int         { return m.sweeps }
func (m *Metropolis) MachinePow() float64 { return m.machinePow }

// Init builds the initial sampler state from a seed key: a zero-filled
// configuration batch, zeroed counters and freshly built rule state. The
// state is not ready for sampling until Reset has drawn real configurations.
func (m *Metropolis) Init(machine Machine, params Parameters, key rng.Key) (State, error) {
	keys := key.Split(2)
	ruleState, err := m.rule.Init(m, machine, params, keys[1])
	if err != nil {
		return State{}, fmt.Errorf("sampler: rule init: %w", err)
	}
	return State{
		Configs:   space.NewBatch(m.chains, m.space.Size()),
		Key:       keys[0],
		RuleState: ruleState,
	}, nil
}

// Reset re-seeds every chain with a history-independent configuration,
// recomputes the rule state and zeroes the move counters.
func (m *Metropolis) Reset(machine Machine, params Parameters, state State) (State, error) {
	keys := state.Key.Split(2)
	configs, err := m.rule.RandomState(m, machine, params, state, keys[1])
	if err != nil {
		return State{}, fmt.Errorf("sampler: rule random state: %w", err)
	}
	if configs.Chains() != m.chains || configs.Sites() != m.space.Size() {
		return State{}, fmt.Errorf("sampler: rule random state returned a %dx%d batch, want %dx%d",
			configs.Chains(), configs.Sites(), m.chains, m.space.Size())
	}
	ruleState, err := m.rule.Reset(m, machine, params, state)
	if err != nil {
		return State{}, fmt.Errorf("sampler: rule reset: %w", err)
	}
	return State{
		Configs:   configs,
		Key:       keys[0],
		RuleState: ruleState,
	}, nil
}

// SampleNext advances the chain batch by one sampling step of m.sweeps
// proposal rounds and returns the new state together with its configuration
// batch. Errors are surfaced before any externally visible state changes;
// the passed-in state is never modified.
func (m *Metropolis) SampleNext(machine Machine, params Parameters, state State) (State, space.Batch, error) {
	keys := state.Key.Split(2)
	nextKey, key := keys[0], keys[1]

	configs := state.Configs.Clone()
	logProb, err := m.logProb(machine, params, configs)
	if err != nil {
		return State{}, space.Batch{}, err
	}

	accepted := state.Accepted
	for i := 0; i < m.sweeps; i++ {
		ks := key.Split(3)
		key = ks[0]

		proposed, correction, err := m.rule.Propose(m, machine, params, state, ks[1], configs)
		if err != nil {
			return State{}, space.Batch{}, fmt.Errorf("sampler: rule propose: %w", err)
		}
		if correction != nil && len(correction) != m.chains {
			return State{}, space.Batch{}, fmt.Errorf("sampler: rule returned %d corrections for %d chains",
				len(correction), m.chains)
		}
		propLogProb, err := m.logProb(machine, params, proposed)
		if err != nil {
			return State{}, space.Batch{}, err
		}

		uniform := ks[2].Float64s(m.chains)
		for c := 0; c < m.chains; c++ {
			delta := propLogProb[c] - logProb[c]
			if correction != nil {
				delta += correction[c]
			}
			// A NaN ratio rejects, always. -Inf rejects through exp()=0.
			// This is deliberate: non-finite log-weights must never let a
			// move through, and the comparison below would accept nothing
			// here only by accident of IEEE semantics.
			if math.IsNaN(delta) {
				continue
			}
			if uniform[c] < math.Exp(delta) {
				configs.CopyRowFrom(proposed, c)
				logProb[c] = propLogProb[c]
				accepted++
			}
		}
	}

	newState := State{
		Configs:   configs,
		Key:       nextKey,
		RuleState: state.RuleState,
		Attempted: state.Attempted + m.sweeps*m.chains,
		Accepted:  accepted,
	}
	return newState, newState.Configs, nil
}

// Sample resets the chains and then draws `steps` batches in sequence,
// returning the final state and the stacked batches.
func (m *Metropolis) Sample(machine Machine, params Parameters, state State, steps int) (State, []space.Batch, error) {
	if steps <= 0 {
		return State{}, nil, fmt.Errorf("sampler: step count must be positive, got %d", steps)
	}
	state, err := m.Reset(machine, params, state)
	if err != nil {
		return State{}, nil, err
	}
	batches := make([]space.Batch, 0, steps)
	for i := 0; i < steps; i++ {
		var batch space.Batch
		state, batch, err = m.SampleNext(machine, params, state)
		if err != nil {
			return State{}, nil, err
		}
		batches = append(batches, batch)
	}
	return state, batches, nil
}

// logProb evaluates machinePow * Re(log machine) per chain, validating the
// machine's output shape before it can influence any sweep.
func (m *Metropolis) logProb(machine Machine, params Parameters, configs space.Batch) ([]float64, error) {
	logVals := machine(params, configs)
	if len(logVals) != configs.Chains() {
		return nil, fmt.Errorf("sampler: machine returned %d log-weights for %d chains",
			len(logVals), configs.Chains())
	}
	out := make([]float64, len(logVals))
	for i, lv := range logVals {
		out[i] = m.machinePow * real(lv)
	}
	return out, nil
}
