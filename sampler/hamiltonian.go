package sampler

import (
	"fmt"
	"math"

	"vmc/operator"
	"vmc/rng"
	"vmc/space"
)

// Hamiltonian proposes uniformly among the configurations connected to the
// current one by a nonzero off-diagonal element of an operator. The proposal
// density T(σ→σ') = 1/N(σ) is not symmetric, so Propose returns the
// correction log N(σ) - log N(σ') that restores detailed balance.
type Hamiltonian struct {
	defaultRule
	op operator.Operator
}

func NewHamiltonian(op operator.Operator) (*Hamiltonian, error) {
	if op == nil {
		return nil, fmt.Errorf("sampler: hamiltonian rule requires an operator")
	}
	return &Hamiltonian{op: op}, nil
}

func (h *Hamiltonian) Propose(_ *Metropolis, _ Machine, _ Parameters, _ State, key rng.Key, configs space.Batch) (space.Batch, []float64, error) {
	chains := configs.Chains()
	proposed := configs.Clone()
	correction := make([]float64, chains)

	keys := key.Split(chains)
	for c := 0; c < chains; c++ {
		current := configs.Row(c)
		connected, _ := h.op.Conn(current)
		if len(connected) == 0 {
			// isolated configuration: the only move is staying put
			continue
		}
		next := connected[keys[c].Intn(len(connected))]
		proposed.SetRow(c, next)

		back, _ := h.op.Conn(next)
		if len(back) == 0 {
			// the reverse move has zero density; force rejection
			correction[c] = math.Inf(-1)
			continue
		}
		correction[c] = math.Log(float64(len(connected))) - math.Log(float64(len(back)))
	}
	return proposed, correction, nil
}
