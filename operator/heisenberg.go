package operator

import "vmc/graph"

// Heisenberg is the spin-1/2 Heisenberg exchange model on a lattice. Its
// off-diagonal part swaps anti-aligned spins across an edge, so the number
// of connected configurations depends on the configuration itself.
type Heisenberg struct {
	edges [][2]int
	j     float64
}

func NewHeisenberg(l *graph.Lattice, j float64) *Heisenberg {
	if j == 0 {
		panic("operator: heisenberg coupling must be nonzero")
	}
	return &Heisenberg{edges: l.Edges(), j: j}
}

func (op *Heisenberg) Conn(config []float64) ([][]float64, []complex128) {
	var states [][]float64
	var mels []complex128
	for _, e := range op.edges {
		i, j := e[0], e[1]
		if config[i] == config[j] {
			continue
		}
		swapped := make([]float64, len(config))
		copy(swapped, config)
		swapped[i], swapped[j] = config[j], config[i]
		states = append(states, swapped)
		mels = append(mels, complex(2*op.j, 0))
	}
	return states, mels
}
