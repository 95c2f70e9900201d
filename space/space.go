package space

import (
	"math"

	"vmc/rng"
)

// Space is a configuration space of fixed-length vectors over a finite
// alphabet of local values. Enumeration (NumStates/State) is only meant for
// small spaces, e.g. exact checks in tests.
type Space interface {
	Size() int
	LocalValues() []float64
	RandomState(key rng.Key, chains int) Batch
	NumStates() int
	State(index int) []float64
}

// Discrete is a space whose sites all share the same local alphabet.
type Discrete struct {
	sites  int
	values []float64
}

// NewDiscrete builds a space of `sites`-long vectors over the given values.
func NewDiscrete(values []float64, sites int) Discrete {
	if sites <= 0 {
		panic("space: need at least one site")
	}
	if len(values) < 2 {
		panic("space: need at least two local values")
	}
	vs := make([]float64, len(values))
	copy(vs, values)
	return Discrete{sites: sites, values: vs}
}

// NewSpin is the space of spin-1/2 vectors over {-1,+1}.
func NewSpin(sites int) Discrete {
	return NewDiscrete([]float64{-1, 1}, sites)
}

// NewFock is the space of occupation-number vectors over {0..nMax}.
func NewFock(nMax, sites int) Discrete {
	values := make([]float64, nMax+1)
	for i := range values {
		values[i] = float64(i)
	}
	return NewDiscrete(values, sites)
}

func (d Discrete) Size() int { return d.sites }

func (d Discrete) LocalValues() []float64 {
	vs := make([]float64, len(d.values))
	copy(vs, d.values)
	return vs
}

// RandomState draws a batch of configurations uniformly over the space.
func (d Discrete) RandomState(key rng.Key, chains int) Batch {
	b := NewBatch(chains, d.sites)
	picks := key.Intns(chains*d.sites, len(d.values))
	for c := 0; c < chains; c++ {
		for s := 0; s < d.sites; s++ {
			b.Set(c, s, d.values[picks[c*d.sites+s]])
		}
	}
	return b
}

// NumStates is the total number of configurations, len(values)^sites.
// Overflows for large spaces; callers enumerate small spaces only.
func (d Discrete) NumStates() int {
	return int(math.Pow(float64(len(d.values)), float64(d.sites)))
}

// State decodes an enumeration index into a configuration, treating the
// index as a base-len(values) number with site 0 as the lowest digit.
func (d Discrete) State(index int) []float64 {
	if index < 0 || index >= d.NumStates() {
		panic("space: state index out of range")
	}
	config := make([]float64, d.sites)
	base := len(d.values)
	for s := 0; s < d.sites; s++ {
		config[s] = d.values[index%base]
		index /= base
	}
	return config
}

// Contains reports whether every site of the configuration holds a legal
// local value.
func (d Discrete) Contains(config []float64) bool {
	if len(config) != d.sites {
		return false
	}
	for _, v := range config {
		ok := false
		for _, lv := range d.values {
			if v == lv {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}
