package sampler

import (
	"fmt"

	"vmc/graph"
	"vmc/rng"
	"vmc/space"
)

// Exchange swaps the values of one uniformly chosen site pair per chain,
// with the pairs drawn from a cluster table of sites within a maximum graph
// distance of each other. The proposal is symmetric and conserves every
// quantity that is a sum over sites, e.g. total magnetization, so it is only
// ergodic within the fixed-sum sector the chains start in.
type Exchange struct {
	defaultRule
	clusters [][2]int
}

type ExchangeOption func(*exchangeConfig)

type exchangeConfig struct {
	clusters [][2]int
	lattice  *graph.Lattice
	dMax     int
}

// WithClusters supplies the site pairs to exchange explicitly.
func WithClusters(clusters [][2]int) ExchangeOption {
	return func(cfg *exchangeConfig) {
		cfg.clusters = clusters
	}
}

// WithGraph derives the cluster table from a lattice, pairing every two
// sites within graph distance dMax.
func WithGraph(l *graph.Lattice, dMax int) ExchangeOption {
	return func(cfg *exchangeConfig) {
		cfg.lattice = l
		cfg.dMax = dMax
	}
}

func NewExchange(options ...ExchangeOption) (*Exchange, error) {
	cfg := exchangeConfig{dMax: 1}
	for _, option := range options {
		option(&cfg)
	}
	if cfg.clusters != nil && cfg.lattice != nil {
		return nil, fmt.Errorf("sampler: exchange takes either a cluster table or a graph, not both")
	}
	if cfg.clusters == nil && cfg.lattice == nil {
		return nil, fmt.Errorf("sampler: exchange requires a cluster table or a graph")
	}

	clusters := cfg.clusters
	if cfg.lattice != nil {
		clusters = ComputeClusters(cfg.lattice, cfg.dMax)
	}
	if len(clusters) == 0 {
		return nil, fmt.Errorf("sampler: exchange cluster table is empty")
	}

	table := make([][2]int, len(clusters))
	for i, pair := range clusters {
		if pair[0] == pair[1] {
			return nil, fmt.Errorf("sampler: exchange cluster (%d,%d) pairs a site with itself", pair[0], pair[1])
		}
		if pair[0] > pair[1] {
			pair[0], pair[1] = pair[1], pair[0]
		}
		table[i] = pair
	}
	return &Exchange{clusters: table}, nil
}

// ComputeClusters lists the unordered site pairs (i,j), i<j, within graph
// distance dMax of each other.
func ComputeClusters(l *graph.Lattice, dMax int) [][2]int {
	distances := l.Distances()
	var clusters [][2]int
	for i := 0; i < l.Size(); i++ {
		for j := i + 1; j < l.Size(); j++ {
			if d := distances[i][j]; d >= 0 && d <= dMax {
				clusters = append(clusters, [2]int{i, j})
			}
		}
	}
	return clusters
}

// Clusters returns a copy of the cluster table.
func (e *Exchange) Clusters() [][2]int {
	table := make([][2]int, len(e.clusters))
	copy(table, e.clusters)
	return table
}

func (e *Exchange) Propose(_ *Metropolis, _ Machine, _ Parameters, _ State, key rng.Key, configs space.Batch) (space.Batch, []float64, error) {
	picks := key.Intns(configs.Chains(), len(e.clusters))
	proposed := configs.Clone()
	for c := 0; c < configs.Chains(); c++ {
		pair := e.clusters[picks[c]]
		vi, vj := configs.At(c, pair[0]), configs.At(c, pair[1])
		proposed.Set(c, pair[0], vj)
		proposed.Set(c, pair[1], vi)
	}
	return proposed, nil, nil
}
