package sampler

import (
	"vmc/rng"
	"vmc/space"
)

// Local resamples a single uniformly chosen site per chain, drawing the new
// value uniformly among the local values distinct from the current one.
// The proposal is symmetric, so no log-correction is returned.
type Local struct {
	defaultRule
}

func NewLocal() Local {
	return Local{}
}

func (Local) Propose(s *Metropolis, _ Machine, _ Parameters, _ State, key rng.Key, configs space.Batch) (space.Batch, []float64, error) {
	values := s.space.LocalValues()
	chains := configs.Chains()

	keys := key.Split(2)
	sites := keys[0].Intns(chains, configs.Sites())
	picks := keys[1].Intns(chains, len(values)-1)

	proposed := configs.Clone()
	for c := 0; c < chains; c++ {
		site := sites[c]
		current := configs.At(c, site)
		// the pick indexes the alphabet with the current value skipped
		pick := picks[c]
		for _, v := range values {
			if v == current {
				continue
			}
			if pick == 0 {
				proposed.Set(c, site, v)
				break
			}
			pick--
		}
	}
	return proposed, nil, nil
}
