package experiments

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"vmc/experiments/metrics"
	"vmc/graph"
	"vmc/operator"
	"vmc/record"
	"vmc/rng"
	"vmc/sampler"
	"vmc/space"
)

const (
	Sites  = 16
	Chains = 16
	Steps  = 200
	Beta   = 0.6
	Seed   = 2024
)

// isingMachine is a diagonal Boltzmann weight for a periodic Ising chain:
// |machine|^2 = exp(-beta*E) with E = -sum over edges of s_i*s_j.
func isingMachine(edges [][2]int, beta float64) sampler.Machine {
	return func(_ sampler.Parameters, b space.Batch) []complex128 {
		out := make([]complex128, b.Chains())
		for c := 0; c < b.Chains(); c++ {
			e := 0.0
			for _, edge := range edges {
				e -= b.At(c, edge[0]) * b.At(c, edge[1])
			}
			out[c] = complex(-beta*e/2, 0)
		}
		return out
	}
}

// RunAcceptanceStudy samples the same Ising chain weight with each
// transition rule and records per-rule acceptance statistics, plus a
// parquet dump of the local-rule samples.
func RunAcceptanceStudy() error {
	hs := space.NewSpin(Sites)
	lattice := graph.NewChain(Sites, true)
	machine := isingMachine(lattice.Edges(), Beta)

	exchange, err := sampler.NewExchange(sampler.WithGraph(lattice, 1))
	if err != nil {
		return err
	}
	guided, err := sampler.NewHamiltonian(operator.NewHeisenberg(lattice, 1))
	if err != nil {
		return err
	}
	rules := []struct {
		name string
		rule sampler.Rule
	}{
		{"local", sampler.NewLocal()},
		{"exchange", exchange},
		{"hamiltonian", guided},
	}

	writer, err := metrics.NewWriter("acceptance")
	if err != nil {
		return err
	}

	log.Info().Msg("starting acceptance study...")
	var records []metrics.RunRecord
	for i, r := range rules {
		config := metrics.RunConfig{
			ID:     i + 1,
			Rule:   r.name,
			Chains: Chains,
			Sweeps: Sites,
			Steps:  Steps,
		}
		log.Info().Msgf("sampling with the %s rule...", r.name)

		recordPath := ""
		if r.name == "local" {
			recordPath = filepath.Join(writer.BaseDir(), "samples_local.parquet")
		}
		rec, err := runOnce(hs, r.rule, machine, config, recordPath)
		if err != nil {
			return fmt.Errorf("run %d (%s): %w", config.ID, r.name, err)
		}
		log.Info().Msgf("completed %s run: acceptance %.1f%% over %d moves",
			r.name, 100*rec.AcceptanceRate, rec.Attempted)
		records = append(records, rec)
	}

	if err := writer.WriteRunRecords(records); err != nil {
		return err
	}
	log.Info().Msgf("stored run records under %s", writer.BaseDir())
	return nil
}

func runOnce(hs space.Space, rule sampler.Rule, machine sampler.Machine, config metrics.RunConfig, recordPath string) (metrics.RunRecord, error) {
	m, err := sampler.NewMetropolis(hs, rule,
		sampler.WithChains(config.Chains), sampler.WithSweeps(config.Sweeps))
	if err != nil {
		return metrics.RunRecord{}, err
	}

	state, err := m.Init(machine, nil, rng.NewKey(Seed))
	if err != nil {
		return metrics.RunRecord{}, err
	}
	state, err = m.Reset(machine, nil, state)
	if err != nil {
		return metrics.RunRecord{}, err
	}

	var samples *record.Writer
	if recordPath != "" {
		samples, err = record.NewWriter(recordPath)
		if err != nil {
			return metrics.RunRecord{}, err
		}
		defer samples.Close()
	}

	start := time.Now()
	for step := 0; step < config.Steps; step++ {
		var batch space.Batch
		state, batch, err = m.SampleNext(machine, nil, state)
		if err != nil {
			return metrics.RunRecord{}, err
		}
		if samples != nil {
			if err := samples.WriteBatch(step, batch, nil); err != nil {
				return metrics.RunRecord{}, err
			}
		}
	}

	rec := metrics.RunRecord{
		RunConfig:      config,
		Attempted:      state.Attempted,
		Accepted:       state.Accepted,
		AcceptanceRate: state.AcceptanceRate(),
		Duration:       time.Since(start),
	}
	if samples != nil {
		if err := samples.Close(); err != nil {
			return metrics.RunRecord{}, err
		}
		log.Info().Msgf("stored %d sample rows at %s", samples.Rows(), samples.Path())
	}
	return rec, nil
}
