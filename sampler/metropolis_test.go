package sampler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"vmc/rng"
	"vmc/space"
)

// constantMachine gives every configuration the same weight, so every
// proposal ratio is exactly 1.
func constantMachine(_ Parameters, b space.Batch) []complex128 {
	return make([]complex128, b.Chains())
}

// isingMachine weights configurations by an open-chain nearest-neighbour
// Boltzmann factor, |machine|^2 = exp(-beta*E) with E = -sum(s_i*s_i+1).
func isingMachine(beta float64) Machine {
	return func(_ Parameters, b space.Batch) []complex128 {
		out := make([]complex128, b.Chains())
		for c := 0; c < b.Chains(); c++ {
			e := 0.0
			for s := 0; s+1 < b.Sites(); s++ {
				e -= b.At(c, s) * b.At(c, s+1)
			}
			out[c] = complex(-beta*e/2, 0)
		}
		return out
	}
}

func rowsEqual(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewMetropolis(t *testing.T) {
	hs := space.NewSpin(4)

	t.Run("rejects missing space or rule", func(t *testing.T) {
		_, err := NewMetropolis(nil, NewLocal())
		require.Error(t, err, "Should reject a nil configuration space")
		_, err = NewMetropolis(hs, nil)
		require.Error(t, err, "Should reject a nil transition rule")
	})

	t.Run("rejects non-positive chains", func(t *testing.T) {
		_, err := NewMetropolis(hs, NewLocal(), WithChains(0))
		require.Error(t, err)
	})

	t.Run("rejects non-positive sweeps", func(t *testing.T) {
		_, err := NewMetropolis(hs, NewLocal(), WithSweeps(-1))
		require.Error(t, err)
	})

	t.Run("rejects non-positive machine power", func(t *testing.T) {
		_, err := NewMetropolis(hs, NewLocal(), WithMachinePow(0))
		require.Error(t, err)
	})

	t.Run("defaults sweeps to the space size", func(t *testing.T) {
		m, err := NewMetropolis(hs, NewLocal())
		require.NoError(t, err)
		require.Equal(t, 4, m.Sweeps())
		require.Equal(t, 8, m.Chains())
		require.Equal(t, 2.0, m.MachinePow())
	})
}

func TestInit(t *testing.T) {
	hs := space.NewSpin(4)
	m, err := NewMetropolis(hs, NewLocal(), WithChains(3))
	require.NoError(t, err)

	state, err := m.Init(constantMachine, nil, rng.NewKey(1))
	require.NoError(t, err)

	t.Run("configurations start zero-filled", func(t *testing.T) {
		require.Equal(t, 3, state.Configs.Chains())
		require.Equal(t, 4, state.Configs.Sites())
		for c := 0; c < 3; c++ {
			require.Equal(t, []float64{0, 0, 0, 0}, state.Configs.Row(c))
		}
	})

	t.Run("counters start at zero", func(t *testing.T) {
		require.Zero(t, state.Attempted)
		require.Zero(t, state.Accepted)
		require.True(t, math.IsNaN(state.AcceptanceRate()),
			"Acceptance rate should be NaN before any attempt")
	})
}

func TestReset(t *testing.T) {
	hs := space.NewSpin(4)
	m, err := NewMetropolis(hs, NewLocal(), WithChains(8))
	require.NoError(t, err)

	t.Run("draws legal configurations and zeroes counters", func(t *testing.T) {
		state, err := m.Init(constantMachine, nil, rng.NewKey(1))
		require.NoError(t, err)
		state.Attempted, state.Accepted = 10, 5

		state, err = m.Reset(constantMachine, nil, state)
		require.NoError(t, err)
		require.Zero(t, state.Attempted)
		require.Zero(t, state.Accepted)
		for c := 0; c < 8; c++ {
			require.True(t, hs.Contains(state.Configs.Row(c)),
				"Reset configurations should be members of the space")
		}
	})

	t.Run("different keys give different batches", func(t *testing.T) {
		s1, err := m.Init(constantMachine, nil, rng.NewKey(1))
		require.NoError(t, err)
		s2, err := m.Init(constantMachine, nil, rng.NewKey(2))
		require.NoError(t, err)

		s1, err = m.Reset(constantMachine, nil, s1)
		require.NoError(t, err)
		s2, err = m.Reset(constantMachine, nil, s2)
		require.NoError(t, err)
		require.False(t, s1.Configs.Equal(s2.Configs),
			"Resets from different keys should almost surely differ")
	})
}

func TestSampleNext(t *testing.T) {
	hs := space.NewSpin(4)

	t.Run("constant machine accepts every move", func(t *testing.T) {
		m, err := NewMetropolis(hs, NewLocal(), WithChains(8), WithSweeps(4))
		require.NoError(t, err)

		state, err := m.Init(constantMachine, nil, rng.NewKey(1))
		require.NoError(t, err)
		state, err = m.Reset(constantMachine, nil, state)
		require.NoError(t, err)

		state, batch, err := m.SampleNext(constantMachine, nil, state)
		require.NoError(t, err)
		require.Equal(t, 4*8, state.Attempted)
		require.Equal(t, state.Attempted, state.Accepted,
			"Every move should be accepted when the ratio is always 1")
		require.Equal(t, 1.0, state.AcceptanceRate())
		for c := 0; c < 8; c++ {
			require.True(t, hs.Contains(batch.Row(c)))
		}
	})

	t.Run("acceptance never exceeds attempts", func(t *testing.T) {
		m, err := NewMetropolis(hs, NewLocal(), WithChains(4), WithSweeps(6))
		require.NoError(t, err)

		state, err := m.Init(isingMachine(1), nil, rng.NewKey(3))
		require.NoError(t, err)
		state, err = m.Reset(isingMachine(1), nil, state)
		require.NoError(t, err)

		for i := 1; i <= 5; i++ {
			var err error
			state, _, err = m.SampleNext(isingMachine(1), nil, state)
			require.NoError(t, err)
			require.Equal(t, i*6*4, state.Attempted)
			require.LessOrEqual(t, state.Accepted, state.Attempted)
			require.GreaterOrEqual(t, state.Accepted, 0)
		}
	})

	t.Run("identical states give bit-identical output", func(t *testing.T) {
		m, err := NewMetropolis(hs, NewLocal(), WithChains(8))
		require.NoError(t, err)

		state, err := m.Init(isingMachine(0.5), nil, rng.NewKey(11))
		require.NoError(t, err)
		state, err = m.Reset(isingMachine(0.5), nil, state)
		require.NoError(t, err)

		s1, b1, err := m.SampleNext(isingMachine(0.5), nil, state)
		require.NoError(t, err)
		s2, b2, err := m.SampleNext(isingMachine(0.5), nil, state)
		require.NoError(t, err)

		require.True(t, b1.Equal(b2), "Sampling should be reproducible")
		require.Equal(t, s1.Key, s2.Key)
		require.Equal(t, s1.Accepted, s2.Accepted)
		require.True(t, s1.Configs.Equal(s2.Configs))
	})

	t.Run("does not modify the input state", func(t *testing.T) {
		m, err := NewMetropolis(hs, NewLocal(), WithChains(8))
		require.NoError(t, err)

		state, err := m.Init(constantMachine, nil, rng.NewKey(4))
		require.NoError(t, err)
		state, err = m.Reset(constantMachine, nil, state)
		require.NoError(t, err)
		before := state.Configs.Clone()

		_, _, err = m.SampleNext(constantMachine, nil, state)
		require.NoError(t, err)
		require.True(t, before.Equal(state.Configs),
			"The input state should be replaced, never mutated")
	})

	t.Run("favors high-weight configurations", func(t *testing.T) {
		hs2 := space.NewSpin(2)
		machine := isingMachine(1)
		m, err := NewMetropolis(hs2, NewLocal(), WithChains(16), WithSweeps(2))
		require.NoError(t, err)

		state, err := m.Init(machine, nil, rng.NewKey(21))
		require.NoError(t, err)
		state, err = m.Reset(machine, nil, state)
		require.NoError(t, err)

		aligned, total := 0, 0
		for i := 0; i < 200; i++ {
			var batch space.Batch
			state, batch, err = m.SampleNext(machine, nil, state)
			require.NoError(t, err)
			for c := 0; c < batch.Chains(); c++ {
				if batch.At(c, 0) == batch.At(c, 1) {
					aligned++
				}
				total++
			}
		}
		// P(aligned)/P(anti-aligned) = e^2 per pair, so aligned
		// configurations should dominate by a wide margin.
		require.Greater(t, float64(aligned)/float64(total), 0.7,
			"Sampling should concentrate on high-weight configurations")
	})
}

func TestSampleNextErrors(t *testing.T) {
	hs := space.NewSpin(4)
	m, err := NewMetropolis(hs, NewLocal(), WithChains(8))
	require.NoError(t, err)

	state, err := m.Init(constantMachine, nil, rng.NewKey(2))
	require.NoError(t, err)
	state, err = m.Reset(constantMachine, nil, state)
	require.NoError(t, err)

	t.Run("machine shape mismatch fails before sampling", func(t *testing.T) {
		bad := func(_ Parameters, b space.Batch) []complex128 {
			return make([]complex128, b.Chains()+1)
		}
		_, _, err := m.SampleNext(bad, nil, state)
		require.Error(t, err)
		require.Zero(t, state.Attempted,
			"No partial sweep should leak into the caller's state")
	})

	t.Run("NaN log-weights reject deterministically", func(t *testing.T) {
		ref := state.Configs.Clone()
		machine := func(_ Parameters, b space.Batch) []complex128 {
			out := make([]complex128, b.Chains())
			for c := 0; c < b.Chains(); c++ {
				if !rowsEqual(b.Row(c), ref.Row(c)) {
					out[c] = complex(math.NaN(), 0)
				}
			}
			return out
		}
		next, batch, err := m.SampleNext(machine, nil, state)
		require.NoError(t, err)
		require.Zero(t, next.Accepted, "No NaN-weighted move should be accepted")
		require.True(t, batch.Equal(ref))
	})

	t.Run("minus-infinity log-weights reject", func(t *testing.T) {
		ref := state.Configs.Clone()
		machine := func(_ Parameters, b space.Batch) []complex128 {
			out := make([]complex128, b.Chains())
			for c := 0; c < b.Chains(); c++ {
				if !rowsEqual(b.Row(c), ref.Row(c)) {
					out[c] = complex(math.Inf(-1), 0)
				}
			}
			return out
		}
		next, batch, err := m.SampleNext(machine, nil, state)
		require.NoError(t, err)
		require.Zero(t, next.Accepted, "Zero-probability moves should never be accepted")
		require.True(t, batch.Equal(ref))
	})
}

func TestSample(t *testing.T) {
	hs := space.NewSpin(4)
	m, err := NewMetropolis(hs, NewLocal(), WithChains(4), WithSweeps(4))
	require.NoError(t, err)

	state, err := m.Init(constantMachine, nil, rng.NewKey(8))
	require.NoError(t, err)

	t.Run("stacks one batch per step", func(t *testing.T) {
		final, batches, err := m.Sample(constantMachine, nil, state, 5)
		require.NoError(t, err)
		require.Len(t, batches, 5)
		require.Equal(t, 5*4*4, final.Attempted)
		for _, b := range batches {
			for c := 0; c < b.Chains(); c++ {
				require.True(t, hs.Contains(b.Row(c)))
			}
		}
		require.True(t, batches[4].Equal(final.Configs))
	})

	t.Run("rejects non-positive step counts", func(t *testing.T) {
		_, _, err := m.Sample(constantMachine, nil, state, 0)
		require.Error(t, err)
	})
}

func TestComplexMachine(t *testing.T) {
	t.Run("phase does not enter the acceptance ratio", func(t *testing.T) {
		hs := space.NewSpin(4)
		// machine with constant modulus but configuration-dependent phase
		machine := func(_ Parameters, b space.Batch) []complex128 {
			out := make([]complex128, b.Chains())
			for c := 0; c < b.Chains(); c++ {
				out[c] = complex(0, b.At(c, 0)*1.3)
			}
			return out
		}
		m, err := NewMetropolis(hs, NewLocal(), WithChains(8), WithSweeps(4))
		require.NoError(t, err)

		state, err := m.Init(machine, nil, rng.NewKey(13))
		require.NoError(t, err)
		state, err = m.Reset(machine, nil, state)
		require.NoError(t, err)
		state, _, err = m.SampleNext(machine, nil, state)
		require.NoError(t, err)
		require.Equal(t, state.Attempted, state.Accepted,
			"Only the real part of the log-amplitude should matter")
	})
}
