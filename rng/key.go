package rng

import (
	"golang.org/x/exp/rand"
)

// Key is an immutable two-word state of the sampler's random stream.
// Splitting a key deterministically derives independent child keys; a key
// must not be reused after it has been split or consumed, which makes every
// random draw in a run a pure function of the initial seed.
type Key struct {
	hi uint64
	lo uint64
}

// splitmix64 increment, from the reference implementation by Vigna.
const gamma = 0x9e3779b97f4a7c15

func mix(x uint64) uint64 {
	x += gamma
	z := x
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// NewKey derives a key from a caller-provided seed.
func NewKey(seed uint64) Key {
	return Key{hi: mix(seed), lo: mix(seed ^ 0xda942042e4dd58b5)}
}

// Split derives n independent child keys. The parent must not be used again.
func (k Key) Split(n int) []Key {
	if n <= 0 {
		panic("rng: split count must be positive")
	}
	keys := make([]Key, n)
	s := k.lo
	for i := range keys {
		a := mix(s)
		b := mix(a ^ k.hi)
		keys[i] = Key{hi: a, lo: b}
		s = b
	}
	return keys
}

// source materializes the generator a consumed key stands for.
func (k Key) source() *rand.Rand {
	return rand.New(rand.NewSource(k.hi ^ (k.lo<<32 | k.lo>>32)))
}

// Float64s draws n uniform variates in [0,1).
func (k Key) Float64s(n int) []float64 {
	r := k.source()
	out := make([]float64, n)
	for i := range out {
		out[i] = r.Float64()
	}
	return out
}

// Intn draws one uniform integer in [0,max).
func (k Key) Intn(max int) int {
	return k.source().Intn(max)
}

// Intns draws n uniform integers in [0,max).
func (k Key) Intns(n, max int) []int {
	r := k.source()
	out := make([]int, n)
	for i := range out {
		out[i] = r.Intn(max)
	}
	return out
}
