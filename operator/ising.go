package operator

// Ising is the transverse-field Ising model on spin-1/2 configurations over
// {-1,+1}. Its off-diagonal part flips one spin at a time with amplitude -h,
// so every configuration connects to exactly `sites` others.
type Ising struct {
	sites int
	h     float64
}

func NewIsing(sites int, h float64) *Ising {
	if sites <= 0 {
		panic("operator: need at least one site")
	}
	if h == 0 {
		panic("operator: ising transverse field must be nonzero")
	}
	return &Ising{sites: sites, h: h}
}

func (op *Ising) Conn(config []float64) ([][]float64, []complex128) {
	states := make([][]float64, op.sites)
	mels := make([]complex128, op.sites)
	for i := 0; i < op.sites; i++ {
		flipped := make([]float64, len(config))
		copy(flipped, config)
		flipped[i] = -flipped[i]
		states[i] = flipped
		mels[i] = complex(-op.h, 0)
	}
	return states, mels
}
