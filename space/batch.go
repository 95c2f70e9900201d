package space

// Batch holds the configurations of every chain, one fixed-size row per
// chain. Sampler code treats batches as values: a batch owned by a sampler
// state is never written to, updates go through Clone.
type Batch struct {
	data   []float64
	chains int
	sites  int
}

func NewBatch(chains, sites int) Batch {
	return Batch{
		data:   make([]float64, chains*sites),
		chains: chains,
		sites:  sites,
	}
}

func (b Batch) Chains() int { return b.chains }
func (b Batch) Sites() int  { return b.sites }

func (b Batch) At(chain, site int) float64 {
	return b.data[chain*b.sites+site]
}

func (b Batch) Set(chain, site int, v float64) {
	b.data[chain*b.sites+site] = v
}

// Row returns a copy of one chain's configuration.
func (b Batch) Row(chain int) []float64 {
	row := make([]float64, b.sites)
	copy(row, b.data[chain*b.sites:(chain+1)*b.sites])
	return row
}

func (b Batch) SetRow(chain int, row []float64) {
	if len(row) != b.sites {
		panic("space: row length does not match batch sites")
	}
	copy(b.data[chain*b.sites:(chain+1)*b.sites], row)
}

// CopyRowFrom copies one chain's configuration out of another batch.
func (b Batch) CopyRowFrom(src Batch, chain int) {
	copy(b.data[chain*b.sites:(chain+1)*b.sites], src.data[chain*src.sites:(chain+1)*src.sites])
}

func (b Batch) Clone() Batch {
	c := NewBatch(b.chains, b.sites)
	copy(c.data, b.data)
	return c
}

func (b Batch) Equal(other Batch) bool {
	if b.chains != other.chains || b.sites != other.sites {
		return false
	}
	for i := range b.data {
		if b.data[i] != other.data[i] {
			return false
		}
	}
	return true
}
