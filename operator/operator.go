package operator

// Operator exposes the off-diagonal connectivity of a lattice operator.
// Conn returns every configuration connected to config by a nonzero
// off-diagonal matrix element together with those elements. The diagonal
// entry is not included.
type Operator interface {
	Conn(config []float64) (states [][]float64, mels []complex128)
}
