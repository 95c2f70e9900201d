package record

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"vmc/space"
)

// SampleRow is one chain's configuration at one sampling step.
type SampleRow struct {
	Step    int32     `parquet:"step"`
	Chain   int32     `parquet:"chain"`
	Config  []float64 `parquet:"config"`
	LogProb float64   `parquet:"log_prob"`
}

// Writer persists sampled configuration batches to a parquet file for
// offline analysis. It sits outside the sampling core and is never called
// from inside a sweep.
type Writer struct {
	path   string
	file   *os.File
	writer *parquet.GenericWriter[SampleRow]
	rows   int
}

func NewWriter(path string) (*Writer, error) {
	if path == "" {
		return nil, fmt.Errorf("record: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("record: create directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("record: open parquet file: %w", err)
	}
	w := parquet.NewGenericWriter[SampleRow](
		f,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
	)
	return &Writer{path: path, file: f, writer: w}, nil
}

func (w *Writer) Path() string { return w.path }
func (w *Writer) Rows() int    { return w.rows }

// WriteBatch appends one row per chain for the given sampling step. logProb
// may be nil when the caller does not track per-chain log-weights.
func (w *Writer) WriteBatch(step int, configs space.Batch, logProb []float64) error {
	if w.writer == nil {
		return fmt.Errorf("record: writer is closed")
	}
	if logProb != nil && len(logProb) != configs.Chains() {
		return fmt.Errorf("record: got %d log-weights for %d chains", len(logProb), configs.Chains())
	}
	rows := make([]SampleRow, configs.Chains())
	for c := 0; c < configs.Chains(); c++ {
		rows[c] = SampleRow{
			Step:   int32(step),
			Chain:  int32(c),
			Config: configs.Row(c),
		}
		if logProb != nil {
			rows[c].LogProb = logProb[c]
		}
	}
	n, err := w.writer.Write(rows)
	if err != nil {
		return fmt.Errorf("record: write rows: %w", err)
	}
	w.rows += n
	return nil
}

func (w *Writer) Close() error {
	if w.writer == nil {
		return nil
	}
	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("record: close parquet writer: %w", err)
	}
	w.writer = nil
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("record: close parquet file: %w", err)
	}
	return nil
}

// Read loads every sample row back from a parquet file, mainly for tests
// and small offline analyses.
func Read(path string) ([]SampleRow, error) {
	rows, err := parquet.ReadFile[SampleRow](path)
	if err != nil {
		return nil, fmt.Errorf("record: read parquet file: %w", err)
	}
	return rows, nil
}
