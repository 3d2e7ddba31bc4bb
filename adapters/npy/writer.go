// Package npy persists bootstrap replicates as numpy .npy arrays so they can
// be loaded directly with numpy.load.
package npy

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kshedden/gonpy"
)

// ReplicateWriter writes a replicate sequence as a 1-D float64 array
type ReplicateWriter struct{}

// NewReplicateWriter creates a replicate writer
func NewReplicateWriter() *ReplicateWriter {
	return &ReplicateWriter{}
}

// nopCloser lets gonpy close the buffered writer without closing the file
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// WriteReplicates writes replicates to path, replacing any existing file.
// NaN replicates are written as NaN.
func (w *ReplicateWriter) WriteReplicates(ctx context.Context, path string, replicates []float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	output, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create replicate file %s: %w", path, err)
	}
	defer output.Close()

	bufw := bufio.NewWriterSize(output, 1<<16)
	npw, err := gonpy.NewWriter(nopCloser{bufw})
	if err != nil {
		return fmt.Errorf("failed to start numpy writer: %w", err)
	}
	npw.Shape = []int{len(replicates)}
	if err := npw.WriteFloat64(replicates); err != nil {
		return fmt.Errorf("failed to write replicates to %s: %w", path, err)
	}
	if err := bufw.Flush(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return output.Close()
}

// ReadReplicates loads a 1-D float64 array written by WriteReplicates
func ReadReplicates(path string) ([]float64, error) {
	r, err := gonpy.NewFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if len(r.Shape) != 1 {
		return nil, fmt.Errorf("%s: expected a 1-D array, got shape %v", path, r.Shape)
	}
	data, err := r.GetFloat64()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
