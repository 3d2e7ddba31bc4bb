package dataset

import (
	"fmt"

	"prsboot/domain/core"
)

// PairedSamples holds the index-aligned ancestry and PRS values of the samples
// that survived the join. Position i of every slice refers to the same sample.
type PairedSamples struct {
	SampleIDs []core.SampleID
	Ancestry  []float64
	PRS       []float64
}

// Len returns the number of paired samples
func (p *PairedSamples) Len() int {
	return len(p.Ancestry)
}

// Validate checks alignment and the two-sample minimum. source names the data
// the pairs came from in the returned error.
func (p *PairedSamples) Validate(source string) error {
	if len(p.Ancestry) != len(p.PRS) {
		return fmt.Errorf("%w: ancestry has %d values, PRS has %d", core.ErrLengthMismatch, len(p.Ancestry), len(p.PRS))
	}
	if p.SampleIDs != nil && len(p.SampleIDs) != len(p.Ancestry) {
		return fmt.Errorf("%w: %d sample IDs for %d values", core.ErrLengthMismatch, len(p.SampleIDs), len(p.Ancestry))
	}
	if len(p.Ancestry) < 2 {
		return core.NewInsufficientSamplesError(source, len(p.Ancestry))
	}
	return nil
}
