package stats

import (
	"encoding/json"
	"math"
	"strings"

	"prsboot/domain/core"
)

// ComparisonType labels which ancestry estimation method produced the ancestry column.
// It is descriptive only and never changes the estimator.
type ComparisonType string

const (
	ComparisonPANE       ComparisonType = "pane"
	ComparisonSupervised ComparisonType = "supervised"
)

// ComparisonTypes lists the accepted comparison labels in CLI order
var ComparisonTypes = []ComparisonType{ComparisonPANE, ComparisonSupervised}

// ComparisonNames renders the accepted labels for help text and errors,
// e.g. "pane or supervised"
func ComparisonNames() string {
	names := make([]string, len(ComparisonTypes))
	for i, c := range ComparisonTypes {
		names[i] = string(c)
	}
	return strings.Join(names, " or ")
}

// ParseComparisonType parses a case-insensitive comparison label
func ParseComparisonType(s string) (ComparisonType, error) {
	label := ComparisonType(strings.ToLower(strings.TrimSpace(s)))
	for _, c := range ComparisonTypes {
		if c == label {
			return c, nil
		}
	}
	return "", core.NewUnknownComparisonError(s, ComparisonNames())
}

// Method returns the ancestry estimation method the label stands for
func (c ComparisonType) Method() string {
	switch c {
	case ComparisonPANE:
		return "PANE"
	case ComparisonSupervised:
		return "Supervised Admixture"
	}
	return string(c)
}

// ConfidenceInterval is a two-sided percentile bootstrap interval
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Estimate is the full output of one bootstrap correlation run.
// Replicates is owned by the caller that received it.
type Estimate struct {
	Rho        float64            `json:"rho"`
	PValue     float64            `json:"p_value"`
	CI         ConfidenceInterval `json:"ci"`
	StdErr     float64            `json:"std_err"`
	Replicates []float64          `json:"-"`
	SampleSize int                `json:"sample_size"`

	// ReplicateMean is the mean of the replicates; ReplicateMean - Rho estimates bias
	ReplicateMean float64 `json:"replicate_mean"`

	// UndefinedReplicates counts replicates whose rank correlation was NaN
	UndefinedReplicates int `json:"undefined_replicates"`
}

// ResultRecord is the persisted summary of one invocation. It always carries
// exactly seven fields. Rho and the SE are rounded to 4 decimals; the CI bounds
// keep full precision and are fixed to 4 decimals when rendered, so a bound on
// a half-way tie formats from its exact binary value.
type ResultRecord struct {
	PRSFile        string             `json:"prs_file"`
	Ancestry       core.ColumnName    `json:"ancestry"`
	ComparisonType ComparisonType     `json:"comparison_type"`
	SpearmanRho    float64            `json:"spearman_rho"`
	PValue         float64            `json:"p_value"`
	CI             ConfidenceInterval `json:"bootstrap_95_ci"`
	BootstrapSE    float64            `json:"bootstrap_se"`
}

// RecordFieldCount is the number of columns in a persisted ResultRecord
const RecordFieldCount = 7

// NewResultRecord builds the persisted record from an estimate
func NewResultRecord(prsFile string, ancestry core.ColumnName, comparison ComparisonType, est Estimate) ResultRecord {
	return ResultRecord{
		PRSFile:        prsFile,
		Ancestry:       ancestry,
		ComparisonType: comparison,
		SpearmanRho:    Round(est.Rho, 4),
		PValue:         est.PValue,
		CI:             est.CI,
		BootstrapSE:    Round(est.StdErr, 4),
	}
}

// Round rounds half away from zero to the given number of decimals. NaN and
// infinities pass through unchanged.
func Round(v float64, decimals int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

// MarshalJSON encodes NaN statistics as null, which encoding/json rejects otherwise
func (r ResultRecord) MarshalJSON() ([]byte, error) {
	type ci struct {
		Lower *float64 `json:"lower"`
		Upper *float64 `json:"upper"`
	}
	return json.Marshal(struct {
		PRSFile        string          `json:"prs_file"`
		Ancestry       core.ColumnName `json:"ancestry"`
		ComparisonType ComparisonType  `json:"comparison_type"`
		SpearmanRho    *float64        `json:"spearman_rho"`
		PValue         *float64        `json:"p_value"`
		CI             ci              `json:"bootstrap_95_ci"`
		BootstrapSE    *float64        `json:"bootstrap_se"`
	}{
		PRSFile:        r.PRSFile,
		Ancestry:       r.Ancestry,
		ComparisonType: r.ComparisonType,
		SpearmanRho:    finite(r.SpearmanRho),
		PValue:         finite(r.PValue),
		CI:             ci{Lower: finite(r.CI.Lower), Upper: finite(r.CI.Upper)},
		BootstrapSE:    finite(r.BootstrapSE),
	})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
