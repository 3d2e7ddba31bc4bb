package testkit

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/stat/distuv"

	"prsboot/domain/core"
	"prsboot/domain/dataset"
)

// CohortGeneratorConfig configures the synthetic cohort generator
type CohortGeneratorConfig struct {
	SampleCount    int             `json:"sample_count"`
	Rho            float64         `json:"rho"`     // latent correlation between ancestry and PRS
	Overlap        float64         `json:"overlap"` // share of key samples present in the ancestry file
	ExtraSamples   int             `json:"extra_samples"`
	Seed           int64           `json:"seed"`
	SampleIDColumn core.ColumnName `json:"sample_id_column"`
	AncestryColumn core.ColumnName `json:"ancestry_column"`
	PRSColumn      core.ColumnName `json:"prs_column"`
}

// DefaultCohortConfig returns sensible defaults for cohort generation
func DefaultCohortConfig() CohortGeneratorConfig {
	return CohortGeneratorConfig{
		SampleCount:    200,
		Rho:            0.4,
		Overlap:        0.9,
		ExtraSamples:   10,
		Seed:           42,
		SampleIDColumn: "IID",
		AncestryColumn: "NL.AncEMA",
		PRSColumn:      "PRS",
	}
}

// Cohort is a generated set of key, ancestry and PRS tables
type Cohort struct {
	Key      *dataset.Table
	Ancestry *dataset.Table
	PRS      *dataset.Table

	// Shared is the number of samples present in all three tables
	Shared int
}

// CohortFiles are the paths written by WriteFiles
type CohortFiles struct {
	KeySamples string
	Ancestry   string
	PRS        string
}

// CohortGenerator produces cohorts whose ancestry proportion and PRS follow
// a Gaussian copula with the configured correlation
type CohortGenerator struct {
	config CohortGeneratorConfig
	rng    *rand.Rand
}

// NewCohortGenerator creates a new cohort generator
func NewCohortGenerator(config CohortGeneratorConfig) *CohortGenerator {
	return &CohortGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds the three tables. Every key sample has a PRS row; only the
// Overlap share has an ancestry row. ExtraSamples appear in the ancestry and
// PRS files but not in the key file. Rows of the ancestry and PRS files are
// shuffled so joins cannot rely on file order.
func (g *CohortGenerator) Generate() (*Cohort, error) {
	cfg := g.config
	if cfg.SampleCount < 1 {
		return nil, fmt.Errorf("sample count must be positive, got %d", cfg.SampleCount)
	}
	if cfg.Rho < -1 || cfg.Rho > 1 {
		return nil, fmt.Errorf("rho must lie in [-1, 1], got %g", cfg.Rho)
	}
	if cfg.Overlap < 0 || cfg.Overlap > 1 {
		return nil, fmt.Errorf("overlap must lie in [0, 1], got %g", cfg.Overlap)
	}

	key, err := dataset.NewTable("key_samples.txt", []core.ColumnName{"FID", cfg.SampleIDColumn})
	if err != nil {
		return nil, err
	}
	anc, err := dataset.NewTable("ancestry.txt", []core.ColumnName{cfg.SampleIDColumn, cfg.AncestryColumn})
	if err != nil {
		return nil, err
	}
	prs, err := dataset.NewTable("prs.txt", []core.ColumnName{"FID", cfg.SampleIDColumn, cfg.PRSColumn})
	if err != nil {
		return nil, err
	}

	normal := distuv.UnitNormal
	shared := int(math.Round(cfg.Overlap * float64(cfg.SampleCount)))
	total := cfg.SampleCount + cfg.ExtraSamples

	var ancRows, prsRows [][]string
	for i := 0; i < total; i++ {
		fid := fmt.Sprintf("FAM%04d", i+1)
		iid := fmt.Sprintf("S%05d", i+1)

		za := g.rng.NormFloat64()
		zp := cfg.Rho*za + math.Sqrt(1-cfg.Rho*cfg.Rho)*g.rng.NormFloat64()
		ancestry := normal.CDF(za)

		if i < cfg.SampleCount {
			if err := key.AddRow([]string{fid, iid}); err != nil {
				return nil, err
			}
		}
		if i < shared || i >= cfg.SampleCount {
			ancRows = append(ancRows, []string{iid, formatValue(ancestry)})
		}
		prsRows = append(prsRows, []string{fid, iid, formatValue(zp)})
	}

	g.rng.Shuffle(len(ancRows), func(i, j int) { ancRows[i], ancRows[j] = ancRows[j], ancRows[i] })
	g.rng.Shuffle(len(prsRows), func(i, j int) { prsRows[i], prsRows[j] = prsRows[j], prsRows[i] })

	for _, r := range ancRows {
		if err := anc.AddRow(r); err != nil {
			return nil, err
		}
	}
	for _, r := range prsRows {
		if err := prs.AddRow(r); err != nil {
			return nil, err
		}
	}

	return &Cohort{Key: key, Ancestry: anc, PRS: prs, Shared: shared}, nil
}

// WriteFiles writes the cohort as tab-delimited files under dir
func (c *Cohort) WriteFiles(dir string) (*CohortFiles, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	files := &CohortFiles{
		KeySamples: filepath.Join(dir, "key_samples.txt"),
		Ancestry:   filepath.Join(dir, "ancestry.txt"),
		PRS:        filepath.Join(dir, "prs.txt"),
	}
	for path, table := range map[string]*dataset.Table{
		files.KeySamples: c.Key,
		files.Ancestry:   c.Ancestry,
		files.PRS:        c.PRS,
	} {
		if err := WriteTSV(path, table); err != nil {
			return nil, err
		}
	}
	return files, nil
}

// WriteTSV writes a table as a tab-delimited file with a header row
func WriteTSV(path string, table *dataset.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'

	header := make([]string, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = string(h)
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}
