package concordance

import (
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/brentp/vcfgo"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/goldfinchbio/aws-gatk-sv/pkg/models"
)

// locus identifies a variant position the way Hail joins rows: contig
// plus one-based position, ignoring alleles.
type locus struct {
	chrom string
	pos   uint64
}

// CallSet is one loaded variant call set, reduced to the counts the
// concordance report needs.
type CallSet struct {
	Summary models.VariantSummary

	// loci counts variants per locus, so overlapping comparisons can
	// count matched rows without keeping whole records around.
	loci map[locus]int
}

// Load streams a (optionally gzipped) VCF file into a CallSet. Records
// the reader flags as invalid are skipped with a debug log rather than
// failing the run, matching how the cleaned GATK-SV VCFs are produced.
func Load(name, path string) (*CallSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening call set %s", name)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(path, ".gz") || strings.HasSuffix(path, ".bgz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, errors.Wrapf(err, "decompressing call set %s", name)
		}
		defer gz.Close()
		reader = gz
	}

	return Read(name, reader)
}

// Read builds a CallSet from VCF content.
func Read(name string, r io.Reader) (*CallSet, error) {
	vcf, err := vcfgo.NewReader(r, true)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing VCF header of call set %s", name)
	}

	callSet := &CallSet{
		Summary: models.VariantSummary{
			Name:            name,
			SVTypeCounts:    make(map[string]int),
			AlgorithmCounts: make(map[string]int),
		},
		loci: make(map[locus]int),
	}

	for {
		variant := vcf.Read()
		if variant == nil {
			break
		}
		if err := vcf.Error(); err != nil {
			log.Debug().Err(err).Str("CallSet", name).Msg("Skipping invalid VCF record")
			vcf.Clear()
			continue
		}

		callSet.Summary.Total++
		callSet.loci[locus{chrom: variant.Chromosome, pos: variant.Pos}]++

		if svType, err := variant.Info().Get("SVTYPE"); err == nil {
			if s, ok := svType.(string); ok {
				callSet.Summary.SVTypeCounts[s]++
			}
		}
		if algorithm := firstString(variant.Info().Get("ALGORITHMS")); algorithm != "" {
			callSet.Summary.AlgorithmCounts[algorithm]++
		}
	}

	return callSet, nil
}

// Concordance compares this call set against the reference, joining on
// locus. Recall is the matched share of the reference, precision the
// matched share of this call set.
func (c *CallSet) Concordance(ref *CallSet) models.ConcordanceResult {
	matched := 0
	for l, count := range c.loci {
		if _, ok := ref.loci[l]; ok {
			matched += count
		}
	}

	result := models.ConcordanceResult{
		Name:          c.Summary.Name,
		Matched:       matched,
		RefVariants:   ref.Summary.Total,
		InputVariants: c.Summary.Total,
	}
	if result.RefVariants > 0 {
		result.Recall = float64(matched) / float64(result.RefVariants)
	}
	if result.InputVariants > 0 {
		result.Precision = float64(matched) / float64(result.InputVariants)
	}
	return result
}

// firstString unwraps an INFO value that may be either a scalar or a
// list, returning the first entry.
func firstString(value interface{}, err error) string {
	if err != nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		// Number=. INFO fields come back as a single comma joined
		// string in some VCF writers.
		return strings.Split(v, ",")[0]
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	case []interface{}:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}
