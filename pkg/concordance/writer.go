package concordance

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/goldfinchbio/aws-gatk-sv/pkg/models"
)

const (
	SVTypeCountsFile       = "svtype_counts.csv"
	ConcordanceSummaryFile = "concordance_summary.csv"
)

// WriteSVTypeCounts writes one row per run with a column per SVTYPE seen
// in any run, plus the total variant count.
func WriteSVTypeCounts(dir string, summaries []models.VariantSummary) error {
	svTypes := make(map[string]bool)
	for _, summary := range summaries {
		for svType := range summary.SVTypeCounts {
			svTypes[svType] = true
		}
	}
	sortedTypes := make([]string, 0, len(svTypes))
	for svType := range svTypes {
		sortedTypes = append(sortedTypes, svType)
	}
	sort.Strings(sortedTypes)

	header := append([]string{"run_type", "total"}, sortedTypes...)
	rows := make([][]string, 0, len(summaries))
	for _, summary := range summaries {
		row := []string{summary.Name, strconv.Itoa(summary.Total)}
		for _, svType := range sortedTypes {
			row = append(row, strconv.Itoa(summary.SVTypeCounts[svType]))
		}
		rows = append(rows, row)
	}

	return writeCSV(filepath.Join(dir, SVTypeCountsFile), header, rows)
}

// WriteConcordanceSummary writes the recall/precision table.
func WriteConcordanceSummary(dir string, results []models.ConcordanceResult) error {
	header := []string{"run_type", "matched_variants", "ref_variants", "input_variants", "recall", "precision"}
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		rows = append(rows, []string{
			result.Name,
			strconv.Itoa(result.Matched),
			strconv.Itoa(result.RefVariants),
			strconv.Itoa(result.InputVariants),
			strconv.FormatFloat(result.Recall, 'f', 6, 64),
			strconv.FormatFloat(result.Precision, 'f', 6, 64),
		})
	}
	return writeCSV(filepath.Join(dir, ConcordanceSummaryFile), header, rows)
}

func writeCSV(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", filepath.Base(path))
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return errors.Wrapf(err, "writing %s header", filepath.Base(path))
	}
	if err := writer.WriteAll(rows); err != nil {
		return errors.Wrapf(err, "writing %s rows", filepath.Base(path))
	}
	writer.Flush()
	return errors.Wrapf(writer.Error(), "flushing %s", filepath.Base(path))
}
