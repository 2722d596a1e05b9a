//go:build unit || !integration

package concordance

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goldfinchbio/aws-gatk-sv/pkg/models"
)

const vcfHeader = `##fileformat=VCFv4.1
##INFO=<ID=END,Number=1,Type=Integer,Description="End position of the structural variant">
##INFO=<ID=SVTYPE,Number=1,Type=String,Description="Type of structural variant">
##INFO=<ID=ALGORITHMS,Number=.,Type=String,Description="Source algorithms">
##contig=<ID=chr1,length=248956422>
##contig=<ID=chr2,length=242193529>
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO
`

func vcfBody(records ...string) string {
	return vcfHeader + strings.Join(records, "\n") + "\n"
}

var refVCF = vcfBody(
	"chr1	10000	ref_DEL_1	N	<DEL>	999	PASS	END=12000;SVTYPE=DEL;ALGORITHMS=manta,wham",
	"chr1	20000	ref_DUP_1	N	<DUP>	999	PASS	END=25000;SVTYPE=DUP;ALGORITHMS=depth",
	"chr1	30000	ref_INS_1	N	<INS>	999	PASS	END=30001;SVTYPE=INS;ALGORITHMS=melt",
	"chr2	40000	ref_DEL_2	N	<DEL>	999	PASS	END=44000;SVTYPE=DEL;ALGORITHMS=manta",
)

var inputVCF = vcfBody(
	"chr1	10000	aws_DEL_1	N	<DEL>	999	PASS	END=12000;SVTYPE=DEL;ALGORITHMS=manta",
	"chr1	20000	aws_DUP_1	N	<DUP>	999	PASS	END=25000;SVTYPE=DUP;ALGORITHMS=depth",
	"chr1	99999	aws_BND_1	N	<BND>	999	PASS	END=99999;SVTYPE=BND;ALGORITHMS=wham",
)

func TestReadCountsVariants(t *testing.T) {
	callSet, err := Read("gcp_broad", strings.NewReader(refVCF))
	require.NoError(t, err)

	require.Equal(t, "gcp_broad", callSet.Summary.Name)
	require.Equal(t, 4, callSet.Summary.Total)
	require.Equal(t, map[string]int{"DEL": 2, "DUP": 1, "INS": 1}, callSet.Summary.SVTypeCounts)
	require.Equal(t, map[string]int{"manta": 2, "depth": 1, "melt": 1}, callSet.Summary.AlgorithmCounts)
}

func TestReadSkipsInvalidRecords(t *testing.T) {
	malformed := vcfBody(
		"chr1	10000	ok_DEL	N	<DEL>	999	PASS	END=12000;SVTYPE=DEL;ALGORITHMS=manta",
		"chr1	notanumber	bad_pos	N	<DEL>	999	PASS	SVTYPE=DEL",
		"chr2	40000	ok_DUP	N	<DUP>	999	PASS	END=44000;SVTYPE=DUP;ALGORITHMS=depth",
	)

	callSet, err := Read("aws_fsx", strings.NewReader(malformed))
	require.NoError(t, err)

	// Only the two parseable records count.
	require.Equal(t, 2, callSet.Summary.Total)
	require.Equal(t, map[string]int{"DEL": 1, "DUP": 1}, callSet.Summary.SVTypeCounts)

	// The bad record must not leak a garbage locus into the join either.
	ref, err := Read("gcp_broad", strings.NewReader(malformed))
	require.NoError(t, err)
	result := callSet.Concordance(ref)
	require.Equal(t, 2, result.Matched)
	require.Equal(t, 2, result.InputVariants)
}

func TestConcordanceRecallAndPrecision(t *testing.T) {
	ref, err := Read("gcp_broad", strings.NewReader(refVCF))
	require.NoError(t, err)
	input, err := Read("aws_fsx", strings.NewReader(inputVCF))
	require.NoError(t, err)

	result := input.Concordance(ref)
	require.Equal(t, "aws_fsx", result.Name)
	require.Equal(t, 2, result.Matched)
	require.Equal(t, 4, result.RefVariants)
	require.Equal(t, 3, result.InputVariants)
	require.InDelta(t, 0.5, result.Recall, 1e-9)        // 2 of 4 reference variants
	require.InDelta(t, 2.0/3.0, result.Precision, 1e-9) // 2 of 3 input variants
}

func TestConcordanceSelfIsPerfect(t *testing.T) {
	ref, err := Read("gcp_broad", strings.NewReader(refVCF))
	require.NoError(t, err)

	result := ref.Concordance(ref)
	require.InDelta(t, 1.0, result.Recall, 1e-9)
	require.InDelta(t, 1.0, result.Precision, 1e-9)
}

func TestLoadGzippedVCF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref_panel_1kg.cleaned.vcf.gz")
	file, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(file)
	_, err = gz.Write([]byte(refVCF))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, file.Close())

	callSet, err := Load("gcp_broad", path)
	require.NoError(t, err)
	require.Equal(t, 4, callSet.Summary.Total)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("missing", filepath.Join(t.TempDir(), "nope.vcf"))
	require.Error(t, err)
}

func TestWriteReports(t *testing.T) {
	dir := t.TempDir()

	ref, err := Read("gcp_broad", strings.NewReader(refVCF))
	require.NoError(t, err)
	input, err := Read("aws_fsx", strings.NewReader(inputVCF))
	require.NoError(t, err)

	require.NoError(t, WriteSVTypeCounts(dir, []models.VariantSummary{ref.Summary, input.Summary}))
	require.NoError(t, WriteConcordanceSummary(dir, []models.ConcordanceResult{input.Concordance(ref)}))

	svContent, err := os.ReadFile(filepath.Join(dir, SVTypeCountsFile))
	require.NoError(t, err)
	require.Contains(t, string(svContent), "run_type,total,BND,DEL,DUP,INS")
	require.Contains(t, string(svContent), "gcp_broad,4,0,2,1,1")

	summaryContent, err := os.ReadFile(filepath.Join(dir, ConcordanceSummaryFile))
	require.NoError(t, err)
	require.Contains(t, string(summaryContent), "aws_fsx,2,4,3,0.500000,0.666667")
}
