package concordance

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/goldfinchbio/aws-gatk-sv/cmd/util/output"
	"github.com/goldfinchbio/aws-gatk-sv/pkg/concordance"
	"github.com/goldfinchbio/aws-gatk-sv/pkg/models"
	"github.com/goldfinchbio/aws-gatk-sv/pkg/report"
	"github.com/goldfinchbio/aws-gatk-sv/pkg/util/templates"
)

var (
	concordanceLong = templates.LongDesc(`
		Compare structural variant call sets against a reference run.
		Each dataset is a cleaned VCF produced by the pipeline; for every
		comparison run the command reports per-SVTYPE variant counts and
		recall/precision against the reference, joined on locus.
`)

	concordanceExample = templates.Examples(`
		# Compare two AWS runs against the Broad GCP reference run
		gatk-sv-ops concordance \
			--ref gcp_broad=vcfs/gcp_broad/ref_panel_1kg.cleaned.vcf.gz \
			--input aws_fsx=vcfs/fsx/ref_panel_1kg.cleaned.vcf.gz \
			--input aws_s3=vcfs/s3/ref_panel_1kg.cleaned.vcf.gz
`)
)

// ConcordanceOptions holds the concordance command flags.
type ConcordanceOptions struct {
	Ref       string
	Inputs    []string
	OutputDir string
	Output    output.OutputOptions
}

func NewConcordanceOptions() *ConcordanceOptions {
	return &ConcordanceOptions{
		OutputDir: "output",
		Output:    output.OutputOptions{Format: output.TableFormat, NoStyle: true},
	}
}

func NewCmd() *cobra.Command {
	o := NewConcordanceOptions()
	concordanceCmd := &cobra.Command{
		Use:     "concordance",
		Short:   "Compare variant call sets against a reference run",
		Long:    concordanceLong,
		Example: concordanceExample,
		RunE:    o.run,
	}

	concordanceCmd.Flags().StringVar(&o.Ref, "ref", o.Ref,
		"The reference call set as name=path. Recall and precision are measured against it.")
	concordanceCmd.Flags().StringArrayVar(&o.Inputs, "input", o.Inputs,
		"A comparison call set as name=path. May be repeated.")
	concordanceCmd.Flags().StringVar(&o.OutputDir, "output-dir", o.OutputDir,
		"The directory the timestamped report directory is created in.")
	output.AddOutputFlags(concordanceCmd, &o.Output)

	_ = concordanceCmd.MarkFlagRequired("ref")
	return concordanceCmd
}

func (o *ConcordanceOptions) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	refName, refPath, err := splitDataset(o.Ref)
	if err != nil {
		return err
	}

	log.Ctx(ctx).Info().Str("CallSet", refName).Str("Path", refPath).Msg("Loading reference call set")
	ref, err := concordance.Load(refName, refPath)
	if err != nil {
		return err
	}

	summaries := []models.VariantSummary{ref.Summary}
	results := make([]models.ConcordanceResult, 0, len(o.Inputs))
	for _, input := range o.Inputs {
		name, path, err := splitDataset(input)
		if err != nil {
			return err
		}
		log.Ctx(ctx).Info().Str("CallSet", name).Str("Path", path).Msg("Loading comparison call set")
		callSet, err := concordance.Load(name, path)
		if err != nil {
			return err
		}
		summaries = append(summaries, callSet.Summary)
		results = append(results, callSet.Concordance(ref))
	}

	o.printSummaries(cmd, summaries)
	if len(results) > 0 {
		if err := output.Output(cmd, concordanceColumns, o.Output, results); err != nil {
			return err
		}
	}

	outputDir, err := report.NewOutputDir(o.OutputDir, time.Now())
	if err != nil {
		return err
	}
	if err := concordance.WriteSVTypeCounts(outputDir, summaries); err != nil {
		return err
	}
	if err := concordance.WriteConcordanceSummary(outputDir, results); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("OutputDir", outputDir).Msg("Wrote concordance reports")
	return nil
}

var concordanceColumns = []output.TableColumn[models.ConcordanceResult]{
	{
		ColumnConfig: table.ColumnConfig{Name: "Run"},
		Value:        func(r models.ConcordanceResult) string { return r.Name },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "Variants"},
		Value:        func(r models.ConcordanceResult) string { return strconv.Itoa(r.InputVariants) },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "Matched"},
		Value:        func(r models.ConcordanceResult) string { return strconv.Itoa(r.Matched) },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "Recall"},
		Value:        func(r models.ConcordanceResult) string { return strconv.FormatFloat(r.Recall, 'f', 6, 64) },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "Precision"},
		Value:        func(r models.ConcordanceResult) string { return strconv.FormatFloat(r.Precision, 'f', 6, 64) },
	},
}

func (o *ConcordanceOptions) printSummaries(cmd *cobra.Command, summaries []models.VariantSummary) {
	for _, summary := range summaries {
		cmd.Printf("%s: %d variants\n", summary.Name, summary.Total)

		svTypes := make([]string, 0, len(summary.SVTypeCounts))
		for svType := range summary.SVTypeCounts {
			svTypes = append(svTypes, svType)
		}
		sort.Strings(svTypes)

		parts := make([]string, 0, len(svTypes))
		for _, svType := range svTypes {
			parts = append(parts, fmt.Sprintf("%s=%d", svType, summary.SVTypeCounts[svType]))
		}
		if len(parts) > 0 {
			cmd.Printf("  %s\n", strings.Join(parts, " "))
		}
	}
}

// splitDataset parses a name=path flag value.
func splitDataset(value string) (name, path string, err error) {
	name, path, found := strings.Cut(value, "=")
	if !found || name == "" || path == "" {
		return "", "", errors.Errorf("call set %q is not in name=path format", value)
	}
	return name, path, nil
}
