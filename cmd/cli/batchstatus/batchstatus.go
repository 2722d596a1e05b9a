package batchstatus

import (
	"path/filepath"
	"strconv"
	"time"

	awsbatch "github.com/aws/aws-sdk-go-v2/service/batch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goldfinchbio/aws-gatk-sv/cmd/util/output"
	"github.com/goldfinchbio/aws-gatk-sv/pkg/awsclient"
	"github.com/goldfinchbio/aws-gatk-sv/pkg/batch"
	"github.com/goldfinchbio/aws-gatk-sv/pkg/insights"
	"github.com/goldfinchbio/aws-gatk-sv/pkg/lib/collections"
	"github.com/goldfinchbio/aws-gatk-sv/pkg/models"
	"github.com/goldfinchbio/aws-gatk-sv/pkg/report"
	"github.com/goldfinchbio/aws-gatk-sv/pkg/util/templates"
)

var (
	batchStatusLong = templates.LongDesc(`
		Report on the jobs of an AWS Batch job queue created after a given
		start time. Writes the raw job table, a per-submodule summary and a
		high level summary as CSV files into a timestamped output directory,
		and optionally joins per-task CPU/memory utilization gathered from a
		Container Insights performance log group.
`)

	batchStatusExample = templates.Examples(`
		# Report on a job queue
		gatk-sv-ops batch-status -j default-gwf-core-dev-sv -s "2022-03-23 11:47:00"

		# Include Container Insights resource usage
		gatk-sv-ops batch-status -j default-gwf-core-dev-sv -s "2022-03-24 20:00:00" \
			-l "/aws/ecs/containerinsights/spot-gwf-core-dev-sv_Batch/performance"

		# Use a shorter query window when jobs log more than 10k records per window
		gatk-sv-ops batch-status -j default-gwf-core-dev-sv -s "2022-03-24 20:00:00" \
			-l "/aws/ecs/containerinsights/spot-gwf-core-dev-sv_Batch/performance" -i 300
`)
)

// StatusOptions holds the batch-status command flags.
type StatusOptions struct {
	Profile       string
	Region        string
	JobQueue      string
	StartTime     string
	LogGroup      string
	QueryInterval int
	OutputDir     string
	ModuleMap     string
	Output        output.OutputOptions
}

// NewStatusOptions returns initialized options. Profile and region
// default from the standard AWS environment variables.
func NewStatusOptions() *StatusOptions {
	viper.SetDefault("aws_profile", awsclient.DefaultProfile)
	viper.SetDefault("aws_region", "us-east-2")
	_ = viper.BindEnv("aws_profile", "AWS_PROFILE")
	_ = viper.BindEnv("aws_region", "AWS_REGION")

	return &StatusOptions{
		Profile:       viper.GetString("aws_profile"),
		Region:        viper.GetString("aws_region"),
		QueryInterval: 600,
		OutputDir:     "output",
		ModuleMap:     filepath.Join("configs", "job_names_and_modules.csv"),
		Output:        output.OutputOptions{Format: output.TableFormat, NoStyle: true},
	}
}

func NewCmd() *cobra.Command {
	o := NewStatusOptions()
	statusCmd := &cobra.Command{
		Use:     "batch-status",
		Short:   "Report on the jobs of an AWS Batch job queue",
		Long:    batchStatusLong,
		Example: batchStatusExample,
		RunE:    o.run,
	}

	statusCmd.Flags().StringVarP(&o.Profile, "profile", "p", o.Profile,
		"The AWS profile to be used.")
	statusCmd.Flags().StringVarP(&o.Region, "region", "r", o.Region,
		"The AWS region to be used.")
	statusCmd.Flags().StringVarP(&o.JobQueue, "job-queue", "j", o.JobQueue,
		"The AWS Batch job queue to look at for jobs.")
	statusCmd.Flags().StringVarP(&o.StartTime, "start-time", "s", o.StartTime,
		"Only report on jobs created at or after this time, in YYYY-MM-DD HH:MM:SS format.")
	statusCmd.Flags().StringVarP(&o.LogGroup, "log-group", "l", o.LogGroup,
		"The Container Insights performance log group to query for task resource usage. "+
			"Only useful when Container Insights is enabled for the compute environment.")
	statusCmd.Flags().IntVarP(&o.QueryInterval, "query-interval", "i", o.QueryInterval,
		"The duration in seconds of each Logs Insights query window. A query returns at "+
			"most 10k records and Container Insights logs once per task per minute, so "+
			"size the window accordingly.")
	statusCmd.Flags().StringVar(&o.OutputDir, "output-dir", o.OutputDir,
		"The directory the timestamped report directory is created in.")
	statusCmd.Flags().StringVar(&o.ModuleMap, "module-map", o.ModuleMap,
		"The CSV file mapping job names onto pipeline modules.")
	output.AddOutputFlags(statusCmd, &o.Output)

	_ = statusCmd.MarkFlagRequired("job-queue")
	_ = statusCmd.MarkFlagRequired("start-time")
	return statusCmd
}

func (o *StatusOptions) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// The cutoff is interpreted in the operator's local time, the same
	// way the Batch console presents job timestamps.
	cutoff, err := time.ParseInLocation(time.DateTime, o.StartTime, time.Local)
	if err != nil {
		return errors.Wrapf(err, "start time %q is not in YYYY-MM-DD HH:MM:SS format", o.StartTime)
	}

	_ = output.KeyValue(cmd, []collections.Pair[string, any]{
		collections.NewPair[string, any]("AWS Profile", o.Profile),
		collections.NewPair[string, any]("AWS Region", o.Region),
		collections.NewPair[string, any]("Batch Job Queue", o.JobQueue),
		collections.NewPair[string, any]("Batch Start Time", o.StartTime),
		collections.NewPair[string, any]("Log Group", o.LogGroup),
		collections.NewPair[string, any]("Query Interval Seconds", o.QueryInterval),
	})

	cfg, err := awsclient.NewConfig(ctx, o.Profile, o.Region)
	if err != nil {
		return errors.Wrap(err, "loading AWS configuration")
	}
	if !awsclient.HasValidCredentials(cfg) {
		return errors.New("no valid AWS credentials found, configure a profile or environment credentials")
	}

	batchClient := awsbatch.NewFromConfig(cfg)

	jobIDs, err := batch.NewDiscoverer(batchClient, o.JobQueue).JobIDs(ctx, cutoff)
	if err != nil {
		return err
	}
	if len(jobIDs) == 0 {
		log.Ctx(ctx).Info().Msg("No jobs found after the start time, nothing to report")
		return nil
	}

	jobs := batch.NewEnricher(batchClient).JobRecords(ctx, jobIDs)
	if len(jobs) == 0 {
		log.Ctx(ctx).Warn().Msg("Every job failed to enrich, nothing to report")
		return nil
	}

	outputDir, err := report.NewOutputDir(o.OutputDir, time.Now())
	if err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("OutputDir", outputDir).Msg("Writing reports")

	var usage []models.TaskResourceUsage
	if o.LogGroup != "" {
		interval := time.Duration(o.QueryInterval) * time.Second
		usage, err = insights.NewCollector(cloudwatchlogs.NewFromConfig(cfg), o.LogGroup, interval).Collect(ctx, cutoff)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("Resource usage collection aborted, continuing with partial results")
		}
		log.Ctx(ctx).Info().Msgf("Gathered resource usage for %d tasks", len(usage))
		if len(usage) > 0 {
			if err := report.WriteTaskResourceUsage(outputDir, usage); err != nil {
				return err
			}
		}
	}

	if err := report.WriteJobDetails(outputDir, o.JobQueue, jobs, usage); err != nil {
		return err
	}

	mapping, err := report.LoadModuleMapping(o.ModuleMap)
	if err != nil {
		return err
	}
	submodules := report.BuildSubmoduleSummaries(jobs, mapping)
	if err := report.WriteSubmoduleSummary(outputDir, submodules); err != nil {
		return err
	}
	if err := report.WriteHighLevelSummary(outputDir, report.BuildHighLevelSummaries(submodules)); err != nil {
		return err
	}

	return o.printStats(cmd, jobs)
}

type statusCount struct {
	Status models.JobStatus `json:"job_status"`
	Count  int              `json:"job_count"`
}

var statusColumns = []output.TableColumn[statusCount]{
	{
		ColumnConfig: table.ColumnConfig{Name: "Status"},
		Value:        func(s statusCount) string { return s.Status.String() },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "Jobs"},
		Value:        func(s statusCount) string { return strconv.Itoa(s.Count) },
	},
}

func (o *StatusOptions) printStats(cmd *cobra.Command, jobs []models.JobRecord) error {
	counts := report.CountByStatus(jobs)
	rows := make([]statusCount, 0, len(counts))
	for _, status := range models.ReportStatuses {
		if counts[status] > 0 {
			rows = append(rows, statusCount{Status: status, Count: counts[status]})
		}
	}

	cmd.Printf("Total number of jobs: %d\n", len(jobs))
	if err := output.Output(cmd, statusColumns, o.Output, rows); err != nil {
		return err
	}
	cmd.Printf("Distinct container instances used: %d\n", report.DistinctInstances(jobs))
	return nil
}
