package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/goldfinchbio/aws-gatk-sv/pkg/models"
)

const (
	JobDetailsSuffix        = "job_details.csv"
	TaskResourceUsageFile   = "task_resource_usage.csv"
	SubmoduleSummaryFile    = "submodule_summary.csv"
	HighLevelSummaryFile    = "highlevel_summary.csv"
	outputTimestampFormat   = "2006_01_02_15_04_05"
	reportTimeFormat        = time.DateTime
	outputDirPermissionBits = 0o755
)

// NewOutputDir creates a timestamped report directory under base and
// returns its path.
func NewOutputDir(base string, now time.Time) (string, error) {
	dir := filepath.Join(base, now.Format(outputTimestampFormat))
	if err := os.MkdirAll(dir, outputDirPermissionBits); err != nil {
		return "", errors.Wrap(err, "creating output directory")
	}
	return dir, nil
}

// JobDetailsFile names the job details report for a queue.
func JobDetailsFile(queue string) string {
	return strings.ReplaceAll(queue, "-", "_") + "_" + JobDetailsSuffix
}

// WriteJobDetails writes the raw job table, left-joined with the task
// resource usage when any was collected.
func WriteJobDetails(dir string, queue string, jobs []models.JobRecord, usage []models.TaskResourceUsage) error {
	header := []string{
		"job_id", "job_name", "job_status", "started_at", "stopped_at", "image",
		"vcpus", "memory", "num_attempts", "num_of_instances", "instance_arn_endings",
		"task_id", "reasons",
	}
	withUsage := len(usage) > 0
	if withUsage {
		header = append(header, "cpu_used", "cpu_passed", "memory_used", "memory_passed")
	}

	usageByTask := make(map[string]models.TaskResourceUsage, len(usage))
	for _, u := range usage {
		usageByTask[u.TaskID] = u
	}

	rows := make([][]string, 0, len(jobs))
	for i := range jobs {
		job := &jobs[i]
		row := []string{
			job.JobID,
			job.JobName,
			job.Status.String(),
			formatTimePtr(job.StartedAt),
			formatTimePtr(job.StoppedAt),
			job.Image,
			formatFloat(job.VCPUs),
			strconv.FormatInt(int64(job.MemoryMiB), 10),
			strconv.Itoa(job.Attempts),
			strconv.Itoa(len(job.InstanceIDs)),
			job.InstanceKey(),
			job.TaskKey(),
			job.Reasons,
		}
		if withUsage {
			if u, ok := usageByTask[job.TaskKey()]; ok {
				row = append(row,
					formatFloat(u.CPUUtilized), formatFloat(u.CPUReserved),
					formatFloat(u.MemoryUtilized), formatFloat(u.MemoryReserved))
			} else {
				row = append(row, "", "", "", "")
			}
		}
		rows = append(rows, row)
	}

	return writeCSV(filepath.Join(dir, JobDetailsFile(queue)), header, rows)
}

// WriteTaskResourceUsage writes the averaged per-task utilization table.
func WriteTaskResourceUsage(dir string, usage []models.TaskResourceUsage) error {
	header := []string{"task_id", "container_instance_id", "cpu_used", "cpu_passed", "memory_used", "memory_passed"}
	rows := make([][]string, 0, len(usage))
	for _, u := range usage {
		rows = append(rows, []string{
			u.TaskID,
			u.ContainerInstanceID,
			formatFloat(u.CPUUtilized),
			formatFloat(u.CPUReserved),
			formatFloat(u.MemoryUtilized),
			formatFloat(u.MemoryReserved),
		})
	}
	return writeCSV(filepath.Join(dir, TaskResourceUsageFile), header, rows)
}

// WriteSubmoduleSummary writes the per-submodule aggregation.
func WriteSubmoduleSummary(dir string, summaries []models.SubmoduleSummary) error {
	header := []string{
		"module_number", "main_module_name", "module_name", "started_at", "stopped_at",
		"avg_duration_across_all_jobs", "job_counts", "duration",
	}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			strconv.Itoa(s.ModuleNumber),
			s.MainModuleName,
			s.ModuleName,
			s.StartedAt.Format(reportTimeFormat),
			s.StoppedAt.Format(reportTimeFormat),
			formatFloat(s.AvgJobDurationHours),
			strconv.Itoa(s.JobCount),
			formatFloat(s.WallClockHours),
		})
	}
	return writeCSV(filepath.Join(dir, SubmoduleSummaryFile), header, rows)
}

// WriteHighLevelSummary writes the top level module aggregation.
func WriteHighLevelSummary(dir string, summaries []models.HighLevelSummary) error {
	header := []string{"module_number", "main_module_name", "started_at", "stopped_at", "job_counts", "duration"}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			strconv.Itoa(s.ModuleNumber),
			s.MainModuleName,
			s.StartedAt.Format(reportTimeFormat),
			s.StoppedAt.Format(reportTimeFormat),
			strconv.Itoa(s.JobCount),
			s.Duration,
		})
	}
	return writeCSV(filepath.Join(dir, HighLevelSummaryFile), header, rows)
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

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(reportTimeFormat)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
