//go:build unit || !integration

package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goldfinchbio/aws-gatk-sv/pkg/models"
)

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestNewOutputDir(t *testing.T) {
	base := t.TempDir()
	now := time.Date(2022, 3, 24, 20, 1, 2, 0, time.UTC)

	dir, err := NewOutputDir(base, now)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(base, "2022_03_24_20_01_02"), dir)
	require.DirExists(t, dir)
}

func TestJobDetailsFile(t *testing.T) {
	require.Equal(t, "default_gwf_core_dev_job_details.csv", JobDetailsFile("default-gwf-core-dev"))
}

func TestWriteJobDetailsWithUsage(t *testing.T) {
	dir := t.TempDir()
	started := time.Date(2022, 3, 23, 12, 0, 0, 0, time.UTC)
	stopped := started.Add(time.Hour)

	jobs := []models.JobRecord{
		{
			JobID:       "job-1",
			JobName:     "Manta",
			Status:      models.JobStatusSucceeded,
			StartedAt:   &started,
			StoppedAt:   &stopped,
			Image:       "gatksv/sv-pipeline:v0.26",
			VCPUs:       4,
			MemoryMiB:   8192,
			Attempts:    1,
			InstanceIDs: []string{"inst-a"},
			TaskIDs:     []string{"task-1"},
		},
		{
			JobID:   "job-2",
			JobName: "Whamg",
			Status:  models.JobStatusRunning,
			TaskIDs: []string{"task-unmatched"},
		},
	}
	usage := []models.TaskResourceUsage{
		{TaskID: "task-1", ContainerInstanceID: "inst-a", CPUUtilized: 2, CPUReserved: 4, MemoryUtilized: 1000, MemoryReserved: 8192},
	}

	require.NoError(t, WriteJobDetails(dir, "test-queue", jobs, usage))

	rows := readCSVFile(t, filepath.Join(dir, "test_queue_job_details.csv"))
	require.Len(t, rows, 3)
	require.Equal(t, "cpu_used", rows[0][13])

	require.Equal(t, "job-1", rows[1][0])
	require.Equal(t, "SUCCEEDED", rows[1][2])
	require.Equal(t, "2022-03-23 12:00:00", rows[1][3])
	require.Equal(t, "4", rows[1][6])
	require.Equal(t, "8192", rows[1][7])
	require.Equal(t, "2", rows[1][13])

	// The unmatched job keeps empty usage columns.
	require.Equal(t, "", rows[2][13])
	require.Equal(t, "", rows[2][3]) // never started
}

func TestWriteJobDetailsWithoutUsage(t *testing.T) {
	dir := t.TempDir()
	jobs := []models.JobRecord{{JobID: "job-1", JobName: "Manta", Status: models.JobStatusSucceeded}}

	require.NoError(t, WriteJobDetails(dir, "q", jobs, nil))

	rows := readCSVFile(t, filepath.Join(dir, "q_job_details.csv"))
	require.Len(t, rows[0], 13) // no usage columns
}

func TestWriteTaskResourceUsage(t *testing.T) {
	dir := t.TempDir()
	usage := []models.TaskResourceUsage{
		{TaskID: "task-1", ContainerInstanceID: "inst-a", CPUUtilized: 1.5, CPUReserved: 2, MemoryUtilized: 512.25, MemoryReserved: 1024},
	}

	require.NoError(t, WriteTaskResourceUsage(dir, usage))

	rows := readCSVFile(t, filepath.Join(dir, TaskResourceUsageFile))
	require.Equal(t, []string{"task_id", "container_instance_id", "cpu_used", "cpu_passed", "memory_used", "memory_passed"}, rows[0])
	require.Equal(t, []string{"task-1", "inst-a", "1.5", "2", "512.25", "1024"}, rows[1])
}

func TestWriteSummaries(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2022, 3, 23, 12, 0, 0, 0, time.UTC)

	submodules := []models.SubmoduleSummary{{
		ModuleNumber:        0,
		MainModuleName:      "Module00a",
		ModuleName:          "GatherSampleEvidence",
		StartedAt:           base,
		StoppedAt:           base.Add(2 * time.Hour),
		AvgJobDurationHours: 1.5,
		JobCount:            4,
		WallClockHours:      2,
	}}
	require.NoError(t, WriteSubmoduleSummary(dir, submodules))

	rows := readCSVFile(t, filepath.Join(dir, SubmoduleSummaryFile))
	require.Equal(t, []string{
		"0", "Module00a", "GatherSampleEvidence",
		"2022-03-23 12:00:00", "2022-03-23 14:00:00", "1.5", "4", "2",
	}, rows[1])

	highLevel := BuildHighLevelSummaries(submodules)
	require.NoError(t, WriteHighLevelSummary(dir, highLevel))

	rows = readCSVFile(t, filepath.Join(dir, HighLevelSummaryFile))
	require.Equal(t, []string{"0", "Module00a", "2022-03-23 12:00:00", "2022-03-23 14:00:00", "4", "02:00:00"}, rows[1])
}
