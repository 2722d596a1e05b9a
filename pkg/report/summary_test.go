//go:build unit || !integration

package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goldfinchbio/aws-gatk-sv/pkg/models"
)

var testMappingCSV = `job_name,module_name,module_number,main_module_name
Manta,GatherSampleEvidence,0,Module00a
Whamg,GatherSampleEvidence,0,Module00a
EvidenceQC,EvidenceQC,1,Module00b
CleanVcf,CleanVcf,7,Module0506
`

func testJob(name string, status models.JobStatus, started, stopped time.Time) models.JobRecord {
	return models.JobRecord{
		JobID:     "id-" + name,
		JobName:   name,
		Status:    status,
		StartedAt: &started,
		StoppedAt: &stopped,
	}
}

func TestReadModuleMapping(t *testing.T) {
	mapping, err := ReadModuleMapping(strings.NewReader(testMappingCSV))
	require.NoError(t, err)
	require.Len(t, mapping, 4)
	require.Equal(t, models.ModuleInfo{
		ModuleName:     "GatherSampleEvidence",
		ModuleNumber:   0,
		MainModuleName: "Module00a",
	}, mapping["Manta"])
}

func TestReadModuleMappingMissingColumn(t *testing.T) {
	_, err := ReadModuleMapping(strings.NewReader("job_name,module_name\nManta,GatherSampleEvidence\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "module_number")
}

func TestBuildSubmoduleSummaries(t *testing.T) {
	mapping, err := ReadModuleMapping(strings.NewReader(testMappingCSV))
	require.NoError(t, err)

	base := time.Date(2022, 3, 23, 12, 0, 0, 0, time.UTC)
	jobs := []models.JobRecord{
		// GatherSampleEvidence: two jobs, 1h and 3h, overlapping.
		testJob("Manta", models.JobStatusSucceeded, base, base.Add(time.Hour)),
		testJob("Whamg", models.JobStatusSucceeded, base.Add(30*time.Minute), base.Add(210*time.Minute)),
		// Later module sorts after despite appearing first by start time
		// within its own group.
		testJob("CleanVcf", models.JobStatusSucceeded, base.Add(4*time.Hour), base.Add(5*time.Hour)),
		// Failed and still-running jobs stay out of the summaries.
		testJob("EvidenceQC", models.JobStatusFailed, base, base.Add(time.Hour)),
		{JobName: "EvidenceQC", Status: models.JobStatusRunning},
	}

	summaries := BuildSubmoduleSummaries(jobs, mapping)
	require.Len(t, summaries, 2)

	gather := summaries[0]
	require.Equal(t, "GatherSampleEvidence", gather.ModuleName)
	require.Equal(t, "Module00a", gather.MainModuleName)
	require.Equal(t, 0, gather.ModuleNumber)
	require.Equal(t, base, gather.StartedAt)
	require.Equal(t, base.Add(210*time.Minute), gather.StoppedAt)
	require.Equal(t, 2, gather.JobCount)
	require.InDelta(t, 2.0, gather.AvgJobDurationHours, 1e-9) // (1h + 3h) / 2
	require.InDelta(t, 3.5, gather.WallClockHours, 1e-9)

	clean := summaries[1]
	require.Equal(t, "CleanVcf", clean.ModuleName)
	require.Equal(t, 7, clean.ModuleNumber)
	require.Equal(t, 1, clean.JobCount)
	require.InDelta(t, 1.0, clean.WallClockHours, 1e-9)
}

func TestBuildSubmoduleSummariesUnmappedJobs(t *testing.T) {
	base := time.Date(2022, 3, 23, 12, 0, 0, 0, time.UTC)
	jobs := []models.JobRecord{
		testJob("NotInMapping", models.JobStatusSucceeded, base, base.Add(time.Hour)),
	}

	summaries := BuildSubmoduleSummaries(jobs, models.ModuleMapping{})
	require.Len(t, summaries, 1)
	require.Empty(t, summaries[0].ModuleName)
	require.Equal(t, 1, summaries[0].JobCount)
}

func TestBuildHighLevelSummaries(t *testing.T) {
	base := time.Date(2022, 3, 23, 12, 0, 0, 0, time.UTC)
	submodules := []models.SubmoduleSummary{
		{
			ModuleNumber: 0, MainModuleName: "Module00a", ModuleName: "GatherSampleEvidence",
			StartedAt: base, StoppedAt: base.Add(2 * time.Hour), JobCount: 3,
		},
		{
			ModuleNumber: 0, MainModuleName: "Module00a", ModuleName: "Manta",
			StartedAt: base.Add(-30 * time.Minute), StoppedAt: base.Add(time.Hour), JobCount: 2,
		},
		{
			ModuleNumber: 7, MainModuleName: "Module0506", ModuleName: "CleanVcf",
			StartedAt: base.Add(4 * time.Hour), StoppedAt: base.Add(5 * time.Hour), JobCount: 1,
		},
	}

	summaries := BuildHighLevelSummaries(submodules)
	require.Len(t, summaries, 2)

	first := summaries[0]
	require.Equal(t, "Module00a", first.MainModuleName)
	require.Equal(t, base.Add(-30*time.Minute), first.StartedAt)
	require.Equal(t, base.Add(2*time.Hour), first.StoppedAt)
	require.Equal(t, 5, first.JobCount)
	require.Equal(t, "02:30:00", first.Duration)

	require.Equal(t, "Module0506", summaries[1].MainModuleName)
	require.Equal(t, "01:00:00", summaries[1].Duration)
}

func TestFormatDuration(t *testing.T) {
	require.Equal(t, "00:00:00", FormatDuration(0))
	require.Equal(t, "00:00:59", FormatDuration(59*time.Second))
	require.Equal(t, "01:02:03", FormatDuration(time.Hour+2*time.Minute+3*time.Second))
	require.Equal(t, "27:15:00", FormatDuration(27*time.Hour+15*time.Minute))
	require.Equal(t, "00:00:00", FormatDuration(-time.Minute))
}

func TestCountByStatusAndDistinctInstances(t *testing.T) {
	jobs := []models.JobRecord{
		{Status: models.JobStatusSucceeded, InstanceIDs: []string{"inst-a", "inst-b"}},
		{Status: models.JobStatusSucceeded, InstanceIDs: []string{"inst-b"}},
		{Status: models.JobStatusFailed, InstanceIDs: []string{"inst-c"}},
		{Status: models.JobStatusRunning},
	}

	counts := CountByStatus(jobs)
	require.Equal(t, 2, counts[models.JobStatusSucceeded])
	require.Equal(t, 1, counts[models.JobStatusFailed])
	require.Equal(t, 1, counts[models.JobStatusRunning])

	require.Equal(t, 3, DistinctInstances(jobs))
}
