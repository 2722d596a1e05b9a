package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/goldfinchbio/aws-gatk-sv/pkg/models"
)

// BuildSubmoduleSummaries aggregates the SUCCEEDED jobs of the job table
// per pipeline submodule, using the static module mapping to resolve job
// names. Jobs without a mapping entry are aggregated under an unnamed
// module rather than dropped, so gaps in the mapping stay visible. Jobs
// that never started or stopped are skipped. The result is sorted by
// module number, then first job start.
func BuildSubmoduleSummaries(jobs []models.JobRecord, mapping models.ModuleMapping) []models.SubmoduleSummary {
	type group struct {
		summary       models.SubmoduleSummary
		durationHours float64
	}

	type key struct {
		number     int
		mainModule string
		module     string
	}

	groups := make(map[key]*group)
	for i := range jobs {
		job := &jobs[i]
		if job.Status != models.JobStatusSucceeded || job.StartedAt == nil || job.StoppedAt == nil {
			continue
		}

		module := mapping[job.JobName]
		k := key{number: module.ModuleNumber, mainModule: module.MainModuleName, module: module.ModuleName}
		g, ok := groups[k]
		if !ok {
			g = &group{summary: models.SubmoduleSummary{
				ModuleNumber:   module.ModuleNumber,
				MainModuleName: module.MainModuleName,
				ModuleName:     module.ModuleName,
				StartedAt:      *job.StartedAt,
				StoppedAt:      *job.StoppedAt,
			}}
			groups[k] = g
		}

		if job.StartedAt.Before(g.summary.StartedAt) {
			g.summary.StartedAt = *job.StartedAt
		}
		if job.StoppedAt.After(g.summary.StoppedAt) {
			g.summary.StoppedAt = *job.StoppedAt
		}
		g.summary.JobCount++
		g.durationHours += job.Duration().Hours()
	}

	summaries := make([]models.SubmoduleSummary, 0, len(groups))
	for _, g := range groups {
		g.summary.AvgJobDurationHours = g.durationHours / float64(g.summary.JobCount)
		g.summary.WallClockHours = g.summary.StoppedAt.Sub(g.summary.StartedAt).Hours()
		summaries = append(summaries, g.summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].ModuleNumber != summaries[j].ModuleNumber {
			return summaries[i].ModuleNumber < summaries[j].ModuleNumber
		}
		return summaries[i].StartedAt.Before(summaries[j].StartedAt)
	})
	return summaries
}

// BuildHighLevelSummaries rolls submodule summaries up to the pipeline's
// top level modules.
func BuildHighLevelSummaries(submodules []models.SubmoduleSummary) []models.HighLevelSummary {
	type key struct {
		number     int
		mainModule string
	}

	groups := make(map[key]*models.HighLevelSummary)
	var order []key
	for _, submodule := range submodules {
		k := key{number: submodule.ModuleNumber, mainModule: submodule.MainModuleName}
		g, ok := groups[k]
		if !ok {
			g = &models.HighLevelSummary{
				ModuleNumber:   submodule.ModuleNumber,
				MainModuleName: submodule.MainModuleName,
				StartedAt:      submodule.StartedAt,
				StoppedAt:      submodule.StoppedAt,
			}
			groups[k] = g
			order = append(order, k)
		}

		if submodule.StartedAt.Before(g.StartedAt) {
			g.StartedAt = submodule.StartedAt
		}
		if submodule.StoppedAt.After(g.StoppedAt) {
			g.StoppedAt = submodule.StoppedAt
		}
		g.JobCount += submodule.JobCount
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].number != order[j].number {
			return order[i].number < order[j].number
		}
		return order[i].mainModule < order[j].mainModule
	})

	summaries := make([]models.HighLevelSummary, 0, len(order))
	for _, k := range order {
		g := groups[k]
		g.Duration = FormatDuration(g.StoppedAt.Sub(g.StartedAt))
		summaries = append(summaries, *g)
	}
	return summaries
}

// FormatDuration renders a duration as HH:MM:SS.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int64(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// CountByStatus tallies the job table per status, preserving the report
// status order.
func CountByStatus(jobs []models.JobRecord) map[models.JobStatus]int {
	counts := make(map[models.JobStatus]int)
	for i := range jobs {
		counts[jobs[i].Status]++
	}
	return counts
}

// DistinctInstances returns the number of distinct container instances
// used across the job table.
func DistinctInstances(jobs []models.JobRecord) int {
	seen := make(map[string]bool)
	for i := range jobs {
		for _, instanceID := range jobs[i].InstanceIDs {
			if instanceID != "" {
				seen[instanceID] = true
			}
		}
	}
	return len(seen)
}
