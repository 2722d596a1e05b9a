package models

import "time"

// ModuleInfo is one row of the static job name to pipeline module mapping.
type ModuleInfo struct {
	ModuleName     string `json:"module_name"`
	ModuleNumber   int    `json:"module_number"`
	MainModuleName string `json:"main_module_name"`
}

// ModuleMapping maps a Batch job name onto its pipeline module.
type ModuleMapping map[string]ModuleInfo

// SubmoduleSummary aggregates the successful jobs of a single submodule.
type SubmoduleSummary struct {
	ModuleNumber   int       `json:"module_number"`
	MainModuleName string    `json:"main_module_name"`
	ModuleName     string    `json:"module_name"`
	StartedAt      time.Time `json:"started_at"`
	StoppedAt      time.Time `json:"stopped_at"`

	// AvgJobDurationHours is the mean run time of the submodule's jobs.
	AvgJobDurationHours float64 `json:"avg_duration_across_all_jobs"`
	JobCount            int     `json:"job_counts"`

	// WallClockHours is the elapsed time between the first job start and
	// the last job stop, which differs from the average when jobs overlap.
	WallClockHours float64 `json:"duration"`
}

// HighLevelSummary rolls submodule summaries up to the top level modules
// of the pipeline.
type HighLevelSummary struct {
	ModuleNumber   int       `json:"module_number"`
	MainModuleName string    `json:"main_module_name"`
	StartedAt      time.Time `json:"started_at"`
	StoppedAt      time.Time `json:"stopped_at"`
	JobCount       int       `json:"job_counts"`
	Duration       string    `json:"duration"` // HH:MM:SS
}
