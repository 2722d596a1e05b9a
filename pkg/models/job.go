package models

import (
	"strings"
	"time"
)

// JobStatus is the AWS Batch status of a job at the time the queue
// snapshot was taken.
type JobStatus string

const (
	JobStatusSucceeded JobStatus = "SUCCEEDED"
	JobStatusFailed    JobStatus = "FAILED"
	JobStatusRunning   JobStatus = "RUNNING"
)

func (s JobStatus) String() string {
	return string(s)
}

// ReportStatuses are the statuses the collector reports on. A job holds
// exactly one of them at query time, so no de-duplication is needed when
// the per-status listings are concatenated.
var ReportStatuses = []JobStatus{
	JobStatusSucceeded,
	JobStatusFailed,
	JobStatusRunning,
}

// JobRecord is a flat, read-only snapshot of a single Batch job, as
// written to the job details report.
type JobRecord struct {
	JobID     string     `json:"job_id"`
	JobName   string     `json:"job_name"`
	Status    JobStatus  `json:"job_status"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	StoppedAt *time.Time `json:"stopped_at,omitempty"`
	Image     string     `json:"image"`

	// VCPUs and MemoryMiB are the requested container resources. Depending
	// on how the job definition was registered they come either from the
	// legacy vcpus/memory fields or from the typed resource requirements.
	VCPUs     float64 `json:"vcpus"`
	MemoryMiB int32   `json:"memory"`

	Attempts    int      `json:"num_attempts"`
	InstanceIDs []string `json:"instance_arn_endings"`
	TaskIDs     []string `json:"task_id"`

	// Reasons concatenates the container failure reasons of all attempts,
	// separated by "|". Empty when every attempt exited cleanly.
	Reasons string `json:"reasons,omitempty"`
}

// TaskKey is the pipe-joined task id set, which is the key the resource
// usage report is joined on.
func (j *JobRecord) TaskKey() string {
	return strings.Join(j.TaskIDs, "|")
}

// InstanceKey is the pipe-joined container instance id set.
func (j *JobRecord) InstanceKey() string {
	return strings.Join(j.InstanceIDs, "|")
}

// Duration is the wall clock run time of the job, or zero if the job has
// not both started and stopped.
func (j *JobRecord) Duration() time.Duration {
	if j.StartedAt == nil || j.StoppedAt == nil {
		return 0
	}
	return j.StoppedAt.Sub(*j.StartedAt)
}
