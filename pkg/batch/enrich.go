package batch

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/batch"
	"github.com/aws/aws-sdk-go-v2/service/batch/types"
	"github.com/rs/zerolog/log"

	"github.com/goldfinchbio/aws-gatk-sv/pkg/models"
)

// DescribeJobsAPI is the subset of the AWS Batch client used to fetch
// full job details.
type DescribeJobsAPI interface {
	DescribeJobs(ctx context.Context, params *batch.DescribeJobsInput, optFns ...func(*batch.Options)) (*batch.DescribeJobsOutput, error)
}

// Enricher turns job ids into flat JobRecord snapshots.
type Enricher struct {
	client DescribeJobsAPI
}

func NewEnricher(client DescribeJobsAPI) *Enricher {
	return &Enricher{client: client}
}

// JobRecords fetches full details for each job id. Jobs that fail to
// fetch or normalize are logged at warn level and omitted from the
// result, so a single bad job does not sink the whole report.
func (e *Enricher) JobRecords(ctx context.Context, jobIDs []string) []models.JobRecord {
	records := make([]models.JobRecord, 0, len(jobIDs))
	for _, jobID := range jobIDs {
		response, err := e.client.DescribeJobs(ctx, &batch.DescribeJobsInput{
			Jobs: []string{jobID},
		})
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("JobID", jobID).Msg("Failed to describe job, omitting from report")
			continue
		}
		if len(response.Jobs) == 0 {
			log.Ctx(ctx).Warn().Str("JobID", jobID).Msg("Job not found by describe-jobs, omitting from report")
			continue
		}
		records = append(records, newJobRecord(&response.Jobs[0]))
	}
	return records
}

func newJobRecord(detail *types.JobDetail) models.JobRecord {
	record := models.JobRecord{
		JobID:     aws.ToString(detail.JobId),
		JobName:   aws.ToString(detail.JobName),
		Status:    models.JobStatus(detail.Status),
		StartedAt: millisToTime(detail.StartedAt),
		StoppedAt: millisToTime(detail.StoppedAt),
		Attempts:  len(detail.Attempts),
		Reasons:   attemptReasons(detail.Attempts),
	}

	if detail.Container != nil {
		record.Image = aws.ToString(detail.Container.Image)
		record.VCPUs, record.MemoryMiB = containerResources(detail.Container)
	}

	// A running job has no finished attempts yet, so its task and
	// instance come from the live container instead.
	if record.Status == models.JobStatusRunning && detail.Container != nil {
		record.InstanceIDs = []string{arnResourceID(aws.ToString(detail.Container.ContainerInstanceArn))}
		record.TaskIDs = []string{arnResourceID(aws.ToString(detail.Container.TaskArn))}
	} else {
		record.InstanceIDs, record.TaskIDs = attemptIdentifiers(detail.Attempts)
	}

	return record
}

// containerResources resolves the requested vCPU and memory of a job.
// Older job definitions carry them as direct container fields, newer ones
// as typed entries in the resource requirements list, and both may be
// present.
func containerResources(container *types.ContainerDetail) (vcpus float64, memoryMiB int32) {
	if container.Vcpus != nil {
		vcpus = float64(aws.ToInt32(container.Vcpus))
	}
	if container.Memory != nil {
		memoryMiB = aws.ToInt32(container.Memory)
	}

	for _, requirement := range container.ResourceRequirements {
		value := aws.ToString(requirement.Value)
		switch requirement.Type {
		case types.ResourceTypeVcpu:
			if parsed, err := strconv.ParseFloat(value, 64); err == nil {
				vcpus = parsed
			}
		case types.ResourceTypeMemory:
			if parsed, err := strconv.ParseInt(value, 10, 32); err == nil {
				memoryMiB = int32(parsed)
			}
		}
	}
	return vcpus, memoryMiB
}

// attemptIdentifiers collects the distinct container instance and task
// ids across all attempts, preserving first-seen order.
func attemptIdentifiers(attempts []types.AttemptDetail) (instanceIDs, taskIDs []string) {
	seenInstances := make(map[string]bool)
	seenTasks := make(map[string]bool)
	for _, attempt := range attempts {
		if attempt.Container == nil {
			continue
		}
		instanceID := arnResourceID(aws.ToString(attempt.Container.ContainerInstanceArn))
		if instanceID != "" && !seenInstances[instanceID] {
			seenInstances[instanceID] = true
			instanceIDs = append(instanceIDs, instanceID)
		}
		taskID := arnResourceID(aws.ToString(attempt.Container.TaskArn))
		if taskID != "" && !seenTasks[taskID] {
			seenTasks[taskID] = true
			taskIDs = append(taskIDs, taskID)
		}
	}
	return instanceIDs, taskIDs
}

func attemptReasons(attempts []types.AttemptDetail) string {
	var reasons []string
	for _, attempt := range attempts {
		if attempt.Container == nil {
			continue
		}
		if reason := aws.ToString(attempt.Container.Reason); reason != "" {
			reasons = append(reasons, reason)
		}
	}
	return strings.Join(reasons, "|")
}

// arnResourceID returns the trailing path element of an ARN, e.g. the
// bare task id of an ECS task ARN.
func arnResourceID(arn string) string {
	if arn == "" {
		return ""
	}
	parts := strings.Split(arn, "/")
	return parts[len(parts)-1]
}

func millisToTime(millis *int64) *time.Time {
	if millis == nil {
		return nil
	}
	t := time.UnixMilli(*millis).UTC()
	return &t
}
