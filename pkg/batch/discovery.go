package batch

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/batch"
	"github.com/aws/aws-sdk-go-v2/service/batch/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/goldfinchbio/aws-gatk-sv/pkg/models"
)

// ListJobsAPI is the subset of the AWS Batch client used for job discovery.
type ListJobsAPI interface {
	ListJobs(ctx context.Context, params *batch.ListJobsInput, optFns ...func(*batch.Options)) (*batch.ListJobsOutput, error)
}

const listJobsPageSize = 100

// Discoverer finds the ids of jobs in a single job queue.
type Discoverer struct {
	client ListJobsAPI
	queue  string
}

func NewDiscoverer(client ListJobsAPI, queue string) *Discoverer {
	return &Discoverer{
		client: client,
		queue:  queue,
	}
}

// JobIDs returns the ids of all jobs in the queue created at or after the
// cutoff, across the SUCCEEDED, FAILED and RUNNING statuses. The listing
// API is paged with its opaque continuation token until exhausted. Any
// upstream error aborts discovery.
func (d *Discoverer) JobIDs(ctx context.Context, cutoff time.Time) ([]string, error) {
	log.Ctx(ctx).Info().
		Str("JobQueue", d.queue).
		Time("Cutoff", cutoff).
		Msgf("Discovering jobs for statuses %v", models.ReportStatuses)

	var jobIDs []string
	for _, status := range models.ReportStatuses {
		statusIDs, err := d.jobIDsForStatus(ctx, status, cutoff)
		if err != nil {
			return nil, errors.Wrapf(err, "listing %s jobs in queue %s", status, d.queue)
		}
		log.Ctx(ctx).Info().Msgf("Found %d jobs with %s status", len(statusIDs), status)
		jobIDs = append(jobIDs, statusIDs...)
	}

	log.Ctx(ctx).Info().Msgf("Fetched %d job ids in total", len(jobIDs))
	return jobIDs, nil
}

func (d *Discoverer) jobIDsForStatus(ctx context.Context, status models.JobStatus, cutoff time.Time) ([]string, error) {
	cutoffMillis := cutoff.UnixMilli()

	var ids []string
	var nextToken *string
	for {
		response, err := d.client.ListJobs(ctx, &batch.ListJobsInput{
			JobQueue:   aws.String(d.queue),
			JobStatus:  types.JobStatus(status),
			MaxResults: aws.Int32(listJobsPageSize),
			NextToken:  nextToken,
		})
		if err != nil {
			return nil, err
		}

		for _, summary := range response.JobSummaryList {
			if aws.ToInt64(summary.CreatedAt) >= cutoffMillis {
				ids = append(ids, aws.ToString(summary.JobId))
			}
		}

		nextToken = response.NextToken
		if nextToken == nil {
			return ids, nil
		}
	}
}
