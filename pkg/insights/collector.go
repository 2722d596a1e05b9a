package insights

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/goldfinchbio/aws-gatk-sv/pkg/models"
)

// QueryAPI is the subset of the CloudWatch Logs client used to run Logs
// Insights queries against the Container Insights performance log group.
type QueryAPI interface {
	StartQuery(ctx context.Context, params *cloudwatchlogs.StartQueryInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.StartQueryOutput, error)
	GetQueryResults(ctx context.Context, params *cloudwatchlogs.GetQueryResultsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.GetQueryResultsOutput, error)
}

const (
	// queryString fetches raw performance log events; the structured
	// fields are decoded from the message JSON.
	queryString = "fields @message"

	// queryLimit is the Logs Insights per-query result cap. The window
	// interval must be small enough that a window stays under it.
	queryLimit = 10000

	defaultPollInterval = time.Second
)

// taskRecord is a Container Insights performance log event. Only events
// with Type "Task" carry per-task utilization.
type taskRecord struct {
	Type                string  `json:"Type"`
	TaskID              string  `json:"TaskId"`
	ContainerInstanceID string  `json:"ContainerInstanceId"`
	CPUUtilized         float64 `json:"CpuUtilized"`
	CPUReserved         float64 `json:"CpuReserved"`
	MemoryUtilized      float64 `json:"MemoryUtilized"`
	MemoryReserved      float64 `json:"MemoryReserved"`
}

// Collector queries task resource utilization from a Container Insights
// log group in fixed-size time windows.
type Collector struct {
	client       QueryAPI
	logGroup     string
	interval     time.Duration
	pollInterval time.Duration
	clock        func() time.Time
}

func NewCollector(client QueryAPI, logGroup string, interval time.Duration) *Collector {
	return &Collector{
		client:       client,
		logGroup:     logGroup,
		interval:     interval,
		pollInterval: defaultPollInterval,
		clock:        time.Now,
	}
}

// Collect queries every full window between start and now and returns the
// utilization metrics averaged per (task, container instance) pair. A
// failing window aborts the remaining windows but keeps what was already
// collected; the error reports the abort while the returned samples stay
// usable.
func (c *Collector) Collect(ctx context.Context, start time.Time) ([]models.TaskResourceUsage, error) {
	log.Ctx(ctx).Info().
		Str("LogGroup", c.logGroup).
		Dur("Interval", c.interval).
		Time("Start", start).
		Msg("Querying Container Insights performance logs. This may take a while.")

	var samples []taskRecord
	var windowErr error

	// The end bound is fixed up front so a slow collection does not keep
	// growing new windows as wall time advances.
	now := c.clock().Unix()
	windowStart := start.Unix()
	windowEnd := windowStart + int64(c.interval.Seconds())
	for windowEnd < now {
		windowSamples, err := c.collectWindow(ctx, windowStart, windowEnd)
		if err != nil {
			windowErr = errors.Wrapf(err, "querying window %d-%d, keeping %d windows already collected",
				windowStart, windowEnd, len(samples))
			break
		}
		samples = append(samples, windowSamples...)
		windowStart = windowEnd
		windowEnd = windowStart + int64(c.interval.Seconds())
	}

	return averageByTask(samples), windowErr
}

func (c *Collector) collectWindow(ctx context.Context, startSeconds, endSeconds int64) ([]taskRecord, error) {
	started, err := c.client.StartQuery(ctx, &cloudwatchlogs.StartQueryInput{
		LogGroupName: aws.String(c.logGroup),
		StartTime:    aws.Int64(startSeconds),
		EndTime:      aws.Int64(endSeconds),
		QueryString:  aws.String(queryString),
		Limit:        aws.Int32(queryLimit),
	})
	if err != nil {
		return nil, err
	}

	queryID := aws.ToString(started.QueryId)
	log.Ctx(ctx).Debug().Str("QueryID", queryID).Msg("Started Logs Insights query")

	results, err := c.waitForQuery(ctx, queryID)
	if err != nil {
		return nil, err
	}

	var records []taskRecord
	for _, row := range results {
		message := resultField(row, "@message")
		if message == "" {
			continue
		}
		var record taskRecord
		if err := json.Unmarshal([]byte(message), &record); err != nil {
			// Performance log groups mix event shapes, skip anything
			// that is not valid JSON.
			continue
		}
		if record.Type == "Task" {
			records = append(records, record)
		}
	}
	return records, nil
}

// waitForQuery polls the query at the poll interval until it reaches a
// terminal status or the context is cancelled.
func (c *Collector) waitForQuery(ctx context.Context, queryID string) ([][]types.ResultField, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		response, err := c.client.GetQueryResults(ctx, &cloudwatchlogs.GetQueryResultsInput{
			QueryId: aws.String(queryID),
		})
		if err != nil {
			return nil, err
		}

		switch response.Status {
		case types.QueryStatusScheduled, types.QueryStatusRunning:
			continue
		case types.QueryStatusComplete:
			return response.Results, nil
		default:
			return nil, errors.Errorf("query %s finished with status %s", queryID, response.Status)
		}
	}
}

func resultField(row []types.ResultField, field string) string {
	for _, candidate := range row {
		if aws.ToString(candidate.Field) == field {
			return aws.ToString(candidate.Value)
		}
	}
	return ""
}

// averageByTask averages the metrics of log records sharing the same
// (task, container instance) pair. Container Insights emits one record
// per task per minute, so long jobs contribute many samples.
func averageByTask(samples []taskRecord) []models.TaskResourceUsage {
	type key struct {
		taskID     string
		instanceID string
	}
	type accumulator struct {
		usage models.TaskResourceUsage
		count int
	}

	groups := make(map[key]*accumulator)
	var order []key
	for _, sample := range samples {
		k := key{taskID: sample.TaskID, instanceID: sample.ContainerInstanceID}
		group, ok := groups[k]
		if !ok {
			group = &accumulator{usage: models.TaskResourceUsage{
				TaskID:              sample.TaskID,
				ContainerInstanceID: sample.ContainerInstanceID,
			}}
			groups[k] = group
			order = append(order, k)
		}
		group.usage.CPUUtilized += sample.CPUUtilized
		group.usage.CPUReserved += sample.CPUReserved
		group.usage.MemoryUtilized += sample.MemoryUtilized
		group.usage.MemoryReserved += sample.MemoryReserved
		group.count++
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].taskID != order[j].taskID {
			return order[i].taskID < order[j].taskID
		}
		return order[i].instanceID < order[j].instanceID
	})

	usages := make([]models.TaskResourceUsage, 0, len(order))
	for _, k := range order {
		group := groups[k]
		n := float64(group.count)
		usage := group.usage
		usage.CPUUtilized /= n
		usage.CPUReserved /= n
		usage.MemoryUtilized /= n
		usage.MemoryReserved /= n
		usages = append(usages, usage)
	}
	return usages
}
