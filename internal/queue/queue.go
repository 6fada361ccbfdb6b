// Package queue implements the job-queue consumer: pop-one semantics over
// a Redis list, with a JSON job schema and graceful handling of malformed
// messages.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	ingesterrors "github.com/coderisk/ingestworker/internal/errors"
)

// IdleSleep is how long Poll sleeps after Pop finds the queue empty
// (Pop then returns a nil job and nil error), giving the poll loop a fixed
// cadence.
const IdleSleep = 2 * time.Second

// Options carries the optional, job-specific instructions a queue message
// may include.
type Options struct {
	GitToken     string   `json:"git_token,omitempty"`
	ChangedFiles []string `json:"changed_files,omitempty"`
	RemovedFiles []string `json:"removed_files,omitempty"`
	Incremental  string   `json:"incremental,omitempty"`
}

// IsIncremental reports whether the job runs in incremental mode: either
// the flag is explicitly "true", or either file list is non-empty.
func (o Options) IsIncremental() bool {
	return o.Incremental == "true" || len(o.ChangedFiles) > 0 || len(o.RemovedFiles) > 0
}

// Job is a single unit of ingestion work popped from the queue.
type Job struct {
	JobID     string    `json:"job_id"`
	RepoID    string    `json:"repo_id"`
	RepoURL   string    `json:"repo_url"`
	Branch    string    `json:"branch"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Options   Options   `json:"options,omitempty"`
}

// Consumer pops jobs from a Redis list. The zero value is not usable; use
// NewConsumer.
type Consumer struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

// NewConsumer builds a Consumer over the given Redis connection and list
// key, verifying connectivity with a Ping.
func NewConsumer(ctx context.Context, addr, password, key string) (*Consumer, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: 0})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, ingesterrors.ConnectivityError(err, fmt.Sprintf("failed to connect to queue at %s", addr))
	}

	return &Consumer{
		client: client,
		key:    key,
		logger: slog.Default().With("component", "queue"),
	}, nil
}

// Close releases the underlying Redis connection.
func (c *Consumer) Close() error {
	return c.client.Close()
}

// Pop performs a non-blocking single-element dequeue. It returns (nil,
// nil) when the queue is empty — the caller is expected to idle-sleep
// (IdleSleep) before polling again. A malformed element is logged and
// discarded as a *errors.Error of ErrorTypeJobSchema; Pop does not return
// it to the caller, since job-schema errors are never fatal and must not
// block the poll loop.
func (c *Consumer) Pop(ctx context.Context) (*Job, error) {
	raw, err := c.client.LPop(ctx, c.key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, ingesterrors.ConnectivityError(err, "queue pop failed")
	}

	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		schemaErr := ingesterrors.JobSchemaError(err, "discarding malformed queue message")
		c.logger.Warn(schemaErr.Error(), "raw", raw)
		return nil, nil
	}
	if job.JobID == "" || job.RepoURL == "" {
		schemaErr := ingesterrors.JobSchemaError(nil, "discarding queue message missing job_id or repo_url")
		c.logger.Warn(schemaErr.Error(), "raw", raw)
		return nil, nil
	}

	return &job, nil
}

// Poll blocks until a job is available or ctx is cancelled, idle-sleeping
// between empty pops.
func (c *Consumer) Poll(ctx context.Context) (*Job, error) {
	for {
		job, err := c.Pop(ctx)
		if err != nil {
			return nil, err
		}
		if job != nil {
			return job, nil
		}

		timer := time.NewTimer(IdleSleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
