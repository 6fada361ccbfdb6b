// Package statusclient reports job progress to the external status
// collaborator via HTTP PATCH. Reporting failures are logged and never
// fail the job.
package statusclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	ingesterrors "github.com/coderisk/ingestworker/internal/errors"
)

// ResultSummary is the payload reported on job completion.
type ResultSummary struct {
	TotalFiles      int            `json:"total_files"`
	TotalFunctions  int            `json:"total_functions"`
	TotalClasses    int            `json:"total_classes"`
	Dependencies    int            `json:"dependencies"`
	ComplexityScore float64        `json:"complexity_score"`
	Languages       map[string]int `json:"languages"`
	GraphPatch      *GraphPatch    `json:"graph_patch,omitempty"`
}

// GraphPatch describes the normalized nodes and edges touched by an
// incremental ingestion run.
type GraphPatch struct {
	Nodes []map[string]any `json:"nodes"`
	Edges []map[string]any `json:"edges"`
}

// report is the PATCH body; fields are omitted when nil so a progress-only
// report does not clobber other fields on the collaborator's side.
type report struct {
	Status        *string        `json:"status,omitempty"`
	Progress      *int           `json:"progress,omitempty"`
	ResultSummary *ResultSummary `json:"result_summary,omitempty"`
	Error         *string        `json:"error,omitempty"`
}

// Client PATCHes job status to the status collaborator.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New builds a Client against baseURL (e.g. "https://api.internal").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  slog.Default().With("component", "statusclient"),
	}
}

// ReportProgress reports a status/progress checkpoint.
func (c *Client) ReportProgress(ctx context.Context, jobID, status string, progress int) {
	c.send(ctx, jobID, report{Status: &status, Progress: &progress})
}

// ReportCompleted reports status=COMPLETED, progress=100 with the job's
// result summary.
func (c *Client) ReportCompleted(ctx context.Context, jobID string, summary ResultSummary) {
	status := "COMPLETED"
	progress := 100
	c.send(ctx, jobID, report{Status: &status, Progress: &progress, ResultSummary: &summary})
}

// ReportFailed reports status=FAILED with a textual error payload.
func (c *Client) ReportFailed(ctx context.Context, jobID string, jobErr error) {
	status := "FAILED"
	msg := jobErr.Error()
	c.send(ctx, jobID, report{Status: &status, Error: &msg})
}

func (c *Client) send(ctx context.Context, jobID string, body report) {
	payload, err := json.Marshal(body)
	if err != nil {
		c.logFailure(jobID, ingesterrors.ReportingError(err, "failed to marshal status report"))
		return
	}

	url := fmt.Sprintf("%s/api/v1/jobs/%s", c.baseURL, jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(payload))
	if err != nil {
		c.logFailure(jobID, ingesterrors.ReportingError(err, "failed to build status report request"))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logFailure(jobID, ingesterrors.ReportingError(err, "status report request failed"))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logFailure(jobID, ingesterrors.ReportingError(nil, fmt.Sprintf("status report returned %d", resp.StatusCode)))
	}
}

func (c *Client) logFailure(jobID string, err *ingesterrors.Error) {
	c.logger.Warn(err.Error(), "job_id", jobID)
}
