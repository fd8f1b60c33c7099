package queue

import (
	"encoding/json"
	"strings"
	"time"

	"clipforge/internal/config"
)

// Status represents the lifecycle of an analysis job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// CancelledReason is the failure reason recorded when a user cancels a job.
const CancelledReason = "cancelled"

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ParseStatus validates a user-supplied status string.
func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	_, ok := statusSet[status]
	return status, ok
}

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is one analysis request moving through the queue.
type Job struct {
	ID              string
	VideoID         string
	SourcePath      string
	ParamsJSON      string
	Status          Status
	Progress        float64
	ErrorMessage    string
	LogsJSON        string
	CancelRequested bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	LastHeartbeat   *time.Time
}

// Params decodes the job's analysis parameters over the provided defaults.
// Fields the job never set keep their default values.
func (j *Job) Params(defaults config.JobParams) (config.JobParams, error) {
	params := defaults
	if strings.TrimSpace(j.ParamsJSON) == "" {
		return params, nil
	}
	if err := json.Unmarshal([]byte(j.ParamsJSON), &params); err != nil {
		return config.JobParams{}, err
	}
	return params, nil
}

// SetProgress raises the job's progress marker. Progress never moves
// backward, even when concurrent extractors report out of order.
func (j *Job) SetProgress(value float64) {
	if value > 100 {
		value = 100
	}
	if value > j.Progress {
		j.Progress = value
	}
}

// SetFailed marks the job failed with the given reason. Progress keeps its
// last value so operators can see how far the job got.
func (j *Job) SetFailed(reason string) {
	j.Status = StatusFailed
	j.ErrorMessage = reason
}

// SetLogs records the analysis summary map as JSON.
func (j *Job) SetLogs(entries map[string]any) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	j.LogsJSON = string(data)
	return nil
}

// HealthSummary aggregates queue counts for diagnostics.
type HealthSummary struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}
