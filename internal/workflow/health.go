package workflow

import (
	"context"

	"clipforge/internal/queue"
	"clipforge/internal/stage"
)

// Health aggregates the worker and queue state for diagnostics.
type Health struct {
	Running bool                `json:"running"`
	Stage   stage.Health        `json:"stage"`
	Queue   queue.HealthSummary `json:"queue"`
}

// Health reports whether the worker loop is healthy and how the queue looks.
func (m *Manager) Health(ctx context.Context) (Health, error) {
	summary, err := m.store.Health(ctx)
	if err != nil {
		return Health{}, err
	}
	return Health{
		Running: m.Running(),
		Stage:   m.handler.HealthCheck(ctx),
		Queue:   summary,
	}, nil
}
