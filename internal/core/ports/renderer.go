package ports

import (
	"context"
	"time"

	"go.trai.ch/berth/internal/core/domain"
)

// Renderer is the abstraction for run progress output.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer.
	Start(ctx context.Context) error

	// Stop flushes buffered output and stops accepting events.
	Stop() error

	// Wait blocks until the renderer has fully terminated.
	Wait() error

	// OnPlanEmit is called with the description of every top-level task, in order.
	OnPlanEmit(script string, tasks []string)

	// OnTaskStart is called when the task at index begins.
	OnTaskStart(index int, description string, startTime time.Time)

	// OnTaskComplete is called when the task at index finishes. err is nil on success.
	OnTaskComplete(index int, endTime time.Time, err error)

	// OnSummary is called once the run has halted or completed.
	OnSummary(summary domain.Summary)
}
