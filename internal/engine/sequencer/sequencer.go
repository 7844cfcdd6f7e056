// Package sequencer runs a top-level task list in order and stops at the
// first failure.
package sequencer

import (
	"context"
	"sync"
	"time"

	"go.trai.ch/berth/internal/core/domain"
	"go.trai.ch/berth/internal/core/ports"
	"go.trai.ch/zerr"
)

// TaskRunner executes a single top-level task.
type TaskRunner interface {
	Execute(ctx context.Context, index int, task domain.Task) error
}

// Sequencer owns the ordering and fail-fast policy of a run.
type Sequencer struct {
	runner    TaskRunner
	renderer  ports.Renderer
	telemetry ports.Telemetry
	now       func() time.Time

	mu     sync.RWMutex
	states []domain.TaskState
}

// New creates a new Sequencer.
func New(runner TaskRunner, renderer ports.Renderer, telemetry ports.Telemetry) *Sequencer {
	return &Sequencer{
		runner:    runner,
		renderer:  renderer,
		telemetry: telemetry,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for renderer timestamps.
func (s *Sequencer) WithClock(now func() time.Time) *Sequencer {
	s.now = now
	return s
}

// Plan reports the description of every task to the renderer and returns them.
func (s *Sequencer) Plan(script string, tasks []domain.Task) []string {
	descriptions := Describe(tasks)
	s.renderer.OnPlanEmit(script, descriptions)
	return descriptions
}

// Describe renders the description of every task, in order.
func Describe(tasks []domain.Task) []string {
	descriptions := make([]string, len(tasks))
	for i, task := range tasks {
		descriptions[i] = task.Describe()
	}
	return descriptions
}

// Run executes tasks strictly in order. The first failure halts the run: the
// failing task is reported as errored and the rest never start. A halted run
// returns a *domain.RunError.
func (s *Sequencer) Run(ctx context.Context, script string, tasks []domain.Task) (domain.Summary, error) {
	s.initStates(len(tasks))
	descriptions := s.Plan(script, tasks)

	for i, task := range tasks {
		if err := s.setState(i, domain.TaskRunning); err != nil {
			return domain.Summary{}, err
		}

		if err := ctx.Err(); err != nil {
			cancelled := domain.NewTaskError(i, zerr.Wrap(err, domain.ErrRunCancelled.Error()))
			return s.halt(i, task, cancelled)
		}

		vctx, vertex := s.telemetry.Record(ctx, descriptions[i])
		s.renderer.OnTaskStart(i, descriptions[i], s.now())

		err := s.runner.Execute(vctx, i, task)

		vertex.Complete(err)
		s.renderer.OnTaskComplete(i, s.now(), err)

		if err != nil {
			return s.halt(i, task, asTaskError(i, err))
		}

		if err := s.setState(i, domain.TaskSucceeded); err != nil {
			return domain.Summary{}, err
		}
	}

	summary := domain.NewSummary(len(tasks), -1)
	s.renderer.OnSummary(summary)
	return summary, nil
}

// States returns a snapshot of every task's state from the most recent run.
func (s *Sequencer) States() []domain.TaskState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.TaskState, len(s.states))
	copy(out, s.states)
	return out
}

func (s *Sequencer) halt(index int, task domain.Task, taskErr *domain.TaskError) (domain.Summary, error) {
	if err := s.setState(index, domain.TaskFailed); err != nil {
		return domain.Summary{}, err
	}

	summary := domain.NewSummary(len(s.states), index)
	s.renderer.OnSummary(summary)

	return summary, &domain.RunError{Task: task, Err: taskErr, Summary: summary}
}

func (s *Sequencer) initStates(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states = make([]domain.TaskState, n)
	for i := range s.states {
		s.states[i] = domain.TaskPending
	}
}

func (s *Sequencer) setState(index int, to domain.TaskState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.states[index].Transition(to)
	if err != nil {
		return zerr.With(err, "index", index)
	}
	s.states[index] = next
	return nil
}

// asTaskError makes sure err carries the top-level index.
func asTaskError(index int, err error) *domain.TaskError {
	if taskErr, ok := err.(*domain.TaskError); ok {
		if taskErr.Index == index {
			return taskErr
		}
		fixed := *taskErr
		fixed.Index = index
		return &fixed
	}
	return domain.NewTaskError(index, err)
}
