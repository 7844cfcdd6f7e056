package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// TaskError identifies where a run failed.
// Index is the zero-based position in the top-level task list. Path holds the
// positions inside nested Seq and Conditional branches, outermost first.
type TaskError struct {
	Index   int
	Path    []int
	Message string
	Cause   error
}

// NewTaskError builds a TaskError whose message embeds the cause.
func NewTaskError(index int, cause error) *TaskError {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &TaskError{Index: index, Message: msg, Cause: cause}
}

// Error implements error.
func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s: %s", e.Position(), e.Message)
}

// Unwrap returns the underlying cause.
func (e *TaskError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrTaskFailed, so any task failure matches it.
func (e *TaskError) Is(target error) bool {
	return target == ErrTaskFailed //nolint:errorlint // identity check against the sentinel
}

// Position renders the index and nested path, e.g. "2" or "2.0.1".
func (e *TaskError) Position() string {
	parts := make([]string, 0, len(e.Path)+1)
	parts = append(parts, strconv.Itoa(e.Index))
	for _, p := range e.Path {
		parts = append(parts, strconv.Itoa(p))
	}
	return strings.Join(parts, ".")
}

// Nested returns a copy of e with pos prepended to its nested path.
func (e *TaskError) Nested(pos int) *TaskError {
	path := make([]int, 0, len(e.Path)+1)
	path = append(path, pos)
	path = append(path, e.Path...)
	return &TaskError{Index: e.Index, Path: path, Message: e.Message, Cause: e.Cause}
}

// Summary counts the outcome of a top-level task list.
type Summary struct {
	Total      int
	Completed  int
	Errored    int
	NotStarted int
}

// NewSummary builds the summary for a list of total tasks that stopped at
// failedIndex. A negative failedIndex means every task completed.
func NewSummary(total, failedIndex int) Summary {
	if failedIndex < 0 || failedIndex >= total {
		return Summary{Total: total, Completed: total}
	}
	return Summary{
		Total:      total,
		Completed:  failedIndex,
		Errored:    1,
		NotStarted: total - failedIndex - 1,
	}
}

// Success reports whether no task errored.
func (s Summary) Success() bool {
	return s.Errored == 0
}

// String renders "N complete, 1 errored, M didn't start".
func (s Summary) String() string {
	return fmt.Sprintf("%d complete, %d errored, %d didn't start", s.Completed, s.Errored, s.NotStarted)
}

// RunError is returned when a run halts. It carries the task that failed so
// callers can render what went wrong.
type RunError struct {
	Task    Task
	Err     *TaskError
	Summary Summary
}

// Error implements error.
func (e *RunError) Error() string {
	return fmt.Sprintf("%s: %s", e.Task.Describe(), e.Err.Message)
}

// Unwrap exposes ErrRunFailed and the task error chain to errors.Is and errors.As.
func (e *RunError) Unwrap() []error {
	return []error{ErrRunFailed, e.Err}
}

// AsRunError extracts a RunError from err.
func AsRunError(err error) (*RunError, bool) {
	var runErr *RunError
	ok := errors.As(err, &runErr)
	return runErr, ok
}
