package domain

import "go.trai.ch/zerr"

// TaskState represents the lifecycle state of a top-level task during a run.
type TaskState string

const (
	// TaskPending indicates the task has not started yet.
	TaskPending TaskState = "pending"
	// TaskRunning indicates the task is executing.
	TaskRunning TaskState = "running"
	// TaskSucceeded indicates the task finished successfully.
	TaskSucceeded TaskState = "succeeded"
	// TaskFailed indicates the task failed and halted the run.
	TaskFailed TaskState = "failed"
)

// ErrInvalidTransition is returned when a task state change is not allowed.
var ErrInvalidTransition = zerr.New("invalid task state transition")

// IsTerminal reports whether the state is final.
func (s TaskState) IsTerminal() bool {
	return s == TaskSucceeded || s == TaskFailed
}

// Transition validates a state change and returns the new state.
// Allowed: pending -> running, running -> succeeded, running -> failed.
func (s TaskState) Transition(to TaskState) (TaskState, error) {
	switch {
	case s == TaskPending && to == TaskRunning:
		return to, nil
	case s == TaskRunning && (to == TaskSucceeded || to == TaskFailed):
		return to, nil
	default:
		err := zerr.With(ErrInvalidTransition, "from", string(s))
		return s, zerr.With(err, "to", string(to))
	}
}

// LogLevel represents the severity of a log message, mirroring the standard slog levels.
type LogLevel int

const (
	// LogLevelDebug represents debug-level verbosity.
	LogLevelDebug LogLevel = -4
	// LogLevelInfo represents informational verbosity.
	LogLevelInfo LogLevel = 0
	// LogLevelWarn represents warning verbosity.
	LogLevelWarn LogLevel = 4
	// LogLevelError represents error verbosity.
	LogLevelError LogLevel = 8
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}
