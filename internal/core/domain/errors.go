package domain

import "go.trai.ch/zerr"

var (
	// ErrTaskFailed is returned when a single task fails.
	ErrTaskFailed = zerr.New("task failed")

	// ErrRunFailed is returned when a run stops on a failed task.
	ErrRunFailed = zerr.New("run failed")

	// ErrPreconditionFailed is returned when a FileExists or FilesDiffer check does not hold.
	ErrPreconditionFailed = zerr.New("precondition failed")

	// ErrFileWriteFailed is returned when a file or its parent directories cannot be written.
	ErrFileWriteFailed = zerr.New("failed to write file")

	// ErrFileReadFailed is returned when a file cannot be read for comparison.
	ErrFileReadFailed = zerr.New("failed to read file")

	// ErrPathStatFailed is returned when stating a path fails for a reason other than absence.
	ErrPathStatFailed = zerr.New("failed to stat path")

	// ErrCommandFailed is returned when a shell command cannot be spawned or exits non-zero.
	ErrCommandFailed = zerr.New("command failed")

	// ErrConditionFailed is returned when a condition cannot be evaluated.
	ErrConditionFailed = zerr.New("failed to evaluate condition")

	// ErrUnknownTask is returned when the interpreter receives a task kind it does not know.
	ErrUnknownTask = zerr.New("unknown task kind")

	// ErrUnknownCondition is returned when the interpreter receives a condition kind it does not know.
	ErrUnknownCondition = zerr.New("unknown condition kind")

	// ErrRunCancelled is returned when the run context is cancelled before a task starts.
	ErrRunCancelled = zerr.New("run cancelled")

	// ErrPromptClosed is returned when the prompt input ends before an answer is given.
	ErrPromptClosed = zerr.New("prompt input closed before an answer was given")

	// ErrNoScriptSpecified is returned when no script name is passed to run.
	ErrNoScriptSpecified = zerr.New("no script specified")

	// ErrScriptNotFound is returned when a script or alias name cannot be resolved.
	ErrScriptNotFound = zerr.New("script not found")

	// ErrScriptCycle is returned when a script references itself directly or indirectly.
	ErrScriptCycle = zerr.New("script reference cycle detected")

	// ErrScriptDepthExceeded is returned when script references nest deeper than MaxScriptDepth.
	ErrScriptDepthExceeded = zerr.New("script references nested too deeply")

	// ErrInvalidScriptName is returned when a script or alias name contains invalid characters.
	ErrInvalidScriptName = zerr.New("invalid script name")

	// ErrDuplicateAlias is returned when an alias shadows a script of the same name.
	ErrDuplicateAlias = zerr.New("alias shadows a script")

	// ErrInvalidStep is returned when a script step cannot be decoded.
	ErrInvalidStep = zerr.New("invalid step")

	// ErrInvalidComposeStep is returned when a docker-compose step is missing required fields.
	ErrInvalidComposeStep = zerr.New("invalid docker-compose step")

	// ErrConfigNotFound is returned when no project file is found.
	ErrConfigNotFound = zerr.New("could not find " + ProjectFileName)

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigMergeFailed is returned when user defaults cannot be merged into the project config.
	ErrConfigMergeFailed = zerr.New("failed to merge user defaults")
)
