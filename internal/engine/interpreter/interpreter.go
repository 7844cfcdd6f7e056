// Package interpreter executes individual tasks and evaluates conditions.
package interpreter

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"

	"go.trai.ch/berth/internal/core/domain"
	"go.trai.ch/berth/internal/core/ports"
	"go.trai.ch/zerr"
)

// Interpreter turns a domain.Task into its side effect.
// It runs one task at a time and never mutates the task tree.
type Interpreter struct {
	executor ports.Executor
	fs       ports.FileSystem
	prompter ports.Prompter
	logger   ports.Logger

	shell  string
	dir    string
	env    map[string]string
	stdout io.Writer
	stderr io.Writer
}

// New creates a new Interpreter with the given dependencies.
func New(
	executor ports.Executor,
	fs ports.FileSystem,
	prompter ports.Prompter,
	logger ports.Logger,
) *Interpreter {
	return &Interpreter{
		executor: executor,
		fs:       fs,
		prompter: prompter,
		logger:   logger,
		shell:    domain.DefaultShell,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
}

// WithShell sets the shell used for Command and SimpleCommand tasks.
func (i *Interpreter) WithShell(shell string) *Interpreter {
	if shell != "" {
		i.shell = shell
	}
	return i
}

// WithDir sets the working directory for commands. Relative file paths in
// tasks and conditions are resolved against it.
func (i *Interpreter) WithDir(dir string) *Interpreter {
	i.dir = dir
	return i
}

// WithEnv sets the base environment of every command. Command.Env entries
// override it.
func (i *Interpreter) WithEnv(env map[string]string) *Interpreter {
	i.env = env
	return i
}

// WithOutput sets where non-interactive command output is forwarded.
func (i *Interpreter) WithOutput(stdout, stderr io.Writer) *Interpreter {
	if stdout != nil {
		i.stdout = stdout
	}
	if stderr != nil {
		i.stderr = stderr
	}
	return i
}

// Execute runs task, which sits at index in the top-level task list.
// Any failure is returned as a *domain.TaskError carrying index.
func (i *Interpreter) Execute(ctx context.Context, index int, task domain.Task) error {
	err := i.run(ctx, task)
	if err == nil {
		return nil
	}

	if taskErr, ok := err.(*domain.TaskError); ok {
		nested := *taskErr
		nested.Index = index
		return &nested
	}
	return domain.NewTaskError(index, err)
}

// Evaluate answers a single condition.
// A failure to evaluate is returned as an error and never as AnswerNo.
func (i *Interpreter) Evaluate(ctx context.Context, cond domain.Condition) (domain.Answer, error) {
	switch c := cond.(type) {
	case domain.PathPresent:
		ok, err := i.fs.Exists(i.path(c.Path))
		if err != nil {
			return domain.AnswerNo, err
		}
		return domain.AnswerOf(ok), nil

	case domain.ContentDiffers:
		differ, err := i.fs.Differ(i.path(c.Left), i.path(c.Right))
		if err != nil {
			return domain.AnswerNo, err
		}
		return domain.AnswerOf(differ), nil

	case domain.Question:
		return i.prompter.Confirm(ctx, c.Prompt)

	default:
		return domain.AnswerNo, zerr.With(domain.ErrUnknownCondition, "type", fmt.Sprintf("%T", cond))
	}
}

//nolint:cyclop // one case per task kind
func (i *Interpreter) run(ctx context.Context, task domain.Task) error {
	switch t := task.(type) {
	case domain.FileWrite:
		if err := i.fs.WriteFile(i.path(t.Path), t.Content); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrFileWriteFailed.Error()), "path", t.Path)
		}
		return nil

	case domain.FileExists:
		ok, err := i.fs.Exists(i.path(t.Path))
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrConditionFailed.Error()), "path", t.Path)
		}
		if !ok {
			return zerr.With(zerr.Wrap(domain.ErrPreconditionFailed, t.Path+" does not exist"), "path", t.Path)
		}
		return nil

	case domain.FilesDiffer:
		differ, err := i.fs.Differ(i.path(t.Left), i.path(t.Right))
		if err != nil {
			err = zerr.With(zerr.Wrap(err, domain.ErrConditionFailed.Error()), "left", t.Left)
			return zerr.With(err, "right", t.Right)
		}
		if !differ {
			err := zerr.Wrap(domain.ErrPreconditionFailed, t.Left+" and "+t.Right+" are identical")
			return zerr.With(zerr.With(err, "left", t.Left), "right", t.Right)
		}
		return nil

	case domain.Command:
		return i.execute(ctx, &domain.ShellCommand{
			Shell:  i.shell,
			Script: t.Command,
			Env:    mergeEnv(i.env, t.Env),
			Stdin:  t.Stdin,
			Dir:    i.dir,
		})

	case domain.SimpleCommand:
		return i.execute(ctx, &domain.ShellCommand{
			Shell:       i.shell,
			Script:      t.Command,
			Env:         i.env,
			Interactive: true,
			Dir:         i.dir,
		})

	case domain.Seq:
		return i.runSeq(ctx, t.Tasks)

	case domain.Conditional:
		return i.runConditional(ctx, t)

	case domain.Notify:
		i.logger.Info(t.Message)
		return nil

	case domain.NotifyError:
		i.logger.Error(zerr.New(t.Message))
		return nil

	case domain.Noop:
		return nil

	default:
		return zerr.With(domain.ErrUnknownTask, "type", fmt.Sprintf("%T", task))
	}
}

// runSeq runs tasks in order and stops at the first failure.
func (i *Interpreter) runSeq(ctx context.Context, tasks []domain.Task) error {
	for pos, task := range tasks {
		err := i.run(ctx, task)
		if err == nil {
			continue
		}
		if taskErr, ok := err.(*domain.TaskError); ok {
			return taskErr.Nested(pos)
		}
		return domain.NewTaskError(0, err).Nested(pos)
	}
	return nil
}

// runConditional evaluates conditions left to right. The first AnswerNo
// selects OnNo without evaluating the remaining conditions.
func (i *Interpreter) runConditional(ctx context.Context, t domain.Conditional) error {
	for _, cond := range t.Conditions {
		answer, err := i.Evaluate(ctx, cond)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrConditionFailed.Error()), "condition", cond.Describe())
		}
		if answer == domain.AnswerNo {
			return i.runSeq(ctx, t.OnNo)
		}
	}
	return i.runSeq(ctx, t.OnYes)
}

func mergeEnv(base, override map[string]string) map[string]string {
	if len(base) == 0 {
		return override
	}
	merged := maps.Clone(base)
	maps.Copy(merged, override)
	return merged
}

func (i *Interpreter) path(p string) string {
	if i.dir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(i.dir, p)
}

func (i *Interpreter) execute(ctx context.Context, cmd *domain.ShellCommand) error {
	stdout, stderr := i.stdout, i.stderr
	if v, ok := ports.VertexFromContext(ctx); ok {
		stdout = io.MultiWriter(stdout, v.Stdout())
		stderr = io.MultiWriter(stderr, v.Stderr())
	}

	if err := i.executor.Execute(ctx, cmd, stdout, stderr); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCommandFailed.Error()), "command", cmd.Script)
	}
	return nil
}
