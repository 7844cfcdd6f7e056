// Package script flattens user-authored scripts into an ordered task list.
package script

import (
	"fmt"
	"slices"
	"strings"

	"go.trai.ch/berth/internal/core/domain"
	"go.trai.ch/zerr"
)

// Resolver turns a named script into the tasks the sequencer runs.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve expands the script or alias called name. Script references are
// inlined recursively; a reference back onto the current expansion path fails
// with domain.ErrScriptCycle and nesting beyond domain.MaxScriptDepth fails
// with domain.ErrScriptDepthExceeded.
func (r *Resolver) Resolve(project *domain.Project, name string) ([]domain.Task, error) {
	if name == "" {
		return nil, domain.ErrNoScriptSpecified
	}
	res := &resolution{project: project}
	return res.script(name)
}

// resolution carries the expansion stack of a single Resolve call.
type resolution struct {
	project *domain.Project
	stack   []string
}

func (r *resolution) script(name string) ([]domain.Task, error) {
	if slices.Contains(r.stack, name) {
		path := strings.Join(append(slices.Clone(r.stack), name), " -> ")
		return nil, zerr.With(zerr.Wrap(domain.ErrScriptCycle, path), "script", name)
	}
	if len(r.stack) >= domain.MaxScriptDepth {
		path := strings.Join(append(slices.Clone(r.stack), name), " -> ")
		return nil, zerr.With(zerr.Wrap(domain.ErrScriptDepthExceeded, path), "max_depth", domain.MaxScriptDepth)
	}

	r.stack = append(r.stack, name)
	defer func() { r.stack = r.stack[:len(r.stack)-1] }()

	if target, ok := r.project.Aliases[name]; ok {
		return r.script(target)
	}

	s, ok := r.project.Scripts[name]
	if !ok {
		return nil, zerr.Wrap(domain.ErrScriptNotFound, fmt.Sprintf("unknown script %q", name))
	}

	return r.steps(s.Steps)
}

func (r *resolution) steps(steps []domain.Step) ([]domain.Task, error) {
	tasks := make([]domain.Task, 0, len(steps))
	for i, step := range steps {
		stepTasks, err := r.step(i, step)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, stepTasks...)
	}
	return tasks, nil
}

//nolint:cyclop // one case per step kind
func (r *resolution) step(index int, step domain.Step) ([]domain.Task, error) {
	switch s := step.(type) {
	case domain.ShellStep:
		if len(s.Env) == 0 && s.Stdin == "" {
			return []domain.Task{domain.SimpleCommand{Command: s.Command}}, nil
		}
		cmd := domain.Command{Command: s.Command, Env: s.Env}
		if s.Stdin != "" {
			cmd.Stdin = []byte(s.Stdin)
		}
		return []domain.Task{cmd}, nil

	case domain.ScriptRef:
		return r.script(s.Name)

	case domain.ComposeStep:
		commands, err := RenderCompose(r.project, s)
		if err != nil {
			return nil, r.annotate(err, index)
		}
		if len(commands) == 1 {
			return []domain.Task{domain.SimpleCommand{Command: commands[0]}}, nil
		}
		batch := make([]domain.Task, len(commands))
		for i, c := range commands {
			batch[i] = domain.SimpleCommand{Command: c}
		}
		return []domain.Task{domain.Seq{Tasks: batch}}, nil

	case domain.RawComposeStep:
		return []domain.Task{domain.SimpleCommand{Command: RenderRawCompose(r.project, s.Args)}}, nil

	case domain.WriteStep:
		return []domain.Task{domain.FileWrite{Path: s.Path, Content: []byte(s.Content)}}, nil

	case domain.ExistsStep:
		return []domain.Task{domain.FileExists{Path: s.Path}}, nil

	case domain.DifferStep:
		return []domain.Task{domain.FilesDiffer{Left: s.Left, Right: s.Right}}, nil

	case domain.NotifyStep:
		if s.Error {
			return []domain.Task{domain.NotifyError{Message: s.Message}}, nil
		}
		return []domain.Task{domain.Notify{Message: s.Message}}, nil

	case domain.IfStep:
		return r.conditional(index, s)

	default:
		err := zerr.With(zerr.Wrap(domain.ErrInvalidStep, "unknown step kind"), "type", fmt.Sprintf("%T", step))
		return nil, r.annotate(err, index)
	}
}

func (r *resolution) conditional(index int, s domain.IfStep) ([]domain.Task, error) {
	conditions := make([]domain.Condition, 0, len(s.Exists)+len(s.Differ)+1)
	for _, path := range s.Exists {
		conditions = append(conditions, domain.PathPresent{Path: path})
	}
	for _, pair := range s.Differ {
		conditions = append(conditions, domain.ContentDiffers{Left: pair[0], Right: pair[1]})
	}
	if s.Ask != "" {
		conditions = append(conditions, domain.Question{Prompt: s.Ask})
	}
	if len(conditions) == 0 {
		return nil, r.annotate(zerr.Wrap(domain.ErrInvalidStep, "if step has no conditions"), index)
	}

	onYes, err := r.steps(s.Then)
	if err != nil {
		return nil, err
	}
	onNo, err := r.steps(s.Else)
	if err != nil {
		return nil, err
	}

	return []domain.Task{domain.Conditional{
		Conditions: domain.OrderConditions(conditions),
		OnYes:      onYes,
		OnNo:       onNo,
		Label:      s.Label,
	}}, nil
}

// annotate records where in the current script a step failed to resolve.
func (r *resolution) annotate(err error, index int) error {
	if len(r.stack) > 0 {
		err = zerr.With(err, "script", r.stack[len(r.stack)-1])
	}
	return zerr.With(err, "step", index)
}
