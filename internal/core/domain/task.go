// Package domain contains the core domain models for berth: the task algebra,
// conditions, scripts and the errors produced while running them.
package domain

import (
	"fmt"
	"strings"
)

// Task is a single step of a run.
// The set of implementations is closed; the interpreter matches on every case.
type Task interface {
	// Describe returns a human-readable rendering of the task.
	Describe() string
	isTask()
}

// FileWrite writes Content to Path, creating any missing parent directories.
type FileWrite struct {
	Path        string
	Content     []byte
	Description string
}

// FileExists fails when Path does not exist.
type FileExists struct {
	Path        string
	Description string
}

// FilesDiffer fails when Left and Right have identical contents.
type FilesDiffer struct {
	Left        string
	Right       string
	Description string
}

// Command runs a shell command with extra environment and piped stdin.
type Command struct {
	Command string
	Env     map[string]string
	Stdin   []byte
}

// SimpleCommand runs a shell command with inherited stdio.
type SimpleCommand struct {
	Command string
}

// Seq runs its tasks in order and aborts on the first failure.
type Seq struct {
	Tasks []Task
}

// Conditional runs OnYes when every condition answers yes, OnNo otherwise.
type Conditional struct {
	Conditions []Condition
	OnYes      []Task
	OnNo       []Task
	Label      string
}

// Notify prints a message.
type Notify struct {
	Message string
}

// NotifyError prints a message at error level. It never fails.
type NotifyError struct {
	Message string
}

// Noop does nothing.
type Noop struct{}

func (FileWrite) isTask()     {}
func (FileExists) isTask()    {}
func (FilesDiffer) isTask()   {}
func (Command) isTask()       {}
func (SimpleCommand) isTask() {}
func (Seq) isTask()           {}
func (Conditional) isTask()   {}
func (Notify) isTask()        {}
func (NotifyError) isTask()   {}
func (Noop) isTask()          {}

// Describe implements Task.
func (t FileWrite) Describe() string {
	if t.Description != "" {
		return t.Description
	}
	return fmt.Sprintf("write %s (%d bytes)", t.Path, len(t.Content))
}

// Describe implements Task.
func (t FileExists) Describe() string {
	if t.Description != "" {
		return t.Description
	}
	return "check " + t.Path + " exists"
}

// Describe implements Task.
func (t FilesDiffer) Describe() string {
	if t.Description != "" {
		return t.Description
	}
	return "check " + t.Left + " differs from " + t.Right
}

// Describe implements Task.
func (t Command) Describe() string {
	if len(t.Env) == 0 {
		return t.Command
	}
	return t.Command + " " + formatEnv(t.Env)
}

// Describe implements Task.
func (t SimpleCommand) Describe() string {
	return t.Command
}

// Describe implements Task.
func (t Seq) Describe() string {
	parts := make([]string, len(t.Tasks))
	for i, task := range t.Tasks {
		parts[i] = task.Describe()
	}
	return "seq [" + strings.Join(parts, "; ") + "]"
}

// Describe implements Task.
func (t Conditional) Describe() string {
	if t.Label != "" {
		return t.Label
	}
	parts := make([]string, len(t.Conditions))
	for i, c := range t.Conditions {
		parts[i] = c.Describe()
	}
	return "if " + strings.Join(parts, " and ")
}

// Describe implements Task.
func (t Notify) Describe() string {
	return "notify: " + t.Message
}

// Describe implements Task.
func (t NotifyError) Describe() string {
	return "error: " + t.Message
}

// Describe implements Task.
func (Noop) Describe() string {
	return "noop"
}

// Flatten inlines nested Seq values so that every element of the result is a
// step a user would recognise. Conditional branches are left untouched.
func Flatten(tasks []Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		switch v := t.(type) {
		case Seq:
			out = append(out, Flatten(v.Tasks)...)
		default:
			out = append(out, t)
		}
	}
	return out
}

func formatEnv(env map[string]string) string {
	keys := sortedKeys(env)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + env[k]
	}
	return "(env: " + strings.Join(parts, ", ") + ")"
}
