package domain

import "slices"

// MaxScriptDepth bounds how deeply script references may nest.
const MaxScriptDepth = 16

// Script is a named, user-authored list of steps.
type Script struct {
	Name        string
	Description string
	Steps       []Step
}

// Step is one entry of a Script. The set of implementations is closed.
type Step interface {
	isStep()
}

// ShellStep runs a shell command. Env and Stdin are optional.
type ShellStep struct {
	Command string
	Env     map[string]string
	Stdin   string
}

// ScriptRef expands another script or alias in place.
type ScriptRef struct {
	Name string
}

// ComposeStep is a structured docker-compose run or exec invocation.
// A non-empty File overrides the project compose file.
type ComposeStep struct {
	Subcommand string
	File       string
	Workdir    string
	User       string
	Env        []string
	Service    string
	Commands   []string
	Remove     bool
}

// RawComposeStep passes Args straight to docker-compose.
type RawComposeStep struct {
	Args string
}

// WriteStep writes Content to Path.
type WriteStep struct {
	Path    string
	Content string
}

// ExistsStep asserts that Path exists.
type ExistsStep struct {
	Path string
}

// DifferStep asserts that Left and Right differ.
type DifferStep struct {
	Left  string
	Right string
}

// NotifyStep prints Message, at error level when Error is set.
type NotifyStep struct {
	Message string
	Error   bool
}

// IfStep guards Then and Else with existence, difference and question checks.
type IfStep struct {
	Exists []string
	Differ [][2]string
	Ask    string
	Label  string
	Then   []Step
	Else   []Step
}

func (ShellStep) isStep()      {}
func (ScriptRef) isStep()      {}
func (ComposeStep) isStep()    {}
func (RawComposeStep) isStep() {}
func (WriteStep) isStep()      {}
func (ExistsStep) isStep()     {}
func (DifferStep) isStep()     {}
func (NotifyStep) isStep()     {}
func (IfStep) isStep()         {}

// Compose subcommands.
const (
	ComposeRun  = "run"
	ComposeExec = "exec"
)

// ComposeConfig configures how docker-compose is invoked.
type ComposeConfig struct {
	Binary string
	File   string
}

// Project is the resolved project configuration.
type Project struct {
	Name    string
	Root    string
	Shell   string
	Env     map[string]string
	Compose ComposeConfig
	Scripts map[string]Script
	Aliases map[string]string
}

// ScriptNames returns the sorted names of all scripts and aliases.
func (p *Project) ScriptNames() []string {
	names := make([]string, 0, len(p.Scripts)+len(p.Aliases))
	for name := range p.Scripts {
		names = append(names, name)
	}
	for name := range p.Aliases {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ComposeBinary returns the configured docker-compose binary or the default.
func (p *Project) ComposeBinary() string {
	if p.Compose.Binary != "" {
		return p.Compose.Binary
	}
	return DefaultComposeBinary
}

// ShellOrDefault returns the configured shell or the default.
func (p *Project) ShellOrDefault() string {
	if p.Shell != "" {
		return p.Shell
	}
	return DefaultShell
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
