package config

import (
	"fmt"
	"slices"
	"strings"

	"go.trai.ch/berth/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Berthfile represents the structure of the berth.yml configuration file.
// The user defaults file shares the same structure.
type Berthfile struct {
	Version string               `yaml:"version"`
	Project string               `yaml:"project"`
	Shell   string               `yaml:"shell"`
	Env     map[string]string    `yaml:"env"`
	Compose ComposeDTO           `yaml:"compose"`
	Aliases map[string]string    `yaml:"aliases"`
	Scripts map[string]ScriptDTO `yaml:"scripts"`
}

// ComposeDTO configures the docker-compose binary and default file.
type ComposeDTO struct {
	Binary string `yaml:"binary"`
	File   string `yaml:"file"`
}

// ScriptDTO represents a script definition. A bare sequence is shorthand for
// a script with steps and no description.
type ScriptDTO struct {
	Description string    `yaml:"description"`
	Steps       []StepDTO `yaml:"steps"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *ScriptDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		return node.Decode(&s.Steps)
	}

	type plain ScriptDTO
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = ScriptDTO(p)
	return nil
}

// StepDTO holds a single decoded step.
type StepDTO struct {
	Step domain.Step
}

const (
	keyShell   = "sh"
	keyCompose = "dc"
	keyScript  = "script"
	keyWrite   = "write"
	keyExists  = "exists"
	keyDiffer  = "differ"
	keyNotify  = "notify"
	keyError   = "error"
	keyIf      = "if"

	keyEnv   = "env"
	keyStdin = "stdin"
	keyLabel = "label"
	keyThen  = "then"
	keyElse  = "else"
)

var stepKinds = []string{keyShell, keyCompose, keyScript, keyWrite, keyExists, keyDiffer, keyNotify, keyError, keyIf}

// modifiers lists the extra keys each step kind accepts next to its kind key.
var modifiers = map[string][]string{
	keyShell: {keyEnv, keyStdin},
	keyIf:    {keyLabel, keyThen, keyElse},
}

// UnmarshalYAML implements yaml.Unmarshaler. A scalar is a shell command; a
// mapping must carry exactly one kind key.
func (s *StepDTO) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		s.Step = domain.ShellStep{Command: node.Value}
		return nil
	case yaml.MappingNode:
		step, err := decodeStepMapping(node)
		if err != nil {
			return err
		}
		s.Step = step
		return nil
	default:
		return invalidStep(node, "step must be a string or a mapping")
	}
}

func decodeStepMapping(node *yaml.Node) (domain.Step, error) {
	fields := make(map[string]*yaml.Node, len(node.Content)/2)
	kind := ""
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		fields[key] = node.Content[i+1]
		if !slices.Contains(stepKinds, key) {
			continue
		}
		if kind != "" {
			return nil, zerr.With(invalidStep(node, "step has more than one kind"), "kinds", kind+", "+key)
		}
		kind = key
	}
	if kind == "" {
		return nil, zerr.With(invalidStep(node, "step has no kind"), "expected", strings.Join(stepKinds, ", "))
	}

	for key := range fields {
		if key != kind && !slices.Contains(modifiers[kind], key) {
			return nil, zerr.With(invalidStep(node, fmt.Sprintf("unexpected key %q for %s step", key, kind)), "key", key)
		}
	}

	value := fields[kind]
	switch kind {
	case keyShell:
		return decodeShell(value, fields)
	case keyCompose:
		return decodeCompose(value)
	case keyScript:
		name, err := scalar(value, kind)
		return domain.ScriptRef{Name: name}, err
	case keyWrite:
		var w struct {
			Path    string `yaml:"path"`
			Content string `yaml:"content"`
		}
		if err := value.Decode(&w); err != nil {
			return nil, err
		}
		if w.Path == "" {
			return nil, invalidStep(value, "write step needs a path")
		}
		return domain.WriteStep{Path: w.Path, Content: w.Content}, nil
	case keyExists:
		path, err := scalar(value, kind)
		if err == nil && path == "" {
			err = invalidStep(value, "exists step needs a path")
		}
		return domain.ExistsStep{Path: path}, err
	case keyDiffer:
		pair, err := decodePair(value)
		return domain.DifferStep{Left: pair[0], Right: pair[1]}, err
	case keyNotify:
		msg, err := scalar(value, kind)
		return domain.NotifyStep{Message: msg}, err
	case keyError:
		msg, err := scalar(value, kind)
		return domain.NotifyStep{Message: msg, Error: true}, err
	default:
		return decodeIf(value, fields)
	}
}

func decodeShell(value *yaml.Node, fields map[string]*yaml.Node) (domain.Step, error) {
	command, err := scalar(value, keyShell)
	if err != nil {
		return nil, err
	}
	step := domain.ShellStep{Command: command}
	if env, ok := fields[keyEnv]; ok {
		if err := env.Decode(&step.Env); err != nil {
			return nil, err
		}
	}
	if stdin, ok := fields[keyStdin]; ok {
		if step.Stdin, err = scalar(stdin, keyStdin); err != nil {
			return nil, err
		}
	}
	return step, nil
}

type composeDTO struct {
	Run      string   `yaml:"run"`
	Exec     string   `yaml:"exec"`
	File     string   `yaml:"file"`
	Workdir  string   `yaml:"workdir"`
	User     string   `yaml:"user"`
	Env      []string `yaml:"env"`
	Rm       bool     `yaml:"rm"`
	Command  string   `yaml:"command"`
	Commands []string `yaml:"commands"`
}

func decodeCompose(value *yaml.Node) (domain.Step, error) {
	if value.Kind == yaml.ScalarNode {
		return domain.RawComposeStep{Args: value.Value}, nil
	}

	var dto composeDTO
	if err := value.Decode(&dto); err != nil {
		return nil, err
	}

	step := domain.ComposeStep{
		File:    dto.File,
		Workdir: dto.Workdir,
		User:    dto.User,
		Env:     dto.Env,
		Remove:  dto.Rm,
	}
	switch {
	case dto.Run != "" && dto.Exec != "":
		return nil, zerr.With(
			zerr.Wrap(domain.ErrInvalidComposeStep, "set either run or exec, not both"),
			"line", value.Line,
		)
	case dto.Run != "":
		step.Subcommand, step.Service = domain.ComposeRun, dto.Run
	case dto.Exec != "":
		step.Subcommand, step.Service = domain.ComposeExec, dto.Exec
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidComposeStep, "run or exec is required"), "line", value.Line)
	}

	if dto.Command != "" {
		step.Commands = append(step.Commands, dto.Command)
	}
	step.Commands = append(step.Commands, dto.Commands...)
	return step, nil
}

func decodeIf(value *yaml.Node, fields map[string]*yaml.Node) (domain.Step, error) {
	var cond struct {
		Exists stringList  `yaml:"exists"`
		Differ []yaml.Node `yaml:"differ"`
		Ask    string      `yaml:"ask"`
	}
	if err := value.Decode(&cond); err != nil {
		return nil, err
	}

	if slices.Contains(cond.Exists, "") {
		return nil, invalidStep(value, "exists condition needs a path")
	}

	step := domain.IfStep{Exists: cond.Exists, Ask: cond.Ask}
	for i := range cond.Differ {
		pair, err := decodePair(&cond.Differ[i])
		if err != nil {
			return nil, err
		}
		step.Differ = append(step.Differ, pair)
	}

	if label, ok := fields[keyLabel]; ok {
		var err error
		if step.Label, err = scalar(label, keyLabel); err != nil {
			return nil, err
		}
	}
	var err error
	if step.Then, err = decodeBranch(fields[keyThen]); err != nil {
		return nil, err
	}
	if step.Else, err = decodeBranch(fields[keyElse]); err != nil {
		return nil, err
	}
	return step, nil
}

func decodeBranch(node *yaml.Node) ([]domain.Step, error) {
	if node == nil {
		return nil, nil
	}
	var dtos []StepDTO
	if err := node.Decode(&dtos); err != nil {
		return nil, err
	}
	return toSteps(dtos), nil
}

func decodePair(node *yaml.Node) ([2]string, error) {
	var pair []string
	if err := node.Decode(&pair); err != nil {
		return [2]string{}, err
	}
	if len(pair) != 2 || pair[0] == "" || pair[1] == "" {
		return [2]string{}, zerr.With(invalidStep(node, "differ needs exactly two paths"), "got", len(pair))
	}
	return [2]string{pair[0], pair[1]}, nil
}

func scalar(node *yaml.Node, key string) (string, error) {
	if node.Kind != yaml.ScalarNode {
		return "", zerr.With(invalidStep(node, key+" must be a string"), "key", key)
	}
	return node.Value, nil
}

func invalidStep(node *yaml.Node, msg string) error {
	return zerr.With(zerr.Wrap(domain.ErrInvalidStep, msg), "line", node.Line)
}

func toSteps(dtos []StepDTO) []domain.Step {
	steps := make([]domain.Step, len(dtos))
	for i, dto := range dtos {
		steps[i] = dto.Step
	}
	return steps
}

// stringList accepts either a single string or a list of strings.
type stringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *stringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*l = []string{node.Value}
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*l = list
	return nil
}
