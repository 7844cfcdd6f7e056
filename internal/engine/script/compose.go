package script

import (
	"strings"

	"github.com/kballard/go-shellquote"
	"go.trai.ch/berth/internal/core/domain"
	"go.trai.ch/zerr"
)

// RenderCompose renders step as one shell command string per trailing command.
// Absent fields are omitted. Field values are shell-quoted; the binary and the
// trailing command text are used verbatim.
func RenderCompose(project *domain.Project, step domain.ComposeStep) ([]string, error) {
	if err := validateCompose(step); err != nil {
		return nil, err
	}

	args := composeFileArgs(project, step.File)
	args = append(args, step.Subcommand)
	if step.Remove {
		args = append(args, "--rm")
	}
	if step.Workdir != "" {
		args = append(args, "-w", step.Workdir)
	}
	if step.User != "" {
		args = append(args, "-u", step.User)
	}
	for _, env := range step.Env {
		args = append(args, "-e", env)
	}
	args = append(args, step.Service)

	prefix := project.ComposeBinary() + " " + shellquote.Join(args...)
	if len(step.Commands) == 0 {
		return []string{prefix}, nil
	}

	rendered := make([]string, len(step.Commands))
	for i, command := range step.Commands {
		rendered[i] = prefix + " " + command
	}
	return rendered, nil
}

// RenderRawCompose renders a passthrough invocation of the compose binary.
func RenderRawCompose(project *domain.Project, args string) string {
	parts := []string{project.ComposeBinary()}
	if fileArgs := composeFileArgs(project, ""); len(fileArgs) > 0 {
		parts = append(parts, shellquote.Join(fileArgs...))
	}
	if trimmed := strings.TrimSpace(args); trimmed != "" {
		parts = append(parts, trimmed)
	}
	return strings.Join(parts, " ")
}

func composeFileArgs(project *domain.Project, override string) []string {
	file := override
	if file == "" {
		file = project.Compose.File
	}
	if file == "" {
		return nil
	}
	return []string{"-f", file}
}

func validateCompose(step domain.ComposeStep) error {
	switch step.Subcommand {
	case domain.ComposeRun, domain.ComposeExec:
	default:
		return zerr.With(
			zerr.Wrap(domain.ErrInvalidComposeStep, "subcommand must be run or exec"),
			"subcommand", step.Subcommand,
		)
	}

	if step.Service == "" {
		return zerr.Wrap(domain.ErrInvalidComposeStep, "service is required")
	}

	if step.Remove && step.Subcommand != domain.ComposeRun {
		return zerr.With(zerr.Wrap(domain.ErrInvalidComposeStep, "rm is only valid with run"), "service", step.Service)
	}

	for _, env := range step.Env {
		if !strings.Contains(env, "=") {
			return zerr.With(zerr.Wrap(domain.ErrInvalidComposeStep, "env entries must be KEY=VALUE"), "env", env)
		}
	}

	return nil
}
