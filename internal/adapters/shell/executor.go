// Package shell provides a shell-based executor for running commands.
package shell

import (
	"bytes"
	"context"
	"io"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/berth/internal/core/domain"
	"go.trai.ch/zerr"
)

// Executor implements ports.Executor using os/exec.
type Executor struct {
	environ func() []string
}

// NewExecutor creates a new Executor that inherits the process environment.
func NewExecutor() *Executor {
	return &Executor{environ: os.Environ}
}

// Execute runs cmd.Script through cmd.Shell and waits for it to complete.
// Interactive commands are attached to the process's own stdio; all other
// commands read cmd.Stdin and write to stdout and stderr.
func (e *Executor) Execute(ctx context.Context, cmd *domain.ShellCommand, stdout, stderr io.Writer) error {
	if strings.TrimSpace(cmd.Script) == "" {
		return nil
	}

	shell := cmd.Shell
	if shell == "" {
		shell = domain.DefaultShell
	}

	cmdEnv := resolveEnvironment(e.environ(), cmd.Env)

	executable := shell
	if !filepath.IsAbs(shell) {
		if lp, err := lookPath(shell, cmdEnv); err == nil {
			executable = lp
		}
	}

	c := exec.CommandContext(ctx, executable, "-c", cmd.Script) //nolint:gosec // user provided command

	// exec.CommandContext sets Args[0] to the resolved path.
	c.Args[0] = shell
	c.Env = cmdEnv
	if cmd.Dir != "" {
		c.Dir = cmd.Dir
	}

	if cmd.Interactive {
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
	} else {
		c.Stdin = bytes.NewReader(cmd.Stdin)
		c.Stdout = writerOrDiscard(stdout)
		c.Stderr = writerOrDiscard(stderr)
	}

	if err := c.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode)
	}

	return nil
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

// resolveEnvironment overlays cmdEnv on top of the inherited environment.
func resolveEnvironment(sysEnv []string, cmdEnv map[string]string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(cmdEnv))
	order := make([]string, 0, len(sysEnv)+len(cmdEnv))
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, seen := envMap[k]; !seen {
			order = append(order, k)
		}
		envMap[k] = v
	}

	for _, k := range slices.Sorted(maps.Keys(cmdEnv)) {
		if _, seen := envMap[k]; !seen {
			order = append(order, k)
		}
		envMap[k] = cmdEnv[k]
	}

	result := make([]string, 0, len(order))
	for _, k := range order {
		result = append(result, k+"="+envMap[k])
	}
	return result
}

// lookPath searches for an executable in the directories named by the PATH environment variable.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
