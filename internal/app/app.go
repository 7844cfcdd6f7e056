// Package app implements the application layer for berth.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kballard/go-shellquote"
	"go.trai.ch/berth/internal/adapters/detector"                       //nolint:depguard // Wired in app layer
	"go.trai.ch/berth/internal/adapters/linear"                         //nolint:depguard // Wired in app layer
	"go.trai.ch/berth/internal/adapters/telemetry"                      //nolint:depguard // Wired in app layer
	progrocktel "go.trai.ch/berth/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/berth/internal/core/domain"
	"go.trai.ch/berth/internal/core/ports"
	"go.trai.ch/berth/internal/engine/interpreter"
	"go.trai.ch/berth/internal/engine/script"
	"go.trai.ch/berth/internal/engine/sequencer"
	"go.trai.ch/berth/internal/ui/style"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	resolver     *script.Resolver
	interpreter  *interpreter.Interpreter
	executor     ports.Executor
	logger       ports.Logger

	dir    string
	stdout io.Writer
	stderr io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	resolver *script.Resolver,
	interp *interpreter.Interpreter,
	executor ports.Executor,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		resolver:     resolver,
		interpreter:  interp,
		executor:     executor,
		logger:       log,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
}

// WithDir sets the directory berth.yml is searched from. It defaults to the
// process working directory.
func (a *App) WithDir(dir string) *App {
	a.dir = dir
	return a
}

// WithOutput redirects command output and progress lines.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// SetJSONLogs switches the logger to JSON output when it supports it.
func (a *App) SetJSONLogs(enable bool) {
	if l, ok := a.logger.(interface{ SetJSON(enable bool) }); ok {
		l.SetJSON(enable)
	}
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	// DryRun prints the plan without running anything.
	DryRun bool
	// Expand lists the steps inside grouped tasks in a dry run.
	Expand bool
	// OutputMode is one of "auto", "color", "plain" or "ci".
	OutputMode string
	// Journal is a file receiving one JSON progress record per line.
	Journal string
}

// Run resolves the script called name and runs its tasks in order.
// A failed task halts the run with a *domain.RunError.
func (a *App) Run(ctx context.Context, name string, opts RunOptions) error {
	project, err := a.load()
	if err != nil {
		return err
	}

	tasks, err := a.resolver.Resolve(project, name)
	if err != nil {
		return zerr.Wrap(err, "failed to resolve script")
	}

	if opts.DryRun {
		return a.printPlan(name, tasks, opts.Expand)
	}

	renderer := a.newRenderer(opts.OutputMode)

	tel, err := newTelemetry(opts.Journal)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := tel.Close(); closeErr != nil {
			a.logger.Warn("failed to close journal: " + closeErr.Error())
		}
	}()

	interp := a.interpreter.
		WithShell(project.ShellOrDefault()).
		WithDir(project.Root).
		WithEnv(project.Env).
		WithOutput(a.stdout, a.stderr)
	seq := sequencer.New(interp, renderer, tel)

	g, ctx := errgroup.WithContext(ctx)

	// Renderer Routine
	g.Go(func() error {
		if err := renderer.Start(ctx); err != nil {
			return err
		}
		return renderer.Wait()
	})

	// Sequencer Routine
	g.Go(func() error {
		defer func() {
			_ = renderer.Stop()
		}()

		_, err := seq.Run(ctx, name, tasks)
		return err
	})

	return g.Wait()
}

// List prints every script and alias of the project.
func (a *App) List(_ context.Context) error {
	project, err := a.load()
	if err != nil {
		return err
	}

	names := project.ScriptNames()
	if len(names) == 0 {
		a.logger.Warn(fmt.Sprintf("no scripts defined in %s", domain.ProjectFileName))
		return nil
	}

	width := 0
	for _, n := range names {
		width = max(width, len(n))
	}

	nameStyle := lipgloss.NewStyle().Foreground(style.Harbor).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(style.Slate)

	_, _ = fmt.Fprintf(a.stdout, "Scripts in %s:\n", project.Name)
	for _, n := range names {
		detail := project.Scripts[n].Description
		if target, ok := project.Aliases[n]; ok {
			detail = style.Arrow + " " + target
		}
		padded := n + strings.Repeat(" ", width-len(n))
		_, _ = fmt.Fprintf(a.stdout, "  %s  %s\n", nameStyle.Render(padded), hintStyle.Render(detail))
	}
	return nil
}

// Compose passes args to the project's docker-compose binary with the
// terminal attached.
func (a *App) Compose(ctx context.Context, args []string) error {
	project, err := a.load()
	if err != nil {
		return err
	}

	cmd := &domain.ShellCommand{
		Shell:       project.ShellOrDefault(),
		Script:      script.RenderRawCompose(project, shellquote.Join(args...)),
		Env:         project.Env,
		Interactive: true,
		Dir:         project.Root,
	}
	if err := a.executor.Execute(ctx, cmd, a.stdout, a.stderr); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCommandFailed.Error()), "command", cmd.Script)
	}
	return nil
}

func (a *App) load() (*domain.Project, error) {
	dir := a.dir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, zerr.Wrap(err, "failed to get working directory")
		}
		dir = cwd
	}

	project, err := a.configLoader.Load(dir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return project, nil
}

func (a *App) printPlan(name string, tasks []domain.Task, expand bool) error {
	if expand {
		tasks = domain.Flatten(tasks)
	}
	if _, err := fmt.Fprintf(a.stdout, "Plan for %s:\n", name); err != nil {
		return zerr.Wrap(err, "failed to print plan")
	}
	for i, description := range sequencer.Describe(tasks) {
		if _, err := fmt.Fprintf(a.stdout, "  %d. %s\n", i+1, description); err != nil {
			return zerr.Wrap(err, "failed to print plan")
		}
	}
	return nil
}

func (a *App) newRenderer(outputMode string) ports.Renderer {
	autoMode := detector.ModePlain
	if f, ok := a.stderr.(*os.File); ok {
		autoMode = detector.DetectEnvironment(f)
	}
	mode := detector.ResolveMode(autoMode, outputMode)
	return linear.NewRenderer(a.stderr, mode == detector.ModeColor)
}

func newTelemetry(journal string) (ports.Telemetry, error) {
	if journal == "" {
		return telemetry.NewNoOp(), nil
	}

	//nolint:gosec // journal path is provided by the user
	f, err := os.OpenFile(journal, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, domain.FilePerm)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open journal"), "path", journal)
	}
	return progrocktel.NewRecorder(progrocktel.NewJournal(f)), nil
}
