package interpreter_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/berth/internal/core/domain"
	"go.trai.ch/berth/internal/core/ports"
	"go.trai.ch/berth/internal/core/ports/mocks"
	"go.trai.ch/berth/internal/engine/interpreter"
	"go.uber.org/mock/gomock"
)

type interpreterTestMocks struct {
	executor *mocks.MockExecutor
	fs       *mocks.MockFileSystem
	prompter *mocks.MockPrompter
	logger   *mocks.MockLogger
}

func setupInterpreterTest(t *testing.T) (*interpreter.Interpreter, interpreterTestMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := interpreterTestMocks{
		executor: mocks.NewMockExecutor(ctrl),
		fs:       mocks.NewMockFileSystem(ctrl),
		prompter: mocks.NewMockPrompter(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
	}
	i := interpreter.New(m.executor, m.fs, m.prompter, m.logger).WithOutput(io.Discard, io.Discard)
	return i, m
}

func requireTaskError(t *testing.T, err error) *domain.TaskError {
	t.Helper()
	require.Error(t, err)
	var taskErr *domain.TaskError
	require.ErrorAs(t, err, &taskErr)
	return taskErr
}

func TestInterpreter_FileWrite(t *testing.T) {
	i, m := setupInterpreterTest(t)
	m.fs.EXPECT().WriteFile("conf/nginx.conf", []byte("server {}")).Return(nil)

	err := i.Execute(context.Background(), 0, domain.FileWrite{Path: "conf/nginx.conf", Content: []byte("server {}")})
	require.NoError(t, err)
}

func TestInterpreter_FileWrite_Failure(t *testing.T) {
	i, m := setupInterpreterTest(t)
	osErr := errors.New("mkdir conf: permission denied")
	m.fs.EXPECT().WriteFile("conf/nginx.conf", gomock.Any()).Return(osErr)

	err := i.Execute(context.Background(), 3, domain.FileWrite{Path: "conf/nginx.conf"})

	taskErr := requireTaskError(t, err)
	assert.Equal(t, 3, taskErr.Index)
	assert.Contains(t, taskErr.Message, domain.ErrFileWriteFailed.Error())
	require.ErrorIs(t, err, osErr)
}

func TestInterpreter_FileExists(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		i, m := setupInterpreterTest(t)
		m.fs.EXPECT().Exists("composer.json").Return(true, nil)

		require.NoError(t, i.Execute(context.Background(), 0, domain.FileExists{Path: "composer.json"}))
	})

	t.Run("missing", func(t *testing.T) {
		i, m := setupInterpreterTest(t)
		m.fs.EXPECT().Exists("missing.txt").Return(false, nil)

		err := i.Execute(context.Background(), 0, domain.FileExists{Path: "missing.txt"})

		taskErr := requireTaskError(t, err)
		assert.Equal(t, 0, taskErr.Index)
		assert.Contains(t, taskErr.Message, "missing.txt does not exist")
		require.ErrorIs(t, err, domain.ErrPreconditionFailed)
	})

	t.Run("stat error", func(t *testing.T) {
		i, m := setupInterpreterTest(t)
		statErr := errors.New("permission denied")
		m.fs.EXPECT().Exists("secret").Return(false, statErr)

		err := i.Execute(context.Background(), 0, domain.FileExists{Path: "secret"})

		requireTaskError(t, err)
		require.ErrorIs(t, err, statErr)
	})
}

func TestInterpreter_FilesDiffer(t *testing.T) {
	t.Run("different", func(t *testing.T) {
		i, m := setupInterpreterTest(t)
		m.fs.EXPECT().Differ("a", "b").Return(true, nil)

		require.NoError(t, i.Execute(context.Background(), 0, domain.FilesDiffer{Left: "a", Right: "b"}))
	})

	t.Run("identical", func(t *testing.T) {
		i, m := setupInterpreterTest(t)
		m.fs.EXPECT().Differ("a", "b").Return(false, nil)

		err := i.Execute(context.Background(), 1, domain.FilesDiffer{Left: "a", Right: "b"})

		taskErr := requireTaskError(t, err)
		assert.Equal(t, 1, taskErr.Index)
		assert.Contains(t, taskErr.Message, "are identical")
		require.ErrorIs(t, err, domain.ErrPreconditionFailed)
	})

	t.Run("read error", func(t *testing.T) {
		i, m := setupInterpreterTest(t)
		readErr := errors.New("is a directory")
		m.fs.EXPECT().Differ("a", "b").Return(false, readErr)

		err := i.Execute(context.Background(), 0, domain.FilesDiffer{Left: "a", Right: "b"})

		requireTaskError(t, err)
		require.ErrorIs(t, err, readErr)
	})
}

func TestInterpreter_Command(t *testing.T) {
	i, m := setupInterpreterTest(t)
	i.WithShell("bash").WithDir("/srv/app")

	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cmd *domain.ShellCommand, _, _ io.Writer) error {
			assert.Equal(t, "bash", cmd.Shell)
			assert.Equal(t, "mysql shop", cmd.Script)
			assert.Equal(t, map[string]string{"MYSQL_PWD": "root"}, cmd.Env)
			assert.Equal(t, []byte("select 1;"), cmd.Stdin)
			assert.Equal(t, "/srv/app", cmd.Dir)
			assert.False(t, cmd.Interactive)
			return nil
		},
	)

	err := i.Execute(context.Background(), 0, domain.Command{
		Command: "mysql shop",
		Env:     map[string]string{"MYSQL_PWD": "root"},
		Stdin:   []byte("select 1;"),
	})
	require.NoError(t, err)
}

func TestInterpreter_Command_ForwardsOutput(t *testing.T) {
	i, m := setupInterpreterTest(t)
	var stdout bytes.Buffer
	i.WithOutput(&stdout, io.Discard)

	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *domain.ShellCommand, out, _ io.Writer) error {
			_, err := io.WriteString(out, "hello\n")
			return err
		},
	)

	require.NoError(t, i.Execute(context.Background(), 0, domain.Command{Command: "echo hello"}))
	assert.Equal(t, "hello\n", stdout.String())
}

func TestInterpreter_Command_TeesIntoVertex(t *testing.T) {
	i, m := setupInterpreterTest(t)
	ctrl := gomock.NewController(t)
	vertex := mocks.NewMockVertex(ctrl)

	var recorded bytes.Buffer
	vertex.EXPECT().Stdout().Return(&recorded)
	vertex.EXPECT().Stderr().Return(io.Discard)

	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *domain.ShellCommand, out, _ io.Writer) error {
			_, err := io.WriteString(out, "recorded")
			return err
		},
	)

	ctx := ports.ContextWithVertex(context.Background(), vertex)
	require.NoError(t, i.Execute(ctx, 0, domain.Command{Command: "echo recorded"}))
	assert.Equal(t, "recorded", recorded.String())
}

func TestInterpreter_Command_Failure(t *testing.T) {
	i, m := setupInterpreterTest(t)
	exitErr := errors.New("exit status 42")
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(exitErr)

	err := i.Execute(context.Background(), 2, domain.Command{Command: "exit 42"})

	taskErr := requireTaskError(t, err)
	assert.Equal(t, 2, taskErr.Index)
	assert.Contains(t, taskErr.Message, domain.ErrCommandFailed.Error())
	require.ErrorIs(t, err, exitErr)
}

func TestInterpreter_SimpleCommand(t *testing.T) {
	i, m := setupInterpreterTest(t)

	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cmd *domain.ShellCommand, _, _ io.Writer) error {
			assert.Equal(t, domain.DefaultShell, cmd.Shell)
			assert.Equal(t, "docker-compose up", cmd.Script)
			assert.True(t, cmd.Interactive)
			assert.Empty(t, cmd.Env)
			assert.Empty(t, cmd.Stdin)
			return nil
		},
	)

	require.NoError(t, i.Execute(context.Background(), 0, domain.SimpleCommand{Command: "docker-compose up"}))
}

func TestInterpreter_Seq_StopsAtFirstFailure(t *testing.T) {
	i, m := setupInterpreterTest(t)
	failure := errors.New("exit status 1")

	gomock.InOrder(
		m.executor.EXPECT().Execute(gomock.Any(), &domain.ShellCommand{
			Shell: domain.DefaultShell, Script: "t1", Interactive: true,
		}, gomock.Any(), gomock.Any()).Return(nil),
		m.executor.EXPECT().Execute(gomock.Any(), &domain.ShellCommand{
			Shell: domain.DefaultShell, Script: "t2", Interactive: true,
		}, gomock.Any(), gomock.Any()).Return(failure),
	)
	// t3 has no expectation: running it would fail the test.

	err := i.Execute(context.Background(), 0, domain.Seq{Tasks: []domain.Task{
		domain.SimpleCommand{Command: "t1"},
		domain.SimpleCommand{Command: "t2"},
		domain.SimpleCommand{Command: "t3"},
	}})

	taskErr := requireTaskError(t, err)
	assert.Equal(t, 0, taskErr.Index)
	assert.Equal(t, []int{1}, taskErr.Path)
	require.ErrorIs(t, err, failure)
}

func TestInterpreter_Seq_NestedPath(t *testing.T) {
	i, m := setupInterpreterTest(t)
	m.fs.EXPECT().Exists("missing").Return(false, nil)

	err := i.Execute(context.Background(), 4, domain.Seq{Tasks: []domain.Task{
		domain.Noop{},
		domain.Seq{Tasks: []domain.Task{
			domain.Noop{},
			domain.FileExists{Path: "missing"},
		}},
	}})

	taskErr := requireTaskError(t, err)
	assert.Equal(t, 4, taskErr.Index)
	assert.Equal(t, []int{1, 1}, taskErr.Path)
	assert.Equal(t, "4.1.1", taskErr.Position())
}

func TestInterpreter_Conditional(t *testing.T) {
	paths := []domain.Condition{
		domain.PathPresent{Path: "a"},
		domain.PathPresent{Path: "b"},
		domain.PathPresent{Path: "c"},
	}

	tests := []struct {
		name    string
		answers []bool
		want    string
	}{
		{"all yes runs on_yes", []bool{true, true, true}, "yes"},
		{"last no runs on_no", []bool{true, true, false}, "no"},
		{"first no runs on_no", []bool{false, true, true}, "no"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, m := setupInterpreterTest(t)

			for idx, answer := range tt.answers {
				m.fs.EXPECT().Exists(paths[idx].(domain.PathPresent).Path).Return(answer, nil)
				if !answer {
					// Evaluation stops at the first no.
					break
				}
			}
			m.logger.EXPECT().Info(tt.want)

			err := i.Execute(context.Background(), 0, domain.Conditional{
				Conditions: paths,
				OnYes:      []domain.Task{domain.Notify{Message: "yes"}},
				OnNo:       []domain.Task{domain.Notify{Message: "no"}},
			})
			require.NoError(t, err)
		})
	}
}

func TestInterpreter_Conditional_QuestionNotAskedAfterNo(t *testing.T) {
	i, m := setupInterpreterTest(t)
	m.fs.EXPECT().Differ("a", "b").Return(false, nil)
	// No prompter expectation: asking would fail the test.

	err := i.Execute(context.Background(), 0, domain.Conditional{
		Conditions: []domain.Condition{
			domain.ContentDiffers{Left: "a", Right: "b"},
			domain.Question{Prompt: "Overwrite?"},
		},
		OnYes: []domain.Task{domain.FileWrite{Path: "b"}},
	})
	require.NoError(t, err)
}

func TestInterpreter_Conditional_Question(t *testing.T) {
	i, m := setupInterpreterTest(t)
	m.prompter.EXPECT().Confirm(gomock.Any(), "Reinstall?").Return(domain.AnswerYes, nil)
	m.fs.EXPECT().WriteFile("flag", []byte("1")).Return(nil)

	err := i.Execute(context.Background(), 0, domain.Conditional{
		Conditions: []domain.Condition{domain.Question{Prompt: "Reinstall?"}},
		OnYes:      []domain.Task{domain.FileWrite{Path: "flag", Content: []byte("1")}},
	})
	require.NoError(t, err)
}

func TestInterpreter_Conditional_EvaluationErrorIsHard(t *testing.T) {
	i, m := setupInterpreterTest(t)
	readErr := errors.New("input/output error")
	m.fs.EXPECT().Differ("a", "b").Return(false, readErr)
	// Neither branch may run.

	err := i.Execute(context.Background(), 5, domain.Conditional{
		Conditions: []domain.Condition{domain.ContentDiffers{Left: "a", Right: "b"}},
		OnYes:      []domain.Task{domain.Notify{Message: "yes"}},
		OnNo:       []domain.Task{domain.Notify{Message: "no"}},
	})

	taskErr := requireTaskError(t, err)
	assert.Equal(t, 5, taskErr.Index)
	assert.Contains(t, taskErr.Message, domain.ErrConditionFailed.Error())
	require.ErrorIs(t, err, readErr)
}

func TestInterpreter_Conditional_BranchFailurePath(t *testing.T) {
	i, m := setupInterpreterTest(t)
	m.fs.EXPECT().Exists("vendor").Return(false, nil)
	m.fs.EXPECT().Exists("composer.json").Return(false, nil)

	err := i.Execute(context.Background(), 0, domain.Conditional{
		Conditions: []domain.Condition{domain.PathPresent{Path: "vendor"}},
		OnNo: []domain.Task{
			domain.Noop{},
			domain.FileExists{Path: "composer.json"},
		},
	})

	taskErr := requireTaskError(t, err)
	assert.Equal(t, []int{1}, taskErr.Path)
}

func TestInterpreter_Notify(t *testing.T) {
	i, m := setupInterpreterTest(t)
	m.logger.EXPECT().Info("starting containers")
	m.logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.Equal(t, "config looks stale", err.Error())
	})

	ctx := context.Background()
	require.NoError(t, i.Execute(ctx, 0, domain.Notify{Message: "starting containers"}))
	require.NoError(t, i.Execute(ctx, 1, domain.NotifyError{Message: "config looks stale"}))
	require.NoError(t, i.Execute(ctx, 2, domain.Noop{}))
}

func TestInterpreter_Evaluate(t *testing.T) {
	i, m := setupInterpreterTest(t)
	m.fs.EXPECT().Exists("a").Return(true, nil)
	m.fs.EXPECT().Differ("a", "b").Return(false, nil)
	m.prompter.EXPECT().Confirm(gomock.Any(), "Continue?").Return(domain.AnswerNo, nil)

	ctx := context.Background()

	answer, err := i.Evaluate(ctx, domain.PathPresent{Path: "a"})
	require.NoError(t, err)
	assert.Equal(t, domain.AnswerYes, answer)

	answer, err = i.Evaluate(ctx, domain.ContentDiffers{Left: "a", Right: "b"})
	require.NoError(t, err)
	assert.Equal(t, domain.AnswerNo, answer)

	answer, err = i.Evaluate(ctx, domain.Question{Prompt: "Continue?"})
	require.NoError(t, err)
	assert.Equal(t, domain.AnswerNo, answer)
}

func TestInterpreter_UnknownTask(t *testing.T) {
	i, _ := setupInterpreterTest(t)

	err := i.Execute(context.Background(), 0, nil)

	taskErr := requireTaskError(t, err)
	assert.Contains(t, taskErr.Message, domain.ErrUnknownTask.Error())
}

func TestInterpreter_WithDir_ResolvesRelativePaths(t *testing.T) {
	i, m := setupInterpreterTest(t)
	i.WithDir("/srv/app")

	m.fs.EXPECT().WriteFile("/srv/app/conf/x.txt", []byte("hi")).Return(nil)
	m.fs.EXPECT().Exists("/etc/hosts").Return(true, nil)

	ctx := context.Background()
	require.NoError(t, i.Execute(ctx, 0, domain.FileWrite{Path: "conf/x.txt", Content: []byte("hi")}))
	require.NoError(t, i.Execute(ctx, 1, domain.FileExists{Path: "/etc/hosts"}))
}

func TestInterpreter_WithEnv(t *testing.T) {
	i, m := setupInterpreterTest(t)
	i.WithEnv(map[string]string{"APP_ENV": "dev", "DEBUG": "0"})

	gomock.InOrder(
		m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, cmd *domain.ShellCommand, _, _ io.Writer) error {
				assert.Equal(t, map[string]string{"APP_ENV": "dev", "DEBUG": "1"}, cmd.Env)
				return nil
			},
		),
		m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, cmd *domain.ShellCommand, _, _ io.Writer) error {
				assert.Equal(t, map[string]string{"APP_ENV": "dev", "DEBUG": "0"}, cmd.Env)
				assert.True(t, cmd.Interactive)
				return nil
			},
		),
	)

	ctx := context.Background()
	require.NoError(t, i.Execute(ctx, 0, domain.Command{Command: "env", Env: map[string]string{"DEBUG": "1"}}))
	require.NoError(t, i.Execute(ctx, 1, domain.SimpleCommand{Command: "env"}))
}
