package prompt_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/berth/internal/adapters/prompt"
	"go.trai.ch/berth/internal/adapters/shell"
	"go.trai.ch/berth/internal/core/domain"
)

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  domain.Answer
	}{
		{"lower yes", "y\n", domain.AnswerYes},
		{"upper yes", "Y\n", domain.AnswerYes},
		{"lower no", "n\n", domain.AnswerNo},
		{"upper no", "N\n", domain.AnswerNo},
		{"surrounding space", "  y  \n", domain.AnswerYes},
		{"no trailing newline", "n", domain.AnswerNo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := prompt.New(strings.NewReader(tt.input), &out)

			answer, err := p.Confirm(context.Background(), "Continue?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, answer)
			assert.Equal(t, "Continue? [y/n] ", out.String())
		})
	}
}

func TestPrompter_Confirm_RepromptsOnUnrecognisedInput(t *testing.T) {
	var out bytes.Buffer
	p := prompt.New(strings.NewReader("maybe\nyes\n\nY\n"), &out)

	answer, err := p.Confirm(context.Background(), "Reinstall?")
	require.NoError(t, err)
	assert.Equal(t, domain.AnswerYes, answer)
	assert.Equal(t, 4, strings.Count(out.String(), "Reinstall? [y/n] "))
	assert.Equal(t, 3, strings.Count(out.String(), "Please answer y or n."))
}

func TestPrompter_Confirm_SequentialQuestions(t *testing.T) {
	p := prompt.New(strings.NewReader("y\nn\n"), io.Discard)

	first, err := p.Confirm(context.Background(), "First?")
	require.NoError(t, err)
	second, err := p.Confirm(context.Background(), "Second?")
	require.NoError(t, err)

	assert.Equal(t, domain.AnswerYes, first)
	assert.Equal(t, domain.AnswerNo, second)
}

func TestPrompter_Confirm_ClosedInput(t *testing.T) {
	p := prompt.New(strings.NewReader("what\n"), io.Discard)

	_, err := p.Confirm(context.Background(), "Continue?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrPromptClosed.Error())
}

func TestPrompter_Confirm_Cancelled(t *testing.T) {
	reader, writer := io.Pipe()
	defer writer.Close() //nolint:errcheck // Test cleanup

	p := prompt.New(reader, io.Discard)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Confirm(ctx, "Continue?")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPrompter_Confirm_LeavesLaterInputUnread(t *testing.T) {
	in := strings.NewReader("y\nhello\n")
	p := prompt.New(in, io.Discard)

	answer, err := p.Confirm(context.Background(), "Run migrations?")
	require.NoError(t, err)
	assert.Equal(t, domain.AnswerYes, answer)

	rest, err := io.ReadAll(in)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(rest))
}

func TestPrompter_Confirm_ThenInteractiveCommand(t *testing.T) {
	stdinReader, stdinWriter, err := os.Pipe()
	require.NoError(t, err)
	defer stdinReader.Close() //nolint:errcheck // Test cleanup

	_, err = stdinWriter.WriteString("y\nhello\n")
	require.NoError(t, err)
	require.NoError(t, stdinWriter.Close())

	origStdin := os.Stdin
	os.Stdin = stdinReader
	t.Cleanup(func() { os.Stdin = origStdin })

	answer, err := prompt.NewPrompter().Confirm(context.Background(), "Open a shell?")
	require.NoError(t, err)
	require.Equal(t, domain.AnswerYes, answer)

	dir := t.TempDir()
	err = shell.NewExecutor().Execute(context.Background(), &domain.ShellCommand{
		Script:      `read x; printf '%s' "$x" > out`,
		Dir:         dir,
		Interactive: true,
	}, io.Discard, io.Discard)
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dir, "out")) //nolint:gosec // Test reads its own temp file
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestPrompter_Confirm_CancelledReadIsReused(t *testing.T) {
	reader, writer := io.Pipe()
	defer writer.Close() //nolint:errcheck // Test cleanup

	p := prompt.New(reader, io.Discard)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Confirm(ctx, "First?")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	go func() { _, _ = writer.Write([]byte("n\n")) }()

	answer, err := p.Confirm(context.Background(), "Second?")
	require.NoError(t, err)
	assert.Equal(t, domain.AnswerNo, answer)
}
