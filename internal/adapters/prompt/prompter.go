// Package prompt provides the interactive yes/no prompter adapter.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.trai.ch/berth/internal/core/domain"
	"go.trai.ch/berth/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Prompter = (*Prompter)(nil)

type line struct {
	text   string
	closed bool
	err    error
}

// Prompter asks questions on out and reads answers line by line from in.
//
// Input is read one byte at a time and never past the answer's newline, so
// interactive commands started after a question see everything typed later.
// A question abandoned by a cancelled context leaves its read pending; the
// next question picks that read up instead of starting another one.
type Prompter struct {
	in  io.Reader
	out io.Writer

	mu      sync.Mutex
	pending chan line
}

// NewPrompter creates a Prompter on the process's stdin and stderr.
func NewPrompter() *Prompter {
	return New(os.Stdin, os.Stderr)
}

// New creates a Prompter reading from in and writing questions to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out}
}

// Confirm asks question until the answer is y, Y, n or N.
// A closed input yields domain.ErrPromptClosed.
func (p *Prompter) Confirm(ctx context.Context, question string) (domain.Answer, error) {
	for {
		_, _ = fmt.Fprintf(p.out, "%s [y/n] ", question)

		l, err := p.nextLine(ctx)
		if err != nil {
			_, _ = fmt.Fprintln(p.out)
			return domain.AnswerNo, err
		}
		if l.closed {
			_, _ = fmt.Fprintln(p.out)
			return domain.AnswerNo, zerr.With(domain.ErrPromptClosed, "question", question)
		}
		if l.err != nil {
			return domain.AnswerNo, zerr.Wrap(l.err, domain.ErrPromptClosed.Error())
		}
		if answer, ok := parseAnswer(l.text); ok {
			return answer, nil
		}
		_, _ = fmt.Fprintln(p.out, "Please answer y or n.")
	}
}

func (p *Prompter) nextLine(ctx context.Context) (line, error) {
	p.mu.Lock()
	ch := p.pending
	p.pending = nil
	if ch == nil {
		ch = make(chan line, 1)
		go func() { ch <- readLine(p.in) }()
	}
	p.mu.Unlock()

	select {
	case <-ctx.Done():
		p.mu.Lock()
		p.pending = ch
		p.mu.Unlock()
		return line{}, ctx.Err()
	case l := <-ch:
		return l, nil
	}
}

// readLine reads up to and including the next newline, without buffering
// anything beyond it.
func readLine(r io.Reader) line {
	var b strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				return line{text: b.String()}
			}
			b.WriteByte(buf[0])
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return line{text: b.String()}
			}
			return line{closed: true}
		}
		return line{err: err}
	}
}

func parseAnswer(text string) (domain.Answer, bool) {
	switch strings.TrimSpace(text) {
	case "y", "Y":
		return domain.AnswerYes, true
	case "n", "N":
		return domain.AnswerNo, true
	default:
		return domain.AnswerNo, false
	}
}
