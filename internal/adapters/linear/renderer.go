// Package linear provides a line-oriented progress renderer.
package linear

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/berth/internal/core/domain"
	"go.trai.ch/berth/internal/core/ports"
	"go.trai.ch/berth/internal/ui/output"
	"go.trai.ch/berth/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer implements ports.Renderer by writing one line per event.
type Renderer struct {
	w      io.Writer
	output *termenv.Output

	mu      sync.Mutex
	total   int
	tasks   map[int]*taskState
	started bool
	ctx     context.Context
	done    chan struct{}
	once    sync.Once
}

type taskState struct {
	description string
	startTime   time.Time
}

// NewRenderer creates a Renderer writing to w. Colors are used only when
// color is true and NO_COLOR is unset.
func NewRenderer(w io.Writer, color bool) *Renderer {
	if w == nil {
		w = os.Stderr
	}

	return &Renderer{
		w:      w,
		output: output.NewForMode(w, color),
		tasks:  make(map[int]*taskState),
		done:   make(chan struct{}),
	}
}

// Start marks the renderer as running.
func (r *Renderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.started = true
	r.ctx = ctx
	return nil
}

// Stop stops the renderer and releases Wait. It is safe to call more than once.
func (r *Renderer) Stop() error {
	r.once.Do(func() { close(r.done) })
	return nil
}

// Wait blocks until Stop is called or the context passed to Start is done.
func (r *Renderer) Wait() error {
	r.mu.Lock()
	ctx := r.ctx
	r.mu.Unlock()

	if ctx == nil {
		<-r.done
		return nil
	}

	select {
	case <-r.done:
	case <-ctx.Done():
	}
	return nil
}

// OnPlanEmit prints the script header and remembers the task count.
func (r *Renderer) OnPlanEmit(script string, tasks []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total = len(tasks)
	header := r.output.String(fmt.Sprintf("Running %s (%d %s)", script, len(tasks), plural(len(tasks)))).
		Foreground(termenv.RGBColor(string(style.Harbor))).Bold()
	_, _ = fmt.Fprintln(r.w, header.String())
}

// OnTaskStart prints the task's position and description.
func (r *Renderer) OnTaskStart(index int, description string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[index] = &taskState{description: description, startTime: startTime}

	prefix := r.output.String(r.position(index)).Faint().String()
	_, _ = fmt.Fprintf(r.w, "%s %s %s\n", prefix, style.Dot, description)
}

// OnTaskComplete prints the outcome and duration of the task at index.
func (r *Renderer) OnTaskComplete(index int, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[index]
	if !ok {
		return
	}
	delete(r.tasks, index)

	duration := endTime.Sub(task.startTime).Round(time.Millisecond)
	prefix := r.output.String(r.position(index)).Faint().String()

	if err != nil {
		symbol := r.output.String(style.Cross).Foreground(termenv.RGBColor(string(style.Red))).String()
		_, _ = fmt.Fprintf(r.w, "%s %s %s failed after %v\n", prefix, symbol, task.description, duration)
		return
	}

	symbol := r.output.String(style.Check).Foreground(termenv.RGBColor(string(style.Green))).String()
	_, _ = fmt.Fprintf(r.w, "%s %s %s (%v)\n", prefix, symbol, task.description, duration)
}

// OnSummary prints the final counts.
func (r *Renderer) OnSummary(summary domain.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	color := style.Green
	if !summary.Success() {
		color = style.Red
	}
	line := r.output.String(summary.String()).Foreground(termenv.RGBColor(string(color)))
	_, _ = fmt.Fprintln(r.w, line.String())
}

// position renders a one-based "[i/N]" marker. Must be called with r.mu held.
func (r *Renderer) position(index int) string {
	if r.total == 0 {
		return fmt.Sprintf("[%d]", index+1)
	}
	return fmt.Sprintf("[%d/%d]", index+1, r.total)
}

func plural(n int) string {
	if n == 1 {
		return "task"
	}
	return "tasks"
}
