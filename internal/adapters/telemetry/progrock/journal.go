package progrock

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/vito/progrock"
	"go.trai.ch/zerr"
)

// Journal is a progrock.Writer that appends every status update to w as one
// JSON document per line.
type Journal struct {
	mu  sync.Mutex
	w   io.Writer
	enc *json.Encoder
}

// NewJournal creates a Journal writing to w. If w is an io.Closer it is closed
// together with the journal.
func NewJournal(w io.Writer) *Journal {
	return &Journal{w: w, enc: json.NewEncoder(w)}
}

// WriteStatus implements progrock.Writer.
func (j *Journal) WriteStatus(update *progrock.StatusUpdate) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.enc.Encode(update); err != nil {
		return zerr.Wrap(err, "failed to write journal entry")
	}
	return nil
}

// Close implements progrock.Writer.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if c, ok := j.w.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return zerr.Wrap(err, "failed to close journal")
		}
	}
	return nil
}
