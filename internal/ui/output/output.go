// Package output builds termenv outputs that honour NO_COLOR and the
// color/plain output modes of the CLI.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// NoColor reports whether the NO_COLOR convention is in effect.
func NoColor() bool {
	return os.Getenv("NO_COLOR") != ""
}

// ColorProfile returns the color profile advertised by the terminal
// environment, or termenv.Ascii when NO_COLOR is set.
func ColorProfile() termenv.Profile {
	if NoColor() {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// New creates a termenv.Output for w using ColorProfile. A nil w writes to
// os.Stderr.
func New(w io.Writer) *termenv.Output {
	return newOutput(w, ColorProfile())
}

// NewForMode creates a termenv.Output for a renderer. Plain mode always
// strips colors; color mode falls back to ColorProfile.
func NewForMode(w io.Writer, color bool) *termenv.Output {
	if !color {
		return newOutput(w, termenv.Ascii)
	}
	return New(w)
}

func newOutput(w io.Writer, profile termenv.Profile) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}
	return termenv.NewOutput(w, termenv.WithProfile(profile), termenv.WithTTY(true))
}
