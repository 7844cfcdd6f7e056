// Package detector provides environment detection for output mode selection.
package detector

import (
	"os"

	"golang.org/x/term"
)

// OutputMode represents how run progress is rendered.
type OutputMode int

const (
	// ModeAuto leaves the decision to DetectEnvironment.
	ModeAuto OutputMode = iota
	// ModeColor renders colored progress lines.
	ModeColor
	// ModePlain renders uncolored progress lines for CI logs and pipes.
	ModePlain
)

// String implements fmt.Stringer.
func (m OutputMode) String() string {
	switch m {
	case ModeColor:
		return "color"
	case ModePlain:
		return "plain"
	default:
		return "auto"
	}
}

// DetectEnvironment returns the recommended output mode for f.
// A non-terminal or a CI environment selects ModePlain.
func DetectEnvironment(f *os.File) OutputMode {
	isTTY := f != nil && term.IsTerminal(int(f.Fd())) //nolint:gosec // Fd fits in int on supported platforms

	if !isTTY || IsCI() {
		return ModePlain
	}
	return ModeColor
}

// IsCI reports whether the CI environment variable is set to a truthy value.
func IsCI() bool {
	ci := os.Getenv("CI")
	return ci == "true" || ci == "1"
}

// ResolveMode applies the user's --output flag to the detected mode.
// userFlag should be one of: "auto", "color", "plain", "ci", or empty.
func ResolveMode(autoDetected OutputMode, userFlag string) OutputMode {
	switch userFlag {
	case "color":
		return ModeColor
	case "plain", "ci":
		return ModePlain
	default:
		return autoDetected
	}
}
