// Package ui provides terminal detection and output helpers.
package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Getenv looks up an environment variable; os.Getenv in production.
type Getenv func(string) string

// fder is implemented by *os.File.
type fder interface {
	Fd() uintptr
}

// IsTerminal reports whether stream is an *os.File attached to a terminal.
func IsTerminal(stream any) bool {
	f, ok := stream.(fder)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// ShouldUseColor determines if ANSI color codes should be written to out.
// Respects standard conventions:
//   - NO_COLOR: https://no-color.org/ - disables color if set
//   - CLICOLOR=0: disables color
//   - CLICOLOR_FORCE: forces color even in non-TTY
//   - Falls back to TTY detection
func ShouldUseColor(out io.Writer, getenv Getenv) bool {
	if getenv("NO_COLOR") != "" {
		return false
	}
	if getenv("CLICOLOR") == "0" {
		return false
	}
	if getenv("CLICOLOR_FORCE") != "" {
		return true
	}
	return IsTerminal(out)
}

// ShouldUseEmoji determines if emoji decorations should be used.
// Disabled in non-TTY mode and with CAPTIFY_NO_EMOJI.
func ShouldUseEmoji(out io.Writer, getenv Getenv) bool {
	if getenv("CAPTIFY_NO_EMOJI") != "" {
		return false
	}
	return IsTerminal(out)
}

// Width returns the width of the terminal or 80.
func Width(out io.Writer) int {
	f, ok := out.(fder)
	if !ok {
		return 80
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// NewRenderer returns a lipgloss renderer for out. Without color every
// style renders as plain text.
func NewRenderer(out io.Writer, color bool) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(out)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	} else if r.ColorProfile() == termenv.Ascii {
		// Forced color on a non-terminal.
		r.SetColorProfile(termenv.ANSI256)
	}
	return r
}
