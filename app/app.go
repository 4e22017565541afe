// Package app holds the state shared by one command invocation.
package app

import (
	"io"

	"github.com/captify-io/create-captify-app/app/prompt"
	"github.com/captify-io/create-captify-app/app/ui"
	"github.com/captify-io/create-captify-app/internal/config"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// Session is the per-run state passed from the command layer down to the
// prompts and the engine. Nothing in it is global.
type Session struct {
	Log    *zap.Logger
	Store  *config.Store
	Config config.Config

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// WorkDir is where projects are created and upgraded.
	WorkDir string
	// Interactive is true when stdin is a terminal.
	Interactive bool
	Color       bool
	Emoji       bool
	Accessible  bool
	Width       int

	Styles Styles
}

// Prompter returns a prompter bound to the session streams.
func (s *Session) Prompter() *prompt.Prompter {
	return &prompt.Prompter{
		In:         s.Stdin,
		Out:        s.Stderr,
		Color:      s.Color,
		Accessible: s.Accessible,
	}
}

// Icon returns emoji when the session shows emoji, and "" otherwise.
func (s *Session) Icon(emoji string) string {
	if !s.Emoji {
		return ""
	}
	return emoji + " "
}

// Markdown renders md for the session output.
func (s *Session) Markdown(md string) string {
	return ui.NewMarkdownRenderer(s.Color, s.Width)(md)
}

// NextSteps renders the post-generation instructions: markdown through
// glamour when color is on, plain text otherwise.
func (s *Session) NextSteps(name string, port int) string {
	if s.Color {
		return s.Markdown(ui.NextSteps(name, port))
	}
	return s.Styles.Subtitle.Render("Next steps:") + "\n\n" + ui.NextStepsText(name, port)
}

// Styles are the lipgloss styles used for command output.
type Styles struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Highlight lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Help      lipgloss.Style
	Path      lipgloss.Style
}

// NewStyles builds the styles on r, which decides whether color is emitted.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("#00BFFF")),
		Subtitle:  r.NewStyle().Bold(true),
		Highlight: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA500")),
		Success:   r.NewStyle().Foreground(lipgloss.Color("#32CD32")),
		Warning:   r.NewStyle().Foreground(lipgloss.Color("#FFD700")),
		Error:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F5F")),
		Help:      r.NewStyle().Italic(true).Foreground(lipgloss.Color("#888888")),
		Path:      r.NewStyle().Foreground(lipgloss.Color("#888888")),
	}
}
