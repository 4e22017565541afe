package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// NewMarkdownRenderer returns a function that renders markdown using glamour
// when styled, and passes the source through otherwise.
func NewMarkdownRenderer(styled bool, width int) func(string) string {
	if !styled {
		return func(md string) string { return md }
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return func(md string) string { return md }
	}
	return func(md string) string {
		out, err := r.Render(md)
		if err != nil {
			return md
		}
		return out
	}
}

// NextSteps is the markdown shown after a project is created.
func NextSteps(name string, port int) string {
	var b strings.Builder
	b.WriteString("## Next steps\n\n")
	b.WriteString("```sh\n")
	for _, c := range nextCommands(name) {
		b.WriteString(c + "\n")
	}
	b.WriteString("```\n\n")
	fmt.Fprintf(&b, "Your app runs on port **%d**. Make sure the platform is running on port 3000 for authentication.\n", port)
	return b.String()
}

// NextStepsText is NextSteps without markdown, for output that is not styled.
// The heading is left to the caller.
func NextStepsText(name string, port int) string {
	var b strings.Builder
	for _, c := range nextCommands(name) {
		fmt.Fprintf(&b, "  %s\n", c)
	}
	fmt.Fprintf(&b, "\nYour app runs on port %d. Make sure the platform is running on port 3000 for authentication.\n", port)
	return b.String()
}

func nextCommands(name string) []string {
	return []string{"cd " + name, "npm install", "npm run dev"}
}

// NextStepsCommands is the shell snippet copied to the clipboard.
func NextStepsCommands(name string) string {
	return strings.Join(nextCommands(name), " && ")
}
