// Package prompt asks the user for generation parameters and upgrade choices.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/captify-io/create-captify-app/app/engine"
	"github.com/captify-io/create-captify-app/app/templates"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// DefaultName is offered when no project name was given.
const DefaultName = "my-captify-app"

// Fields selects which parameters still need an answer.
type Fields struct {
	Name        bool
	Port        bool
	Description bool
}

// Any reports whether at least one field is asked.
func (f Fields) Any() bool { return f.Name || f.Port || f.Description }

// Prompter runs huh forms on the given streams.
type Prompter struct {
	In  io.Reader
	Out io.Writer
	// Color selects the Charm theme over the plain one.
	Color bool
	// Accessible replaces the TUI with line-based prompts.
	Accessible bool
}

// formInput holds raw form values before parsing.
type formInput struct {
	Name        string
	Port        string
	Description string
}

// Params asks for the fields in ask, starting from initial, and returns the
// validated result. Fields not asked keep their initial value.
func (p *Prompter) Params(ctx context.Context, initial engine.Params, ask Fields) (engine.Params, error) {
	raw := &formInput{
		Name:        initial.Name,
		Port:        strconv.Itoa(initial.Port),
		Description: initial.Description,
	}
	if raw.Name == "" {
		raw.Name = DefaultName
	}

	var fields []huh.Field
	if ask.Name {
		fields = append(fields, huh.NewInput().
			Title("Project name").
			Description("Lowercase letters, numbers and dashes").
			Placeholder(DefaultName).
			Value(&raw.Name).
			Validate(validateName))
	}
	if ask.Port {
		fields = append(fields, huh.NewInput().
			Title("Development port").
			Description(fmt.Sprintf("Between %d and %d", engine.MinPort, engine.MaxPort)).
			Value(&raw.Port).
			Validate(validatePort))
	}
	if ask.Description {
		fields = append(fields, huh.NewInput().
			Title("Description").
			Value(&raw.Description))
	}
	if ask.Any() {
		if err := p.run(ctx, huh.NewForm(huh.NewGroup(fields...))); err != nil {
			return engine.Params{}, err
		}
	}
	return parseFormInput(raw)
}

// SelectFiles offers every upgradeable file, all selected.
func (p *Prompter) SelectFiles(ctx context.Context, files []templates.UpgradeableFile) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	options := make([]huh.Option[string], len(files))
	for i, f := range files {
		label := fmt.Sprintf("%s (%s)", f.Path, f.Category)
		options[i] = huh.NewOption(label, f.Path).Selected(true)
	}

	var selected []string
	field := huh.NewMultiSelect[string]().
		Title("Files to upgrade").
		Description("space toggles, enter confirms").
		Options(options...).
		Value(&selected)
	if err := p.run(ctx, huh.NewForm(huh.NewGroup(field))); err != nil {
		return nil, err
	}
	return selected, nil
}

// Confirm asks before overwriting paths.
func (p *Prompter) Confirm(ctx context.Context, paths []string) (bool, error) {
	ok := false
	field := huh.NewConfirm().
		Title(fmt.Sprintf("Overwrite %d file(s)? Local changes to them will be lost.", len(paths))).
		Affirmative("Upgrade").
		Negative("Cancel").
		Value(&ok)
	if err := p.run(ctx, huh.NewForm(huh.NewGroup(field))); err != nil {
		return false, err
	}
	return ok, nil
}

func (p *Prompter) run(ctx context.Context, form *huh.Form) error {
	theme := huh.ThemeBase()
	if p.Color {
		theme = huh.ThemeCharm()
	}
	form = form.
		WithTheme(theme).
		WithKeyMap(keyMap()).
		WithAccessible(p.Accessible).
		WithShowHelp(true)
	if p.In != nil {
		form = form.WithInput(p.In)
	}
	if p.Out != nil {
		form = form.WithOutput(p.Out)
	}
	// SIGINT is handled by the command context.
	form = form.WithProgramOptions(append(programOptions(p.In, p.Out), tea.WithoutSignalHandler())...)

	err := form.RunWithContext(ctx)
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, huh.ErrUserAborted):
		return engine.ErrCancelled
	default:
		return fmt.Errorf("prompt failed: %w", err)
	}
}

// programOptions repeats the stream options, which WithProgramOptions replaces.
func programOptions(in io.Reader, out io.Writer) []tea.ProgramOption {
	var opts []tea.ProgramOption
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}
	return opts
}

// keyMap lets esc cancel a prompt as well as ctrl+c.
func keyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "cancel"),
	)
	return km
}

func validateName(s string) error {
	return engine.ValidateName(strings.TrimSpace(s))
}

func validatePort(s string) error {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return &engine.ValidationError{Field: "port", Value: s, Reason: "must be a number"}
	}
	return engine.ValidatePort(port)
}

// parseFormInput converts raw form values into validated params.
func parseFormInput(raw *formInput) (engine.Params, error) {
	if err := validatePort(raw.Port); err != nil {
		return engine.Params{}, err
	}
	port, _ := strconv.Atoi(strings.TrimSpace(raw.Port))
	p := engine.Params{
		Name:        strings.TrimSpace(raw.Name),
		Port:        port,
		Description: strings.TrimSpace(raw.Description),
	}
	return p, p.Validate()
}
