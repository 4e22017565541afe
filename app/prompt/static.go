package prompt

import (
	"context"

	"github.com/captify-io/create-captify-app/app/engine"
	"github.com/captify-io/create-captify-app/app/templates"
)

// FileSelector picks upgradeable files.
type FileSelector interface {
	SelectFiles(ctx context.Context, files []templates.UpgradeableFile) ([]string, error)
}

// Confirmer approves a selection.
type Confirmer interface {
	Confirm(ctx context.Context, paths []string) (bool, error)
}

// Only selects a fixed list of paths without prompting.
// An empty list selects every offered file.
type Only []string

func (o Only) SelectFiles(_ context.Context, files []templates.UpgradeableFile) ([]string, error) {
	if len(o) > 0 {
		return append([]string(nil), o...), nil
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths, nil
}

// AutoConfirm approves every selection, as --yes does.
type AutoConfirm struct{}

func (AutoConfirm) Confirm(context.Context, []string) (bool, error) { return true, nil }

// RequireYes declines to confirm without prompting. It stands in for the
// confirmation prompt when input is not a terminal and --yes was not given.
type RequireYes struct{}

func (RequireYes) Confirm(context.Context, []string) (bool, error) {
	return false, &engine.ValidationError{
		Field:  "confirmation",
		Reason: "--yes is required when running non-interactively",
	}
}

type combined struct {
	FileSelector
	Confirmer
}

// Combine pairs a file selector with a confirmer.
func Combine(s FileSelector, c Confirmer) engine.Selector {
	return combined{FileSelector: s, Confirmer: c}
}
