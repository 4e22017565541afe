package engine

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/captify-io/create-captify-app/app/project"
	"github.com/captify-io/create-captify-app/app/templates"
	"github.com/go-git/go-billy/v5"
	"go.uber.org/zap"
)

// Selector asks which upgradeable files to apply and confirms the choice.
// Both methods return ErrCancelled when the user backs out.
type Selector interface {
	SelectFiles(ctx context.Context, files []templates.UpgradeableFile) ([]string, error)
	Confirm(ctx context.Context, paths []string) (bool, error)
}

// Upgrader overwrites selected upgradeable files of an existing project with
// the template's current copy. Template files are written verbatim: tokens
// are not substituted again.
type Upgrader struct {
	Template fs.FS
	Manifest templates.UpgradeManifest
	// Project is rooted at the project directory.
	Project billy.Filesystem
	// Dir is the project directory as shown to the user.
	Dir string
	// Namespace is the required package name prefix.
	Namespace string
	OnPhase   func(Phase)
	Log       *zap.Logger
}

// Report describes the outcome of an upgrade run.
type Report struct {
	Project  project.Manifest
	Selected []string
	Upgraded []string
	// Skipped lists selected paths absent from the template.
	Skipped []string
	Failed  []FileFailure
	// Unresolved maps upgraded paths to the placeholder tokens they still contain.
	Unresolved map[string][]string
}

// Count returns the number of files written.
func (r Report) Count() int { return len(r.Upgraded) }

// Run validates the project, asks sel for a selection and applies it.
// An empty selection returns without confirming or touching the project.
// A declined confirmation returns ErrCancelled. Individual write failures do
// not stop the run; they are collected into a PartialUpgradeError.
func (u *Upgrader) Run(ctx context.Context, sel Selector) (Report, error) {
	rep := Report{Unresolved: map[string][]string{}}

	u.enter(PhaseValidating)
	m, err := u.identify()
	if err != nil {
		return rep, u.fail(err)
	}
	rep.Project = m
	u.logger().Debug("project identified",
		zap.String("name", m.Name),
		zap.String("type", m.Type),
		zap.Strings("detected", m.DetectedPackages))

	u.enter(PhaseSelectingFiles)
	u.logger().Debug("offering upgradeable files", zap.Strings("paths", u.Manifest.Paths()))
	selected, err := sel.SelectFiles(ctx, u.Manifest.Files)
	if err != nil {
		return rep, u.cancelOrFail(err)
	}
	for _, p := range selected {
		if !u.Manifest.Contains(p) {
			return rep, u.fail(&ValidationError{Field: "upgrade path", Value: p, Reason: "not an upgradeable file"})
		}
	}
	rep.Selected = selected
	if len(selected) == 0 {
		u.enter(PhaseDone)
		return rep, nil
	}

	u.enter(PhaseConfirming)
	ok, err := sel.Confirm(ctx, selected)
	if err != nil {
		return rep, u.cancelOrFail(err)
	}
	if !ok {
		return rep, u.cancelOrFail(ErrCancelled)
	}

	u.enter(PhaseApplying)
	u.apply(ctx, selected, &rep)
	if len(rep.Failed) > 0 {
		return rep, u.fail(&PartialUpgradeError{Failures: rep.Failed})
	}
	u.enter(PhaseDone)
	return rep, nil
}

// identify maps manifest problems to ProjectIdentityError.
func (u *Upgrader) identify() (project.Manifest, error) {
	m, err := project.Load(u.Project)
	switch {
	case errors.Is(err, project.ErrNoManifest):
		return m, &ProjectIdentityError{Reason: NotAProject, Dir: u.Dir}
	case err != nil:
		return m, &ProjectIdentityError{Reason: NotAProject, Dir: u.Dir, Err: err}
	case !m.InNamespace(u.Namespace):
		return m, &ProjectIdentityError{Reason: WrongProjectKind, Dir: u.Dir, Name: m.Name, Namespace: u.Namespace}
	}
	return m, nil
}

// apply writes the selected files in manifest order.
func (u *Upgrader) apply(ctx context.Context, selected []string, rep *Report) {
	log := u.logger()
	want := make(map[string]bool, len(selected))
	for _, p := range selected {
		want[p] = true
	}

	for _, f := range u.Manifest.Files {
		if !want[f.Path] {
			continue
		}
		if err := ctx.Err(); err != nil {
			rep.Failed = append(rep.Failed, FileFailure{Path: f.Path, Err: err})
			continue
		}

		data, err := fs.ReadFile(u.Template, f.Path)
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("template file missing, skipping", zap.String("path", f.Path))
			rep.Skipped = append(rep.Skipped, f.Path)
			continue
		}
		if err != nil {
			rep.Failed = append(rep.Failed, FileFailure{Path: f.Path, Err: &FilesystemError{Op: "read template file", Path: f.Path, Err: err}})
			continue
		}

		mode := fileMode
		if info, err := fs.Stat(u.Template, f.Path); err == nil {
			mode = modeFor(info)
		}
		if err := u.write(f.Path, data, mode); err != nil {
			log.Warn("could not upgrade file", zap.String("path", f.Path), zap.Error(err))
			rep.Failed = append(rep.Failed, FileFailure{Path: f.Path, Err: err})
			continue
		}
		rep.Upgraded = append(rep.Upgraded, f.Path)
		if tokens := FindPlaceholders(data); len(tokens) > 0 {
			rep.Unresolved[f.Path] = tokens
		}
		log.Debug("file upgraded", zap.String("path", f.Path), zap.String("category", string(f.Category)))
	}
}

// write overwrites name and sets mode, which opening an existing file does not.
func (u *Upgrader) write(name string, data []byte, mode os.FileMode) error {
	if err := writeFile(u.Project, name, data, mode); err != nil {
		return err
	}
	if ch, ok := u.Project.(billy.Chmod); ok {
		if err := ch.Chmod(name, mode); err != nil {
			return &FilesystemError{Op: "chmod", Path: name, Err: err}
		}
	}
	return nil
}

func (u *Upgrader) cancelOrFail(err error) error {
	if errors.Is(err, ErrCancelled) {
		u.enter(PhaseCancelled)
		return ErrCancelled
	}
	return u.fail(err)
}

func (u *Upgrader) enter(p Phase) {
	u.logger().Debug("upgrade phase", zap.Stringer("phase", p))
	if u.OnPhase != nil {
		u.OnPhase(p)
	}
}

func (u *Upgrader) fail(err error) error {
	u.enter(PhaseFailed)
	return err
}

func (u *Upgrader) logger() *zap.Logger {
	if u.Log == nil {
		return zap.NewNop()
	}
	return u.Log
}
