package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCancelled is returned when the user backs out of a prompt or declines
// the confirmation. It is an outcome, not a failure.
var ErrCancelled = errors.New("operation cancelled")

// ValidationError reports input that was rejected before any filesystem access.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// CollisionError reports that the generation target already exists.
type CollisionError struct {
	Path string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("directory %q already exists", e.Path)
}

// FilesystemError wraps an I/O failure with the operation and path it hit.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// IdentityReason tells why a directory is not an upgradeable project.
type IdentityReason int

const (
	// NotAProject means no readable project manifest was found.
	NotAProject IdentityReason = iota
	// WrongProjectKind means the manifest names a package outside the expected namespace.
	WrongProjectKind
)

// ProjectIdentityError reports that upgrade was run outside a generated project.
type ProjectIdentityError struct {
	Reason    IdentityReason
	Dir       string
	Name      string
	Namespace string
	Err       error
}

func (e *ProjectIdentityError) Error() string {
	switch e.Reason {
	case WrongProjectKind:
		return fmt.Sprintf("package %q does not appear to be a Captify app (expected a name starting with %q)", e.Name, e.Namespace)
	default:
		if e.Err != nil {
			return fmt.Sprintf("no usable package.json in %s: %v", e.Dir, e.Err)
		}
		return fmt.Sprintf("no package.json found in %s; run this command from your app directory", e.Dir)
	}
}

func (e *ProjectIdentityError) Unwrap() error { return e.Err }

// FileFailure records one upgradeable file that could not be written.
type FileFailure struct {
	Path string
	Err  error
}

// PartialUpgradeError is returned when some selected files failed to upgrade.
// The files that succeeded stay written.
type PartialUpgradeError struct {
	Failures []FileFailure
}

func (e *PartialUpgradeError) Error() string {
	paths := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		paths[i] = f.Path
	}
	return fmt.Sprintf("%d file(s) could not be upgraded: %s", len(e.Failures), strings.Join(paths, ", "))
}

func (e *PartialUpgradeError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}
