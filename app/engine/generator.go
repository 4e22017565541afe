// Package engine materializes projects from a template tree and re-applies
// upgradeable template files onto existing projects.
package engine

import (
	"context"
	"errors"
	"io/fs"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"
)

// Phase is a step of the generation or upgrade state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidatingTarget
	PhaseCopying
	PhaseRewriting
	PhaseValidating
	PhaseSelectingFiles
	PhaseConfirming
	PhaseApplying
	PhaseDone
	PhaseCancelled
	PhaseFailed
)

var phaseNames = map[Phase]string{
	PhaseIdle:             "idle",
	PhaseValidatingTarget: "validating-target",
	PhaseCopying:          "copying",
	PhaseRewriting:        "rewriting",
	PhaseValidating:       "validating",
	PhaseSelectingFiles:   "selecting-files",
	PhaseConfirming:       "confirming",
	PhaseApplying:         "applying",
	PhaseDone:             "done",
	PhaseCancelled:        "cancelled",
	PhaseFailed:           "failed",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// Generator creates a new project directory from a template tree.
type Generator struct {
	// Template is the read-only source tree.
	Template fs.FS
	// FS is rooted at the directory the project is created in.
	FS billy.Filesystem
	// Atomic stages the project in a hidden sibling directory and renames it
	// into place only once copy and rewrite both succeed.
	Atomic bool
	// OnPhase, when set, observes every phase transition.
	OnPhase func(Phase)
	Log     *zap.Logger
}

// Result describes a generated project.
type Result struct {
	Target    string
	Files     []string
	Rewritten int
}

// Generate creates p.Name under the generator's filesystem. It refuses to
// touch an existing entry of that name. Without Atomic, a failure while
// copying or rewriting leaves the partial tree on disk.
func (g *Generator) Generate(ctx context.Context, p Params) (Result, error) {
	log := g.logger().With(zap.String("target", p.Name))
	res := Result{Target: p.Name}

	g.enter(PhaseValidatingTarget)
	table, err := TableFor(p)
	if err != nil {
		return res, g.fail(err)
	}
	if err := g.checkTarget(p.Name); err != nil {
		return res, g.fail(err)
	}
	if slug, ok := table.Lookup(TokenAppSlug); ok {
		log.Debug("target available", zap.String("slug", slug))
	}

	workDir := p.Name
	if g.Atomic {
		workDir, err = util.TempDir(g.FS, ".", "."+p.Name+".staging-")
		if err != nil {
			return res, g.fail(&FilesystemError{Op: "create staging directory", Path: p.Name, Err: err})
		}
		log.Debug("staging generation", zap.String("staging", workDir))
	}

	files, rewritten, err := g.materialize(ctx, workDir, table)
	res.Files, res.Rewritten = files, rewritten
	if err != nil {
		if g.Atomic {
			if rmErr := util.RemoveAll(g.FS, workDir); rmErr != nil {
				log.Warn("could not remove staging directory", zap.String("staging", workDir), zap.Error(rmErr))
			}
		}
		return res, g.fail(err)
	}

	if g.Atomic {
		if err := g.FS.Rename(workDir, p.Name); err != nil {
			_ = util.RemoveAll(g.FS, workDir)
			return res, g.fail(&FilesystemError{Op: "rename", Path: workDir, Err: err})
		}
		// TempDir creates 0700 directories.
		if ch, ok := g.FS.(billy.Chmod); ok {
			if err := ch.Chmod(p.Name, dirMode); err != nil {
				log.Warn("could not set project directory mode", zap.Error(err))
			}
		}
	}

	log.Debug("project generated", zap.Int("files", len(files)), zap.Int("rewritten", rewritten))
	g.enter(PhaseDone)
	return res, nil
}

func (g *Generator) materialize(ctx context.Context, dir string, table *Table) ([]string, int, error) {
	g.enter(PhaseCopying)
	files, err := CopyTree(ctx, g.Template, g.FS, dir)
	if err != nil {
		return files, 0, err
	}

	g.enter(PhaseRewriting)
	rewritten, err := RewriteTokens(ctx, g.FS, dir, table)
	return files, rewritten, err
}

// checkTarget fails when anything, file or directory, already has the target name.
func (g *Generator) checkTarget(name string) error {
	_, err := g.FS.Lstat(name)
	switch {
	case err == nil:
		return &CollisionError{Path: name}
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return &FilesystemError{Op: "stat", Path: name, Err: err}
	}
}

func (g *Generator) enter(p Phase) {
	g.logger().Debug("generation phase", zap.Stringer("phase", p))
	if g.OnPhase != nil {
		g.OnPhase(p)
	}
}

func (g *Generator) fail(err error) error {
	g.enter(PhaseFailed)
	return err
}

func (g *Generator) logger() *zap.Logger {
	if g.Log == nil {
		return zap.NewNop()
	}
	return g.Log
}
