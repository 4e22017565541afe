package engine

import (
	"context"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// RewriteTokens applies t to the full text of every regular file under root
// and writes the result back in place. Files are not classified: a binary
// file is rewritten like any other, so templates are expected to hold text
// only. Every file is rewritten, including those without tokens. It returns
// the number of files written.
func RewriteTokens(ctx context.Context, fsys billy.Filesystem, root string, t *Table) (int, error) {
	rewritten := 0
	err := util.Walk(fsys, root, func(p string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return &FilesystemError{Op: "walk", Path: p, Err: walkErr}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		data, err := util.ReadFile(fsys, p)
		if err != nil {
			return &FilesystemError{Op: "read", Path: p, Err: err}
		}
		out := t.Apply(string(data))
		if err := util.WriteFile(fsys, p, []byte(out), info.Mode().Perm()); err != nil {
			return &FilesystemError{Op: "write", Path: p, Err: err}
		}
		rewritten++
		return nil
	})
	return rewritten, err
}
