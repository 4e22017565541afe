package engine

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

const (
	dirMode  os.FileMode = 0o755
	fileMode os.FileMode = 0o644
)

// CopyTree clones every directory and file of src under root in dst, creating
// intermediate directories as needed. It returns the slash-separated paths of
// the copied files relative to root. The first error aborts the copy; files
// already written are left in place.
func CopyTree(ctx context.Context, src fs.FS, dst billy.Filesystem, root string) ([]string, error) {
	if err := dst.MkdirAll(root, dirMode); err != nil {
		return nil, &FilesystemError{Op: "create directory", Path: root, Err: err}
	}

	var copied []string
	err := fs.WalkDir(src, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return &FilesystemError{Op: "read template", Path: p, Err: walkErr}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == "." {
			return nil
		}
		target := dst.Join(root, p)

		if d.IsDir() {
			if err := dst.MkdirAll(target, dirMode); err != nil {
				return &FilesystemError{Op: "create directory", Path: target, Err: err}
			}
			return nil
		}
		if !d.Type().IsRegular() {
			// Symlinks and devices have no place in a template.
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return &FilesystemError{Op: "stat template file", Path: p, Err: err}
		}
		data, err := fs.ReadFile(src, p)
		if err != nil {
			return &FilesystemError{Op: "read template file", Path: p, Err: err}
		}
		if err := writeFile(dst, target, data, modeFor(info)); err != nil {
			return err
		}
		copied = append(copied, p)
		return nil
	})
	return copied, err
}

// writeFile creates the parent directory of name and writes data over it.
func writeFile(fsys billy.Filesystem, name string, data []byte, mode os.FileMode) error {
	if dir := filepath.Dir(name); dir != "." {
		if err := fsys.MkdirAll(dir, dirMode); err != nil {
			return &FilesystemError{Op: "create directory", Path: dir, Err: err}
		}
	}
	if err := util.WriteFile(fsys, name, data, mode); err != nil {
		return &FilesystemError{Op: "write", Path: name, Err: err}
	}
	return nil
}

// modeFor keeps the executable bits of a template file. Embedded files
// report 0444, so the base permission is fixed.
func modeFor(info fs.FileInfo) os.FileMode {
	return fileMode | (info.Mode().Perm() & 0o111)
}
