package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing/fstest"

	"github.com/go-git/go-billy/v5"
)

var errInjected = errors.New("injected failure")

// testTemplate is a small template tree covering nested directories, dotfiles,
// every token and an executable file.
func testTemplate() fstest.MapFS {
	return fstest.MapFS{
		"package.json":        {Data: []byte(`{"name": "@captify-io/{{APP_SLUG}}", "description": "{{DESCRIPTION}}"}` + "\n")},
		"next.config.ts":      {Data: []byte("export default { basePath: '/{{APP_SLUG}}' };\n")},
		"src/config.ts":       {Data: []byte("export const config = {\n  name: \"{{APP_NAME}}\",\n  slug: \"{{APP_SLUG}}\",\n  port: {{PORT}},\n};\n")},
		"src/app/globals.css": {Data: []byte("body { margin: 0; }\n")},
		".gitignore":          {Data: []byte("node_modules\n.next\n")},
		"scripts/dev.sh":      {Data: []byte("#!/bin/sh\nnext dev -p {{PORT}}\n"), Mode: 0o755},
	}
}

// faultyFS fails writes to paths matched by failWrite.
type faultyFS struct {
	billy.Filesystem
	failWrite func(name string) bool
}

func failOn(suffix string) func(string) bool {
	return func(name string) bool {
		return strings.HasSuffix(filepath.ToSlash(name), suffix)
	}
}

func (f *faultyFS) OpenFile(name string, flag int, perm os.FileMode) (billy.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR) != 0 && f.failWrite(name) {
		return nil, errInjected
	}
	return f.Filesystem.OpenFile(name, flag, perm)
}

func (f *faultyFS) Create(name string) (billy.File, error) {
	if f.failWrite(name) {
		return nil, errInjected
	}
	return f.Filesystem.Create(name)
}

// tripwireFS passes calls through until armed, then fails and records every call.
type tripwireFS struct {
	billy.Filesystem
	armed   bool
	touched []string
}

func (f *tripwireFS) trip(op, name string) error {
	if !f.armed {
		return nil
	}
	f.touched = append(f.touched, op+" "+name)
	return errInjected
}

func (f *tripwireFS) Create(name string) (billy.File, error) {
	if err := f.trip("create", name); err != nil {
		return nil, err
	}
	return f.Filesystem.Create(name)
}

func (f *tripwireFS) Open(name string) (billy.File, error) {
	if err := f.trip("open", name); err != nil {
		return nil, err
	}
	return f.Filesystem.Open(name)
}

func (f *tripwireFS) OpenFile(name string, flag int, perm os.FileMode) (billy.File, error) {
	if err := f.trip("openfile", name); err != nil {
		return nil, err
	}
	return f.Filesystem.OpenFile(name, flag, perm)
}

func (f *tripwireFS) Stat(name string) (os.FileInfo, error) {
	if err := f.trip("stat", name); err != nil {
		return nil, err
	}
	return f.Filesystem.Stat(name)
}

func (f *tripwireFS) Lstat(name string) (os.FileInfo, error) {
	if err := f.trip("lstat", name); err != nil {
		return nil, err
	}
	return f.Filesystem.Lstat(name)
}

func (f *tripwireFS) Rename(from, to string) error {
	if err := f.trip("rename", from); err != nil {
		return err
	}
	return f.Filesystem.Rename(from, to)
}

func (f *tripwireFS) Remove(name string) error {
	if err := f.trip("remove", name); err != nil {
		return err
	}
	return f.Filesystem.Remove(name)
}

func (f *tripwireFS) ReadDir(name string) ([]os.FileInfo, error) {
	if err := f.trip("readdir", name); err != nil {
		return nil, err
	}
	return f.Filesystem.ReadDir(name)
}

func (f *tripwireFS) MkdirAll(name string, perm os.FileMode) error {
	if err := f.trip("mkdirall", name); err != nil {
		return err
	}
	return f.Filesystem.MkdirAll(name, perm)
}

func (f *tripwireFS) TempFile(dir, prefix string) (billy.File, error) {
	if err := f.trip("tempfile", dir); err != nil {
		return nil, err
	}
	return f.Filesystem.TempFile(dir, prefix)
}
