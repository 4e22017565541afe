// Package templates bundles the application template tree and the manifest of
// files an existing project may take from it on upgrade.
package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// The all: prefix keeps dotfiles such as .gitignore in the embedded tree.
//
//go:embed all:default
var defaultFiles embed.FS

//go:embed upgrade.yaml
var upgradeManifest []byte

// DefaultName is the directory of the bundled template.
const DefaultName = "default"

// Default returns the bundled template tree, rooted so that paths such as
// "src/config.ts" resolve directly.
func Default() fs.FS {
	sub, err := fs.Sub(defaultFiles, DefaultName)
	if err != nil {
		// fs.Sub only fails for an invalid name and DefaultName is constant.
		panic(fmt.Sprintf("templates: %v", err))
	}
	return sub
}

// Open returns the on-disk template at dir, or the bundled template when dir is empty.
// The returned tree is read-only.
func Open(dir string) (fs.FS, error) {
	if strings.TrimSpace(dir) == "" {
		return Default(), nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("could not open template directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template path %s is not a directory", dir)
	}
	return os.DirFS(dir), nil
}

// Category groups upgradeable files by what they configure.
type Category string

const (
	CategoryBuild Category = "build"
	CategoryStyle Category = "style"
	CategoryVCS   Category = "vcs"
)

// UpgradeableFile is one entry of the upgrade manifest.
type UpgradeableFile struct {
	Path     string   `yaml:"path"`
	Category Category `yaml:"category"`
}

// UpgradeManifest is the versioned list of template paths that are safe to
// overwrite in a generated project. Order is the order files are applied in.
type UpgradeManifest struct {
	Version int               `yaml:"version"`
	Files   []UpgradeableFile `yaml:"files"`
}

// Upgradeable returns the manifest shipped with the bundled template.
func Upgradeable() (UpgradeManifest, error) {
	return ParseManifest(upgradeManifest)
}

// ParseManifest decodes and validates an upgrade manifest.
func ParseManifest(data []byte) (UpgradeManifest, error) {
	var m UpgradeManifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return UpgradeManifest{}, fmt.Errorf("could not parse upgrade manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return UpgradeManifest{}, fmt.Errorf("invalid upgrade manifest: %w", err)
	}
	return m, nil
}

func (m UpgradeManifest) validate() error {
	if m.Version < 1 {
		return fmt.Errorf("version must be at least 1, got %d", m.Version)
	}
	seen := make(map[string]bool, len(m.Files))
	for _, f := range m.Files {
		if err := checkRelativePath(f.Path); err != nil {
			return err
		}
		switch f.Category {
		case CategoryBuild, CategoryStyle, CategoryVCS:
		default:
			return fmt.Errorf("unknown category %q for %s", f.Category, f.Path)
		}
		if seen[f.Path] {
			return fmt.Errorf("duplicate path %s", f.Path)
		}
		seen[f.Path] = true
	}
	return nil
}

// checkRelativePath accepts clean, slash-separated paths that stay inside the project root.
func checkRelativePath(p string) error {
	if p == "" {
		return errors.New("empty path")
	}
	if p == "." || !fs.ValidPath(p) || strings.Contains(p, `\`) {
		return fmt.Errorf("path %q must be relative, clean and slash-separated", p)
	}
	return nil
}

// Paths returns the manifest paths in manifest order.
func (m UpgradeManifest) Paths() []string {
	paths := make([]string, len(m.Files))
	for i, f := range m.Files {
		paths[i] = f.Path
	}
	return paths
}

// Contains reports whether p is listed in the manifest.
func (m UpgradeManifest) Contains(p string) bool {
	for _, f := range m.Files {
		if f.Path == p {
			return true
		}
	}
	return false
}

// Verify checks that every manifest path is a regular file in tree.
func (m UpgradeManifest) Verify(tree fs.FS) error {
	var missing []string
	for _, f := range m.Files {
		info, err := fs.Stat(tree, f.Path)
		if err != nil || !info.Mode().IsRegular() {
			missing = append(missing, f.Path)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("template is missing upgradeable files: %s", strings.Join(missing, ", "))
	}
	return nil
}
