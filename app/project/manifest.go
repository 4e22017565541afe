// Package project reads the manifest of an existing project to decide
// whether it can be upgraded.
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// ManifestFile is the project manifest looked up in the project root.
const ManifestFile = "package.json"

// ErrNoManifest is returned when the directory has no package.json.
var ErrNoManifest = errors.New("no package.json found")

// Manifest stores the package.json fields used for project identity
type Manifest struct {
	Name             string
	Version          string
	Description      string
	Type             string            // primary detected framework (nextjs, react, ...) or npm
	Dependencies     map[string]string // dependencies from package.json
	DevDependencies  map[string]string // devDependencies from package.json
	DetectedPackages []string          // known frameworks found in either dependency map, sorted
}

var (
	nameExpr        = jp.MustParseString("$.name")
	versionExpr     = jp.MustParseString("$.version")
	descriptionExpr = jp.MustParseString("$.description")
	depsExpr        = jp.MustParseString("$.dependencies")
	devDepsExpr     = jp.MustParseString("$.devDependencies")
)

// knownPackages maps dependency names to the framework they indicate.
var knownPackages = map[string]string{
	"next":              "nextjs",
	"react":             "react",
	"next-auth":         "next-auth",
	"tailwindcss":       "tailwindcss",
	"typescript":        "typescript",
	"@captify-io/core":  "captify-core",
	"@mui/material":     "material-ui",
	"styled-components": "styled-components",
}

// typePriority decides Type when several frameworks are present.
var typePriority = []string{"nextjs", "react"}

// Load reads and parses package.json at the root of fsys.
func Load(fsys billy.Filesystem) (Manifest, error) {
	data, err := util.ReadFile(fsys, ManifestFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Manifest{}, ErrNoManifest
		}
		return Manifest{}, fmt.Errorf("could not read %s: %w", ManifestFile, err)
	}
	return Parse(data)
}

// Parse extracts a Manifest from package.json content.
func Parse(data []byte) (Manifest, error) {
	doc, err := oj.Parse(data)
	if err != nil {
		return Manifest{}, fmt.Errorf("could not parse %s: %w", ManifestFile, err)
	}
	if _, ok := doc.(map[string]any); !ok {
		return Manifest{}, fmt.Errorf("%s must contain a JSON object", ManifestFile)
	}

	m := Manifest{
		Name:            firstString(nameExpr, doc),
		Version:         firstString(versionExpr, doc),
		Description:     firstString(descriptionExpr, doc),
		Type:            "npm",
		Dependencies:    stringMap(depsExpr, doc),
		DevDependencies: stringMap(devDepsExpr, doc),
	}

	detected := make(map[string]bool)
	for _, deps := range []map[string]string{m.Dependencies, m.DevDependencies} {
		for pkg := range deps {
			if framework, ok := knownPackages[pkg]; ok {
				detected[framework] = true
			}
		}
	}
	for framework := range detected {
		m.DetectedPackages = append(m.DetectedPackages, framework)
	}
	sort.Strings(m.DetectedPackages)
	for _, t := range typePriority {
		if detected[t] {
			m.Type = t
			break
		}
	}
	return m, nil
}

// InNamespace reports whether the package name starts with namespace.
func (m Manifest) InNamespace(namespace string) bool {
	return m.Name != "" && strings.HasPrefix(m.Name, namespace)
}

func firstString(x jp.Expr, doc any) string {
	s, _ := x.First(doc).(string)
	return s
}

func stringMap(x jp.Expr, doc any) map[string]string {
	out := make(map[string]string)
	raw, ok := x.First(doc).(map[string]any)
	if !ok {
		return out
	}
	for k, v := range raw {
		version, _ := v.(string)
		out[k] = version
	}
	return out
}
