package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/captify-io/create-captify-app/app/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	workDir    string
	configPath string
	stdout     bytes.Buffer
	stderr     bytes.Buffer
	copied     []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, k := range []string{"CAPTIFY_PORT", "CAPTIFY_DESCRIPTION", "CAPTIFY_NAMESPACE", "CAPTIFY_TEMPLATE_DIR", "CAPTIFY_ATOMIC", "CAPTIFY_COPY_NEXT_STEPS"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	return &harness{
		workDir:    t.TempDir(),
		configPath: filepath.Join(t.TempDir(), "config.yaml"),
	}
}

func (h *harness) run(args ...string) int {
	h.stdout.Reset()
	h.stderr.Reset()
	interactive := false
	o := &options{
		stdin:       strings.NewReader(""),
		stdout:      &h.stdout,
		stderr:      &h.stderr,
		getenv:      func(string) string { return "" },
		workDir:     h.workDir,
		interactive: &interactive,
		clipboard: func(s string) error {
			h.copied = append(h.copied, s)
			return nil
		},
	}
	return run(context.Background(), append([]string{"--config", h.configPath}, args...), o)
}

func (h *harness) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(h.workDir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func (h *harness) write(t *testing.T, rel, content string) {
	t.Helper()
	p := filepath.Join(h.workDir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestGenerateRequiresNameWhenNotInteractive(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.run())
	assert.Contains(t, h.stderr.String(), "✖ invalid project name: required when running non-interactively")
	assert.Contains(t, h.stderr.String(), "--help")

	entries, err := os.ReadDir(h.workDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerateProject(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run("my-app", "--port", "3002", "--description", "Test"), h.stderr.String())

	cfg := h.read(t, "my-app/src/config.ts")
	assert.Contains(t, cfg, `slug: "my-app"`)
	assert.Contains(t, cfg, "port: 3002")
	assert.Contains(t, cfg, "Test")

	pkg := h.read(t, "my-app/package.json")
	assert.Contains(t, pkg, `"@captify-io/my-app"`)
	assert.Contains(t, pkg, "-p 3002")

	err := filepath.WalkDir(filepath.Join(h.workDir, "my-app"), func(p string, d os.DirEntry, err error) error {
		require.NoError(t, err)
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Empty(t, engine.FindPlaceholders(data), p)
		return nil
	})
	require.NoError(t, err)

	out := h.stdout.String()
	assert.Contains(t, out, "✓ Created my-app successfully!")
	assert.Contains(t, out, "cd my-app")
	assert.Contains(t, out, "npm run dev")
	assert.Contains(t, out, "config.ts")
	assert.Contains(t, out, "Next steps:")
	assert.NotContains(t, out, "## Next steps", "plain output carries no markdown")
	assert.NotContains(t, out, "```")
	assert.Empty(t, h.copied)
}

func TestGenerateUsesConfigDefaults(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("config", "set", "port", "4100"), h.stderr.String())
	require.Equal(t, 0, h.run("config", "set", "copy-next-steps", "true"), h.stderr.String())

	require.Equal(t, 0, h.run("from-config"), h.stderr.String())

	assert.Contains(t, h.read(t, "from-config/src/config.ts"), "port: 4100")
	assert.Contains(t, h.read(t, "from-config/src/config.ts"), "A Captify plugin application")
	assert.Equal(t, []string{"cd from-config && npm install && npm run dev"}, h.copied)
}

func TestGenerateTwiceLeavesFirstProjectUntouched(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("my-app", "--description", "first"), h.stderr.String())
	before := h.read(t, "my-app/src/config.ts")

	assert.Equal(t, 1, h.run("my-app", "--description", "second"))
	assert.Contains(t, h.stderr.String(), `directory "my-app" already exists`)
	assert.Equal(t, before, h.read(t, "my-app/src/config.ts"))
}

func TestGenerateRejectsInvalidInput(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want string
	}{
		{name: "bad name", args: []string{"My App"}, want: "lowercase alphanumeric"},
		{name: "port out of range", args: []string{"my-app", "--port", "80"}, want: "must be between 3000-9999"},
		{name: "too many arguments", args: []string{"a", "b"}, want: "accepts at most 1 arg"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			assert.Equal(t, 1, h.run(tc.args...))
			assert.Contains(t, h.stderr.String(), tc.want)
		})
	}
}

func TestGenerateAtomic(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run("staged", "--atomic"), h.stderr.String())

	entries, err := os.ReadDir(h.workDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "staged", entries[0].Name())
}

func TestUpgradeOutsideProject(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.run("upgrade", "--yes"))
	assert.Contains(t, h.stderr.String(), "no package.json found")

	entries, err := os.ReadDir(h.workDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is written")
}

func TestUpgradeOutsideProjectWithoutYes(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.run("upgrade"))
	assert.Contains(t, h.stderr.String(), "no package.json found")
	assert.NotContains(t, h.stderr.String(), "--yes is required")

	entries, err := os.ReadDir(h.workDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpgradeForeignProject(t *testing.T) {
	h := newHarness(t)
	h.write(t, "package.json", `{"name": "left-pad"}`)

	assert.Equal(t, 1, h.run("upgrade", "--yes"))
	assert.Contains(t, h.stderr.String(), "does not appear to be a Captify app")
}

func TestUpgradeRequiresYesWhenNotInteractive(t *testing.T) {
	h := newHarness(t)
	h.write(t, "package.json", `{"name": "@captify-io/my-app"}`)

	assert.Equal(t, 1, h.run("upgrade"))
	assert.Contains(t, h.stderr.String(), "--yes is required")
	assert.Equal(t, `{"name": "@captify-io/my-app"}`, h.read(t, "package.json"))
	_, err := os.Stat(filepath.Join(h.workDir, "next.config.ts"))
	assert.True(t, os.IsNotExist(err), "nothing is written")
}

func TestUpgrade(t *testing.T) {
	h := newHarness(t)
	h.write(t, "package.json", `{"name": "@captify-io/my-app", "dependencies": {"next": "15.0.0"}}`)
	h.write(t, ".gitignore", "stale\n")
	h.write(t, "src/config.ts", "keep me\n")

	require.Equal(t, 0, h.run("upgrade", "--yes"), h.stderr.String())

	out := h.stdout.String()
	for _, p := range []string{"next.config.ts", "tsconfig.json", "postcss.config.cjs", "src/app/globals.css", ".gitignore"} {
		assert.Contains(t, out, "✓ Updated "+p)
		_, err := os.Stat(filepath.Join(h.workDir, filepath.FromSlash(p)))
		assert.NoError(t, err, p)
	}
	assert.Contains(t, out, "✓ Upgraded 5 file(s) successfully!")
	assert.Contains(t, out, "{{APP_SLUG}}", "unresolved placeholders are reported")
	assert.NotEqual(t, "stale\n", h.read(t, ".gitignore"))
	assert.Equal(t, "keep me\n", h.read(t, "src/config.ts"))
}

func TestUpgradeOnly(t *testing.T) {
	h := newHarness(t)
	h.write(t, "package.json", `{"name": "@captify-io/my-app"}`)

	require.Equal(t, 0, h.run("upgrade", "--yes", "--only", "./.gitignore", "--only", "src/app/globals.css"), h.stderr.String())

	assert.Contains(t, h.stdout.String(), "✓ Upgraded 2 file(s) successfully!")
	_, err := os.Stat(filepath.Join(h.workDir, "next.config.ts"))
	assert.True(t, os.IsNotExist(err))
}

func TestUpgradeOnlyRejectsUnlistedPath(t *testing.T) {
	h := newHarness(t)
	h.write(t, "package.json", `{"name": "@captify-io/my-app"}`)

	assert.Equal(t, 1, h.run("upgrade", "--yes", "--only", "package.json"))
	assert.Contains(t, h.stderr.String(), `invalid upgrade path "package.json"`)
	assert.Equal(t, `{"name": "@captify-io/my-app"}`, h.read(t, "package.json"))
}

func TestConfigCommands(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run("config", "get", "port"), h.stderr.String())
	assert.Equal(t, "3002\n", h.stdout.String())

	require.Equal(t, 0, h.run("config", "set", "namespace", "@acme/"), h.stderr.String())
	require.Equal(t, 0, h.run("config", "get", "namespace"), h.stderr.String())
	assert.Equal(t, "@acme/\n", h.stdout.String())

	require.Equal(t, 0, h.run("config", "list"), h.stderr.String())
	assert.Contains(t, h.stdout.String(), "namespace = @acme/")
	assert.Contains(t, h.stdout.String(), "atomic = false")

	assert.Equal(t, 1, h.run("config", "set", "port", "nope"))
	assert.Contains(t, h.stderr.String(), "must be a number")

	assert.Equal(t, 1, h.run("config", "get", "token"))
	assert.Contains(t, h.stderr.String(), "unknown config key")
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 0, h.run("--version"))
	assert.Equal(t, "create-captify-app "+Version+"\n", h.stdout.String())
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(engine.ErrCancelled))
	assert.Equal(t, 1, exitCode(&engine.CollisionError{Path: "x"}))
}
