// Package config holds user defaults for project generation.
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/captify-io/create-captify-app/app/engine"
)

// Setting keys. Flags of the same name override them.
const (
	KeyPort          = "port"
	KeyDescription   = "description"
	KeyNamespace     = "namespace"
	KeyTemplateDir   = "template-dir"
	KeyAtomic        = "atomic"
	KeyCopyNextSteps = "copy-next-steps"
)

// Config represents user settings after defaults, file, environment and flags are merged.
type Config struct {
	Port          int
	Description   string
	Namespace     string // required package name prefix for upgrade
	TemplateDir   string // on-disk template replacing the bundled one
	Atomic        bool   // stage generation and rename into place
	CopyNextSteps bool   // copy the next-step commands to the clipboard
}

var defaults = map[string]any{
	KeyPort:          3002,
	KeyDescription:   "A Captify plugin application",
	KeyNamespace:     "@captify-io/",
	KeyTemplateDir:   "",
	KeyAtomic:        false,
	KeyCopyNextSteps: false,
}

// Keys returns every setting key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsKey reports whether key is a known setting.
func IsKey(key string) bool {
	_, ok := defaults[key]
	return ok
}

// parseValue validates a raw value for key and returns it typed.
func parseValue(key, raw string) (any, error) {
	switch key {
	case KeyPort:
		port, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("port must be a number: %q", raw)
		}
		if err := engine.ValidatePort(port); err != nil {
			return nil, err
		}
		return port, nil
	case KeyAtomic, KeyCopyNextSteps:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false: %q", key, raw)
		}
		return b, nil
	case KeyNamespace:
		if strings.TrimSpace(raw) == "" {
			return nil, fmt.Errorf("namespace must not be empty")
		}
		return raw, nil
	case KeyTemplateDir:
		if raw == "" {
			return raw, nil
		}
		info, err := os.Stat(raw)
		if err != nil {
			return nil, fmt.Errorf("template directory %s: %w", raw, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("template path %s is not a directory", raw)
		}
		return raw, nil
	case KeyDescription:
		return raw, nil
	default:
		return nil, fmt.Errorf("unknown config key %q (known keys: %s)", key, strings.Join(Keys(), ", "))
	}
}
