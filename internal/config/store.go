package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// AppName names the configuration directory.
const AppName = "create-captify-app"

// EnvPrefix prefixes environment overrides, e.g. CAPTIFY_PORT.
const EnvPrefix = "CAPTIFY"

// Store merges defaults, the config file, CAPTIFY_* environment variables
// and bound flags, in increasing precedence. Only values written with Set
// or read from the file are persisted by Save.
type Store struct {
	path   string
	merged *viper.Viper
	file   *viper.Viper
}

// DefaultPath returns $XDG_CONFIG_HOME/create-captify-app/config.yaml,
// or the platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not find config directory: %w", err)
	}
	return filepath.Join(dir, AppName, "config.yaml"), nil
}

// New loads the config file at path. A missing file is not an error.
func New(path string) (*Store, error) {
	s := &Store{path: path, merged: viper.New(), file: viper.New()}

	for _, v := range []*viper.Viper{s.merged, s.file} {
		v.SetConfigType("yaml")
		v.SetConfigFile(path)
	}

	s.merged.SetEnvPrefix(EnvPrefix)
	s.merged.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	s.merged.AutomaticEnv()
	for k, v := range defaults {
		s.merged.SetDefault(k, v)
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	for _, v := range []*viper.Viper{s.merged, s.file} {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	return s, nil
}

// Path returns the config file location.
func (s *Store) Path() string { return s.path }

// BindFlags lets flags named after setting keys override the stored values
// when they are set on the command line.
func (s *Store) BindFlags(flags *pflag.FlagSet) error {
	for _, k := range Keys() {
		f := flags.Lookup(k)
		if f == nil {
			continue
		}
		if err := s.merged.BindPFlag(k, f); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", k, err)
		}
	}
	return nil
}

// Config returns the merged settings.
func (s *Store) Config() Config {
	return Config{
		Port:          s.merged.GetInt(KeyPort),
		Description:   s.merged.GetString(KeyDescription),
		Namespace:     s.merged.GetString(KeyNamespace),
		TemplateDir:   s.merged.GetString(KeyTemplateDir),
		Atomic:        s.merged.GetBool(KeyAtomic),
		CopyNextSteps: s.merged.GetBool(KeyCopyNextSteps),
	}
}

// Get returns the merged value of key as text.
func (s *Store) Get(key string) (string, error) {
	if !IsKey(key) {
		_, err := parseValue(key, "")
		return "", err
	}
	return s.merged.GetString(key), nil
}

// Set validates value and stores it for key. Call Save to persist it.
func (s *Store) Set(key, value string) error {
	typed, err := parseValue(key, value)
	if err != nil {
		return err
	}
	s.file.Set(key, typed)
	// Config layer, so flags and environment still take precedence.
	return s.merged.MergeConfigMap(map[string]any{key: typed})
}

// Save writes the file-backed settings to Path.
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := s.file.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
