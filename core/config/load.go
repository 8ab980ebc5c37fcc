package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load loads the configuration from a directory or a config.yaml path. Fields
// missing from the file keep their default values.
func Load(fs afero.Fs, path string) (*Configuration, error) {
	// If given a directory, look for config.yaml inside it.
	if filepath.Base(path) != ConfigurationName {
		path = filepath.Join(path, ConfigurationName)
	}

	configContents, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}

	out := Default()
	if err := yaml.UnmarshalStrict(configContents, out); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return out, nil
}

// DefaultDir is the per-user configuration directory.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppDirName), nil
}

// Resolve finds the configuration to run with: the explicit path if set,
// else the user's config file if present, else the defaults.
func Resolve(fs afero.Fs, path string) (*Configuration, error) {
	if path != "" {
		return Load(fs, path)
	}

	dir, err := DefaultDir()
	if err != nil {
		return Default(), nil
	}

	cfg, err := Load(fs, dir)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}
