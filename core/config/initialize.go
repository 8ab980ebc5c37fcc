package config

import (
	"log"
	"path/filepath"

	"github.com/spf13/afero"
)

// Initialize writes the default configuration into dir unless one already
// exists, then loads it.
func Initialize(fs afero.Fs, dir string, logger *log.Logger) (*Configuration, error) {
	path := filepath.Join(dir, ConfigurationName)

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, err
	}

	if exists {
		logger.Printf("- %s already exists, leaving it alone\n", path)
	} else {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		if err := afero.WriteFile(fs, path, defaultConfigData, 0644); err != nil {
			return nil, err
		}
		logger.Printf("- wrote default configuration to %s\n", path)
	}

	return Load(fs, dir)
}
