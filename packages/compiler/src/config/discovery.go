package config

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// DefaultFileName is the config file looked up by FindConfigFile.
const DefaultFileName = ".ngexpr.yaml"

// FindConfigFile walks from dir up to the file system root and returns the
// first DefaultFileName found.
func FindConfigFile(fs afero.Fs, dir string) (string, bool) {
	dir = filepath.Clean(dir)
	for {
		candidate := filepath.Join(dir, DefaultFileName)
		if ok, _ := afero.Exists(fs, candidate); ok {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// GetProjectRoot returns the directory containing the config file
func GetProjectRoot(configPath string) string {
	return filepath.Dir(configPath)
}
