package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds the repository-local configuration keys this implementation
// consumes, stored as flat JSON under .git/ in the teacher's style rather
// than parsed from git's own INI config.
type Config struct {
	// RefreshSubmodules mirrors stgit.refreshsubmodules: whether refresh
	// folds submodule pointer changes into the target patch. The refresh
	// package does not read this key.
	RefreshSubmodules bool `json:"refreshSubmodules"`
}

const configFileName = ".patchstack_config"

// Default returns the configuration in effect when no config file exists.
func Default() Config {
	return Config{RefreshSubmodules: false}
}

// Load reads the repository-local configuration, returning Default() if
// none has been written yet.
func Load(repoRoot string) (Config, error) {
	path := filepath.Join(repoRoot, ".git", configFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, err
	}
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save persists cfg as the repository-local configuration.
func Save(repoRoot string, cfg Config) error {
	path := filepath.Join(repoRoot, ".git", configFileName)
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
