// Package config handles global configuration and environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents configuration stored in ~/.config/pubsync/config.yml.
type Config struct {
	// Email is the contact address sent with OpenAlex requests (polite pool).
	Email string `yaml:"email,omitempty"`
	// DataDir is the default directory holding the table, log, and ID list.
	DataDir string `yaml:"data_dir,omitempty"`
	// Exclude lists PMIDs or OpenAlex IDs never to append.
	Exclude []string `yaml:"exclude,omitempty"`
	// IncludeErrata keeps erratum-typed works when appending.
	IncludeErrata bool `yaml:"include_errata,omitempty"`
}

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "pubsync"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
)

// configCache caches the loaded config.
var configCache *Config

// Path returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/pubsync/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load reads the global configuration file. Returns an empty config (not
// an error) if the file doesn't exist.
func Load() (*Config, error) {
	if configCache != nil {
		return configCache, nil
	}

	path := Path()
	if path == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.DataDir != "" {
		cfg.DataDir = ExpandTilde(cfg.DataDir)
	}

	configCache = &cfg
	return &cfg, nil
}

// ResetCache clears the cached config. Useful for testing.
func ResetCache() {
	configCache = nil
}

// Email returns the contact email for OpenAlex requests. The OPENALEX_EMAIL
// and EMAIL environment variables (including a .env file in the working
// directory) take precedence over the config file.
func Email() string {
	// Load .env if present; existing environment wins
	_ = godotenv.Load()

	if email := os.Getenv("OPENALEX_EMAIL"); email != "" {
		return email
	}
	if email := os.Getenv("EMAIL"); email != "" {
		return email
	}

	cfg, _ := Load()
	if cfg != nil {
		return cfg.Email
	}
	return ""
}

// ExpandTilde expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandTilde(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
