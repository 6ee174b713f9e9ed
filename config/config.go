// Package config loads jobtrack's settings through viper.
//
// Sources, later overriding earlier: built-in defaults, the system file
// /etc/jobtrack/config.toml, the user file ~/.jobtrack/config.toml, the
// nearest jobtrack.toml walking up from the working directory, a .env file
// in the working directory, and JOBTRACK_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the complete jobtrack configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api" toml:"api" json:"api" yaml:"api"`
	Storage StorageConfig `mapstructure:"storage" toml:"storage" json:"storage" yaml:"storage"`
	Log     LogConfig     `mapstructure:"log" toml:"log" json:"log" yaml:"log"`
}

// APIConfig configures the job tracker API client.
type APIConfig struct {
	BaseURL           string  `mapstructure:"base_url" toml:"base_url" json:"base_url" yaml:"base_url"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" toml:"timeout_seconds" json:"timeout_seconds" yaml:"timeout_seconds"`             // 0 = no timeout
	RequestsPerSecond float64 `mapstructure:"requests_per_second" toml:"requests_per_second" json:"requests_per_second" yaml:"requests_per_second"` // 0 = unlimited
	BlockPrivateIP    bool    `mapstructure:"block_private_ip" toml:"block_private_ip" json:"block_private_ip" yaml:"block_private_ip"`
}

// StorageConfig configures the local SQLite store holding the session.
type StorageConfig struct {
	Path string `mapstructure:"path" toml:"path" json:"path" yaml:"path"`
}

// LogConfig configures logging defaults; the --json flag overrides JSON.
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json" json:"json" yaml:"json"`
}

// File system constants
const (
	DefaultDirPermissions = 0755
	DirName               = ".jobtrack"
	FileName              = "config.toml"
	ProjectFileName       = "jobtrack.toml"
	EnvPrefix             = "JOBTRACK"
)

// Timeout returns the HTTP timeout; zero means none.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// StoragePath returns storage.path with a leading ~ expanded.
func (c *Config) StoragePath() string {
	return expandHome(c.Storage.Path)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
