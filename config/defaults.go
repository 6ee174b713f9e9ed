package config

import (
	"github.com/spf13/viper"
)

// Default values
const (
	DefaultBaseURL     = "http://localhost:8080"
	DefaultStoragePath = "~/.jobtrack/jobtrack.db"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout_seconds", 0)
	v.SetDefault("api.requests_per_second", 0.0)
	v.SetDefault("api.block_private_ip", false)

	v.SetDefault("storage.path", DefaultStoragePath)

	v.SetDefault("log.json", false)
}

// BindSensitiveEnvVars binds the settings that have extra environment names
// beyond the automatic JOBTRACK_<SECTION>_<KEY> form.
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("api.base_url", "JOBTRACK_API_BASE_URL", "JOBTRACK_API_URL")
	v.BindEnv("storage.path", "JOBTRACK_STORAGE_PATH", "JOBTRACK_DB_PATH")
}
