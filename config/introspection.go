package config

import (
	"os"
	"sort"
)

// Source represents where a configuration value came from
type Source string

const (
	SourceDefault     Source = "default"
	SourceSystem      Source = "system"      // /etc/jobtrack/config.toml
	SourceUser        Source = "user"        // ~/.jobtrack/config.toml
	SourceProject     Source = "project"     // jobtrack.toml
	SourceDotEnv      Source = "dotenv"      // .env
	SourceEnvironment Source = "environment" // JOBTRACK_* env vars
)

// SourceOrder lists sources from lowest to highest precedence.
var SourceOrder = []Source{
	SourceDefault,
	SourceSystem,
	SourceUser,
	SourceProject,
	SourceDotEnv,
	SourceEnvironment,
}

// SourceInfo tracks where a configuration value originated
type SourceInfo struct {
	Source Source
	Path   string // file path or environment variable name
}

// Setting is one effective key with its value and origin.
type Setting struct {
	Key        string      `json:"key"`
	Value      interface{} `json:"value"`
	Source     Source      `json:"source"`
	SourcePath string      `json:"source_path,omitempty"`
}

// Settings returns every effective key, sorted, with the source that won.
func (l *Loaded) Settings() []Setting {
	keys := l.Viper.AllKeys()
	sort.Strings(keys)

	settings := make([]Setting, 0, len(keys))
	for _, key := range keys {
		info := SourceInfo{Source: SourceDefault, Path: "built-in default"}
		if si, ok := l.Sources[key]; ok {
			info = si
		}
		if name, ok := lookupEnv(key); ok {
			info = SourceInfo{Source: SourceEnvironment, Path: name}
		}
		settings = append(settings, Setting{
			Key:        key,
			Value:      l.Viper.Get(key),
			Source:     info.Source,
			SourcePath: info.Path,
		})
	}
	return settings
}

// lookupEnv reports the environment variable overriding key, if any.
func lookupEnv(key string) (string, bool) {
	names := []string{envName(key)}
	switch key {
	case "api.base_url":
		names = append(names, "JOBTRACK_API_URL")
	case "storage.path":
		names = append(names, "JOBTRACK_DB_PATH")
	}
	for _, name := range names {
		if _, ok := os.LookupEnv(name); ok {
			return name, true
		}
	}
	return "", false
}
