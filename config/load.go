package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/teranos/jobtrack/errors"
)

// Paths names the files consulted while loading. Empty fields are skipped.
type Paths struct {
	System string // /etc/jobtrack/config.toml
	User   string // ~/.jobtrack/config.toml
	// ProjectStart is where the upward search for jobtrack.toml begins.
	ProjectStart string
	DotEnv       string
}

// DefaultPaths returns the standard locations for the current user and
// working directory.
func DefaultPaths() Paths {
	p := Paths{System: filepath.Join("/etc", "jobtrack", FileName)}
	if home, err := os.UserHomeDir(); err == nil {
		p.User = filepath.Join(home, DirName, FileName)
	}
	if wd, err := os.Getwd(); err == nil {
		p.ProjectStart = wd
		p.DotEnv = filepath.Join(wd, ".env")
	}
	return p
}

// Loaded is the result of reading every source.
type Loaded struct {
	Viper   *viper.Viper
	Sources map[string]SourceInfo // flattened key -> where its value came from
	Files   []string              // config files that were merged, in order
}

var (
	globalConfig *Config
	globalLoaded *Loaded
)

// Load reads the configuration from the default paths once and caches it.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}
	loaded, err := LoadPaths(DefaultPaths())
	if err != nil {
		return nil, err
	}
	cfg, err := LoadWithViper(loaded.Viper)
	if err != nil {
		return nil, err
	}
	globalLoaded = loaded
	globalConfig = cfg
	return cfg, nil
}

// Current returns the sources behind the cached configuration, loading it
// first if needed.
func Current() (*Loaded, error) {
	if globalLoaded == nil {
		if _, err := Load(); err != nil {
			return nil, err
		}
	}
	return globalLoaded, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	globalLoaded = nil
}

// LoadWithViper unmarshals an already populated viper instance.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

// LoadPaths builds a viper instance from defaults, the files in p and the
// environment. Missing files are skipped; malformed ones are an error.
func LoadPaths(p Paths) (*Loaded, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	BindSensitiveEnvVars(v)
	SetDefaults(v)

	loaded := &Loaded{Viper: v, Sources: map[string]SourceInfo{}}

	files := []struct {
		path   string
		source Source
	}{
		{p.System, SourceSystem},
		{p.User, SourceUser},
	}
	if project := FindProjectConfig(p.ProjectStart); project != "" {
		files = append(files, struct {
			path   string
			source Source
		}{project, SourceProject})
	}

	for _, f := range files {
		if f.path == "" {
			continue
		}
		if _, err := os.Stat(f.path); err != nil {
			continue
		}
		fileViper := viper.New()
		fileViper.SetConfigFile(f.path)
		fileViper.SetConfigType("toml")
		if err := fileViper.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", f.path)
		}
		settings := fileViper.AllSettings()
		if err := v.MergeConfigMap(settings); err != nil {
			return nil, errors.Wrapf(err, "failed to merge config file %s", f.path)
		}
		for _, key := range flattenKeys(settings, "") {
			loaded.Sources[key] = SourceInfo{Source: f.source, Path: f.path}
		}
		loaded.Files = append(loaded.Files, f.path)
	}

	if err := applyDotEnv(v, p.DotEnv, loaded.Sources); err != nil {
		return nil, err
	}

	return loaded, nil
}

// applyDotEnv sets values from a .env file for JOBTRACK_* variables that the
// real environment does not already define. The process environment is not
// modified.
func applyDotEnv(v *viper.Viper, path string, sources map[string]SourceInfo) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", path)
	}

	known := map[string]string{}
	for _, key := range v.AllKeys() {
		known[envName(key)] = key
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		key, ok := known[name]
		if !ok {
			continue
		}
		if _, set := os.LookupEnv(name); set {
			continue
		}
		v.Set(key, vars[name])
		sources[key] = SourceInfo{Source: SourceDotEnv, Path: path}
	}
	return nil
}

// FindProjectConfig walks up from start looking for jobtrack.toml and
// returns the first match, or "".
func FindProjectConfig(start string) string {
	if start == "" {
		return ""
	}
	dir := start
	for {
		candidate := filepath.Join(dir, ProjectFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// envName is the automatic environment variable for a dotted key.
func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func flattenKeys(settings map[string]interface{}, prefix string) []string {
	var keys []string
	for k, value := range settings {
		full := k
		if prefix != "" {
			full = prefix + "." + k
		}
		if nested, ok := value.(map[string]interface{}); ok {
			keys = append(keys, flattenKeys(nested, full)...)
			continue
		}
		keys = append(keys, full)
	}
	sort.Strings(keys)
	return keys
}
