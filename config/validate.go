package config

import (
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/teranos/jobtrack/errors"
	"github.com/teranos/jobtrack/internal/httpclient"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if _, err := httpclient.ParseWebURL(c.API.BaseURL); err != nil {
		return errors.Wrapf(err, "api.base_url %q is not an http(s) URL", c.API.BaseURL)
	}

	// 0 = no timeout / unlimited, negative = invalid
	if c.API.TimeoutSeconds < 0 {
		return errors.Newf("api.timeout_seconds must be >= 0, got %d", c.API.TimeoutSeconds)
	}
	if c.API.RequestsPerSecond < 0 {
		return errors.Newf("api.requests_per_second must be >= 0, got %v", c.API.RequestsPerSecond)
	}

	if strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("storage.path cannot be empty")
	}

	return nil
}

// UnknownKeys decodes a TOML config file against Config and returns the
// keys it sets that jobtrack does not recognise, sorted.
func UnknownKeys(path string) ([]string, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}

	var unknown []string
	for _, key := range md.Undecoded() {
		unknown = append(unknown, key.String())
	}
	sort.Strings(unknown)
	return unknown, nil
}
