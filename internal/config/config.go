// Package config provides configuration loading and validation for the
// portal client, server, and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvAPIURL          = "PORTAL_API_URL"
	EnvAPIToken        = "PORTAL_API_TOKEN"
	EnvTimeout         = "PORTAL_TIMEOUT"
	EnvPort            = "PORT"
	EnvDatabaseURL     = "DATABASE_URL"
	EnvUseBrowser      = "SCRAPE_USE_BROWSER"
	EnvProfileCacheTTL = "SCRAPE_CACHE_TTL"
)

// Defaults applied by MergeWithDefaults(Defaults()).
const (
	DefaultAPIURL          = "http://localhost:8080"
	DefaultTimeout         = 30 * time.Second
	DefaultPort            = 8080
	DefaultDatabaseURL     = "sqlite://placement_portal.db"
	DefaultProfileCacheTTL = 7 * 24 * time.Hour
)

// Config holds settings shared by the CLI commands. It can be loaded from a
// JSON or YAML file and from the environment. All fields are optional.
type Config struct {
	// Client
	APIURL   string `json:"api_url,omitempty" yaml:"api_url,omitempty"`     // Portal API base URL
	APIToken string `json:"api_token,omitempty" yaml:"api_token,omitempty"` // Bearer token sent by the client
	Timeout  string `json:"timeout,omitempty" yaml:"timeout,omitempty"`     // Request timeout, e.g. "30s"

	// Server
	Port            int    `json:"port,omitempty" yaml:"port,omitempty"`
	DatabaseURL     string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // postgres:// or sqlite://path
	UseBrowser      bool   `json:"use_browser,omitempty" yaml:"use_browser,omitempty"`   // Headless browser fallback for scraping
	ProfileCacheTTL string `json:"profile_cache_ttl,omitempty" yaml:"profile_cache_ttl,omitempty"`

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		APIURL:          DefaultAPIURL,
		Timeout:         DefaultTimeout.String(),
		Port:            DefaultPort,
		DatabaseURL:     DefaultDatabaseURL,
		ProfileCacheTTL: DefaultProfileCacheTTL.String(),
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables. Unset or malformed
// variables leave the field empty.
func FromEnv() Config {
	cfg := Config{
		APIURL:          os.Getenv(EnvAPIURL),
		APIToken:        os.Getenv(EnvAPIToken),
		Timeout:         os.Getenv(EnvTimeout),
		DatabaseURL:     os.Getenv(EnvDatabaseURL),
		ProfileCacheTTL: os.Getenv(EnvProfileCacheTTL),
	}
	if v, err := strconv.Atoi(os.Getenv(EnvPort)); err == nil {
		cfg.Port = v
	}
	if v, err := strconv.ParseBool(os.Getenv(EnvUseBrowser)); err == nil {
		cfg.UseBrowser = v
	}
	return cfg
}

// Validate checks that the configuration has valid values.
// Empty fields are valid; defaults are applied by MergeWithDefaults.
func (c *Config) Validate() error {
	if c.APIURL != "" {
		u, err := url.Parse(c.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config error: 'api_url' must be an absolute http(s) URL, got %q", c.APIURL)
		}
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("config error: 'timeout' must be a positive duration, got %q", c.Timeout)
		}
	}

	if c.ProfileCacheTTL != "" {
		if _, err := time.ParseDuration(c.ProfileCacheTTL); err != nil {
			return fmt.Errorf("config error: 'profile_cache_ttl' must be a duration, got %q", c.ProfileCacheTTL)
		}
	}

	if c.DatabaseURL != "" && !isSupportedDatabaseURL(c.DatabaseURL) {
		return fmt.Errorf("config error: 'database_url' must start with postgres://, postgresql:// or sqlite://")
	}

	return nil
}

func isSupportedDatabaseURL(s string) bool {
	for _, prefix := range []string{"postgres://", "postgresql://", "sqlite://"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// Config files and the environment are layered by chaining calls.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.APIURL == "" {
		result.APIURL = defaults.APIURL
	}
	if result.APIToken == "" {
		result.APIToken = defaults.APIToken
	}
	if result.Timeout == "" {
		result.Timeout = defaults.Timeout
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.ProfileCacheTTL == "" {
		result.ProfileCacheTTL = defaults.ProfileCacheTTL
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: true in either layer wins
	result.UseBrowser = result.UseBrowser || defaults.UseBrowser
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}

// TimeoutDuration returns Timeout parsed, or DefaultTimeout.
func (c *Config) TimeoutDuration() time.Duration {
	return parseDurationOr(c.Timeout, DefaultTimeout)
}

// ProfileCacheTTLDuration returns ProfileCacheTTL parsed, or DefaultProfileCacheTTL.
func (c *Config) ProfileCacheTTLDuration() time.Duration {
	return parseDurationOr(c.ProfileCacheTTL, DefaultProfileCacheTTL)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return fallback
}
