package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
		"api_url": "https://portal.example",
		"api_token": "abc",
		"timeout": "5s",
		"port": 9090,
		"verbose": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://portal.example", cfg.APIURL)
	assert.Equal(t, "abc", cfg.APIToken)
	assert.Equal(t, 5*time.Second, cfg.TimeoutDuration())
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
api_url: http://localhost:9000
database_url: sqlite://portal.db
use_browser: true
profile_cache_ttl: 24h
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.APIURL)
	assert.Equal(t, "sqlite://portal.db", cfg.DatabaseURL)
	assert.True(t, cfg.UseBrowser)
	assert.Equal(t, 24*time.Hour, cfg.ProfileCacheTTLDuration())
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{ invalid json }`)

	cfg, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "config.yml", "port: [not, an, int]\n")

	cfg, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config YAML")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvAPIURL, "https://api.example")
	t.Setenv(EnvAPIToken, "tok")
	t.Setenv(EnvTimeout, "2s")
	t.Setenv(EnvPort, "7000")
	t.Setenv(EnvDatabaseURL, "sqlite://:memory:")
	t.Setenv(EnvUseBrowser, "true")
	t.Setenv(EnvProfileCacheTTL, "")

	cfg := FromEnv()
	assert.Equal(t, "https://api.example", cfg.APIURL)
	assert.Equal(t, "tok", cfg.APIToken)
	assert.Equal(t, "2s", cfg.Timeout)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "sqlite://:memory:", cfg.DatabaseURL)
	assert.True(t, cfg.UseBrowser)
	assert.Empty(t, cfg.ProfileCacheTTL)
}

func TestFromEnv_Malformed(t *testing.T) {
	t.Setenv(EnvPort, "eighty")
	t.Setenv(EnvUseBrowser, "maybe")

	cfg := FromEnv()
	assert.Zero(t, cfg.Port)
	assert.False(t, cfg.UseBrowser)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"empty", Config{}, ""},
		{"defaults", Defaults(), ""},
		{"relative api url", Config{APIURL: "/api"}, "api_url"},
		{"ftp api url", Config{APIURL: "ftp://host"}, "api_url"},
		{"negative port", Config{Port: -1}, "port"},
		{"port too large", Config{Port: 70000}, "port"},
		{"bad timeout", Config{Timeout: "soon"}, "timeout"},
		{"zero timeout", Config{Timeout: "0s"}, "timeout"},
		{"bad cache ttl", Config{ProfileCacheTTL: "week"}, "profile_cache_ttl"},
		{"mysql url", Config{DatabaseURL: "mysql://localhost/db"}, "database_url"},
		{"postgres url", Config{DatabaseURL: "postgres://localhost/db"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{APIURL: "https://override.example", UseBrowser: true}
	result := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, "https://override.example", result.APIURL)
	assert.Equal(t, DefaultTimeout, result.TimeoutDuration())
	assert.Equal(t, DefaultPort, result.Port)
	assert.Equal(t, DefaultDatabaseURL, result.DatabaseURL)
	assert.True(t, result.UseBrowser)
}

func TestMergeWithDefaults_Layered(t *testing.T) {
	file := Config{Port: 9000, DatabaseURL: "sqlite://file.db"}
	env := Config{DatabaseURL: "postgres://db/portal", Verbose: true}

	merged := env.MergeWithDefaults(file)
	merged = merged.MergeWithDefaults(Defaults())

	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, "postgres://db/portal", merged.DatabaseURL)
	assert.Equal(t, DefaultAPIURL, merged.APIURL)
	assert.True(t, merged.Verbose)
}

func TestDurations_Fallback(t *testing.T) {
	cfg := Config{Timeout: "garbage", ProfileCacheTTL: "-1h"}
	assert.Equal(t, DefaultTimeout, cfg.TimeoutDuration())
	assert.Equal(t, DefaultProfileCacheTTL, cfg.ProfileCacheTTLDuration())
}
