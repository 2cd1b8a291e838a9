package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, DefaultBaseURL, cfg.BaseURLOrDefault())
	assert.Equal(t, DefaultTimeout, cfg.TimeoutDuration())
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetriesOrDefault())
	assert.Zero(t, cfg.RateLimitPerSecond())
}

func TestLoadFromJSON5(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	content := `{
  // local backend
  base_url: "http://10.0.0.5:8000/api/",
  timeout: "30s",
  max_retries: "0",
  rate_limit: "2.5",
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8000/api", cfg.BaseURLOrDefault(), "trailing slash is trimmed")
	assert.Equal(t, 30*time.Second, cfg.TimeoutDuration())
	assert.Equal(t, 0, cfg.MaxRetriesOrDefault())
	assert.Equal(t, 2.5, cfg.RateLimitPerSecond())
}

func TestLoadFromInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json5")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0600))

	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestSetGetUnsetPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json5")
	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	require.NoError(t, cfg.Set("base_url", "https://bazaar.example.com/api"))
	require.NoError(t, cfg.Set("store", "sqlite"))

	reloaded, err := LoadFrom(path)
	require.NoError(t, err)
	v, err := reloaded.Get("base_url")
	require.NoError(t, err)
	assert.Equal(t, "https://bazaar.example.com/api", v)
	assert.Equal(t, "sqlite", reloaded.Store)

	require.NoError(t, reloaded.Unset("store"))
	again, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Empty(t, again.Store)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestUnknownKey(t *testing.T) {
	cfg := &Config{path: filepath.Join(t.TempDir(), "c.json5")}

	_, err := cfg.Get("region")
	assert.ErrorContains(t, err, "unknown config key")
	assert.ErrorContains(t, cfg.Set("region", "us"), "unknown config key")
	assert.ErrorContains(t, cfg.Unset("region"), "unknown config key")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		key   string
		value string
		ok    bool
	}{
		{key: "base_url", value: "https://x.test/api", ok: true},
		{key: "base_url", value: "x.test", ok: false},
		{key: "timeout", value: "2m", ok: true},
		{key: "timeout", value: "soon", ok: false},
		{key: "timeout", value: "-1s", ok: false},
		{key: "rate_limit", value: "0", ok: true},
		{key: "rate_limit", value: "-3", ok: false},
		{key: "max_retries", value: "3", ok: true},
		{key: "max_retries", value: "many", ok: false},
		{key: "store", value: "keyring", ok: true},
		{key: "store", value: "floppy", ok: false},
		{key: "default_output", value: "json", ok: true},
		{key: "default_output", value: "xml", ok: false},
		{key: "log_level", value: "anything", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := Validate(tt.key, tt.value)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []string{
		"base_url", "store", "timeout", "rate_limit", "max_retries", "default_output", "log_level",
	}, Keys())
}
