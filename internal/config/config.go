package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// Defaults applied when a value is not configured.
const (
	DefaultBaseURL    = "http://127.0.0.1:8000/api"
	DefaultTimeout    = 15 * time.Second
	DefaultMaxRetries = 2
)

// Config holds the CLI configuration. Values are kept as strings so they can
// be edited uniformly through `config set`; typed accessors parse them.
type Config struct {
	BaseURL       string `json:"base_url,omitempty"`
	Store         string `json:"store,omitempty"`
	Timeout       string `json:"timeout,omitempty"`
	RateLimit     string `json:"rate_limit,omitempty"`
	MaxRetries    string `json:"max_retries,omitempty"`
	DefaultOutput string `json:"default_output,omitempty"`
	LogLevel      string `json:"log_level,omitempty"`

	path string
}

// Load reads config from the XDG path, returning defaults if the file doesn't exist
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads a JSON5 config file at path. A missing file yields an empty
// config bound to path, so a later Save creates it.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{path: path}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json5.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.path = path

	return &cfg, nil
}

// Path returns the file this config is saved to.
func (c *Config) Path() string {
	if c.path == "" {
		return ConfigPath()
	}
	return c.path
}

// Save writes the config back to its file
func (c *Config) Save() error {
	path := c.Path()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	// JSON is valid JSON5
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Keys returns the settable config keys in declaration order.
func Keys() []string {
	t := reflect.TypeOf(Config{})
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if name := jsonName(t.Field(i)); name != "" {
			keys = append(keys, name)
		}
	}
	return keys
}

func jsonName(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// field finds the string field tagged with key.
func (c *Config) field(key string) (reflect.Value, error) {
	v := reflect.ValueOf(c).Elem()
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		if jsonName(t.Field(i)) == key {
			return v.Field(i), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("unknown config key: %s", key)
}

// Get retrieves a config value by key name
func (c *Config) Get(key string) (string, error) {
	f, err := c.field(key)
	if err != nil {
		return "", err
	}
	return f.String(), nil
}

// Set validates and sets a config value by key name, then saves
func (c *Config) Set(key, value string) error {
	f, err := c.field(key)
	if err != nil {
		return err
	}
	if err := Validate(key, value); err != nil {
		return err
	}
	f.SetString(value)
	return c.Save()
}

// Unset resets a config value to its default and saves
func (c *Config) Unset(key string) error {
	f, err := c.field(key)
	if err != nil {
		return err
	}
	f.SetString("")
	return c.Save()
}

// Validate checks value for key without touching any config.
func Validate(key, value string) error {
	switch key {
	case "base_url":
		if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			return fmt.Errorf("base_url must start with http:// or https://")
		}
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("timeout must be a positive duration like 15s")
		}
	case "rate_limit":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("rate_limit must be a non-negative number of requests per second")
		}
	case "max_retries":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("max_retries must be a non-negative integer")
		}
	case "store":
		if !oneOf(value, "auto", "keyring", "file", "sqlite", "memory") {
			return fmt.Errorf("store must be one of auto, keyring, file, sqlite, memory")
		}
	case "default_output":
		if !oneOf(value, "json", "plain", "rich", "auto") {
			return fmt.Errorf("default_output must be one of json, plain, rich, auto")
		}
	}
	return nil
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}

// BaseURLOrDefault returns the backend base URL without a trailing slash.
func (c *Config) BaseURLOrDefault() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(c.BaseURL, "/")
}

// TimeoutDuration returns the per-request timeout.
func (c *Config) TimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(c.Timeout); err == nil && d > 0 {
		return d
	}
	return DefaultTimeout
}

// RateLimitPerSecond returns the client request rate; 0 means unlimited.
func (c *Config) RateLimitPerSecond() float64 {
	if f, err := strconv.ParseFloat(c.RateLimit, 64); err == nil && f > 0 {
		return f
	}
	return 0
}

// MaxRetriesOrDefault returns how many times a safe request is retried.
func (c *Config) MaxRetriesOrDefault() int {
	if n, err := strconv.Atoi(c.MaxRetries); err == nil && n >= 0 {
		return n
	}
	return DefaultMaxRetries
}
