package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/semmy-space/bazaar/internal/config"
	"github.com/semmy-space/bazaar/internal/output"
)

// ConfigGetCmd implements config get command
type ConfigGetCmd struct {
	Key string `arg:"" help:"Config key to get (e.g., base_url, store)"`
}

// Run executes the get command
func (cmd *ConfigGetCmd) Run(cfg *config.Config) error {
	value, err := cfg.Get(cmd.Key)
	if err != nil {
		return unknownKey(cmd.Key, output.ExitNotFound)
	}

	fmt.Println(value)
	return nil
}

// ConfigSetCmd implements config set command
type ConfigSetCmd struct {
	Key   string `arg:"" help:"Config key to set"`
	Value string `arg:"" help:"Value to set"`
}

// Run executes the set command
func (cmd *ConfigSetCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	if _, err := cfg.Get(cmd.Key); err != nil {
		return unknownKey(cmd.Key, output.ExitUsage)
	}

	if err := config.Validate(cmd.Key, cmd.Value); err != nil {
		return output.NewCLIError(output.ExitUsage, err.Error())
	}

	if err := cfg.Set(cmd.Key, cmd.Value); err != nil {
		return output.NewCLIError(output.ExitConfigError, fmt.Sprintf("Failed to set config: %v", err))
	}

	fmt.Fprintf(fp.Err, "Set %s = %s\n", cmd.Key, cmd.Value)
	if cmd.Key == "store" {
		fmt.Fprintf(fp.Err, "Note: an existing session is not migrated; log in again to store it in the new backend.\n")
	}
	return nil
}

// ConfigUnsetCmd implements config unset command
type ConfigUnsetCmd struct {
	Key string `arg:"" help:"Config key to remove"`
}

// Run executes the unset command
func (cmd *ConfigUnsetCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	if _, err := cfg.Get(cmd.Key); err != nil {
		return unknownKey(cmd.Key, output.ExitUsage)
	}

	if err := cfg.Unset(cmd.Key); err != nil {
		return output.NewCLIError(output.ExitConfigError, fmt.Sprintf("Failed to unset config: %v", err))
	}

	fmt.Fprintf(fp.Err, "Unset %s\n", cmd.Key)
	return nil
}

// ConfigListConfigCmd implements config list command
type ConfigListConfigCmd struct{}

type configItem struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Default string `json:"default,omitempty"`
}

// Run executes the list command
func (cmd *ConfigListConfigCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	defaults := map[string]string{
		"base_url":    config.DefaultBaseURL,
		"store":       "auto",
		"timeout":     config.DefaultTimeout.String(),
		"rate_limit":  "0",
		"max_retries": fmt.Sprint(config.DefaultMaxRetries),
		"log_level":   "warn",
	}

	var items []configItem
	for _, key := range config.Keys() {
		value, _ := cfg.Get(key)
		items = append(items, configItem{Key: key, Value: value, Default: defaults[key]})
	}

	cols := []output.Column{
		{Name: "Key", Key: "Key"},
		{Name: "Value", Key: "Value"},
		{Name: "Default", Key: "Default"},
	}

	return fp.Formatter.PrintList(items, cols)
}

// ConfigPathCmd implements config path command
type ConfigPathCmd struct{}

// Run executes the path command
func (cmd *ConfigPathCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	path := cfg.Path()

	fmt.Println(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(fp.Err, "(file does not exist yet - will be created on first write)\n")
	} else {
		fmt.Fprintf(fp.Err, "(file exists)\n")
	}

	return nil
}

func unknownKey(key string, code int) *output.CLIError {
	return output.NewCLIError(code, fmt.Sprintf("Unknown config key: %s", key)).
		WithHint("Valid keys: " + strings.Join(config.Keys(), ", "))
}
