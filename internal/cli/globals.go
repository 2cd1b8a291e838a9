package cli

import (
	"os"

	"golang.org/x/term"
)

// Globals holds global flags available to all commands
type Globals struct {
	BaseURL       string `help:"Backend base URL (overrides config)" name:"base-url" env:"BAZAAR_BASE_URL"`
	Store         string `help:"Credential store backend" default:"" enum:"auto,keyring,file,sqlite,memory," env:"BAZAAR_STORE"`
	StorePassword string `help:"Passphrase for the encrypted file store" name:"store-password" env:"BAZAAR_STORE_PASSWORD" hidden:""`
	Output        string `help:"Output format" default:"" enum:"json,plain,rich,auto," short:"o" env:"BAZAAR_OUTPUT"`
	Verbose       bool   `help:"Verbose output (debug logging)" short:"v" env:"BAZAAR_VERBOSE"`
	LogLevel      string `help:"Log level (debug, info, warn, error)" name:"log-level" env:"BAZAAR_LOG_LEVEL"`
	ResultsOnly   bool   `help:"Strip JSON envelope, return data array only" env:"BAZAAR_RESULTS_ONLY"`
	NoInput       bool   `help:"Disable interactive prompts (fail instead)" env:"BAZAAR_NO_INPUT"`
	Force         bool   `help:"Skip confirmation prompts for destructive operations" env:"BAZAAR_FORCE"`
	DryRun        bool   `help:"Preview operation without executing" name:"dry-run" env:"BAZAAR_DRY_RUN"`
}

// ResolvedOutput returns the effective output mode: the flag, else the
// configured default, else "auto". "auto" is rich on a TTY and plain otherwise.
func (g *Globals) ResolvedOutput(configured string) string {
	mode := g.Output
	if mode == "" {
		mode = configured
	}
	if mode != "" && mode != "auto" {
		return mode
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		return "rich"
	}
	return "plain"
}

// ResolvedLogLevel returns the effective log level. --verbose wins.
func (g *Globals) ResolvedLogLevel(configured string) string {
	switch {
	case g.Verbose:
		return "debug"
	case g.LogLevel != "":
		return g.LogLevel
	default:
		return configured
	}
}
