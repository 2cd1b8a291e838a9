package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/semmy-space/bazaar/internal/config"
	"github.com/semmy-space/bazaar/internal/output"
	"github.com/semmy-space/bazaar/internal/secrets"
)

// SetupCmd implements the interactive setup wizard
type SetupCmd struct {
	SkipLogin bool `help:"Only write the config; do not log in" name:"skip-login"`
}

// Run executes the setup wizard
func (cmd *SetupCmd) Run(ctx context.Context, cfg *config.Config, fp *FormatterProvider, globals *Globals, sp *ServiceProvider) error {
	if globals.NoInput {
		return output.NewCLIError(output.ExitUsage, "setup is interactive and cannot run with --no-input").
			WithHint("Use: bazaar config set base_url URL")
	}
	p := newPrompter(fp, globals)
	w := fp.Err

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  bazaar - Classifieds CLI Setup\n")
	fmt.Fprintf(w, "  ==============================\n\n")

	// Step 1: Backend
	fmt.Fprintf(w, "  Step 1: Where is the backend?\n\n")
	fmt.Fprintf(w, "    The API base URL, including the /api prefix.\n\n")

	baseURL, err := p.Line(fmt.Sprintf("  Base URL [%s]: ", cfg.BaseURLOrDefault()))
	if err != nil {
		return err
	}
	if baseURL == "" {
		baseURL = cfg.BaseURLOrDefault()
	}
	if err := config.Validate("base_url", baseURL); err != nil {
		return output.NewCLIError(output.ExitUsage, err.Error())
	}

	// Step 2: Credential store
	fmt.Fprintf(w, "\n  Step 2: Where should your session be stored?\n\n")
	fmt.Fprintf(w, "    auto     keyring when available, else encrypted file\n")
	fmt.Fprintf(w, "    keyring  system keychain / secret service\n")
	fmt.Fprintf(w, "    file     encrypted file (good for WSL and servers)\n")
	fmt.Fprintf(w, "    sqlite   local sqlite database\n")
	fmt.Fprintf(w, "    memory   nothing is persisted\n\n")

	currentStore := cfg.Store
	if currentStore == "" {
		currentStore = secrets.BackendAuto
	}
	store, err := p.Line(fmt.Sprintf("  Store [%s]: ", currentStore))
	if err != nil {
		return err
	}
	if store == "" {
		store = currentStore
	}
	store = strings.ToLower(store)
	if err := config.Validate("store", store); err != nil {
		return output.NewCLIError(output.ExitUsage, fmt.Sprintf("Invalid store: %s. Valid: %s", store, strings.Join(secrets.Backends, ", ")))
	}

	cfg.BaseURL = baseURL
	cfg.Store = store
	if err := cfg.Save(); err != nil {
		return output.NewCLIError(output.ExitConfigError, fmt.Sprintf("Failed to save config: %v", err))
	}

	fmt.Fprintf(w, "\n  Saved %s\n", cfg.Path())

	// Step 3: Login
	if !cmd.SkipLogin {
		answer, err := p.Line("\n  Log in now? [Y/n]: ")
		if err != nil {
			return err
		}
		if !strings.EqualFold(answer, "n") {
			sp.reload(cfg)
			if err := (&AuthLoginCmd{}).run(ctx, p, fp, globals, sp); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(w, "\n  Setup complete!\n\n")
	fmt.Fprintf(w, "    Backend: %s\n", baseURL)
	fmt.Fprintf(w, "    Store:   %s\n", store)
	fmt.Fprintf(w, "    Config:  %s\n\n", cfg.Path())
	fmt.Fprintf(w, "  Try it out:\n\n")
	fmt.Fprintf(w, "    bazaar listings list\n")
	fmt.Fprintf(w, "    bazaar listings create\n")
	fmt.Fprintf(w, "    bazaar profile show\n\n")

	return nil
}

// NeedsSetup returns true if the CLI has not been configured yet
func NeedsSetup(cfg *config.Config) bool {
	_, err := os.Stat(cfg.Path())
	return os.IsNotExist(err)
}

// PrintSetupHint prints a hint to run setup
func PrintSetupHint(w io.Writer) {
	fmt.Fprintf(w, "\n  bazaar is not configured yet. Run:\n\n")
	fmt.Fprintf(w, "    bazaar setup\n\n")
}
