package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/willabides/kongplete"
	"golang.org/x/term"

	"github.com/semmy-space/bazaar/internal/config"
	"github.com/semmy-space/bazaar/internal/logging"
	"github.com/semmy-space/bazaar/internal/output"
)

// Version is set at build time with -ldflags "-X github.com/semmy-space/bazaar/internal/cli.Version=..."
var Version = "dev"

// FormatterProvider wraps the formatter and the terminal streams for Kong binding
type FormatterProvider struct {
	Formatter output.Formatter
	In        io.Reader
	Err       io.Writer
}

// CLI is the root command structure
type CLI struct {
	Globals

	Auth       AuthCmd                      `cmd:"" help:"Authentication commands"`
	Listings   ListingsCmd                  `cmd:"" help:"Browse and manage listings"`
	Profile    ProfileCmd                   `cmd:"" help:"Account and public profiles"`
	Config     ConfigCmd                    `cmd:"" help:"Configuration commands"`
	Setup      SetupCmd                     `cmd:"" help:"Interactive first-run setup"`
	Ls         LsCmd                        `cmd:"" help:"Shortcuts for common listings"`
	Schema     SchemaCmd                    `cmd:"" help:"Print the command tree and exit codes as JSON"`
	Completion kongplete.InstallCompletions `cmd:"" help:"Install shell completions"`
	Version    VersionCmd                   `cmd:"" help:"Show version information"`
}

// BeforeApply hook runs before any command execution
// It loads config, builds the logger and formatter, and binds dependencies
func (c *CLI) BeforeApply(ctx *kong.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return output.NewCLIError(output.ExitConfigError, fmt.Sprintf("Failed to load config: %v", err)).
			WithHint("Fix or remove " + config.ConfigPath())
	}

	pretty := term.IsTerminal(int(os.Stderr.Fd()))
	logger := logging.New(os.Stderr, c.ResolvedLogLevel(cfg.LogLevel), pretty)

	fp := &FormatterProvider{
		Formatter: output.New(c.ResolvedOutput(cfg.DefaultOutput), output.Options{ResultsOnly: c.ResultsOnly}),
		In:        os.Stdin,
		Err:       os.Stderr,
	}

	ctx.Bind(cfg)
	ctx.Bind(fp)
	ctx.Bind(&c.Globals)
	ctx.Bind(NewServiceProvider(cfg, &c.Globals, logger))

	return nil
}

// AuthCmd holds authentication subcommands
type AuthCmd struct {
	Login    AuthLoginCmd    `cmd:"" help:"Log in and store the session"`
	Register AuthRegisterCmd `cmd:"" help:"Create an account"`
	Logout   AuthLogoutCmd   `cmd:"" help:"Log out and remove stored credentials"`
	Status   AuthStatusCmd   `cmd:"" help:"Show session status"`
}

// ListingsCmd holds listing subcommands
type ListingsCmd struct {
	List   ListingsListCmd   `cmd:"" help:"List all listings"`
	Get    ListingsGetCmd    `cmd:"" help:"Show one listing"`
	Create ListingsCreateCmd `cmd:"" help:"Publish a new listing"`
	Update ListingsUpdateCmd `cmd:"" help:"Edit one of your listings"`
	Delete ListingsDeleteCmd `cmd:"" help:"Delete one of your listings"`
	Image  ListingsImageCmd  `cmd:"" help:"Attach an image to a listing"`
	Mine   ListingsMineCmd   `cmd:"" help:"List your listings"`
}

// ProfileCmd holds profile subcommands
type ProfileCmd struct {
	Show ProfileShowCmd `cmd:"" help:"Show your account"`
	User ProfileUserCmd `cmd:"" help:"Show a user's public listings"`
}

// ConfigCmd holds configuration subcommands
type ConfigCmd struct {
	Get   ConfigGetCmd        `cmd:"" help:"Get a configuration value"`
	Set   ConfigSetCmd        `cmd:"" help:"Set a configuration value"`
	Unset ConfigUnsetCmd      `cmd:"" help:"Remove a configuration value"`
	List  ConfigListConfigCmd `cmd:"" name:"list" help:"List all configuration values"`
	Path  ConfigPathCmd       `cmd:"" help:"Show config file path"`
}

// VersionCmd shows version information
type VersionCmd struct{}

func (cmd *VersionCmd) Run(ctx *kong.Context) error {
	fmt.Fprintf(ctx.Stdout, "bazaar version %s\n", ctx.Model.Vars()["version"])
	return nil
}
