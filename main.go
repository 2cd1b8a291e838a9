package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/posener/complete"
	"github.com/willabides/kongplete"

	"github.com/semmy-space/bazaar/internal/cli"
	"github.com/semmy-space/bazaar/internal/output"
)

func main() {
	os.Exit(run())
}

func run() int {
	cliInstance := &cli.CLI{}
	parser := kong.Must(cliInstance,
		kong.Name("bazaar"),
		kong.Description("Classifieds marketplace CLI: browse, post and manage listings"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": cli.Version,
		},
	)

	// Answers shell completion requests and exits when COMP_LINE is set.
	kongplete.Complete(parser,
		kongplete.WithPredictor("file", complete.PredictFiles("*")),
	)

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		var cliErr *output.CLIError
		if errors.As(err, &cliErr) {
			return output.Report(output.New("plain", output.Options{}), cliErr)
		}
		parser.FatalIfErrorf(err)
	}

	// Ctrl-C unmounts the running command; late results are dropped.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	kctx.BindTo(ctx, (*context.Context)(nil))

	if err := kctx.Run(); err != nil {
		return output.Report(output.New("plain", output.Options{}), err)
	}
	return output.ExitOK
}
