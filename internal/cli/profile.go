package cli

import (
	"context"
	"fmt"

	"github.com/semmy-space/bazaar/internal/api"
	"github.com/semmy-space/bazaar/internal/session"
)

// ProfileShowCmd shows the signed-in account
type ProfileShowCmd struct{}

// Run executes the show command
func (cmd *ProfileShowCmd) Run(ctx context.Context, fp *FormatterProvider, sp *ServiceProvider) error {
	return sp.protected(ctx, "Failed to load profile", func(ctx context.Context, m *session.Mount, svc api.Service) error {
		acct, err := svc.GetProfile(ctx)
		if err != nil {
			return err
		}
		var printErr error
		m.Apply(func() {
			printErr = fp.Formatter.Print(newAccountView(acct))
		})
		return printErr
	})
}

// ProfileUserCmd shows another user's public listings
type ProfileUserCmd struct {
	ID string `arg:"" help:"User ID"`
}

// Run executes the user command
func (cmd *ProfileUserCmd) Run(ctx context.Context, fp *FormatterProvider, sp *ServiceProvider) error {
	return sp.public(ctx, "Failed to load profile", func(ctx context.Context, svc api.Service) error {
		items, err := svc.ListingsByOwner(ctx, cmd.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Fprintf(fp.Err, "User %s has no listings\n", cmd.ID)
			return nil
		}
		fmt.Fprintf(fp.Err, "Listings by user %s (%d)\n", cmd.ID, len(items))
		return fp.Formatter.PrintList(listingRows(items), listingColumns)
	})
}
