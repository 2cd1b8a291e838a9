package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/semmy-space/bazaar/internal/api"
	"github.com/semmy-space/bazaar/internal/output"
	"github.com/semmy-space/bazaar/internal/session"
	"github.com/semmy-space/bazaar/pkg/browser"
)

// openURL is swapped out in tests.
var openURL = browser.Open

// ListingsListCmd lists all public listings
type ListingsListCmd struct{}

// Run executes the list command
func (cmd *ListingsListCmd) Run(ctx context.Context, fp *FormatterProvider, sp *ServiceProvider) error {
	return sp.public(ctx, "Failed to load listings", func(ctx context.Context, svc api.Service) error {
		items, err := svc.ListListings(ctx)
		if err != nil {
			return err
		}
		return fp.Formatter.PrintList(listingRows(items), listingColumns)
	})
}

// ListingsGetCmd shows a single listing
type ListingsGetCmd struct {
	ID   string `arg:"" help:"Listing ID"`
	Open bool   `help:"Open the listing's image in the browser"`
}

// Run executes the get command
func (cmd *ListingsGetCmd) Run(ctx context.Context, fp *FormatterProvider, sp *ServiceProvider) error {
	return sp.public(ctx, "Failed to load listing", func(ctx context.Context, svc api.Service) error {
		l, err := svc.GetListing(ctx, cmd.ID)
		if err != nil {
			return err
		}
		if err := fp.Formatter.Print(newListingDetail(l)); err != nil {
			return err
		}

		if cmd.Open {
			img := resolveMediaURL(sp.cfg.BaseURLOrDefault(), l.CoverImage())
			if img == "" {
				fp.Formatter.PrintWarning("listing has no image to open")
				return nil
			}
			if err := openURL(img); err != nil {
				fp.Formatter.PrintWarning(fmt.Sprintf("could not open browser: %v", err))
				fmt.Fprintln(fp.Err, img)
			}
		}
		return nil
	})
}

// ListingFields are the editable fields shared by create and update.
type ListingFields struct {
	Title       string `help:"Listing title" short:"t"`
	Price       string `help:"Price (positive number)" short:"p"`
	City        string `help:"City"`
	State       string `help:"State or region"`
	Contact     string `help:"Contact information" name:"contact"`
	Description string `help:"Description" short:"d"`
}

// ListingsCreateCmd publishes a new listing
type ListingsCreateCmd struct {
	ListingFields `embed:""`
	Image         string `help:"Image file to attach after creating" type:"existingfile" predictor:"file"`
}

// Run executes the create command. Missing fields are prompted for.
func (cmd *ListingsCreateCmd) Run(ctx context.Context, fp *FormatterProvider, globals *Globals, sp *ServiceProvider) error {
	p := newPrompter(fp, globals)
	f := &cmd.ListingFields

	for _, q := range []struct {
		label string
		dst   *string
	}{
		{"Title: ", &f.Title},
		{"Price: ", &f.Price},
		{"City: ", &f.City},
		{"State: ", &f.State},
		{"Contact info: ", &f.Contact},
	} {
		if strings.TrimSpace(*q.dst) != "" || globals.NoInput {
			continue
		}
		v, err := p.Line(q.label)
		if err != nil {
			return err
		}
		*q.dst = v
	}

	in, err := f.input()
	if err != nil {
		return err
	}

	if globals.DryRun {
		return printDryRun(fp, "POST", "/listings/", in, cmd.Image)
	}

	return sp.protected(ctx, "Failed to create listing", func(ctx context.Context, m *session.Mount, svc api.Service) error {
		created, err := svc.CreateListing(ctx, in)
		if err != nil {
			return err
		}
		if created.ID == "" {
			return fmt.Errorf("listing created but no id returned")
		}

		if cmd.Image != "" {
			if _, err := svc.UploadListingImage(ctx, created.ID.String(), cmd.Image); err != nil {
				// The listing exists either way.
				m.Apply(func() {
					fp.Formatter.PrintWarning(fmt.Sprintf("listing created, but image upload failed: %v", err))
				})
			}
		}

		var printErr error
		m.Apply(func() {
			fp.Formatter.PrintSuccess(fmt.Sprintf("Listing %s created", created.ID))
			printErr = fp.Formatter.Print(newListingDetail(created))
		})
		return printErr
	})
}

// input validates the fields for a create request.
func (f ListingFields) input() (api.ListingInput, error) {
	in := api.ListingInput{
		Title:       strings.TrimSpace(f.Title),
		City:        strings.TrimSpace(f.City),
		State:       strings.TrimSpace(f.State),
		ContactInfo: strings.TrimSpace(f.Contact),
		Description: strings.TrimSpace(f.Description),
	}
	if in.Title == "" || in.City == "" || in.State == "" || in.ContactInfo == "" {
		return in, output.NewCLIError(output.ExitUsage, "Title, city, state and contact are required")
	}

	price, err := api.ParsePrice(f.Price)
	if err != nil {
		return in, output.NewCLIError(output.ExitUsage, "Please enter a valid price")
	}
	in.Price = price
	return in, nil
}

// patch builds a partial update from the flags that were set.
func (f ListingFields) patch() (api.ListingPatch, error) {
	var p api.ListingPatch
	set := func(v string) *string {
		if v == "" {
			return nil
		}
		v = strings.TrimSpace(v)
		return &v
	}
	p.Title = set(f.Title)
	p.City = set(f.City)
	p.State = set(f.State)
	p.ContactInfo = set(f.Contact)
	p.Description = set(f.Description)

	if f.Price != "" {
		price, err := api.ParsePrice(f.Price)
		if err != nil {
			return p, output.NewCLIError(output.ExitUsage, "Please enter a valid price")
		}
		p.Price = &price
	}

	if p.Empty() {
		return p, output.NewCLIError(output.ExitUsage, "Nothing to update").
			WithHint("Pass at least one of --title, --price, --city, --state, --contact, --description")
	}
	return p, nil
}

// ListingsUpdateCmd edits a listing the caller owns
type ListingsUpdateCmd struct {
	ID            string `arg:"" help:"Listing ID"`
	ListingFields `embed:""`
}

// Run executes the update command
func (cmd *ListingsUpdateCmd) Run(ctx context.Context, fp *FormatterProvider, globals *Globals, sp *ServiceProvider) error {
	patch, err := cmd.ListingFields.patch()
	if err != nil {
		return err
	}

	if globals.DryRun {
		return printDryRun(fp, "PATCH", api.MyListingPath(cmd.ID), patch, "")
	}

	return sp.protected(ctx, "Failed to update listing", func(ctx context.Context, m *session.Mount, svc api.Service) error {
		updated, err := svc.UpdateMyListing(ctx, cmd.ID, patch)
		if err != nil {
			return err
		}
		var printErr error
		m.Apply(func() {
			fp.Formatter.PrintSuccess(fmt.Sprintf("Listing %s updated", cmd.ID))
			printErr = fp.Formatter.Print(newListingDetail(updated))
		})
		return printErr
	})
}

// ListingsDeleteCmd deletes a listing the caller owns
type ListingsDeleteCmd struct {
	ID string `arg:"" help:"Listing ID"`
}

// Run executes the delete command. It asks for confirmation unless --force.
func (cmd *ListingsDeleteCmd) Run(ctx context.Context, fp *FormatterProvider, globals *Globals, sp *ServiceProvider) error {
	if globals.DryRun {
		fmt.Fprintf(fp.Err, "[DRY RUN] Would DELETE %s\n", api.MyListingPath(cmd.ID))
		return nil
	}

	if !globals.Force {
		ok, err := newPrompter(fp, globals).Confirm(fmt.Sprintf("Delete listing %s? This cannot be undone.", cmd.ID))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(fp.Err, "Cancelled\n")
			return nil
		}
	}

	return sp.protected(ctx, "Failed to delete listing", func(ctx context.Context, m *session.Mount, svc api.Service) error {
		if err := svc.DeleteMyListing(ctx, cmd.ID); err != nil {
			return err
		}
		m.Apply(func() {
			fp.Formatter.PrintSuccess(fmt.Sprintf("Listing %s deleted", cmd.ID))
		})
		return nil
	})
}

// ListingsImageCmd uploads an image to a listing
type ListingsImageCmd struct {
	ID   string `arg:"" help:"Listing ID"`
	File string `arg:"" help:"Image file (jpg, png, heic)" type:"existingfile" predictor:"file"`
}

// Run executes the image command
func (cmd *ListingsImageCmd) Run(ctx context.Context, fp *FormatterProvider, globals *Globals, sp *ServiceProvider) error {
	if globals.DryRun {
		fmt.Fprintf(fp.Err, "[DRY RUN] Would POST %s (%s) to %s\n",
			cmd.File, api.ImageContentType(cmd.File), api.ListingImagesPath(cmd.ID))
		return nil
	}

	return sp.protected(ctx, "Failed to upload image", func(ctx context.Context, m *session.Mount, svc api.Service) error {
		img, err := svc.UploadListingImage(ctx, cmd.ID, cmd.File)
		if err != nil {
			return err
		}
		m.Apply(func() {
			msg := fmt.Sprintf("Image attached to listing %s", cmd.ID)
			if u := img.URL(); u != "" {
				msg += ": " + u
			}
			fp.Formatter.PrintSuccess(msg)
		})
		return nil
	})
}

// ListingsMineCmd lists the caller's own listings
type ListingsMineCmd struct{}

// Run executes the mine command
func (cmd *ListingsMineCmd) Run(ctx context.Context, fp *FormatterProvider, sp *ServiceProvider) error {
	return sp.protected(ctx, "Could not load your listings", func(ctx context.Context, m *session.Mount, svc api.Service) error {
		items, err := svc.ListMyListings(ctx)
		if err != nil {
			return err
		}
		var printErr error
		m.Apply(func() {
			if len(items) == 0 {
				fmt.Fprintf(fp.Err, "You have no listings yet. Create one with: bazaar listings create\n")
				return
			}
			printErr = fp.Formatter.PrintList(listingRows(items), listingColumns)
		})
		return printErr
	})
}

// printDryRun shows the request body a mutating command would send.
func printDryRun(fp *FormatterProvider, method, path string, body any, image string) error {
	fmt.Fprintf(fp.Err, "[DRY RUN] Would %s %s\n", method, path)
	data, err := json.MarshalIndent(body, "  ", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(fp.Err, "  %s\n", data)
	if image != "" {
		if _, err := os.Stat(image); err != nil {
			fp.Formatter.PrintWarning(fmt.Sprintf("image %s is not readable: %v", image, err))
		}
		fmt.Fprintf(fp.Err, "  then upload %s (%s)\n", image, api.ImageContentType(image))
	}
	return nil
}
