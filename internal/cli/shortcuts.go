package cli

// LsCmd provides desire-path shortcuts for listing resources
// These are aliases to full command paths for faster interactive use
type LsCmd struct {
	Listings ListingsListCmd `cmd:"" default:"1" help:"List all listings (shortcut for listings list)"`
	Mine     ListingsMineCmd `cmd:"" help:"List your listings (shortcut for listings mine)"`
}
