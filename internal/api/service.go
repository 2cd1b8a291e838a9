package api

import (
	"context"
	"io"
)

// Service is the set of backend operations the CLI depends on.
type Service interface {
	Login(ctx context.Context, username, password string) (*TokenPair, error)
	Register(ctx context.Context, reg Registration) (*Account, error)
	GetProfile(ctx context.Context) (*Account, error)

	ListListings(ctx context.Context) ([]Listing, error)
	ListMyListings(ctx context.Context) ([]Listing, error)
	ListingsByOwner(ctx context.Context, ownerID string) ([]Listing, error)
	GetListing(ctx context.Context, id string) (*Listing, error)
	CreateListing(ctx context.Context, in ListingInput) (*Listing, error)
	UpdateMyListing(ctx context.Context, id string, patch ListingPatch) (*Listing, error)
	DeleteMyListing(ctx context.Context, id string) error
	UploadListingImage(ctx context.Context, id, path string) (*ListingImage, error)
	UploadListingImageReader(ctx context.Context, id, filename string, r io.Reader) (*ListingImage, error)
}

var _ Service = (*Client)(nil)
