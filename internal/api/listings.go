package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ImageField is the multipart field name the backend reads uploads from.
const ImageField = "image"

// ListListings returns all public listings. No credential is required.
func (c *Client) ListListings(ctx context.Context) ([]Listing, error) {
	return c.listingsAt(ctx, "/listings/")
}

// ListMyListings returns the listings owned by the signed-in account.
func (c *Client) ListMyListings(ctx context.Context) ([]Listing, error) {
	return c.listingsAt(ctx, "/my-listing/")
}

// ListingsByOwner returns the public listings whose owner resolves to ownerID.
func (c *Client) ListingsByOwner(ctx context.Context, ownerID string) ([]Listing, error) {
	all, err := c.ListListings(ctx)
	if err != nil {
		return nil, err
	}

	owned := make([]Listing, 0, len(all))
	for _, l := range all {
		if l.OwnerID() == ownerID {
			owned = append(owned, l)
		}
	}
	return owned, nil
}

// GetListing returns one listing.
func (c *Client) GetListing(ctx context.Context, id string) (*Listing, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}

	var l Listing
	if err := c.doJSON(ctx, http.MethodGet, listingPath("/listings/", id), nil, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateListing publishes a new listing.
func (c *Client) CreateListing(ctx context.Context, in ListingInput) (*Listing, error) {
	var l Listing
	if err := c.doJSON(ctx, http.MethodPost, "/listings/", in, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateMyListing applies a partial update to a listing the caller owns.
func (c *Client) UpdateMyListing(ctx context.Context, id string, patch ListingPatch) (*Listing, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}

	var l Listing
	if err := c.doJSON(ctx, http.MethodPatch, MyListingPath(id), patch, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// DeleteMyListing removes a listing the caller owns.
func (c *Client) DeleteMyListing(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodDelete, MyListingPath(id), nil, nil)
}

// UploadListingImage attaches the image file at path to a listing.
func (c *Client) UploadListingImage(ctx context.Context, id, path string) (*ListingImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	return c.UploadListingImageReader(ctx, id, filepath.Base(path), f)
}

// UploadListingImageReader attaches an image read from r. An empty filename
// gets a generated one.
func (c *Client) UploadListingImageReader(ctx context.Context, id, filename string, r io.Reader) (*ListingImage, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if filename == "" {
		filename = fmt.Sprintf("photo_%d.jpg", time.Now().Unix())
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, ImageField, filename))
	h.Set("Content-Type", ImageContentType(filename))
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create multipart: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	path := ListingImagesPath(id)
	res, err := c.do(ctx, http.MethodPost, path, buf.Bytes(), mw.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var img ListingImage
	if len(bytes.TrimSpace(res.body)) > 0 {
		if err := json.Unmarshal(res.body, &img); err != nil {
			return nil, &Error{Kind: KindDecode, Status: res.status, Method: http.MethodPost, Path: path, Body: res.body, Err: err}
		}
	}
	return &img, nil
}

// ImageContentType picks the upload MIME type from the file extension.
// Anything that is not PNG or HEIC is sent as JPEG.
func ImageContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".heic":
		return "image/heic"
	default:
		return "image/jpeg"
	}
}

// maxPages bounds how many pages of one list a call follows.
const maxPages = 50

// listingsAt collects every page of a listing collection, following the
// envelope's next links.
func (c *Client) listingsAt(ctx context.Context, path string) ([]Listing, error) {
	all := []Listing{}
	seen := make(map[string]bool)

	for path != "" {
		if len(seen) == maxPages || seen[path] {
			c.log.Warn().Str("path", path).Int("pages", len(seen)).Msg("stopped following pagination")
			break
		}
		seen[path] = true

		res, err := c.do(ctx, http.MethodGet, path, nil, "")
		if err != nil {
			return nil, err
		}

		items, next, err := decodeList[Listing](res.body)
		if err != nil {
			return nil, &Error{Kind: KindDecode, Status: res.status, Method: http.MethodGet, Path: path, Body: res.body, Err: err}
		}
		all = append(all, items...)

		if next == "" {
			break
		}
		nextPath, err := c.pagePath(path, next)
		if err != nil {
			return nil, &Error{Kind: KindDecode, Status: res.status, Method: http.MethodGet, Path: path, Detail: "unusable next page link", Err: err}
		}
		path = nextPath
	}
	return all, nil
}

// pagePath turns a next-page link into a path below the base URL. Links to
// another host are refused so the credential is never sent elsewhere.
func (c *Client) pagePath(current, link string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	from, err := url.Parse(c.baseURL + current)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parse next link: %w", err)
	}

	u := from.ResolveReference(ref)
	if u.Scheme != base.Scheme || u.Host != base.Host {
		return "", fmt.Errorf("next link %q leaves %s", link, base.Host)
	}
	prefix := strings.TrimRight(base.EscapedPath(), "/")
	rel, ok := strings.CutPrefix(u.EscapedPath(), prefix)
	if !ok || !strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("next link %q is outside %s", link, c.baseURL)
	}
	if u.RawQuery != "" {
		rel += "?" + u.RawQuery
	}
	return rel, nil
}

func listingPath(prefix, id string) string {
	return prefix + url.PathEscape(id) + "/"
}

// MyListingPath is the owner endpoint for one listing, used by update and delete.
func MyListingPath(id string) string {
	return listingPath("/my-listing/", id)
}

// ListingImagesPath is the image upload endpoint of a listing.
func ListingImagesPath(id string) string {
	return listingPath("/listings/", id) + "images/"
}

var errEmptyID = errors.New("listing id is required")

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errEmptyID
	}
	return nil
}
