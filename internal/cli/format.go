package cli

import (
	"net/url"
	"time"

	"github.com/semmy-space/bazaar/internal/api"
	"github.com/semmy-space/bazaar/internal/output"
	"github.com/semmy-space/bazaar/internal/secrets"
)

// listingRow is the list view of a listing.
type listingRow struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Price    string `json:"price"`
	Location string `json:"location"`
	Owner    string `json:"owner_id,omitempty"`
	Image    string `json:"image,omitempty"`
	Created  string `json:"created_at,omitempty"`
}

var listingColumns = []output.Column{
	{Name: "ID", Key: "ID"},
	{Name: "Title", Key: "Title", Width: 40},
	{Name: "Price", Key: "Price"},
	{Name: "Location", Key: "Location", Width: 30},
	{Name: "Created", Key: "Created"},
}

func listingRows(items []api.Listing) []listingRow {
	rows := make([]listingRow, 0, len(items))
	for _, l := range items {
		rows = append(rows, listingRow{
			ID:       l.ID.String(),
			Title:    l.Title,
			Price:    formatPrice(l.Price),
			Location: l.Location(),
			Owner:    l.OwnerID(),
			Image:    l.CoverImage(),
			Created:  formatDate(l.CreatedAt),
		})
	}
	return rows
}

// listingDetail is the single-listing view.
type listingDetail struct {
	ID          string `json:"id" label:"ID"`
	Title       string `json:"title" label:"Title"`
	Price       string `json:"price" label:"Price"`
	Location    string `json:"location" label:"Location"`
	ContactInfo string `json:"contact_info,omitempty" label:"Contact"`
	Description string `json:"description,omitempty" label:"Description"`
	Image       string `json:"image,omitempty" label:"Image"`
	Images      int    `json:"image_count" label:"-"`
	Owner       string `json:"owner_id,omitempty" label:"Owner"`
	Created     string `json:"created_at,omitempty" label:"Created"`
}

func newListingDetail(l *api.Listing) listingDetail {
	return listingDetail{
		ID:          l.ID.String(),
		Title:       l.Title,
		Price:       formatPrice(l.Price),
		Location:    l.Location(),
		ContactInfo: l.ContactInfo,
		Description: l.Description,
		Image:       l.CoverImage(),
		Images:      len(l.Images),
		Owner:       l.OwnerID(),
		Created:     formatDate(l.CreatedAt),
	}
}

// accountView is the profile view.
type accountView struct {
	ID       string `json:"id,omitempty" label:"ID"`
	Username string `json:"username" label:"Username"`
	Email    string `json:"email" label:"Email"`
}

func newAccountView(a *api.Account) accountView {
	return accountView{ID: a.ID.String(), Username: a.Username, Email: a.Email}
}

// formatPrice renders a price with a dollar sign, or "-" when absent.
func formatPrice(p api.Price) string {
	if p == "" {
		return "-"
	}
	return "$" + p.String()
}

// formatDate shortens an RFC 3339 timestamp to a date. Anything else is
// returned unchanged.
func formatDate(s string) string {
	if s == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02")
}

// describeBackend names a resolved secrets backend for humans.
func describeBackend(backend string) string {
	switch backend {
	case secrets.BackendKeyring:
		return "system keyring"
	case secrets.BackendFile:
		return "encrypted file"
	case secrets.BackendSQLite:
		return "sqlite database"
	case secrets.BackendMemory:
		return "memory (not persisted)"
	case "":
		return "unknown"
	default:
		return backend
	}
}

// maskSecret masks sensitive values, showing only last 4 characters
func maskSecret(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}

// resolveMediaURL makes a media reference absolute against the backend host.
// Backends often return "/media/..." paths for uploaded images.
func resolveMediaURL(baseURL, ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() {
		return ref
	}
	b, err := url.Parse(baseURL)
	if err != nil {
		return ref
	}
	return b.ResolveReference(u).String()
}
