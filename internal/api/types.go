package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TokenPair is the response from POST /accounts/login/.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Registration is the request body for POST /accounts/register/.
type Registration struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

// Account is a user account as returned by register and profile endpoints.
type Account struct {
	ID       FlexID `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// FlexID is an identifier the backend sends either as a number or a string.
type FlexID string

func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = FlexID(n.String())
	return nil
}

func (id FlexID) String() string {
	return string(id)
}

// Price is a decimal amount. The backend serializes decimals as strings
// ("12.50") but accepts and sometimes returns plain numbers.
type Price string

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("price: %w", err)
	}
	*p = Price(n.String())
	return nil
}

func (p Price) String() string {
	return string(p)
}

// ParsePrice validates a decimal amount for a request body. Extended
// Arabic-Indic and Arabic-Indic digits are accepted and normalized. The result
// is always a valid JSON number: forms like ".5" or "+5" are rewritten, and
// input already in JSON form ("12.50") is kept as typed.
func ParsePrice(s string) (json.Number, error) {
	clean := strings.TrimSpace(strings.Map(asciiDigit, s))
	if strings.ContainsAny(clean, "xX") {
		return "", fmt.Errorf("invalid price %q: must be a positive number", s)
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return "", fmt.Errorf("invalid price %q: must be a positive number", s)
	}
	if json.Valid([]byte(clean)) {
		return json.Number(clean), nil
	}
	return json.Number(strconv.FormatFloat(f, 'f', -1, 64)), nil
}

func asciiDigit(r rune) rune {
	switch {
	case r >= '۰' && r <= '۹':
		return '0' + (r - '۰')
	case r >= '٠' && r <= '٩':
		return '0' + (r - '٠')
	}
	return r
}

// ListingImage is an image attached to a listing.
type ListingImage struct {
	ID         FlexID `json:"id,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	Image      string `json:"image,omitempty"`
	UploadedAt string `json:"uploaded_at,omitempty"`
}

// URL returns the best available image location.
func (img ListingImage) URL() string {
	if img.ImageURL != "" {
		return img.ImageURL
	}
	return img.Image
}

// UserRef is a nested reference to a user.
type UserRef struct {
	ID FlexID `json:"id"`
}

// Listing is a classifieds listing.
type Listing struct {
	ID          FlexID         `json:"id"`
	Title       string         `json:"title"`
	City        string         `json:"city"`
	State       string         `json:"state"`
	Price       Price          `json:"price"`
	Description string         `json:"description,omitempty"`
	ContactInfo string         `json:"contact_info,omitempty"`
	CreatedAt   string         `json:"created_at,omitempty"`
	ImageURL    string         `json:"image_url,omitempty"`
	Image       string         `json:"image,omitempty"`
	Thumbnail   string         `json:"thumbnail,omitempty"`
	Images      []ListingImage `json:"images,omitempty"`

	// Owner references; backends differ in which one they populate.
	UserIDRef  FlexID   `json:"user_id,omitempty"`
	OwnerIDRef FlexID   `json:"owner_id,omitempty"`
	User       *UserRef `json:"user,omitempty"`
	CreatedBy  *UserRef `json:"created_by,omitempty"`
}

// OwnerID resolves the owner from user_id, owner_id, user.id, then created_by.id.
func (l Listing) OwnerID() string {
	switch {
	case l.UserIDRef != "":
		return string(l.UserIDRef)
	case l.OwnerIDRef != "":
		return string(l.OwnerIDRef)
	case l.User != nil && l.User.ID != "":
		return string(l.User.ID)
	case l.CreatedBy != nil && l.CreatedBy.ID != "":
		return string(l.CreatedBy.ID)
	}
	return ""
}

// CoverImage resolves the image shown for a listing.
func (l Listing) CoverImage() string {
	switch {
	case l.ImageURL != "":
		return l.ImageURL
	case l.Image != "":
		return l.Image
	case l.Thumbnail != "":
		return l.Thumbnail
	case len(l.Images) > 0:
		return l.Images[0].URL()
	}
	return ""
}

// Location is "City, State" with empty parts skipped.
func (l Listing) Location() string {
	switch {
	case l.City != "" && l.State != "":
		return l.City + ", " + l.State
	case l.City != "":
		return l.City
	default:
		return l.State
	}
}

// ListingInput is the request body for POST /listings/.
type ListingInput struct {
	Title       string      `json:"title"`
	Price       json.Number `json:"price"`
	City        string      `json:"city"`
	State       string      `json:"state"`
	ContactInfo string      `json:"contact_info"`
	Description string      `json:"description"`
}

// ListingPatch is the request body for PATCH /my-listing/{id}/.
// Nil fields are left unchanged.
type ListingPatch struct {
	Title       *string      `json:"title,omitempty"`
	Price       *json.Number `json:"price,omitempty"`
	City        *string      `json:"city,omitempty"`
	State       *string      `json:"state,omitempty"`
	ContactInfo *string      `json:"contact_info,omitempty"`
	Description *string      `json:"description,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ListingPatch) Empty() bool {
	return p.Title == nil && p.Price == nil && p.City == nil &&
		p.State == nil && p.ContactInfo == nil && p.Description == nil
}

// page is the paginated list envelope.
type page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// decodeList accepts either a bare JSON array or a paginated envelope. next is
// the envelope's link to the following page, empty on the last page.
func decodeList[T any](data []byte) (items []T, next string, err error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, "", err
		}
		return items, "", nil
	}

	var p page[T]
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, "", err
	}
	if p.Next != nil {
		next = *p.Next
	}
	if p.Results == nil {
		return []T{}, next, nil
	}
	return p.Results, next, nil
}
