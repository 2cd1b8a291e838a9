package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Credential is the access/refresh token pair of an authenticated session.
// The tokens are opaque to the store.
type Credential struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Valid reports whether the credential can authorize a request.
// A credential without an access token is "no session".
func (c Credential) Valid() bool {
	return c.Access != ""
}

// Token returns the credential as a bearer oauth2.Token.
func (c Credential) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.Access,
		RefreshToken: c.Refresh,
		TokenType:    "Bearer",
	}
}

// Claims is the informational subset of a JWT-shaped access token.
type Claims struct {
	Subject   string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token carried an expiry that has passed.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Claims decodes the access token without verifying its signature. It is
// for display only; session validity never depends on it.
func (c Credential) Claims() (Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.Access, mc); err != nil {
		return Claims{}, fmt.Errorf("decode access token: %w", err)
	}

	var out Claims
	if sub, err := mc.GetSubject(); err == nil {
		out.Subject = sub
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if uid, ok := mc["user_id"]; ok && uid != nil {
		switch v := uid.(type) {
		case float64:
			out.UserID = fmt.Sprintf("%.0f", v)
		default:
			out.UserID = fmt.Sprintf("%v", v)
		}
	}
	return out, nil
}
