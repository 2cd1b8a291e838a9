package api

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// bearerTransport attaches the stored credential to every outgoing request.
// The token source is consulted per request, never cached, so a login or
// logout takes effect on the next call. Without a usable token the request
// goes out unauthenticated.
type bearerTransport struct {
	base      http.RoundTripper
	tokens    oauth2.TokenSource
	userAgent string
	log       zerolog.Logger
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not mutate the caller's request.
	r := req.Clone(req.Context())

	if t.tokens != nil && !isAnonymous(r.Context()) {
		tok, err := t.tokens.Token()
		switch {
		case err != nil:
			t.log.Debug().Err(err).Str("path", r.URL.Path).Msg("dispatching without credential")
		case tok != nil && tok.AccessToken != "":
			tok.SetAuthHeader(r)
		}
	}

	if t.userAgent != "" && r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", t.userAgent)
	}

	return t.base.RoundTrip(r)
}

type anonymousKey struct{}

// anonymous marks ctx so requests made with it carry no credential. Login and
// registration must not present a possibly stale token.
func anonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, anonymousKey{}, true)
}

func isAnonymous(ctx context.Context) bool {
	v, _ := ctx.Value(anonymousKey{}).(bool)
	return v
}
