package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStatusError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    Kind
		message string
	}{
		{
			name:    "detail",
			status:  http.StatusUnauthorized,
			body:    `{"detail": "Given token not valid for any token type", "code": "token_not_valid"}`,
			kind:    KindUnauthorized,
			message: "Given token not valid for any token type",
		},
		{
			name:    "non field errors",
			status:  http.StatusBadRequest,
			body:    `{"non_field_errors": ["Unable to log in."]}`,
			kind:    KindValidation,
			message: "non_field_errors: Unable to log in.",
		},
		{
			name:    "nested object",
			status:  http.StatusBadRequest,
			body:    `{"images": {"0": ["Upload a valid image."]}}`,
			kind:    KindValidation,
			message: "images: 0: Upload a valid image.",
		},
		{
			name:    "plain text body",
			status:  http.StatusTooManyRequests,
			body:    `slow down`,
			kind:    KindRateLimited,
			message: "slow down",
		},
		{
			name:    "html body is hidden",
			status:  http.StatusBadGateway,
			body:    `<html><body>Bad Gateway</body></html>`,
			kind:    KindServer,
			message: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newStatusError(http.MethodGet, "/listings/", tt.status, []byte(tt.body))
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, tt.message, err.Message())
		})
	}
}

func TestErrorString(t *testing.T) {
	e := newStatusError(http.MethodDelete, "/my-listing/3/", http.StatusForbidden, []byte(`{"detail": "Not yours."}`))
	assert.Equal(t, "DELETE /my-listing/3/: HTTP 403: Not yours.", e.Error())

	netErr := &Error{Kind: KindNetwork, Method: http.MethodGet, Path: "/listings/", Err: errors.New("connection refused")}
	assert.Equal(t, "GET /listings/: network unreachable: connection refused", netErr.Error())
}

func TestIsKindThroughWrapping(t *testing.T) {
	inner := &Error{Kind: KindNotFound, Status: http.StatusNotFound}
	wrapped := fmt.Errorf("get listing: %w", inner)

	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsUnauthorized(wrapped))
	assert.True(t, IsUnauthorized(fmt.Errorf("x: %w", &Error{Kind: KindUnauthorized})))
	assert.False(t, IsKind(errors.New("plain"), KindNotFound))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "network_unreachable", KindNetwork.String())
	assert.Equal(t, "validation_rejected", KindValidation.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
