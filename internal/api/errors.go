package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies a failed backend call.
type Kind int

const (
	// KindNetwork means no response was received.
	KindNetwork Kind = iota + 1
	// KindUnauthorized means the backend rejected (or required) the credential.
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindRateLimited
	// KindValidation is any other 4xx; Fields carries per-field messages.
	KindValidation
	KindServer
	// KindDecode means a 2xx response body could not be decoded.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network_unreachable"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindValidation:
		return "validation_rejected"
	case KindServer:
		return "server_error"
	case KindDecode:
		return "decode_error"
	default:
		return "unknown"
	}
}

// kindForStatus maps a non-2xx status to a Kind.
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 500:
		return KindServer
	default:
		return KindValidation
	}
}

// Error is the single failure type returned by Client operations.
type Error struct {
	Kind   Kind
	Status int // 0 for KindNetwork
	Method string
	Path   string

	// Detail is the backend's "detail" message, if it sent one.
	Detail string
	// Fields maps field names to the backend's messages for them.
	// Non-field messages are under "non_field_errors".
	Fields map[string][]string
	// Body is the raw response payload.
	Body []byte

	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: ", e.Method, e.Path)

	switch {
	case e.Kind == KindNetwork:
		b.WriteString("network unreachable")
		if e.Err != nil {
			fmt.Fprintf(&b, ": %v", e.Err)
		}
		return b.String()
	case e.Kind == KindDecode:
		b.WriteString("malformed response")
		if e.Err != nil {
			fmt.Fprintf(&b, ": %v", e.Err)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "HTTP %d", e.Status)
	if msg := e.Message(); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Unauthorized reports whether the credential was rejected.
func (e *Error) Unauthorized() bool {
	return e.Kind == KindUnauthorized
}

// Message is the backend-provided text: the detail, else the field errors
// rendered as "field: msg; field: msg", else the raw body if it is short.
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	if len(e.Fields) > 0 {
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)

		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], " ")))
		}
		return strings.Join(parts, "; ")
	}
	body := strings.TrimSpace(string(e.Body))
	if body != "" && len(body) <= 200 && !strings.HasPrefix(body, "<") {
		return body
	}
	return ""
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == k
}

// IsUnauthorized reports whether err means the backend rejected the credential.
func IsUnauthorized(err error) bool {
	return IsKind(err, KindUnauthorized)
}

// newStatusError builds an Error from a non-2xx response body. Payloads are
// Django REST framework shaped: {"detail": "..."} or {"field": ["msg"], ...}.
func newStatusError(method, path string, status int, body []byte) *Error {
	e := &Error{
		Kind:   kindForStatus(status),
		Status: status,
		Method: method,
		Path:   path,
		Body:   body,
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return e
	}

	for name, raw := range payload {
		msgs := messages(raw)
		if len(msgs) == 0 {
			continue
		}
		if name == "detail" {
			e.Detail = strings.Join(msgs, " ")
			continue
		}
		if e.Fields == nil {
			e.Fields = make(map[string][]string)
		}
		e.Fields[name] = msgs
	}
	return e
}

// messages flattens a string, a list of strings, or a nested object into
// messages.
func messages(raw json.RawMessage) []string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return nil
		}
		return []string{s}
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		var out []string
		for _, item := range list {
			out = append(out, messages(item)...)
		}
		return out
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var out []string
		for _, k := range keys {
			for _, m := range messages(obj[k]) {
				out = append(out, k+": "+m)
			}
		}
		return out
	}

	// numbers, bools
	if len(raw) > 0 && string(raw) != "null" {
		return []string{string(raw)}
	}
	return nil
}
