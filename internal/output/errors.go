package output

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/semmy-space/bazaar/internal/api"
	"github.com/semmy-space/bazaar/internal/session"
)

// Exit codes following sysexits.h convention
const (
	ExitOK           = 0  // Success
	ExitGeneral      = 1  // General error
	ExitUsage        = 2  // Invalid usage / bad arguments
	ExitAuth         = 3  // Authentication failure or no session
	ExitNotFound     = 4  // Resource not found
	ExitConflict     = 5  // Conflict (resource already exists)
	ExitForbidden    = 6  // Permission denied
	ExitValidation   = 7  // Backend rejected the input
	ExitTimeout      = 8  // Request timeout
	ExitAPIError     = 9  // Backend error (non-specific)
	ExitConfigError  = 10 // Configuration error
	ExitNetworkError = 11 // Network connectivity error
	ExitRateLimit    = 75 // Rate limited (EX_TEMPFAIL from sysexits.h)
)

// LoginHint is shown whenever a command needs a session it does not have.
const LoginHint = "Run: bazaar auth login"

// CLIError represents a structured error with exit code and optional hint
type CLIError struct {
	ExitCode int
	Message  string
	Hint     string
}

// Error implements the error interface
func (e *CLIError) Error() string {
	return e.Message
}

// NewCLIError creates a new CLIError
func NewCLIError(code int, msg string) *CLIError {
	return &CLIError{
		ExitCode: code,
		Message:  msg,
	}
}

// WithHint adds a user-facing hint to the error
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// FromError maps any error to a CLIError. prefix, if non-empty, is prepended
// to the message ("Failed to delete listing: ...").
func FromError(prefix string, err error) *CLIError {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	msg := func(s string) string {
		if prefix == "" {
			return s
		}
		return prefix + ": " + s
	}

	if errors.Is(err, session.ErrNoSession) {
		return NewCLIError(ExitAuth, msg("not logged in")).WithHint(LoginHint)
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return fromAPIError(apiErr, msg)
	}

	if isTimeout(err) {
		return NewCLIError(ExitTimeout, msg("request timed out"))
	}

	return NewCLIError(ExitGeneral, msg(err.Error()))
}

func fromAPIError(e *api.Error, msg func(string) string) *CLIError {
	detail := e.Message()

	switch e.Kind {
	case api.KindNetwork:
		if isTimeout(e.Err) {
			return NewCLIError(ExitTimeout, msg("request timed out"))
		}
		return NewCLIError(ExitNetworkError, msg(fmt.Sprintf("cannot reach the server: %v", e.Err))).
			WithHint("Check base_url: bazaar config get base_url")
	case api.KindUnauthorized:
		return NewCLIError(ExitAuth, msg(orDefault(detail, "session is no longer valid"))).WithHint(LoginHint)
	case api.KindForbidden:
		return NewCLIError(ExitForbidden, msg(orDefault(detail, "permission denied")))
	case api.KindNotFound:
		return NewCLIError(ExitNotFound, msg(orDefault(detail, "not found")))
	case api.KindRateLimited:
		return NewCLIError(ExitRateLimit, msg(orDefault(detail, "rate limited"))).
			WithHint("Wait a moment and retry, or lower rate_limit")
	case api.KindValidation:
		return NewCLIError(ExitValidation, msg(orDefault(detail, fmt.Sprintf("rejected (HTTP %d)", e.Status))))
	default:
		return NewCLIError(ExitAPIError, msg(e.Error()))
	}
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Report prints err via the formatter and returns the process exit code.
// The os.Exit call belongs to main.
func Report(formatter Formatter, err error) int {
	if err == nil {
		return ExitOK
	}

	cliErr := FromError("", err)
	formatter.PrintError(cliErr)
	if cliErr.Hint != "" {
		formatter.PrintHint(cliErr.Hint)
	}
	return cliErr.ExitCode
}
