package client

import (
	"errors"
	"fmt"
)

// Conflict errors returned by the single-flight guards. A rejected call
// is not queued; retry once the current operation finishes.
var (
	ErrIngestBusy = errors.New("an upload is already in progress")
	ErrBackupBusy = errors.New("a backup operation is already in progress")
)

// ValidationError reports input rejected before any network call.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// APIError carries a server-side rejection. Message is the server's
// own error text when the response body had one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}
