package appwrite

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Error is the remote store's error envelope. Status is zero for
// transport-level failures that never produced an HTTP response.
type Error struct {
	Status  int
	Type    string // machine-readable type, e.g. "document_not_found"
	Message string
	wrapped error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return "appwrite: " + e.Message
	}
	return fmt.Sprintf("appwrite: %s (%d %s)", e.Message, e.Status, e.Type)
}

func (e *Error) Unwrap() error { return e.wrapped }

func IsNotFound(err error) bool     { return hasStatus(err, http.StatusNotFound) }
func IsConflict(err error) bool     { return hasStatus(err, http.StatusConflict) }
func IsUnauthorized(err error) bool { return hasStatus(err, http.StatusUnauthorized) }

// IsTransport reports a failure that never reached the remote store.
func IsTransport(err error) bool { return hasStatus(err, 0) }

func hasStatus(err error, status int) bool {
	var aerr *Error
	return errors.As(err, &aerr) && aerr.Status == status
}

func decodeError(resp *http.Response) error {
	aerr := &Error{Status: resp.StatusCode, Message: resp.Status}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return aerr
	}
	var envelope struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Message != "" {
		aerr.Message = envelope.Message
		aerr.Type = envelope.Type
	}
	return aerr
}
