package model

import "errors"

// Component failures surface as one of these sentinels, wrapped with
// context via fmt.Errorf("...: %w", ...). Nothing is retried or swallowed
// internally; callers map sentinels to user-facing responses.
var (
	ErrAuthentication      = errors.New("authentication failed")
	ErrAccountCreation     = errors.New("account creation failed")
	ErrSession             = errors.New("session invalid")
	ErrCatalogFetch        = errors.New("catalog fetch failed")
	ErrServiceNotFound     = errors.New("service not found")
	ErrBookingCreation     = errors.New("booking creation failed")
	ErrBookingCancellation = errors.New("booking cancellation failed")

	// ErrTransport covers unclassified failures reaching the remote store.
	ErrTransport = errors.New("remote store unavailable")
)
