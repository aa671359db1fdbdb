// Package profile ties the identity store and the booking ledger together
// for the profile screen: the current user, their bookings, and sign-out.
package profile

import (
	"context"

	"github.com/daddycoders/oneroof/services/oneroof-api/internal/booking"
	"github.com/daddycoders/oneroof/services/oneroof-api/internal/identity"
	"github.com/daddycoders/oneroof/services/oneroof-api/internal/model"
)

type Facade struct {
	identity *identity.Service
	bookings *booking.Ledger
}

func New(identitySvc *identity.Service, ledger *booking.Ledger) *Facade {
	return &Facade{identity: identitySvc, bookings: ledger}
}

// CurrentUser resolves the user behind the session secret; ok is false
// for the unauthenticated outcome.
func (f *Facade) CurrentUser(ctx context.Context, sessionSecret string) (*model.User, bool, error) {
	return f.identity.ResolveCurrentUser(ctx, sessionSecret)
}

// RefreshBookings re-lists the user's bookings. Idempotent and uncached:
// every call round-trips to the remote store, which is what pull-to-refresh
// semantics require.
func (f *Facade) RefreshBookings(ctx context.Context, userID string) ([]model.BookingDetail, error) {
	return f.bookings.ListForUser(ctx, userID)
}

// SignOut invalidates the session. The caller drops any user reference it
// holds; nothing is cached here.
func (f *Facade) SignOut(ctx context.Context, sessionSecret string) error {
	return f.identity.EndSession(ctx, sessionSecret)
}
