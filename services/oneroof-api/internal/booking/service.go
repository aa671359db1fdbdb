// Package booking owns the reservation lifecycle: creating bookings from
// a selected instant, listing a user's bookings joined with service
// detail, and cancelling. Cancellation transitions status to cancelled
// rather than deleting, so history is preserved; cancelled bookings are
// excluded from listings.
package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/daddycoders/oneroof/libs/appwrite"
	"github.com/daddycoders/oneroof/services/oneroof-api/internal/model"
)

// EventSink receives booking lifecycle events after the corresponding
// write has been confirmed. Delivery is best-effort.
type EventSink interface {
	BookingCreated(ctx context.Context, b *model.Booking)
	BookingCancelled(ctx context.Context, b *model.Booking)
}

type Ledger struct {
	gw     *appwrite.Client
	events EventSink
	logger *slog.Logger
}

func NewLedger(gw *appwrite.Client, events EventSink, logger *slog.Logger) *Ledger {
	return &Ledger{gw: gw, events: events, logger: logger}
}

// Attribute names match the remote collection schema; users and services
// carry the referenced document ids.
type bookingAttrs struct {
	Users    string `json:"users"`
	Services string `json:"services"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Status   string `json:"status"`
}

type bookingDoc struct {
	ID        string `json:"$id"`
	CreatedAt string `json:"$createdAt"`
	bookingAttrs
}

func (d bookingDoc) toModel() model.Booking {
	createdAt, _ := time.Parse(time.RFC3339Nano, d.CreatedAt)
	return model.Booking{
		ID:        d.ID,
		UserID:    d.Users,
		ServiceID: d.Services,
		Date:      d.Date,
		Time:      d.Time,
		Status:    d.Status,
		CreatedAt: createdAt,
	}
}

// Create persists a pending booking for the instant's UTC date and
// time-of-day. Referential integrity of the user and service ids is the
// remote store's responsibility; a rejected reference surfaces here.
// There is deliberately no slot-conflict detection: two users can book
// the same service and time, and both reservations persist.
func (l *Ledger) Create(ctx context.Context, userID, serviceID string, instant time.Time) (*model.Booking, error) {
	if userID == "" || serviceID == "" {
		return nil, fmt.Errorf("%w: user and service required", model.ErrBookingCreation)
	}

	date, clock := SplitInstant(instant)
	attrs := bookingAttrs{
		Users:    userID,
		Services: serviceID,
		Date:     date,
		Time:     clock,
		Status:   model.StatusPending,
	}

	var doc bookingDoc
	cfg := l.gw.Config()
	if err := l.gw.CreateDocument(ctx, cfg.BookingCollectionID, uuid.NewString(), attrs, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrBookingCreation, err)
	}

	b := doc.toModel()
	if l.events != nil {
		l.events.BookingCreated(ctx, &b)
	}
	return &b, nil
}

// ListForUser returns the user's non-cancelled bookings in store order,
// each joined with its referenced service's full detail at query time.
func (l *Ledger) ListForUser(ctx context.Context, userID string) ([]model.BookingDetail, error) {
	var list struct {
		Total     int          `json:"total"`
		Documents []bookingDoc `json:"documents"`
	}
	cfg := l.gw.Config()
	queries := []appwrite.Query{appwrite.Equal("users", userID)}
	if err := l.gw.ListDocuments(ctx, cfg.BookingCollectionID, queries, &list); err != nil {
		return nil, fmt.Errorf("%w: list bookings: %w", model.ErrTransport, err)
	}

	services := map[string]model.Service{}
	details := make([]model.BookingDetail, 0, len(list.Documents))
	for _, doc := range list.Documents {
		if doc.Status == model.StatusCancelled {
			continue
		}
		b := doc.toModel()
		svc, ok := services[b.ServiceID]
		if !ok {
			fetched, err := l.serviceDetail(ctx, b.ServiceID)
			if err != nil {
				return nil, err
			}
			svc = fetched
			services[b.ServiceID] = svc
		}
		details = append(details, model.BookingDetail{Booking: b, Service: svc})
	}
	return details, nil
}

func (l *Ledger) serviceDetail(ctx context.Context, serviceID string) (model.Service, error) {
	var doc struct {
		ID          string  `json:"$id"`
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Image       string  `json:"image"`
		Price       float64 `json:"price"`
		Available   bool    `json:"available"`
	}
	cfg := l.gw.Config()
	if err := l.gw.GetDocument(ctx, cfg.ServicesCollectionID, serviceID, &doc); err != nil {
		return model.Service{}, fmt.Errorf("%w: join service %s: %w", model.ErrTransport, serviceID, err)
	}
	return model.Service{
		ID:          doc.ID,
		Name:        doc.Name,
		Description: doc.Description,
		ImageURL:    doc.Image,
		Price:       doc.Price,
		Available:   doc.Available,
	}, nil
}

// Cancel transitions the booking to its terminal cancelled status.
// Cancelling an already cancelled booking succeeds without a write.
func (l *Ledger) Cancel(ctx context.Context, bookingID string) error {
	if bookingID == "" {
		return fmt.Errorf("%w: booking id required", model.ErrBookingCancellation)
	}

	cfg := l.gw.Config()
	var current bookingDoc
	if err := l.gw.GetDocument(ctx, cfg.BookingCollectionID, bookingID, &current); err != nil {
		return fmt.Errorf("%w: %s: %w", model.ErrBookingCancellation, bookingID, err)
	}
	if current.Status == model.StatusCancelled {
		return nil
	}

	var updated bookingDoc
	data := map[string]string{"status": model.StatusCancelled}
	if err := l.gw.UpdateDocument(ctx, cfg.BookingCollectionID, bookingID, data, &updated); err != nil {
		return fmt.Errorf("%w: %w", model.ErrBookingCancellation, err)
	}

	b := updated.toModel()
	if l.events != nil {
		l.events.BookingCancelled(ctx, &b)
	}
	return nil
}
