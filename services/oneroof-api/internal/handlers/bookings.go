package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/daddycoders/oneroof/services/oneroof-api/internal/booking"
	"github.com/daddycoders/oneroof/services/oneroof-api/internal/model"
	"github.com/daddycoders/oneroof/services/oneroof-api/internal/profile"
)

type BookingHandler struct {
	ledger  *booking.Ledger
	profile *profile.Facade
	logger  *slog.Logger
}

func NewBookingHandler(ledger *booking.Ledger, facade *profile.Facade, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{ledger: ledger, profile: facade, logger: logger}
}

type createBookingRequest struct {
	ServiceID string `json:"service_id"`
	StartTime string `json:"start_time"`
}

type bookingItem struct {
	ID          string      `json:"id"`
	ServiceID   string      `json:"service_id"`
	Date        string      `json:"date"`
	Time        string      `json:"time"`
	Status      string      `json:"status"`
	DisplayDate string      `json:"display_date,omitempty"`
	DisplayTime string      `json:"display_time,omitempty"`
	Service     *serviceItem `json:"service,omitempty"`
}

type cancelBookingRequest struct {
	BookingID string `json:"booking_id"`
}

// currentUser authenticates the request from its session header. A false
// return means the response has already been written.
func (h *BookingHandler) currentUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user, ok, err := h.profile.CurrentUser(r.Context(), sessionSecret(r))
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return nil, false
	}
	return user, true
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	if req.ServiceID == "" {
		http.Error(w, "service_id required", http.StatusBadRequest)
		return
	}
	instant, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		http.Error(w, "invalid start_time", http.StatusBadRequest)
		return
	}

	b, err := h.ledger.Create(r.Context(), user.ID, req.ServiceID, instant)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, bookingItem{
		ID:        b.ID,
		ServiceID: b.ServiceID,
		Date:      b.Date,
		Time:      b.Time,
		Status:    b.Status,
	})
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	details, err := h.profile.RefreshBookings(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]bookingItem, 0, len(details))
	for _, d := range details {
		item := bookingItem{
			ID:        d.Booking.ID,
			ServiceID: d.Booking.ServiceID,
			Date:      d.Booking.Date,
			Time:      d.Booking.Time,
			Status:    d.Booking.Status,
		}
		if displayDate, displayTime, err := booking.DisplayDateTime(d.Booking.Date, d.Booking.Time); err == nil {
			item.DisplayDate = displayDate
			item.DisplayTime = displayTime
		} else {
			h.logger.Warn("unformattable booking date/time",
				"booking_id", d.Booking.ID, "err", err)
		}
		svc := toServiceItem(d.Service)
		item.Service = &svc
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":    len(items),
		"bookings": items,
	})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, ok := h.currentUser(w, r); !ok {
		return
	}

	var req cancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BookingID = strings.TrimSpace(req.BookingID)
	if req.BookingID == "" {
		http.Error(w, "booking_id required", http.StatusBadRequest)
		return
	}

	if err := h.ledger.Cancel(r.Context(), req.BookingID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"booking_id": req.BookingID,
		"status":     model.StatusCancelled,
	})
}
