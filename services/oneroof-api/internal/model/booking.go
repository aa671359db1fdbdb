package model

import "time"

// Booking statuses. A booking starts pending and only ever transitions to
// cancelled; confirmed and completed are reserved for future use.
const (
	StatusPending   = "pending"
	StatusCancelled = "cancelled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
)

// Booking links a user and a service to a reserved date and time. Date
// ("2006-01-02") and Time ("15:04:05.000Z") are both decomposed from one
// selected instant under a fixed UTC convention, so the pair reconstructs
// the instant without drift.
type Booking struct {
	ID        string
	UserID    string
	ServiceID string
	Date      string
	Time      string
	Status    string
	CreatedAt time.Time
}

// BookingDetail is a booking joined with its referenced service's full
// detail, as listed on the profile screen.
type BookingDetail struct {
	Booking Booking
	Service Service
}
