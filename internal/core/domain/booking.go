package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// allowed transitions; completed and cancelled are terminal
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled, BookingCompleted},
	BookingConfirmed: {BookingCancelled, BookingCompleted},
}

type Booking struct {
	ID            uuid.UUID      `json:"_id"`
	BikeID        uuid.UUID      `json:"bikeId" validate:"required"`
	UserID        uuid.UUID      `json:"userId" validate:"required"`
	StartDate     time.Time      `json:"startDate" validate:"required"`
	EndDate       time.Time      `json:"endDate" validate:"required"`
	TotalPrice    int64          `json:"totalPrice" validate:"gt=0"`
	Status        BookingStatus  `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
	PaymentStatus PaymentStatus  `json:"paymentStatus" validate:"required,oneof=pending completed failed"`
	Bike          *BookingBike   `json:"bike,omitempty"`
	User          *BookingRenter `json:"user,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// BookingBike is the listing summary attached to a booking.
type BookingBike struct {
	ID      uuid.UUID `json:"_id"`
	OwnerID uuid.UUID `json:"ownerId"`
	Title   string    `json:"title"`
	Image   string    `json:"image"`
	Price   int64     `json:"price"`
	Cities  []string  `json:"city"`
	Address string    `json:"address"`
}

// BookingRenter is the renter summary attached to a booking.
type BookingRenter struct {
	ID    uuid.UUID `json:"_id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// IsActive reports whether the booking still holds its bike.
func (s BookingStatus) IsActive() bool {
	return s == BookingPending || s == BookingConfirmed
}

// ReleasesBike reports whether moving into s frees the bike.
func (s BookingStatus) ReleasesBike() bool {
	return s == BookingCompleted || s == BookingCancelled
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return status, nil
	}
	return "", NewError(ErrValidation, "Status must be one of: pending, confirmed, completed, cancelled")
}

// CanTransition reports whether a booking in from may move to to.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// RentalDays counts the billed days of a rental, both endpoints included.
func RentalDays(start, end time.Time) int64 {
	days := math.Ceil(end.Sub(start).Hours() / 24)
	return int64(days) + 1
}

// TotalPrice prices a rental. end before start is rejected.
func TotalPrice(pricePerDay int64, start, end time.Time) (int64, error) {
	if end.Before(start) {
		return 0, NewError(ErrValidation, "End date must not be before start date")
	}
	return pricePerDay * RentalDays(start, end), nil
}

// Overlaps reports whether the inclusive ranges [aStart, aEnd] and [bStart, bEnd] share a day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate accepts a calendar date (YYYY-MM-DD) or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, NewError(ErrValidation, "Dates must be formatted as YYYY-MM-DD or RFC 3339")
}
