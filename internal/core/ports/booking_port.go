package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
)

type BookingRepository interface {
	// CreateBooking reserves the bike and inserts the booking as one unit of work.
	// It fails with ErrBikeNotFound, ErrBikeUnavailable or ErrBookingOverlap.
	CreateBooking(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetBookingByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error)
	GetBookingsByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Booking, error)
	GetBookingsByBikeIDs(ctx context.Context, bikeIDs []uuid.UUID) ([]*domain.Booking, error)
	// UpdateBookingStatus moves a booking from the status from to status (and writes paymentStatus unless
	// empty) and, when the new status releases the bike, recomputes the bike availability in the same
	// unit of work. It fails with ErrBookingChanged when the stored status is no longer from.
	UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, from, status domain.BookingStatus, paymentStatus domain.PaymentStatus) (*domain.Booking, error)
}
