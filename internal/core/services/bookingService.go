package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
	"github.com/sm8ta/webike_rental_service/internal/core/ports"
)

// BookingRequest is a renter's booking input as received from the client.
type BookingRequest struct {
	BikeID    string
	StartDate string
	EndDate   string
}

type BookingService struct {
	bookingRepo ports.BookingRepository
	bikeRepo    ports.BikeRepository
	logger      ports.LoggerPort
	validate    *validator.Validate
	cache       ports.CachePort
}

func NewBookingService(
	bookingRepo ports.BookingRepository,
	bikeRepo ports.BikeRepository,
	logger ports.LoggerPort,
	validate *validator.Validate,
	cache ports.CachePort,
) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		bikeRepo:    bikeRepo,
		logger:      logger,
		validate:    validate,
		cache:       cache,
	}
}

// CreateBooking books a bike for renterID. The total price covers every day of the range, both ends included.
func (s *BookingService) CreateBooking(ctx context.Context, renterID uuid.UUID, req BookingRequest) (*domain.Booking, error) {
	bikeID, err := parseID(req.BikeID, "bike")
	if err != nil {
		return nil, err
	}
	startDate, err := domain.ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := domain.ParseDate(req.EndDate)
	if err != nil {
		return nil, err
	}

	bike, err := s.bikeRepo.GetBikeByID(ctx, bikeID)
	if err != nil {
		return nil, err
	}
	if !bike.Available {
		return nil, domain.ErrBikeUnavailable
	}

	totalPrice, err := domain.TotalPrice(bike.Price, startDate, endDate)
	if err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ID:            uuid.New(),
		BikeID:        bikeID,
		UserID:        renterID,
		StartDate:     startDate,
		EndDate:       endDate,
		TotalPrice:    totalPrice,
		Status:        domain.BookingPending,
		PaymentStatus: domain.PaymentPending,
	}
	if err := s.validate.Struct(booking); err != nil {
		s.logger.Error("Booking validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, domain.Validation(err)
	}

	created, err := s.bookingRepo.CreateBooking(ctx, booking)
	if err != nil {
		if !errors.Is(err, domain.ErrConflict) && !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to create booking", map[string]interface{}{
				"error":   err.Error(),
				"bike_id": bikeID,
				"user_id": renterID,
			})
		}
		return nil, err
	}

	invalidate(s.cache, s.logger, bikeCacheKey(bikeID))

	s.logger.Info("Booking created successfully", map[string]interface{}{
		"booking_id":  created.ID,
		"bike_id":     bikeID,
		"user_id":     renterID,
		"total_price": created.TotalPrice,
	})

	return created, nil
}

func (s *BookingService) GetMyBookings(ctx context.Context, renterID uuid.UUID) ([]*domain.Booking, error) {
	bookings, err := s.bookingRepo.GetBookingsByUserID(ctx, renterID)
	if err != nil {
		s.logger.Error("Failed to get bookings", map[string]interface{}{
			"error":   err.Error(),
			"user_id": renterID,
		})
		return nil, err
	}
	return bookings, nil
}

// GetOwnerBookings returns the bookings made against any bike owned by ownerID.
func (s *BookingService) GetOwnerBookings(ctx context.Context, ownerID uuid.UUID) ([]*domain.Booking, error) {
	bikes, err := s.bikeRepo.ListBikes(ctx, ports.BikeFilter{OwnerID: ownerID})
	if err != nil {
		s.logger.Error("Failed to get owner bikes", map[string]interface{}{
			"error":    err.Error(),
			"owner_id": ownerID,
		})
		return nil, err
	}
	if len(bikes) == 0 {
		return []*domain.Booking{}, nil
	}

	bikeIDs := make([]uuid.UUID, len(bikes))
	for i, bike := range bikes {
		bikeIDs[i] = bike.ID
	}

	bookings, err := s.bookingRepo.GetBookingsByBikeIDs(ctx, bikeIDs)
	if err != nil {
		s.logger.Error("Failed to get bike bookings", map[string]interface{}{
			"error":    err.Error(),
			"owner_id": ownerID,
		})
		return nil, err
	}

	return bookings, nil
}

// GetBooking returns a booking to its renter or to the owner of the booked bike.
func (s *BookingService) GetBooking(ctx context.Context, requesterID uuid.UUID, bookingID string) (*domain.Booking, error) {
	id, err := parseID(bookingID, "booking")
	if err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.UserID != requesterID && !ownsBookedBike(booking, requesterID) {
		s.logger.Warn("Access denied to booking", map[string]interface{}{
			"requester_id": requesterID.String(),
			"booking_id":   bookingID,
		})
		return nil, domain.ErrNotBookingParty
	}

	return booking, nil
}

// UpdateStatus moves a booking to status on behalf of the bike owner.
func (s *BookingService) UpdateStatus(ctx context.Context, ownerID uuid.UUID, bookingID string, status string) (*domain.Booking, error) {
	id, err := parseID(bookingID, "booking")
	if err != nil {
		return nil, err
	}
	next, err := domain.ParseBookingStatus(status)
	if err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !ownsBookedBike(booking, ownerID) {
		s.logger.Warn("Access denied to update booking", map[string]interface{}{
			"requester_id": ownerID.String(),
			"booking_id":   bookingID,
		})
		return nil, domain.NewError(domain.ErrForbidden, "You can only update bookings for your own bikes")
	}

	if !domain.CanTransition(booking.Status, next) {
		return nil, domain.NewError(domain.ErrValidation,
			fmt.Sprintf("Cannot change booking status from %s to %s", booking.Status, next))
	}

	updated, err := s.bookingRepo.UpdateBookingStatus(ctx, id, booking.Status, next, "")
	if err != nil {
		s.logger.Error("Failed to update booking status", map[string]interface{}{
			"error":      err.Error(),
			"booking_id": bookingID,
		})
		return nil, err
	}

	invalidate(s.cache, s.logger, bikeCacheKey(booking.BikeID))

	s.logger.Info("Booking status updated", map[string]interface{}{
		"booking_id": bookingID,
		"from":       booking.Status,
		"to":         next,
	})

	return updated, nil
}

func ownsBookedBike(booking *domain.Booking, userID uuid.UUID) bool {
	return booking.Bike != nil && booking.Bike.OwnerID == userID
}
