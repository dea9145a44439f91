package services

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
	"github.com/sm8ta/webike_rental_service/internal/core/ports"
)

const paymentCurrency = "INR"

type PaymentService struct {
	bookingRepo ports.BookingRepository
	gateway     ports.PaymentGateway
	logger      ports.LoggerPort
	validate    *validator.Validate
}

func NewPaymentService(
	bookingRepo ports.BookingRepository,
	gateway ports.PaymentGateway,
	logger ports.LoggerPort,
	validate *validator.Validate,
) *PaymentService {
	return &PaymentService{
		bookingRepo: bookingRepo,
		gateway:     gateway,
		logger:      logger,
		validate:    validate,
	}
}

// CreateOrder opens a gateway order for the booking total. Amounts are sent in paise.
// It returns the order and the public gateway key the client checkout needs.
func (s *PaymentService) CreateOrder(ctx context.Context, renterID uuid.UUID, bookingID string) (*domain.PaymentOrder, string, error) {
	booking, err := s.renterBooking(ctx, renterID, bookingID)
	if err != nil {
		return nil, "", err
	}

	order, err := s.gateway.CreateOrder(ctx, booking.TotalPrice*100, paymentCurrency, booking.ID.String())
	if err != nil {
		s.logger.Error("Failed to create payment order", map[string]interface{}{
			"error":      err.Error(),
			"booking_id": bookingID,
		})
		return nil, "", err
	}

	s.logger.Info("Payment order created", map[string]interface{}{
		"booking_id": bookingID,
		"order_id":   order.ID,
		"amount":     order.Amount,
	})

	return order, s.gateway.KeyID(), nil
}

// VerifyPayment checks the checkout signature and marks the booking confirmed and paid.
func (s *PaymentService) VerifyPayment(ctx context.Context, renterID uuid.UUID, v domain.PaymentVerification) (*domain.Booking, error) {
	if err := s.validate.Struct(v); err != nil {
		return nil, domain.Validation(err)
	}

	if !s.gateway.VerifySignature(v.OrderCreationID, v.RazorpayPaymentID, v.RazorpaySignature) {
		s.logger.Warn("Payment signature mismatch", map[string]interface{}{
			"booking_id": v.BookingID,
			"order_id":   v.OrderCreationID,
		})
		return nil, domain.ErrInvalidSignature
	}

	booking, err := s.renterBooking(ctx, renterID, v.BookingID.String())
	if err != nil {
		return nil, err
	}

	if booking.Status != domain.BookingConfirmed && !domain.CanTransition(booking.Status, domain.BookingConfirmed) {
		return nil, domain.NewError(domain.ErrValidation, "Booking can no longer be paid for")
	}

	updated, err := s.bookingRepo.UpdateBookingStatus(ctx, booking.ID, booking.Status, domain.BookingConfirmed, domain.PaymentCompleted)
	if err != nil {
		s.logger.Error("Failed to record payment", map[string]interface{}{
			"error":      err.Error(),
			"booking_id": booking.ID,
		})
		return nil, err
	}

	s.logger.Info("Payment verified successfully", map[string]interface{}{
		"booking_id": booking.ID,
		"payment_id": v.RazorpayPaymentID,
	})

	return updated, nil
}

func (s *PaymentService) renterBooking(ctx context.Context, renterID uuid.UUID, bookingID string) (*domain.Booking, error) {
	id, err := parseID(bookingID, "booking")
	if err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.UserID != renterID {
		s.logger.Warn("Access denied to booking payment", map[string]interface{}{
			"requester_id": renterID.String(),
			"booking_id":   bookingID,
		})
		return nil, domain.NewError(domain.ErrForbidden, "You can only pay for your own bookings")
	}

	return booking, nil
}
