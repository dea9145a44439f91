package services

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sm8ta/webike_rental_service/internal/adapter/logger"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	amount   int64
	currency string
	receipt  string
	err      error
}

func (g *fakeGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string) (*domain.PaymentOrder, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.amount, g.currency, g.receipt = amount, currency, receipt
	return &domain.PaymentOrder{
		ID:       "order_test",
		Entity:   "order",
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return signature == orderID+"|"+paymentID
}

func (g *fakeGateway) KeyID() string {
	return "rzp_test_key"
}

type paymentFixture struct {
	env      *testEnv
	gateway  *fakeGateway
	payments *PaymentService
	renter   *domain.User
	owner    *domain.User
	booking  *domain.Booking
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	env := newTestEnv(t)
	gateway := &fakeGateway{}
	owner := env.user(t, domain.Owner)
	renter := env.user(t, domain.Customer)
	bike := env.bike(t, owner, 500)

	booking, err := env.bookings.CreateBooking(context.Background(), renter.ID, BookingRequest{
		BikeID: bike.ID.String(), StartDate: "2024-06-01", EndDate: "2024-06-04",
	})
	require.NoError(t, err)

	return &paymentFixture{
		env:      env,
		gateway:  gateway,
		payments: NewPaymentService(env.store, gateway, logger.NewNop(), validator.New()),
		renter:   renter,
		owner:    owner,
		booking:  booking,
	}
}

func (f *paymentFixture) verification(signature string) domain.PaymentVerification {
	return domain.PaymentVerification{
		OrderCreationID:   "order_test",
		RazorpayPaymentID: "pay_test",
		RazorpayOrderID:   "order_test",
		RazorpaySignature: signature,
		BookingID:         f.booking.ID,
	}
}

func TestCreatePaymentOrder(t *testing.T) {
	f := newPaymentFixture(t)

	order, key, err := f.payments.CreateOrder(context.Background(), f.renter.ID, f.booking.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "rzp_test_key", key)
	assert.Equal(t, int64(200000), order.Amount)
	assert.Equal(t, "INR", f.gateway.currency)
	assert.Equal(t, f.booking.ID.String(), f.gateway.receipt)
}

func TestCreatePaymentOrderErrors(t *testing.T) {
	f := newPaymentFixture(t)

	_, _, err := f.payments.CreateOrder(context.Background(), f.owner.ID, f.booking.ID.String())
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, _, err = f.payments.CreateOrder(context.Background(), f.renter.ID, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f.gateway.err = errors.New("gateway down")
	_, _, err = f.payments.CreateOrder(context.Background(), f.renter.ID, f.booking.ID.String())
	assert.EqualError(t, err, "gateway down")
}

func TestVerifyPayment(t *testing.T) {
	f := newPaymentFixture(t)

	booking, err := f.payments.VerifyPayment(context.Background(), f.renter.ID, f.verification("order_test|pay_test"))
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, booking.Status)
	assert.Equal(t, domain.PaymentCompleted, booking.PaymentStatus)

	// the bike stays reserved by the confirmed booking
	bike, err := f.env.store.GetBikeByID(context.Background(), f.booking.BikeID)
	require.NoError(t, err)
	assert.False(t, bike.Available)

	again, err := f.payments.VerifyPayment(context.Background(), f.renter.ID, f.verification("order_test|pay_test"))
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, again.Status)
}

func TestVerifyPaymentLosesToConcurrentCancel(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	racing := &racingStore{Store: f.env.store}
	racing.afterBookingRead = func() {
		_, err := f.env.bookings.UpdateStatus(ctx, f.owner.ID, f.booking.ID.String(), "cancelled")
		require.NoError(t, err)
	}
	payments := NewPaymentService(racing, f.gateway, logger.NewNop(), validator.New())

	_, err := payments.VerifyPayment(ctx, f.renter.ID, f.verification("order_test|pay_test"))
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, err, domain.ErrBookingChanged)

	booking, err := f.env.store.GetBookingByID(ctx, f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, booking.Status)
	assert.Equal(t, domain.PaymentPending, booking.PaymentStatus)

	bike, err := f.env.store.GetBikeByID(ctx, f.booking.BikeID)
	require.NoError(t, err)
	assert.True(t, bike.Available)
}

func TestVerifyPaymentRejected(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.payments.VerifyPayment(context.Background(), f.renter.ID, f.verification("forged"))
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)

	stored, err := f.env.store.GetBookingByID(context.Background(), f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, stored.PaymentStatus)

	_, err = f.payments.VerifyPayment(context.Background(), f.owner.ID, f.verification("order_test|pay_test"))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	missing := f.verification("order_test|pay_test")
	missing.RazorpayPaymentID = ""
	_, err = f.payments.VerifyPayment(context.Background(), f.renter.ID, missing)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.env.bookings.UpdateStatus(context.Background(), f.owner.ID, f.booking.ID.String(), "cancelled")
	require.NoError(t, err)
	_, err = f.payments.VerifyPayment(context.Background(), f.renter.ID, f.verification("order_test|pay_test"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}
