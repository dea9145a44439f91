package domain

import "github.com/google/uuid"

// PaymentOrder is an order created at the payment gateway.
type PaymentOrder struct {
	ID        string `json:"id"`
	Entity    string `json:"entity"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Receipt   string `json:"receipt"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

// PaymentVerification is what the client sends back after checkout.
type PaymentVerification struct {
	OrderCreationID   string    `validate:"required"`
	RazorpayPaymentID string    `validate:"required"`
	RazorpayOrderID   string
	RazorpaySignature string    `validate:"required"`
	BookingID         uuid.UUID `validate:"required"`
}
