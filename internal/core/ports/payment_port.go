package ports

import (
	"context"

	"github.com/sm8ta/webike_rental_service/internal/core/domain"
)

type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*domain.PaymentOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
}
