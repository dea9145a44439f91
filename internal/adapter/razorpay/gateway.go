package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-openapi/runtime"
	httptransport "github.com/go-openapi/runtime/client"
	"github.com/go-openapi/strfmt"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
	"github.com/sm8ta/webike_rental_service/internal/core/ports"
)

type Gateway struct {
	transport *httptransport.Runtime
	schemes   []string
	keyID     string
	keySecret string
	logger    ports.LoggerPort
}

var _ ports.PaymentGateway = (*Gateway)(nil)

type orderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// NewGateway talks to the orders API at baseURL, e.g. https://api.razorpay.com.
func NewGateway(baseURL, keyID, keySecret string, logger ports.LoggerPort) (*Gateway, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse payment gateway url: %w", err)
	}
	if u.Host == "" || u.Scheme == "" {
		return nil, fmt.Errorf("payment gateway url %q needs a scheme and host", baseURL)
	}

	return &Gateway{
		transport: httptransport.New(u.Host, u.Path, []string{u.Scheme}),
		schemes:   []string{u.Scheme},
		keyID:     keyID,
		keySecret: keySecret,
		logger:    logger,
	}, nil
}

func (g *Gateway) KeyID() string {
	return g.keyID
}

// CreateOrder opens an order for amount in the currency's smallest unit.
func (g *Gateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*domain.PaymentOrder, error) {
	body := &orderRequest{Amount: amount, Currency: currency, Receipt: receipt}

	result, err := g.transport.Submit(&runtime.ClientOperation{
		ID:                 "createOrder",
		Method:             http.MethodPost,
		PathPattern:        "/v1/orders",
		ProducesMediaTypes: []string{runtime.JSONMime},
		ConsumesMediaTypes: []string{runtime.JSONMime},
		Schemes:            g.schemes,
		AuthInfo:           httptransport.BasicAuth(g.keyID, g.keySecret),
		Params: runtime.ClientRequestWriterFunc(func(req runtime.ClientRequest, _ strfmt.Registry) error {
			return req.SetBodyParam(body)
		}),
		Reader: runtime.ClientResponseReaderFunc(func(resp runtime.ClientResponse, consumer runtime.Consumer) (interface{}, error) {
			if resp.Code() != http.StatusOK {
				return nil, runtime.NewAPIError("createOrder", resp.Message(), resp.Code())
			}
			order := &domain.PaymentOrder{}
			if err := consumer.Consume(resp.Body(), order); err != nil {
				return nil, err
			}
			return order, nil
		}),
		Context: ctx,
	})
	if err != nil {
		g.logger.Error("Payment gateway order failed", map[string]interface{}{
			"error":   err.Error(),
			"receipt": receipt,
		})
		return nil, fmt.Errorf("create payment order: %w", err)
	}

	order, ok := result.(*domain.PaymentOrder)
	if !ok {
		return nil, fmt.Errorf("create payment order: unexpected result %T", result)
	}
	return order, nil
}

// VerifySignature checks hex(HMAC-SHA256(secret, orderID|paymentID)) against signature.
func (g *Gateway) VerifySignature(orderID, paymentID, signature string) bool {
	expected := Sign(g.keySecret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign returns the checkout signature the gateway issues for an order/payment pair.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
