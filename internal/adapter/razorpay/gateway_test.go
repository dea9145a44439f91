package razorpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sm8ta/webike_rental_service/internal/adapter/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "rzp_test_secret", pass)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 200000, body["amount"])
		assert.Equal(t, "INR", body["currency"])
		assert.Equal(t, "booking-1", body["receipt"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_123","entity":"order","amount":200000,"currency":"INR","receipt":"booking-1","status":"created","created_at":1717200000}`))
	}))
	defer srv.Close()

	gw, err := NewGateway(srv.URL, "rzp_test_key", "rzp_test_secret", logger.NewNop())
	require.NoError(t, err)

	order, err := gw.CreateOrder(context.Background(), 200000, "INR", "booking-1")
	require.NoError(t, err)
	assert.Equal(t, "order_123", order.ID)
	assert.Equal(t, int64(200000), order.Amount)
	assert.Equal(t, "created", order.Status)
	assert.Equal(t, "rzp_test_key", gw.KeyID())
}

func TestCreateOrderGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"Authentication failed"}}`))
	}))
	defer srv.Close()

	gw, err := NewGateway(srv.URL, "k", "s", logger.NewNop())
	require.NoError(t, err)

	_, err = gw.CreateOrder(context.Background(), 100, "INR", "r")
	assert.Error(t, err)
}

func TestNewGatewayRejectsRelativeURL(t *testing.T) {
	_, err := NewGateway("api.razorpay.com", "k", "s", logger.NewNop())
	assert.Error(t, err)
}

func TestVerifySignature(t *testing.T) {
	gw, err := NewGateway("https://api.razorpay.com", "k", "secret", logger.NewNop())
	require.NoError(t, err)

	sig := Sign("secret", "order_1", "pay_1")
	assert.Len(t, sig, 64)
	assert.True(t, gw.VerifySignature("order_1", "pay_1", sig))
	assert.False(t, gw.VerifySignature("order_1", "pay_2", sig))
	assert.False(t, gw.VerifySignature("order_1", "pay_1", Sign("other", "order_1", "pay_1")))
}
