package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
	"github.com/sm8ta/webike_rental_service/internal/core/ports"
	"github.com/sm8ta/webike_rental_service/internal/core/services"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
	logger         ports.LoggerPort
	metrics        ports.MetricsPort
}

type CreateOrderRequest struct {
	BookingID string `json:"bookingId" binding:"required"`
}

type VerifyPaymentRequest struct {
	OrderCreationID   string `json:"orderCreationId"`
	RazorpayPaymentID string `json:"razorpayPaymentId"`
	RazorpayOrderID   string `json:"razorpayOrderId"`
	RazorpaySignature string `json:"razorpaySignature"`
	BookingID         string `json:"bookingId"`
}

type orderData struct {
	Order *domain.PaymentOrder `json:"order"`
	Key   string               `json:"key"`
}

func NewPaymentHandler(
	paymentService *services.PaymentService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
		metrics:        metrics,
	}
}

// @Summary Create a payment order
// @Description Opens a gateway order for the booking total, in paise
// @Tags payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateOrderRequest true "Booking"
// @Success 200 {object} successResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/payments/create-order [post]
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Please provide bookingId")
		return
	}

	order, key, err := h.paymentService.CreateOrder(c.Request.Context(), payload.UserID, req.BookingID)
	if err != nil {
		handleServiceError(c, h.logger, err, "Failed to create payment order")
		return
	}

	newSuccessResponse(c, http.StatusOK, orderData{Order: order, Key: key})
}

// @Summary Verify a payment
// @Description Checks the checkout signature and confirms the booking
// @Tags payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body VerifyPaymentRequest true "Checkout result"
// @Success 200 {object} successResponse
// @Failure 400 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Router /api/payments/verify [post]
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	booking, err := h.paymentService.VerifyPayment(c.Request.Context(), payload.UserID, domain.PaymentVerification{
		OrderCreationID:   req.OrderCreationID,
		RazorpayPaymentID: req.RazorpayPaymentID,
		RazorpayOrderID:   req.RazorpayOrderID,
		RazorpaySignature: req.RazorpaySignature,
		BookingID:         bookingID,
	})
	if err != nil {
		handleServiceError(c, h.logger, err, "Failed to verify payment")
		return
	}

	h.metrics.IncBookingStatus(string(booking.Status))
	c.JSON(http.StatusOK, successResponse{
		Status:  "success",
		Message: "Payment verified successfully",
		Data:    bookingData{Booking: booking},
	})
}
