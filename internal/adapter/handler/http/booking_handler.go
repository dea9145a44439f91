package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
	"github.com/sm8ta/webike_rental_service/internal/core/ports"
	"github.com/sm8ta/webike_rental_service/internal/core/services"
)

type BookingHandler struct {
	bookingService *services.BookingService
	logger         ports.LoggerPort
	metrics        ports.MetricsPort
}

type CreateBookingRequest struct {
	Bike      string `json:"bike" example:"7d0c8d0e-1f6b-4f43-9b0e-5b7a0b3b1c11"`
	BikeID    string `json:"bikeId,omitempty"`
	StartDate string `json:"startDate" binding:"required" example:"2024-06-01"`
	EndDate   string `json:"endDate" binding:"required" example:"2024-06-04"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" example:"confirmed" enums:"pending,confirmed,completed,cancelled"`
}

type bookingData struct {
	Booking *domain.Booking `json:"booking"`
}

type bookingsData struct {
	Bookings []*domain.Booking `json:"bookings"`
}

func NewBookingHandler(
	bookingService *services.BookingService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		logger:         logger,
		metrics:        metrics,
	}
}

// @Summary Book a bike
// @Description Creates a pending booking and reserves the bike. Overlapping active bookings are rejected.
// @Tags bookings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateBookingRequest true "Bike and inclusive date range"
// @Success 201 {object} successResponse
// @Failure 400 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /api/bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Please provide bike, startDate and endDate")
		return
	}
	bikeID := req.Bike
	if bikeID == "" {
		bikeID = req.BikeID
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), payload.UserID, services.BookingRequest{
		BikeID:    bikeID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		handleServiceError(c, h.logger, err, "Failed to create booking")
		return
	}

	h.metrics.IncBookingStatus(string(booking.Status))
	newSuccessResponse(c, http.StatusCreated, bookingData{Booking: booking})
}

// @Summary My bookings
// @Tags bookings
// @Security BearerAuth
// @Produce json
// @Success 200 {object} successResponse
// @Router /api/bookings/my-bookings [get]
func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bookings, err := h.bookingService.GetMyBookings(c.Request.Context(), payload.UserID)
	if err != nil {
		handleServiceError(c, h.logger, err, "Failed to get bookings")
		return
	}

	newListResponse(c, len(bookings), bookingsData{Bookings: bookings})
}

// @Summary Bookings of my bikes
// @Tags bookings
// @Security BearerAuth
// @Produce json
// @Success 200 {object} successResponse
// @Failure 403 {object} errorResponse
// @Router /api/bookings/my-bike-bookings [get]
func (h *BookingHandler) GetMyBikeBookings(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bookings, err := h.bookingService.GetOwnerBookings(c.Request.Context(), payload.UserID)
	if err != nil {
		handleServiceError(c, h.logger, err, "Failed to get bike bookings")
		return
	}

	newListResponse(c, len(bookings), bookingsData{Bookings: bookings})
}

// @Summary Get a booking
// @Description Visible to the renter and to the owner of the booked bike
// @Tags bookings
// @Security BearerAuth
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} successResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), payload.UserID, c.Param("id"))
	if err != nil {
		handleServiceError(c, h.logger, err, "Failed to get booking")
		return
	}

	newSuccessResponse(c, http.StatusOK, bookingData{Booking: booking})
}

// @Summary Update booking status
// @Description Owner of the booked bike moves the booking along its lifecycle
// @Tags bookings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} successResponse
// @Failure 400 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/bookings/{id}/status [patch]
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Please provide status")
		return
	}

	booking, err := h.bookingService.UpdateStatus(c.Request.Context(), payload.UserID, c.Param("id"), req.Status)
	if err != nil {
		handleServiceError(c, h.logger, err, "Failed to update booking status")
		return
	}

	h.metrics.IncBookingStatus(string(booking.Status))
	newSuccessResponse(c, http.StatusOK, bookingData{Booking: booking})
}
