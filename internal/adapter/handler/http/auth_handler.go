package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
	"github.com/sm8ta/webike_rental_service/internal/core/ports"
	"github.com/sm8ta/webike_rental_service/internal/core/services"
)

type AuthHandler struct {
	authService *services.AuthService
	logger      ports.LoggerPort
	metrics     ports.MetricsPort
}

type SignupRequest struct {
	Name     string `json:"name" example:"Ravi Kumar"`
	Email    string `json:"email" example:"ravi@example.com"`
	Password string `json:"password" example:"secret123"`
	Role     string `json:"role" example:"customer" enums:"customer,owner"`
	City     string `json:"city" example:"Dehradun"`
	UPIID    string `json:"upiId" example:"ravi@upi"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"ravi@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

type UpdateDetailsRequest struct {
	Name  *string `json:"name,omitempty" example:"Ravi K."`
	City  *string `json:"city,omitempty" example:"Haridwar"`
	UPIID *string `json:"upiId,omitempty" example:"ravi@okbank"`
}

type userData struct {
	User *domain.User `json:"user"`
}

func NewAuthHandler(
	authService *services.AuthService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
		metrics:     metrics,
	}
}

// @Summary Sign up
// @Description Registers a customer or an owner and returns a token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Profile"
// @Success 201 {object} successResponse
// @Failure 400 {object} errorResponse
// @Router /api/auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Failed JSON parse in signup", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	user, token, err := h.authService.Signup(c.Request.Context(), services.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		City:     req.City,
		UPIID:    req.UPIID,
	})
	if err != nil {
		handleServiceError(c, h.logger, err, "Failed to sign up")
		return
	}

	c.JSON(http.StatusCreated, successResponse{
		Status: "success",
		Token:  token,
		Data:   userData{User: user},
	})
}

// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} successResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Please provide email and password")
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if statusFor(err) == http.StatusUnauthorized {
			h.logger.Warn("Failed login attempt", map[string]interface{}{
				"ip": c.ClientIP(),
			})
		}
		handleServiceError(c, h.logger, err, "Failed to log in")
		return
	}

	c.JSON(http.StatusOK, successResponse{
		Status: "success",
		Token:  token,
		Data:   userData{User: user},
	})
}

// @Summary Log out
// @Description Tokens are stateless; the client drops its copy
// @Tags auth
// @Produce json
// @Success 200 {object} successResponse
// @Router /api/auth/logout [get]
func (h *AuthHandler) Logout(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	c.JSON(http.StatusOK, successResponse{
		Status:  "success",
		Message: "Logged out successfully",
	})
}

// @Summary Current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} successResponse
// @Failure 401 {object} errorResponse
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.authService.GetMe(c.Request.Context(), payload.UserID)
	if err != nil {
		handleServiceError(c, h.logger, err, "Failed to get current user")
		return
	}

	newSuccessResponse(c, http.StatusOK, userData{User: user})
}

// @Summary Update my details
// @Description Updates name, city and UPI id. Email, role and password are not changed here.
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body UpdateDetailsRequest true "Fields to change"
// @Success 200 {object} successResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Router /api/auth/details [put]
func (h *AuthHandler) UpdateDetails(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	user, err := h.authService.UpdateDetails(c.Request.Context(), payload.UserID, domain.UserDetails{
		Name:  req.Name,
		City:  req.City,
		UPIID: req.UPIID,
	})
	if err != nil {
		handleServiceError(c, h.logger, err, "Failed to update details")
		return
	}

	h.logger.Info("User details updated", map[string]interface{}{
		"user_id": payload.UserID,
	})

	newSuccessResponse(c, http.StatusOK, userData{User: user})
}
