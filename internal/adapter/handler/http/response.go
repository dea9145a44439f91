package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
	"github.com/sm8ta/webike_rental_service/internal/core/ports"
)

type errorResponse struct {
	Status  string `json:"status" example:"fail"`
	Message string `json:"message" example:"No bike found with that ID"`
}

type successResponse struct {
	Status  string      `json:"status" example:"success"`
	Results *int        `json:"results,omitempty"`
	Message string      `json:"message,omitempty"`
	Token   string      `json:"token,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func newErrorResponse(c *gin.Context, statusCode int, message string) {
	status := "fail"
	if statusCode >= http.StatusInternalServerError {
		status = "error"
	}
	c.AbortWithStatusJSON(statusCode, errorResponse{
		Status:  status,
		Message: message,
	})
}

func newSuccessResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, successResponse{
		Status: "success",
		Data:   data,
	})
}

func newListResponse(c *gin.Context, results int, data interface{}) {
	c.JSON(http.StatusOK, successResponse{
		Status:  "success",
		Results: &results,
		Data:    data,
	})
}

var errorStatuses = []struct {
	kind   error
	status int
}{
	{domain.ErrValidation, http.StatusBadRequest},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrConflict, http.StatusConflict},
}

// statusFor maps a service error to its HTTP status. Unknown errors are 500.
func statusFor(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.kind) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// handleServiceError writes err as a JSON error. Internal errors are logged and their text is not exposed.
func handleServiceError(c *gin.Context, logger ports.LoggerPort, err error, msg string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(msg, map[string]interface{}{
			"error":  err.Error(),
			"path":   c.FullPath(),
			"method": c.Request.Method,
		})
		newErrorResponse(c, status, "Internal server error")
		return
	}

	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		newErrorResponse(c, status, domainErr.Message)
		return
	}
	newErrorResponse(c, status, err.Error())
}
