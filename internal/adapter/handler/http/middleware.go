package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
	"github.com/sm8ta/webike_rental_service/internal/core/ports"
)

const (
	authorizationHeaderKey  = "Authorization"
	authorizationTypeBearer = "bearer"
	authorizationPayloadKey = "authorization_payload"
)

// AuthMiddleware requires a valid bearer token and stores its payload in the context.
func AuthMiddleware(tokenService ports.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(authorizationHeaderKey)
		if header == "" {
			newErrorResponse(c, http.StatusUnauthorized, "You are not logged in. Please log in to get access.")
			return
		}

		fields := strings.Fields(header)
		if len(fields) != 2 || strings.ToLower(fields[0]) != authorizationTypeBearer {
			newErrorResponse(c, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		payload, err := tokenService.VerifyToken(fields[1])
		if err != nil {
			newErrorResponse(c, http.StatusUnauthorized, "Invalid token or authorization error")
			return
		}

		c.Set(authorizationPayloadKey, payload)
		c.Next()
	}
}

// RestrictTo lets only the given roles through. It must run after AuthMiddleware.
func RestrictTo(roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, exists := getAuthPayload(c, authorizationPayloadKey)
		if !exists {
			newErrorResponse(c, http.StatusUnauthorized, "You are not logged in. Please log in to get access.")
			return
		}
		for _, role := range roles {
			if payload.Role == role {
				c.Next()
				return
			}
		}
		newErrorResponse(c, http.StatusForbidden, "You do not have permission to perform this action")
	}
}

func getAuthPayload(c *gin.Context, key string) (*domain.TokenPayload, bool) {
	value, exists := c.Get(key)
	if !exists {
		return nil, false
	}
	payload, ok := value.(*domain.TokenPayload)
	return payload, ok
}
