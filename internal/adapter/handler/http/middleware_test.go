package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sm8ta/webike_rental_service/internal/adapter/logger"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser(role domain.UserRole) *domain.User {
	return &domain.User{ID: uuid.New(), Name: "Asha", Email: "asha@example.com", Role: role}
}

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTTokenService("secret", time.Hour, logger.NewNop())
	user := testUser(domain.Owner)

	token, err := svc.CreateToken(user)
	require.NoError(t, err)

	payload, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, payload.UserID)
	assert.Equal(t, user.Email, payload.Email)
	assert.Equal(t, domain.Owner, payload.Role)
}

func TestJWTRejects(t *testing.T) {
	svc := NewJWTTokenService("secret", time.Hour, logger.NewNop())

	t.Run("expired", func(t *testing.T) {
		expired := NewJWTTokenService("secret", time.Hour, logger.NewNop())
		expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := expired.CreateToken(testUser(domain.Customer))
		require.NoError(t, err)

		_, err = svc.VerifyToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTTokenService("another", time.Hour, logger.NewNop())
		token, err := other.CreateToken(testUser(domain.Customer))
		require.NoError(t, err)

		_, err = svc.VerifyToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("wrong method", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, UserClaims{
			ID:   uuid.NewString(),
			Role: "customer",
		}).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = svc.VerifyToken(token)
		assert.Error(t, err)
	})

	t.Run("unknown role", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{
			ID:   uuid.NewString(),
			Role: "admin",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = svc.VerifyToken(token)
		assert.EqualError(t, err, "invalid role value")
	})

	t.Run("no expiry", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{
			ID:   uuid.NewString(),
			Role: "customer",
		}).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = svc.VerifyToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenRequiredClaimMissing)
	})
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := NewJWTTokenService("secret", time.Hour, logger.NewNop())
	user := testUser(domain.Customer)
	token, err := svc.CreateToken(user)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/customer", AuthMiddleware(svc), RestrictTo(domain.Customer), func(c *gin.Context) {
		payload, ok := getAuthPayload(c, authorizationPayloadKey)
		require.True(t, ok)
		c.String(http.StatusOK, payload.UserID.String())
	})
	router.GET("/owner", AuthMiddleware(svc), RestrictTo(domain.Owner), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"no header", "/customer", "", http.StatusUnauthorized},
		{"wrong scheme", "/customer", "Basic " + token, http.StatusUnauthorized},
		{"bad token", "/customer", "Bearer nope", http.StatusUnauthorized},
		{"allowed", "/customer", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "/customer", "bearer " + token, http.StatusOK},
		{"wrong role", "/owner", "Bearer " + token, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK && tt.path == "/customer" {
				assert.Equal(t, user.ID.String(), w.Body.String())
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.ErrEmailTaken))
	assert.Equal(t, http.StatusUnauthorized, statusFor(domain.ErrInvalidCredentials))
	assert.Equal(t, http.StatusForbidden, statusFor(domain.ErrNotBikeOwner))
	assert.Equal(t, http.StatusNotFound, statusFor(domain.ErrBikeNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(domain.ErrBookingOverlap))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
