package http

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
	"github.com/sm8ta/webike_rental_service/internal/core/ports"
)

// UserClaims are the claims carried by an access token.
type UserClaims struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type JWTTokenService struct {
	secretKey []byte
	duration  time.Duration
	logger    ports.LoggerPort
	now       func() time.Time
}

var _ ports.TokenService = (*JWTTokenService)(nil)

func NewJWTTokenService(secretKey string, duration time.Duration, logger ports.LoggerPort) *JWTTokenService {
	return &JWTTokenService{
		secretKey: []byte(secretKey),
		duration:  duration,
		logger:    logger,
		now:       time.Now,
	}
}

func (j *JWTTokenService) CreateToken(user *domain.User) (string, error) {
	now := j.now()
	claims := UserClaims{
		ID:    user.ID.String(),
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.duration)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secretKey)
	if err != nil {
		j.logger.Error("Failed to sign jwt", map[string]interface{}{
			"error":  err.Error(),
			"method": "CreateToken",
		})
		return "", err
	}
	return token, nil
}

// VerifyToken parses an HS256 token and returns its principal.
func (j *JWTTokenService) VerifyToken(token string) (*domain.TokenPayload, error) {
	parsedToken, err := jwt.ParseWithClaims(token, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return j.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired(), jwt.WithTimeFunc(j.now))
	if err != nil {
		j.logger.Warn("Failed to parse jwt", map[string]interface{}{
			"error":  err.Error(),
			"method": "VerifyToken",
		})
		return nil, err
	}

	claims, ok := parsedToken.Claims.(*UserClaims)
	if !ok || !parsedToken.Valid {
		j.logger.Error("Failed claims from token", map[string]interface{}{
			"method": "VerifyToken",
		})
		return nil, errors.New("failed to verify")
	}

	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, errors.New("invalid parse id")
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil || claims.Role == "" {
		j.logger.Warn("Invalid role in token", map[string]interface{}{
			"role":   claims.Role,
			"method": "VerifyToken",
		})
		return nil, errors.New("invalid role value")
	}

	payload := &domain.TokenPayload{
		UserID: id,
		Name:   claims.Name,
		Email:  claims.Email,
		Role:   role,
	}

	return payload, nil
}
