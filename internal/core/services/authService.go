package services

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
	"github.com/sm8ta/webike_rental_service/internal/core/ports"
	"golang.org/x/crypto/bcrypt"
)

// SignupInput is the profile a new user registers with.
type SignupInput struct {
	Name     string `validate:"required,max=100"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6,max=72"`
	Role     string
	City     string `validate:"max=100"`
	UPIID    string `validate:"max=100"`
}

type AuthService struct {
	userRepo   ports.UserRepository
	tokens     ports.TokenService
	logger     ports.LoggerPort
	validate   *validator.Validate
	bcryptCost int
}

func NewAuthService(
	userRepo ports.UserRepository,
	tokens ports.TokenService,
	logger ports.LoggerPort,
	validate *validator.Validate,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokens:     tokens,
		logger:     logger,
		validate:   validate,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Signup registers a user and returns it with a signed token.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.User, string, error) {
	in.Email = normalizeEmail(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, "", domain.Validation(err)
	}

	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error("Failed to hash password", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, "", err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
		City:         strings.TrimSpace(in.City),
		UPIID:        strings.TrimSpace(in.UPIID),
	}

	created, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		if !errors.Is(err, domain.ErrValidation) {
			s.logger.Error("Failed to create user", map[string]interface{}{
				"error": err.Error(),
				"email": user.Email,
			})
		}
		return nil, "", err
	}

	token, err := s.tokens.CreateToken(created)
	if err != nil {
		s.logger.Error("Failed to sign token", map[string]interface{}{
			"error":   err.Error(),
			"user_id": created.ID,
		})
		return nil, "", err
	}

	s.logger.Info("User signed up", map[string]interface{}{
		"user_id": created.ID,
		"role":    created.Role,
	})

	return created, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", domain.NewError(domain.ErrValidation, "Please provide email and password")
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("Invalid password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.CreateToken(user)
	if err != nil {
		s.logger.Error("Failed to sign token", map[string]interface{}{
			"error":   err.Error(),
			"user_id": user.ID,
		})
		return nil, "", err
	}

	return user, token, nil
}

// GetMe resolves the principal of a verified token to its stored user.
func (s *AuthService) GetMe(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewError(domain.ErrUnauthorized, "The user belonging to this token no longer exists.")
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) UpdateDetails(ctx context.Context, userID uuid.UUID, details domain.UserDetails) (*domain.User, error) {
	check := struct {
		Name  string `validate:"max=100"`
		City  string `validate:"max=100"`
		UPIID string `validate:"max=100"`
	}{}
	if details.Name != nil {
		name := strings.TrimSpace(*details.Name)
		if name == "" {
			return nil, domain.NewError(domain.ErrValidation, "Name must not be empty")
		}
		details.Name = &name
		check.Name = name
	}
	if details.City != nil {
		check.City = *details.City
	}
	if details.UPIID != nil {
		check.UPIID = *details.UPIID
	}
	if err := s.validate.Struct(check); err != nil {
		return nil, domain.Validation(err)
	}

	user, err := s.userRepo.UpdateUserDetails(ctx, userID, details)
	if err != nil {
		s.logger.Error("Failed to update user details", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		return nil, err
	}

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
