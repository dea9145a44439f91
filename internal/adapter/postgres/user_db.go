package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{
		db,
	}
}

const userColumns = `id, name, email, password_hash, role, city, upi_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	var role string
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.City,
		&user.UPIID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	wire, ok := domain.RoleFromStorage(role)
	if !ok {
		return nil, fmt.Errorf("unknown stored role %q", role)
	}
	user.Role = wire

	return user, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `INSERT INTO users (id, name, email, password_hash, role, city, upi_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING ` + userColumns

	created, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role.StorageValue(),
		user.City,
		user.UPIID,
	))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return nil, domain.ErrEmailTaken
			case "23502", "23514":
				return nil, domain.NewError(domain.ErrValidation, "required field is missing")
			}
		}
		return nil, err
	}
	return created, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) UpdateUserDetails(ctx context.Context, userID uuid.UUID, details domain.UserDetails) (*domain.User, error) {
	query := `UPDATE users
		SET
			name = COALESCE($1, name),
			city = COALESCE($2, city),
			upi_id = COALESCE($3, upi_id),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query,
		nullString(details.Name),
		nullString(details.City),
		nullString(details.UPIID),
		userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) DeleteUserByEmail(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE email = $1`, email)
	return err
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
