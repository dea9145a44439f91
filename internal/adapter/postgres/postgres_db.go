package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
	"github.com/sm8ta/webike_rental_service/internal/core/ports"
)

type BikeRepository struct {
	db *sql.DB
}

func NewBikeRepository(db *sql.DB) *BikeRepository {
	return &BikeRepository{
		db,
	}
}

const bikeColumns = `b.id, b.owner_id, b.title, b.description, b.image, b.price, b.cities, b.available,
	b.brand, b.model, b.year, b.engine_cc, b.mileage, b.address, b.pincode, b.created_at, b.updated_at,
	u.name, u.email, u.city, u.upi_id`

// scanBike reads bikeColumns. withPayment keeps the owner's payment identifier, which only single reads expose.
func scanBike(row rowScanner, withPayment bool) (*domain.Bike, error) {
	bike := &domain.Bike{}
	owner := &domain.OwnerContact{}
	err := row.Scan(
		&bike.ID,
		&bike.OwnerID,
		&bike.Title,
		&bike.Description,
		&bike.Image,
		&bike.Price,
		pq.Array(&bike.Cities),
		&bike.Available,
		&bike.Specifications.Brand,
		&bike.Specifications.Model,
		&bike.Specifications.Year,
		&bike.Specifications.EngineCC,
		&bike.Specifications.Mileage,
		&bike.Address,
		&bike.Pincode,
		&bike.CreatedAt,
		&bike.UpdatedAt,
		&owner.Name,
		&owner.Email,
		&owner.City,
		&owner.UPIID,
	)
	if err != nil {
		return nil, err
	}

	owner.ID = bike.OwnerID
	if withPayment {
		owner.City = ""
	} else {
		owner.UPIID = ""
	}
	bike.Owner = owner

	return bike, nil
}

func (r *BikeRepository) CreateBike(ctx context.Context, bike *domain.Bike) (*domain.Bike, error) {
	query := `INSERT INTO bikes (id, owner_id, title, description, image, price, cities, available,
		brand, model, year, engine_cc, mileage, address, pincode)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.db.ExecContext(ctx, query,
		bike.ID,
		bike.OwnerID,
		bike.Title,
		bike.Description,
		bike.Image,
		bike.Price,
		pq.Array(bike.Cities),
		nullBool(available),
		bike.Specifications.Brand,
		bike.Specifications.Model,
		bike.Specifications.Year,
		bike.Specifications.EngineCC,
		bike.Specifications.Mileage,
		bike.Address,
		bike.Pincode,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23502", "23514":
				return nil, domain.NewError(domain.ErrValidation, "required field is missing")
			case "23503":
				return nil, domain.NewError(domain.ErrValidation, "Bike must belong to an owner")
			}
		}
		return nil, err
	}

	return r.GetBikeByID(ctx, bike.ID)
}

func (r *BikeRepository) GetBikeByID(ctx context.Context, bikeID uuid.UUID) (*domain.Bike, error) {
	query := `SELECT ` + bikeColumns + `
	FROM bikes b JOIN users u ON u.id = b.owner_id
	WHERE b.id = $1`

	bike, err := scanBike(r.db.QueryRowContext(ctx, query, bikeID), true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBikeNotFound
	}
	if err != nil {
		return nil, err
	}

	return bike, nil
}

func (r *BikeRepository) ListBikes(ctx context.Context, filter ports.BikeFilter) ([]*domain.Bike, error) {
	query := `SELECT ` + bikeColumns + `
	FROM bikes b JOIN users u ON u.id = b.owner_id
	WHERE ($1 = '' OR $1 = ANY(b.cities))
	  AND ($2::uuid IS NULL OR b.owner_id = $2)
	ORDER BY b.created_at DESC`

	owner := uuid.NullUUID{UUID: filter.OwnerID, Valid: filter.OwnerID != uuid.Nil}

	rows, err := r.db.QueryContext(ctx, query, filter.City, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bikes := make([]*domain.Bike, 0)
	for rows.Next() {
		bike, err := scanBike(rows, false)
		if err != nil {
			return nil, err
		}
		bikes = append(bikes, bike)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return bikes, nil
}

func (r *BikeRepository) ListCities(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT city FROM bikes, unnest(cities) AS city ORDER BY city`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cities := make([]string, 0)
	for rows.Next() {
		var city string
		if err := rows.Scan(&city); err != nil {
			return nil, err
		}
		cities = append(cities, city)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *BikeRepository) DeleteBike(ctx context.Context, bikeID uuid.UUID) error {
	query := `DELETE FROM bikes WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, bikeID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrBikeNotFound
	}

	return nil
}

// UpdateBike overwrites the mutable columns of a listing. Ownership and creation time never change,
// and available is only written when it is set.
func (r *BikeRepository) UpdateBike(ctx context.Context, bike *domain.Bike, available *bool) (*domain.Bike, error) {
	query := `UPDATE bikes
		SET
			title = $1,
			description = $2,
			image = COALESCE(NULLIF($3, ''), image),
			price = $4,
			cities = $5,
			available = COALESCE($6, available),
			brand = $7,
			model = $8,
			year = $9,
			engine_cc = $10,
			mileage = $11,
			address = $12,
			pincode = $13,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $14`

	result, err := r.db.ExecContext(ctx, query,
		bike.Title,
		bike.Description,
		bike.Image,
		bike.Price,
		pq.Array(bike.Cities),
		bike.Available,
		bike.Specifications.Brand,
		bike.Specifications.Model,
		bike.Specifications.Year,
		bike.Specifications.EngineCC,
		bike.Specifications.Mileage,
		bike.Address,
		bike.Pincode,
		bike.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && (pqErr.Code == "23502" || pqErr.Code == "23514") {
			return nil, domain.NewError(domain.ErrValidation, "required field is missing")
		}
		return nil, fmt.Errorf("error updating bike: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, domain.ErrBikeNotFound
	}

	return r.GetBikeByID(ctx, bike.ID)
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
