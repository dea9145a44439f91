package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
)

// BikeFilter narrows a listing query. Zero values match everything.
type BikeFilter struct {
	City    string
	OwnerID uuid.UUID
}

type BikeRepository interface {
	CreateBike(ctx context.Context, bike *domain.Bike) (*domain.Bike, error)
	GetBikeByID(ctx context.Context, bikeID uuid.UUID) (*domain.Bike, error)
	ListBikes(ctx context.Context, filter BikeFilter) ([]*domain.Bike, error)
	ListCities(ctx context.Context) ([]string, error)
	// UpdateBike overwrites the mutable fields of bike. The availability flag is written only when
	// available is non-nil, so a concurrent booking reservation is never reset.
	UpdateBike(ctx context.Context, bike *domain.Bike, available *bool) (*domain.Bike, error)
	DeleteBike(ctx context.Context, bikeID uuid.UUID) error
}
