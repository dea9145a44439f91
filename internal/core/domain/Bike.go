package domain

import (
	"time"

	"github.com/google/uuid"
)

// swagger:model domain.Bike
type Bike struct {
	ID             uuid.UUID      `json:"_id"`
	OwnerID        uuid.UUID      `json:"ownerId" validate:"required"`
	Title          string         `json:"title" validate:"required,max=200"`
	Description    string         `json:"description" validate:"required"`
	Image          string         `json:"image" validate:"required"`
	Price          int64          `json:"price" validate:"required,gt=0"`
	Cities         []string       `json:"city" validate:"required,min=1,dive,required"`
	Available      bool           `json:"available"`
	Specifications Specifications `json:"specifications"`
	Address        string         `json:"address" validate:"required"`
	Pincode        string         `json:"pincode" validate:"required,max=12"`
	Owner          *OwnerContact  `json:"owner,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

type Specifications struct {
	Brand    string `json:"brand,omitempty"`
	Model    string `json:"model,omitempty"`
	Year     int    `json:"year,omitempty" validate:"omitempty,min=1900,max=2100"`
	EngineCC int    `json:"engineCC,omitempty" validate:"min=0"`
	Mileage  int    `json:"mileage,omitempty" validate:"min=0"`
}

// OwnerContact is the owner data shown alongside a listing.
type OwnerContact struct {
	ID    uuid.UUID `json:"_id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	City  string    `json:"city,omitempty"`
	UPIID string    `json:"upiId,omitempty"`
}

// BikeUpdate carries a partial listing update. Nil fields are left as stored.
type BikeUpdate struct {
	Title          *string
	Description    *string
	Image          *string
	Price          *int64
	Cities         []string
	Available      *bool
	Specifications *Specifications
	Address        *string
	Pincode        *string
}

// Apply copies the set fields of u onto b.
func (u *BikeUpdate) Apply(b *Bike) {
	if u.Title != nil {
		b.Title = *u.Title
	}
	if u.Description != nil {
		b.Description = *u.Description
	}
	if u.Image != nil {
		b.Image = *u.Image
	}
	if u.Price != nil {
		b.Price = *u.Price
	}
	if u.Cities != nil {
		b.Cities = u.Cities
	}
	if u.Available != nil {
		b.Available = *u.Available
	}
	if u.Specifications != nil {
		b.Specifications = *u.Specifications
	}
	if u.Address != nil {
		b.Address = *u.Address
	}
	if u.Pincode != nil {
		b.Pincode = *u.Pincode
	}
}
