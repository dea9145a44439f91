// Command seed recreates the demo owner and customer accounts and a demo listing.
package main

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sm8ta/webike_rental_service/internal/adapter/handler/http"
	"github.com/sm8ta/webike_rental_service/internal/app"
	"github.com/sm8ta/webike_rental_service/internal/config"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
	"github.com/sm8ta/webike_rental_service/internal/core/services"
)

const (
	ownerEmail    = "owner@example.com"
	customerEmail = "customer@example.com"
	demoPassword  = "password123"
	demoImage     = "https://via.placeholder.com/300x200.png?text=No+Image"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if cfg.DB.Driver == config.DriverMemory {
		log.Fatalf("Seeding needs a persistent store, DB_DRIVER is %q", cfg.DB.Driver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	logger := app.NewLogger(cfg)

	repos, err := app.OpenRepositories(ctx, cfg.DB)
	if err != nil {
		log.Fatalf("Failed to open repositories: %v", err)
	}
	defer repos.Close()

	// Remove old data; listings go with their owner
	for _, email := range []string{ownerEmail, customerEmail} {
		if err := repos.Users.DeleteUserByEmail(ctx, email); err != nil {
			log.Fatalf("Failed to remove %s: %v", email, err)
		}
	}

	tokens := http.NewJWTTokenService(cfg.Token.Secret, cfg.Token.Duration, logger)
	auth := services.NewAuthService(repos.Users, tokens, logger, validator.New())

	owner, _, err := auth.Signup(ctx, services.SignupInput{
		Name:     "Test Owner",
		Email:    ownerEmail,
		Password: demoPassword,
		Role:     string(domain.Owner),
		City:     "Dehradun",
		UPIID:    "owner@upi",
	})
	if err != nil {
		log.Fatalf("Failed to create owner: %v", err)
	}

	if _, _, err := auth.Signup(ctx, services.SignupInput{
		Name:     "Demo Customer",
		Email:    customerEmail,
		Password: demoPassword,
		Role:     string(domain.Customer),
		City:     "Dehradun",
	}); err != nil {
		log.Fatalf("Failed to create customer: %v", err)
	}

	bike := &domain.Bike{
		ID:          uuid.New(),
		OwnerID:     owner.ID,
		Title:       "Seed Bike 1",
		Description: "A great bike for city rides.",
		Image:       demoImage,
		Price:       500,
		Cities:      []string{"Dehradun"},
		Available:   true,
		Specifications: domain.Specifications{
			Brand:    "Royal Enfield",
			Model:    "Classic 350",
			Year:     2022,
			EngineCC: 349,
			Mileage:  35,
		},
		Address: "123 Main Street",
		Pincode: "248001",
	}
	if _, err := repos.Bikes.CreateBike(ctx, bike); err != nil {
		log.Fatalf("Failed to create demo bike: %v", err)
	}

	logger.Info("Seed data inserted", map[string]interface{}{
		"owner":    ownerEmail,
		"customer": customerEmail,
		"bike_id":  bike.ID,
	})
}
