// Command fixcities re-normalizes the city collection of every stored listing.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sm8ta/webike_rental_service/internal/adapter/redis"
	"github.com/sm8ta/webike_rental_service/internal/app"
	"github.com/sm8ta/webike_rental_service/internal/config"
	"github.com/sm8ta/webike_rental_service/internal/core/ports"
	"github.com/sm8ta/webike_rental_service/internal/core/services"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	logger := app.NewLogger(cfg)

	repos, err := app.OpenRepositories(ctx, cfg.DB)
	if err != nil {
		log.Fatalf("Failed to open repositories: %v", err)
	}
	defer repos.Close()

	redisConn, err := app.OpenCache(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to open cache: %v", err)
	}
	defer redisConn.Close()

	updated, err := fixCities(ctx, repos.Bikes, redis.NewRedisAdapter(redisConn), logger, cfg.Redis.CacheTTL)
	if err != nil {
		log.Fatalf("Failed to fix cities: %v", err)
	}

	fmt.Printf("Updated %d bikes.\n", updated)
}

// fixCities runs the normalization through BikeService so cached listings and the city list are invalidated.
func fixCities(ctx context.Context, bikes ports.BikeRepository, cache ports.CachePort, logger ports.LoggerPort, cacheTTL time.Duration) (int, error) {
	// images are never touched when only cities change
	bikeService := services.NewBikeService(bikes, nil, logger, validator.New(), cache, cacheTTL)
	return bikeService.NormalizeCities(ctx)
}
