package services

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
	"github.com/sm8ta/webike_rental_service/internal/core/ports"
)

type BikeService struct {
	bikeRepo ports.BikeRepository
	images   ports.ImageStorage
	logger   ports.LoggerPort
	validate *validator.Validate
	cache    ports.CachePort
	cacheTTL time.Duration
}

func NewBikeService(
	bikeRepo ports.BikeRepository,
	images ports.ImageStorage,
	logger ports.LoggerPort,
	validate *validator.Validate,
	cache ports.CachePort,
	cacheTTL time.Duration,
) *BikeService {
	return &BikeService{
		bikeRepo: bikeRepo,
		images:   images,
		logger:   logger,
		validate: validate,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// CreateBike stores a new listing owned by ownerID. The image is required.
func (s *BikeService) CreateBike(ctx context.Context, ownerID uuid.UUID, bike *domain.Bike, image *multipart.FileHeader) (*domain.Bike, error) {
	if image == nil {
		return nil, domain.NewError(domain.ErrValidation, "Please provide bike image")
	}

	bike.ID = uuid.New()
	bike.OwnerID = ownerID
	bike.Available = true

	if err := s.validate.StructExcept(bike, "Image"); err != nil {
		s.logger.Error("Bike validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, domain.Validation(err)
	}

	path, err := s.images.Save(ctx, image)
	if err != nil {
		s.logger.Error("Failed to store bike image", map[string]interface{}{
			"error":    err.Error(),
			"owner_id": ownerID,
		})
		return nil, err
	}
	bike.Image = path

	createdBike, err := s.bikeRepo.CreateBike(ctx, bike)
	if err != nil {
		s.logger.Error("Failed to create bike", map[string]interface{}{
			"error":    err.Error(),
			"owner_id": ownerID,
		})
		s.removeImage(path)
		return nil, err
	}

	s.invalidate(citiesCacheKey)

	s.logger.Info("Bike created successfully", map[string]interface{}{
		"bike_id":  createdBike.ID,
		"owner_id": createdBike.OwnerID,
	})

	return createdBike, nil
}

func (s *BikeService) GetBikeByID(ctx context.Context, bikeID string) (*domain.Bike, error) {
	bikeUUID, err := parseID(bikeID, "bike")
	if err != nil {
		return nil, err
	}

	cacheKey := bikeCacheKey(bikeUUID)
	cachedData, err := s.cache.Get(cacheKey)
	if err == nil {
		var cachedBike domain.Bike
		if err := json.Unmarshal(cachedData, &cachedBike); err == nil {
			s.logger.Debug("Bike found in cache", map[string]interface{}{
				"bike_id": bikeID,
			})
			return &cachedBike, nil
		}
	}

	bike, err := s.bikeRepo.GetBikeByID(ctx, bikeUUID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to get bike", map[string]interface{}{
				"error":   err.Error(),
				"bike_id": bikeID,
			})
		}
		return nil, err
	}

	s.store(cacheKey, bike)

	return bike, nil
}

// ListBikes returns every listing, or the listings serving city when it is set.
func (s *BikeService) ListBikes(ctx context.Context, city string) ([]*domain.Bike, error) {
	bikes, err := s.bikeRepo.ListBikes(ctx, ports.BikeFilter{City: city})
	if err != nil {
		s.logger.Error("Failed to list bikes", map[string]interface{}{
			"error": err.Error(),
			"city":  city,
		})
		return nil, err
	}
	return bikes, nil
}

func (s *BikeService) GetBikesByOwnerID(ctx context.Context, ownerID string) ([]*domain.Bike, error) {
	ownerUUID, err := parseID(ownerID, "owner")
	if err != nil {
		return nil, err
	}

	bikes, err := s.bikeRepo.ListBikes(ctx, ports.BikeFilter{OwnerID: ownerUUID})
	if err != nil {
		s.logger.Error("Failed to get bikes", map[string]interface{}{
			"error":    err.Error(),
			"owner_id": ownerID,
		})
		return nil, err
	}

	s.logger.Debug("Retrieved bikes for owner", map[string]interface{}{
		"owner_id":    ownerID,
		"bikes_count": len(bikes),
	})

	return bikes, nil
}

func (s *BikeService) ListCities(ctx context.Context) ([]string, error) {
	if cachedData, err := s.cache.Get(citiesCacheKey); err == nil {
		var cities []string
		if err := json.Unmarshal(cachedData, &cities); err == nil {
			return cities, nil
		}
	}

	cities, err := s.bikeRepo.ListCities(ctx)
	if err != nil {
		s.logger.Error("Failed to list cities", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	s.store(citiesCacheKey, cities)

	return cities, nil
}

// UpdateBike applies update to a listing owned by requesterID. A non-nil image replaces the stored one.
func (s *BikeService) UpdateBike(ctx context.Context, requesterID uuid.UUID, bikeID string, update *domain.BikeUpdate, image *multipart.FileHeader) (*domain.Bike, error) {
	bike, err := s.ownedBike(ctx, requesterID, bikeID)
	if err != nil {
		return nil, err
	}

	previousImage := bike.Image
	update.Apply(bike)
	bike.Owner = nil

	if err := s.validate.StructExcept(bike, "Image"); err != nil {
		s.logger.Error("Bike validation failed", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
		})
		return nil, domain.Validation(err)
	}

	if image != nil {
		path, err := s.images.Save(ctx, image)
		if err != nil {
			s.logger.Error("Failed to store bike image", map[string]interface{}{
				"error":   err.Error(),
				"bike_id": bikeID,
			})
			return nil, err
		}
		bike.Image = path
	}

	updatedBike, err := s.bikeRepo.UpdateBike(ctx, bike, update.Available)
	if err != nil {
		s.logger.Error("Failed to update bike", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
		})
		if image != nil {
			s.removeImage(bike.Image)
		}
		return nil, err
	}

	s.invalidate(bikeCacheKey(bike.ID), citiesCacheKey)
	if image != nil && previousImage != "" {
		s.removeImage(previousImage)
	}

	s.logger.Info("Bike updated successfully", map[string]interface{}{
		"bike_id": bikeID,
	})

	return updatedBike, nil
}

// NormalizeCities re-parses the city collection of every listing and saves the ones that changed.
// Listings whose cities cannot be parsed are skipped with a warning.
func (s *BikeService) NormalizeCities(ctx context.Context) (int, error) {
	bikes, err := s.bikeRepo.ListBikes(ctx, ports.BikeFilter{})
	if err != nil {
		return 0, err
	}

	updated := 0
	defer func() {
		if updated > 0 {
			s.invalidate(citiesCacheKey)
		}
	}()

	for _, bike := range bikes {
		cities, err := domain.ParseCities(bike.Cities)
		if err != nil {
			s.logger.Warn("Skipping bike with unparseable cities", map[string]interface{}{
				"bike_id": bike.ID,
				"cities":  bike.Cities,
				"error":   err.Error(),
			})
			continue
		}
		if domain.SameCities(cities, bike.Cities) {
			continue
		}

		bike.Cities = cities
		bike.Owner = nil
		if _, err := s.bikeRepo.UpdateBike(ctx, bike, nil); err != nil {
			s.logger.Error("Failed to update bike cities", map[string]interface{}{
				"error":   err.Error(),
				"bike_id": bike.ID,
			})
			return updated, err
		}
		s.invalidate(bikeCacheKey(bike.ID))
		updated++
	}

	s.logger.Info("Bike cities normalized", map[string]interface{}{
		"updated": updated,
	})

	return updated, nil
}

func (s *BikeService) DeleteBike(ctx context.Context, requesterID uuid.UUID, bikeID string) error {
	bike, err := s.ownedBike(ctx, requesterID, bikeID)
	if err != nil {
		return err
	}

	if err := s.bikeRepo.DeleteBike(ctx, bike.ID); err != nil {
		s.logger.Error("Failed to delete bike", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
		})
		return err
	}

	s.invalidate(bikeCacheKey(bike.ID), citiesCacheKey)
	s.removeImage(bike.Image)

	s.logger.Info("Bike deleted successfully", map[string]interface{}{
		"bike_id": bikeID,
	})

	return nil
}

// ownedBike loads a listing from the repository, bypassing the cache, and checks who owns it.
func (s *BikeService) ownedBike(ctx context.Context, requesterID uuid.UUID, bikeID string) (*domain.Bike, error) {
	bikeUUID, err := parseID(bikeID, "bike")
	if err != nil {
		return nil, err
	}

	bike, err := s.bikeRepo.GetBikeByID(ctx, bikeUUID)
	if err != nil {
		return nil, err
	}

	if bike.OwnerID != requesterID {
		s.logger.Warn("Access denied to bike", map[string]interface{}{
			"requester_id": requesterID.String(),
			"bike_owner":   bike.OwnerID.String(),
			"bike_id":      bikeID,
		})
		return nil, domain.ErrNotBikeOwner
	}

	return bike, nil
}

func (s *BikeService) store(key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("Failed to marshal value for cache", map[string]interface{}{
			"error": err.Error(),
			"key":   key,
		})
		return
	}
	if err := s.cache.Set(key, data, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to write cache", map[string]interface{}{
			"error": err.Error(),
			"key":   key,
		})
	}
}

func (s *BikeService) invalidate(keys ...string) {
	invalidate(s.cache, s.logger, keys...)
}

func (s *BikeService) removeImage(path string) {
	if err := s.images.Remove(path); err != nil {
		s.logger.Warn("Failed to remove bike image", map[string]interface{}{
			"error": err.Error(),
			"image": path,
		})
	}
}
