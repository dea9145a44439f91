package services

import (
	"github.com/google/uuid"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
	"github.com/sm8ta/webike_rental_service/internal/core/ports"
)

func parseID(id, entity string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, domain.NewError(domain.ErrValidation, "Invalid "+entity+" ID")
	}
	return parsed, nil
}

func invalidate(cache ports.CachePort, logger ports.LoggerPort, keys ...string) {
	for _, key := range keys {
		if err := cache.Delete(key); err != nil {
			logger.Warn("Failed to invalidate cache", map[string]interface{}{
				"error": err.Error(),
				"key":   key,
			})
		}
	}
}
