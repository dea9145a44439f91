package services

import (
	"fmt"

	"github.com/google/uuid"
)

const citiesCacheKey = "bikes:cities"

func bikeCacheKey(bikeID uuid.UUID) string {
	return fmt.Sprintf("bike:%s", bikeID.String())
}
