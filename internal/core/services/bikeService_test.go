package services

import (
	"context"
	"mime/multipart"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sm8ta/webike_rental_service/internal/adapter/logger"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBike(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, domain.Owner)

	bike := env.bike(t, owner, 500, "Dehradun", "Haridwar")

	assert.Equal(t, owner.ID, bike.OwnerID)
	assert.True(t, bike.Available)
	assert.Equal(t, []string{"Dehradun", "Haridwar"}, bike.Cities)
	assert.Contains(t, env.images.saved, bike.Image)
	require.NotNil(t, bike.Owner)
	assert.Equal(t, owner.Email, bike.Owner.Email)
}

func TestCreateBikeRequiresImage(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, domain.Owner)

	_, err := env.bikes.CreateBike(context.Background(), owner.ID, &domain.Bike{
		Title: "No photo", Description: "d", Price: 100, Cities: []string{"Dehradun"}, Address: "a", Pincode: "1",
	}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateBikeValidationDoesNotStoreImage(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, domain.Owner)

	_, err := env.bikes.CreateBike(context.Background(), owner.ID, &domain.Bike{
		Title: "Free bike", Description: "d", Price: 0, Cities: []string{"Dehradun"}, Address: "a", Pincode: "1",
	}, &multipart.FileHeader{Filename: "bike.png"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, env.images.saved)
}

func TestGetBikeByIDUsesCache(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, domain.Owner)
	bike := env.bike(t, owner, 500)

	got, err := env.bikes.GetBikeByID(context.Background(), bike.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "pay@upi", got.Owner.UPIID)
	assert.True(t, env.redis.Exists(bikeCacheKey(bike.ID)))

	// a write that bypasses the service is not visible until the entry is invalidated
	stale := *got
	stale.Title = "Changed behind the cache"
	_, err = env.store.UpdateBike(context.Background(), &stale, nil)
	require.NoError(t, err)

	cached, err := env.bikes.GetBikeByID(context.Background(), bike.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Classic 350", cached.Title)
}

func TestGetBikeByIDErrors(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.bikes.GetBikeByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.bikes.GetBikeByID(context.Background(), "7d0c8d0e-1f6b-4f43-9b0e-5b7a0b3b1c11")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListBikesByCity(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, domain.Owner)
	env.bike(t, owner, 500, "Dehradun", "Haridwar")
	env.bike(t, owner, 700, "Rishikesh")

	all, err := env.bikes.ListBikes(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	haridwar, err := env.bikes.ListBikes(context.Background(), "Haridwar")
	require.NoError(t, err)
	require.Len(t, haridwar, 1)
	assert.Equal(t, int64(500), haridwar[0].Price)
	assert.Equal(t, "Dehradun", haridwar[0].Owner.City)
	assert.Empty(t, haridwar[0].Owner.UPIID)

	cities, err := env.bikes.ListCities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Dehradun", "Haridwar", "Rishikesh"}, cities)
}

func TestListCitiesInvalidatedOnCreate(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, domain.Owner)
	env.bike(t, owner, 500, "Dehradun")

	cities, err := env.bikes.ListCities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Dehradun"}, cities)

	env.bike(t, owner, 500, "Almora")

	cities, err = env.bikes.ListCities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Almora", "Dehradun"}, cities)
}

func TestGetBikesByOwnerID(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, domain.Owner)
	other := env.user(t, domain.Owner)
	env.bike(t, owner, 500)
	env.bike(t, other, 600)

	bikes, err := env.bikes.GetBikesByOwnerID(context.Background(), owner.ID.String())
	require.NoError(t, err)
	require.Len(t, bikes, 1)
	assert.Equal(t, owner.ID, bikes[0].OwnerID)
}

func TestUpdateBike(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, domain.Owner)
	bike := env.bike(t, owner, 500)

	_, err := env.bikes.GetBikeByID(context.Background(), bike.ID.String())
	require.NoError(t, err)

	price := int64(650)
	updated, err := env.bikes.UpdateBike(context.Background(), owner.ID, bike.ID.String(), &domain.BikeUpdate{
		Price:  &price,
		Cities: []string{"Mussoorie"},
	}, &multipart.FileHeader{Filename: "new.png"})
	require.NoError(t, err)

	assert.Equal(t, int64(650), updated.Price)
	assert.Equal(t, []string{"Mussoorie"}, updated.Cities)
	assert.Equal(t, "Classic 350", updated.Title)
	assert.NotEqual(t, bike.Image, updated.Image)
	assert.Contains(t, env.images.removed, bike.Image)
	assert.False(t, env.redis.Exists(bikeCacheKey(bike.ID)))

	got, err := env.bikes.GetBikeByID(context.Background(), bike.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(650), got.Price)
}

func TestUpdateBikeKeepsReservationMadeDuringEdit(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, domain.Owner)
	renter := env.user(t, domain.Customer)
	bike := env.bike(t, owner, 500)
	ctx := context.Background()

	racing := &racingStore{Store: env.store}
	racing.afterBikeRead = func() {
		_, err := env.bookings.CreateBooking(ctx, renter.ID, BookingRequest{
			BikeID: bike.ID.String(), StartDate: "2024-06-01", EndDate: "2024-06-03",
		})
		require.NoError(t, err)
	}
	bikes := NewBikeService(racing, env.images, logger.NewNop(), validator.New(), env.cache, 15*time.Minute)

	title := "Classic 350 Signals"
	updated, err := bikes.UpdateBike(ctx, owner.ID, bike.ID.String(), &domain.BikeUpdate{Title: &title}, nil)
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.False(t, updated.Available)

	got, err := env.store.GetBikeByID(ctx, bike.ID)
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
	assert.False(t, got.Available)
}

func TestUpdateBikeByNonOwnerIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, domain.Owner)
	intruder := env.user(t, domain.Owner)
	bike := env.bike(t, owner, 500)

	title := "Hijacked"
	_, err := env.bikes.UpdateBike(context.Background(), intruder.ID, bike.ID.String(), &domain.BikeUpdate{Title: &title}, nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err := env.store.GetBikeByID(context.Background(), bike.ID)
	require.NoError(t, err)
	assert.Equal(t, "Classic 350", got.Title)
}

func TestDeleteBike(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, domain.Owner)
	intruder := env.user(t, domain.Owner)
	bike := env.bike(t, owner, 500)

	err := env.bikes.DeleteBike(context.Background(), intruder.ID, bike.ID.String())
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = env.store.GetBikeByID(context.Background(), bike.ID)
	require.NoError(t, err)

	require.NoError(t, env.bikes.DeleteBike(context.Background(), owner.ID, bike.ID.String()))
	assert.Contains(t, env.images.removed, bike.Image)

	_, err = env.bikes.GetBikeByID(context.Background(), bike.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
