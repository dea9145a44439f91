package services

import (
	"context"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sm8ta/webike_rental_service/internal/adapter/logger"
	"github.com/sm8ta/webike_rental_service/internal/adapter/memory"
	"github.com/sm8ta/webike_rental_service/internal/adapter/redis"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
	"github.com/stretchr/testify/require"
)

type fakeImages struct {
	mu      sync.Mutex
	saved   []string
	removed []string
}

func (f *fakeImages) Save(_ context.Context, file *multipart.FileHeader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := "/uploads/" + uuid.NewString() + "-" + file.Filename
	f.saved = append(f.saved, path)
	return path, nil
}

func (f *fakeImages) Remove(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, path)
	return nil
}

type fakeTokens struct{}

func (fakeTokens) CreateToken(user *domain.User) (string, error) {
	return "token-" + user.ID.String(), nil
}

func (fakeTokens) VerifyToken(string) (*domain.TokenPayload, error) {
	return nil, domain.ErrInvalidCredentials
}

type testEnv struct {
	store    *memory.Store
	cache    *redis.RedisAdapter
	redis    *miniredis.Miniredis
	images   *fakeImages
	bikes    *BikeService
	bookings *BookingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := memory.NewStore()
	cache := redis.NewRedisAdapter(client)
	images := &fakeImages{}
	log := logger.NewNop()
	validate := validator.New()

	return &testEnv{
		store:    store,
		cache:    cache,
		redis:    mr,
		images:   images,
		bikes:    NewBikeService(store, images, log, validate, cache, 15*time.Minute),
		bookings: NewBookingService(store, store, log, validate, cache),
	}
}

func (e *testEnv) user(t *testing.T, role domain.UserRole) *domain.User {
	t.Helper()
	id := uuid.New()
	u, err := e.store.CreateUser(context.Background(), &domain.User{
		ID:    id,
		Name:  "User " + id.String()[:4],
		Email: id.String() + "@example.com",
		Role:  role,
		UPIID: "pay@upi",
		City:  "Dehradun",
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) bike(t *testing.T, owner *domain.User, price int64, cities ...string) *domain.Bike {
	t.Helper()
	if len(cities) == 0 {
		cities = []string{"Dehradun"}
	}
	b, err := e.bikes.CreateBike(context.Background(), owner.ID, &domain.Bike{
		Title:       "Classic 350",
		Description: "Well kept",
		Price:       price,
		Cities:      cities,
		Address:     "Rajpur Road",
		Pincode:     "248001",
	}, &multipart.FileHeader{Filename: "bike.png", Size: 10})
	require.NoError(t, err)
	return b
}

// racingStore runs a write once, right after a service has read the row it is about to update.
type racingStore struct {
	*memory.Store
	afterBikeRead    func()
	afterBookingRead func()
}

func (r *racingStore) GetBikeByID(ctx context.Context, bikeID uuid.UUID) (*domain.Bike, error) {
	bike, err := r.Store.GetBikeByID(ctx, bikeID)
	if hook := r.afterBikeRead; hook != nil {
		r.afterBikeRead = nil
		hook()
	}
	return bike, err
}

func (r *racingStore) GetBookingByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	booking, err := r.Store.GetBookingByID(ctx, bookingID)
	if hook := r.afterBookingRead; hook != nil {
		r.afterBookingRead = nil
		hook()
	}
	return booking, err
}
