// Package memory keeps users, bikes and bookings in process memory. It backs DB_DRIVER=memory
// and the service tests. One mutex guards all three collections, so every method is a unit of work.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
	"github.com/sm8ta/webike_rental_service/internal/core/ports"
)

type Store struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]domain.User
	bikes    map[uuid.UUID]domain.Bike
	bookings map[uuid.UUID]domain.Booking
	// insertion order, oldest first
	bikeOrder    []uuid.UUID
	bookingOrder []uuid.UUID
	now          func() time.Time
}

var (
	_ ports.UserRepository    = (*Store)(nil)
	_ ports.BikeRepository    = (*Store)(nil)
	_ ports.BookingRepository = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		users:    make(map[uuid.UUID]domain.User),
		bikes:    make(map[uuid.UUID]domain.Bike),
		bookings: make(map[uuid.UUID]domain.Booking),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) CreateUser(_ context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}

	now := s.now()
	stored := *user
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.users[stored.ID] = stored

	out := stored
	return &out, nil
}

func (s *Store) GetUserByID(_ context.Context, userID uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *Store) UpdateUserDetails(_ context.Context, userID uuid.UUID, details domain.UserDetails) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if details.Name != nil {
		u.Name = *details.Name
	}
	if details.City != nil {
		u.City = *details.City
	}
	if details.UPIID != nil {
		u.UPIID = *details.UPIID
	}
	u.UpdatedAt = s.now()
	s.users[userID] = u

	return &u, nil
}

func (s *Store) DeleteUserByEmail(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range s.users {
		if u.Email != email {
			continue
		}
		delete(s.users, id)
		// same cascade as the users foreign keys
		for bikeID, b := range s.bikes {
			if b.OwnerID == id {
				s.removeBike(bikeID)
			}
		}
		for bookingID, b := range s.bookings {
			if b.UserID == id {
				delete(s.bookings, bookingID)
			}
		}
	}
	return nil
}

func (s *Store) CreateBike(_ context.Context, bike *domain.Bike) (*domain.Bike, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[bike.OwnerID]; !ok {
		return nil, domain.NewError(domain.ErrValidation, "Bike must belong to an owner")
	}

	now := s.now()
	stored := *bike
	stored.Cities = append([]string(nil), bike.Cities...)
	stored.Owner = nil
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.bikes[stored.ID] = stored
	s.bikeOrder = append(s.bikeOrder, stored.ID)

	return s.populateBike(stored, true), nil
}

func (s *Store) GetBikeByID(_ context.Context, bikeID uuid.UUID) (*domain.Bike, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bikes[bikeID]
	if !ok {
		return nil, domain.ErrBikeNotFound
	}
	return s.populateBike(b, true), nil
}

func (s *Store) ListBikes(_ context.Context, filter ports.BikeFilter) ([]*domain.Bike, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bikes := make([]*domain.Bike, 0)
	for i := len(s.bikeOrder) - 1; i >= 0; i-- {
		b, ok := s.bikes[s.bikeOrder[i]]
		if !ok {
			continue
		}
		if filter.OwnerID != uuid.Nil && b.OwnerID != filter.OwnerID {
			continue
		}
		if filter.City != "" && !contains(b.Cities, filter.City) {
			continue
		}
		bikes = append(bikes, s.populateBike(b, false))
	}
	return bikes, nil
}

func (s *Store) ListCities(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := make(map[string]struct{})
	for _, b := range s.bikes {
		for _, c := range b.Cities {
			set[c] = struct{}{}
		}
	}
	cities := make([]string, 0, len(set))
	for c := range set {
		cities = append(cities, c)
	}
	sort.Strings(cities)
	return cities, nil
}

func (s *Store) UpdateBike(_ context.Context, bike *domain.Bike, available *bool) (*domain.Bike, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.bikes[bike.ID]
	if !ok {
		return nil, domain.ErrBikeNotFound
	}

	stored := *bike
	stored.Cities = append([]string(nil), bike.Cities...)
	stored.Owner = nil
	stored.OwnerID = existing.OwnerID
	stored.Available = existing.Available
	if available != nil {
		stored.Available = *available
	}
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = s.now()
	s.bikes[stored.ID] = stored

	return s.populateBike(stored, true), nil
}

func (s *Store) DeleteBike(_ context.Context, bikeID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bikes[bikeID]; !ok {
		return domain.ErrBikeNotFound
	}
	s.removeBike(bikeID)
	return nil
}

func (s *Store) removeBike(bikeID uuid.UUID) {
	delete(s.bikes, bikeID)
	for i, id := range s.bikeOrder {
		if id == bikeID {
			s.bikeOrder = append(s.bikeOrder[:i], s.bikeOrder[i+1:]...)
			break
		}
	}
}

func (s *Store) CreateBooking(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bike, ok := s.bikes[booking.BikeID]
	if !ok {
		return nil, domain.ErrBikeNotFound
	}
	if !bike.Available {
		return nil, domain.ErrBikeUnavailable
	}
	for _, other := range s.bookings {
		if other.BikeID == bike.ID && other.Status.IsActive() &&
			domain.Overlaps(other.StartDate, other.EndDate, booking.StartDate, booking.EndDate) {
			return nil, domain.ErrBookingOverlap
		}
	}

	now := s.now()
	stored := *booking
	stored.Bike = nil
	stored.User = nil
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.bookings[stored.ID] = stored
	s.bookingOrder = append(s.bookingOrder, stored.ID)

	bike.Available = false
	bike.UpdatedAt = now
	s.bikes[bike.ID] = bike

	return s.populateBooking(stored), nil
}

func (s *Store) GetBookingByID(_ context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return s.populateBooking(b), nil
}

func (s *Store) GetBookingsByUserID(_ context.Context, userID uuid.UUID) ([]*domain.Booking, error) {
	return s.findBookings(func(b domain.Booking) bool { return b.UserID == userID }), nil
}

func (s *Store) GetBookingsByBikeIDs(_ context.Context, bikeIDs []uuid.UUID) ([]*domain.Booking, error) {
	ids := make(map[uuid.UUID]struct{}, len(bikeIDs))
	for _, id := range bikeIDs {
		ids[id] = struct{}{}
	}
	return s.findBookings(func(b domain.Booking) bool {
		_, ok := ids[b.BikeID]
		return ok
	}), nil
}

func (s *Store) UpdateBookingStatus(_ context.Context, bookingID uuid.UUID, from, status domain.BookingStatus, paymentStatus domain.PaymentStatus) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	if b.Status != from {
		return nil, domain.ErrBookingChanged
	}

	now := s.now()
	b.Status = status
	if paymentStatus != "" {
		b.PaymentStatus = paymentStatus
	}
	b.UpdatedAt = now
	s.bookings[bookingID] = b

	if status.ReleasesBike() {
		if bike, ok := s.bikes[b.BikeID]; ok {
			bike.Available = !s.hasActiveBooking(bike.ID)
			bike.UpdatedAt = now
			s.bikes[bike.ID] = bike
		}
	}

	return s.populateBooking(b), nil
}

func (s *Store) findBookings(match func(domain.Booking) bool) []*domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings := make([]*domain.Booking, 0)
	for i := len(s.bookingOrder) - 1; i >= 0; i-- {
		b, ok := s.bookings[s.bookingOrder[i]]
		if ok && match(b) {
			bookings = append(bookings, s.populateBooking(b))
		}
	}
	return bookings
}

func (s *Store) hasActiveBooking(bikeID uuid.UUID) bool {
	for _, b := range s.bookings {
		if b.BikeID == bikeID && b.Status.IsActive() {
			return true
		}
	}
	return false
}

// populateBike attaches owner contact fields. The payment identifier is only exposed on single reads.
func (s *Store) populateBike(b domain.Bike, withPayment bool) *domain.Bike {
	out := b
	out.Cities = append([]string(nil), b.Cities...)
	if owner, ok := s.users[b.OwnerID]; ok {
		contact := &domain.OwnerContact{
			ID:    owner.ID,
			Name:  owner.Name,
			Email: owner.Email,
		}
		if withPayment {
			contact.UPIID = owner.UPIID
		} else {
			contact.City = owner.City
		}
		out.Owner = contact
	}
	return &out
}

func (s *Store) populateBooking(b domain.Booking) *domain.Booking {
	out := b
	if bike, ok := s.bikes[b.BikeID]; ok {
		out.Bike = &domain.BookingBike{
			ID:      bike.ID,
			OwnerID: bike.OwnerID,
			Title:   bike.Title,
			Image:   bike.Image,
			Price:   bike.Price,
			Cities:  append([]string(nil), bike.Cities...),
			Address: bike.Address,
		}
	}
	if user, ok := s.users[b.UserID]; ok {
		out.User = &domain.BookingRenter{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		}
	}
	return &out
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
