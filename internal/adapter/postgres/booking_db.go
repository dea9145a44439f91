package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sm8ta/webike_rental_service/internal/core/domain"
)

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{
		db,
	}
}

// bike columns are nullable: bookings outlive the bikes they reference
const bookingSelect = `SELECT bo.id, bo.bike_id, bo.user_id, bo.start_date, bo.end_date, bo.total_price,
	bo.status, bo.payment_status, bo.created_at, bo.updated_at,
	bk.owner_id, bk.title, bk.image, bk.price, bk.cities, bk.address,
	u.name, u.email
	FROM bookings bo
	LEFT JOIN bikes bk ON bk.id = bo.bike_id
	JOIN users u ON u.id = bo.user_id`

func scanBooking(row rowScanner) (*domain.Booking, error) {
	booking := &domain.Booking{}
	renter := &domain.BookingRenter{}

	var (
		bikeID  uuid.NullUUID
		ownerID uuid.NullUUID
		title   sql.NullString
		image   sql.NullString
		price   sql.NullInt64
		cities  []string
		address sql.NullString
	)

	err := row.Scan(
		&booking.ID,
		&bikeID,
		&booking.UserID,
		&booking.StartDate,
		&booking.EndDate,
		&booking.TotalPrice,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.CreatedAt,
		&booking.UpdatedAt,
		&ownerID,
		&title,
		&image,
		&price,
		pq.Array(&cities),
		&address,
		&renter.Name,
		&renter.Email,
	)
	if err != nil {
		return nil, err
	}

	booking.StartDate = booking.StartDate.UTC()
	booking.EndDate = booking.EndDate.UTC()

	if bikeID.Valid {
		booking.BikeID = bikeID.UUID
		if ownerID.Valid {
			booking.Bike = &domain.BookingBike{
				ID:      bikeID.UUID,
				OwnerID: ownerID.UUID,
				Title:   title.String,
				Image:   image.String,
				Price:   price.Int64,
				Cities:  cities,
				Address: address.String,
			}
		}
	}

	renter.ID = booking.UserID
	booking.User = renter

	return booking, nil
}

// CreateBooking locks the bike row, checks its flag and the overlap of active bookings,
// then inserts the booking and marks the bike unavailable in one transaction.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var available bool
	err = tx.QueryRowContext(ctx, `SELECT available FROM bikes WHERE id = $1 FOR UPDATE`, booking.BikeID).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBikeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock bike in tx: %w", err)
	}
	if !available {
		return nil, domain.ErrBikeUnavailable
	}

	var overlapping bool
	queryOverlap := `SELECT EXISTS (
		SELECT 1 FROM bookings
		WHERE bike_id = $1
		  AND status IN ($2, $3)
		  AND start_date <= $5
		  AND end_date >= $4
	)`
	err = tx.QueryRowContext(ctx, queryOverlap,
		booking.BikeID,
		domain.BookingPending,
		domain.BookingConfirmed,
		booking.StartDate,
		booking.EndDate,
	).Scan(&overlapping)
	if err != nil {
		return nil, fmt.Errorf("failed to check overlap in tx: %w", err)
	}
	if overlapping {
		return nil, domain.ErrBookingOverlap
	}

	queryInsert := `INSERT INTO bookings (id, bike_id, user_id, start_date, end_date, total_price, status, payment_status)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = tx.ExecContext(ctx, queryInsert,
		booking.ID,
		booking.BikeID,
		booking.UserID,
		booking.StartDate,
		booking.EndDate,
		booking.TotalPrice,
		booking.Status,
		booking.PaymentStatus,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE bikes SET available = FALSE, updated_at = CURRENT_TIMESTAMP WHERE id = $1`, booking.BikeID)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve bike in tx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}

	return r.GetBookingByID(ctx, booking.ID)
}

func (r *BookingRepository) GetBookingByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	booking, err := scanBooking(r.db.QueryRowContext(ctx, bookingSelect+` WHERE bo.id = $1`, bookingID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *BookingRepository) GetBookingsByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Booking, error) {
	return r.list(ctx, bookingSelect+` WHERE bo.user_id = $1 ORDER BY bo.created_at DESC`, userID)
}

func (r *BookingRepository) GetBookingsByBikeIDs(ctx context.Context, bikeIDs []uuid.UUID) ([]*domain.Booking, error) {
	ids := make([]string, len(bikeIDs))
	for i, id := range bikeIDs {
		ids[i] = id.String()
	}
	return r.list(ctx, bookingSelect+` WHERE bo.bike_id = ANY($1::uuid[]) ORDER BY bo.created_at DESC`, pq.Array(ids))
}

// UpdateBookingStatus moves the booking from one status to the next only if it is still in from and,
// for completed or cancelled, recomputes the bike flag from the remaining active bookings in the same transaction.
func (r *BookingRepository) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, from, status domain.BookingStatus, paymentStatus domain.PaymentStatus) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE bookings
		SET
			status = $1,
			payment_status = COALESCE(NULLIF($2, ''), payment_status),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $3 AND status = $4
		RETURNING bike_id`

	var bikeID uuid.NullUUID
	err = tx.QueryRowContext(ctx, query, status, string(paymentStatus), bookingID, from).Scan(&bikeID)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, bookingID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to check booking: %w", err)
		}
		if exists {
			return nil, domain.ErrBookingChanged
		}
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	if status.ReleasesBike() && bikeID.Valid {
		queryRelease := `UPDATE bikes
			SET
				available = NOT EXISTS (
					SELECT 1 FROM bookings
					WHERE bike_id = $1 AND status IN ($2, $3)
				),
				updated_at = CURRENT_TIMESTAMP
			WHERE id = $1`
		_, err = tx.ExecContext(ctx, queryRelease, bikeID.UUID, domain.BookingPending, domain.BookingConfirmed)
		if err != nil {
			return nil, fmt.Errorf("failed to release bike: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking status: %w", err)
	}

	return r.GetBookingByID(ctx, bookingID)
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}
