package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veridian/gatepass/internal/domain"
)

type BookingRepository interface {
	ListConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Booking, error)
}

type bookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

// ListConfirmedStartingBetween selects across all communities; the reminder
// job runs platform-wide. Bounds are inclusive.
func (r *bookingRepository) ListConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	const q = `SELECT b.id, b.community_id, b.facility_name, b.user_id, b.starts_at, b.status, u.expo_push_token
	FROM bookings b
	JOIN users u ON u.id = b.user_id
	WHERE b.status = 'confirmed' AND b.starts_at >= $1 AND b.starts_at <= $2
	ORDER BY b.starts_at`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(
			&b.ID, &b.CommunityID, &b.FacilityName, &b.UserID,
			&b.StartsAt, &b.Status, &b.OwnerPushToken,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
