package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veridian/gatepass/internal/domain"
)

type UserRepository interface {
	FindByID(ctx context.Context, communityID string, id int64) (*domain.User, error)
	SavePushToken(ctx context.Context, userID int64, token string) error
	ClearPushToken(ctx context.Context, userID int64) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userCols = `id, community_id, name, email,
COALESCE(unit_number, ''), COALESCE(block_name, ''), expo_push_token`

func (r *userRepository) FindByID(ctx context.Context, communityID string, id int64) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id=$1 AND community_id=$2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u domain.User
	err := r.pool.QueryRow(ctx, q, id, communityID).Scan(
		&u.ID, &u.CommunityID, &u.Name, &u.Email,
		&u.UnitNumber, &u.BlockName, &u.PushToken,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SavePushToken overwrites any previous token for the user.
func (r *userRepository) SavePushToken(ctx context.Context, userID int64, token string) error {
	const q = `UPDATE users SET expo_push_token=$2, updated_at=now() WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, userID, token)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepository) ClearPushToken(ctx context.Context, userID int64) error {
	const q = `UPDATE users SET expo_push_token=NULL, updated_at=now() WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, userID)
	return err
}
