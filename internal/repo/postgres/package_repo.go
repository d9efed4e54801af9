package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veridian/gatepass/internal/domain"
)

type PackageRepository interface {
	Create(ctx context.Context, communityID string, req *domain.CreatePackageReq) (*domain.Package, error)
	GetByID(ctx context.Context, communityID string, id int64) (*domain.Package, error)
	ListByUser(ctx context.Context, communityID string, userID int64) ([]domain.Package, error)
	MarkPicked(ctx context.Context, communityID string, id int64) (*domain.Package, error)
}

type packageRepository struct {
	pool *pgxpool.Pool
}

func NewPackageRepository(pool *pgxpool.Pool) PackageRepository {
	return &packageRepository{pool: pool}
}

const packageCols = `id, community_id, user_id, name, image, status, created_at, updated_at`

func scanPackage(row rowScanner) (*domain.Package, error) {
	var p domain.Package
	err := row.Scan(
		&p.ID, &p.CommunityID, &p.UserID, &p.Name,
		&p.Image, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *packageRepository) Create(ctx context.Context, communityID string, req *domain.CreatePackageReq) (*domain.Package, error) {
	const q = `INSERT INTO packages (community_id, user_id, name, image, status)
	VALUES ($1,$2,$3,$4,'pending')
	RETURNING ` + packageCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanPackage(r.pool.QueryRow(ctx, q, communityID, req.UserID, req.Name, req.Image))
}

func (r *packageRepository) GetByID(ctx context.Context, communityID string, id int64) (*domain.Package, error) {
	const q = `SELECT ` + packageCols + ` FROM packages WHERE id=$1 AND community_id=$2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanPackage(r.pool.QueryRow(ctx, q, id, communityID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *packageRepository) ListByUser(ctx context.Context, communityID string, userID int64) ([]domain.Package, error) {
	const q = `SELECT ` + packageCols + ` FROM packages
	WHERE community_id=$1 AND user_id=$2 ORDER BY created_at DESC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, communityID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var packages []domain.Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		packages = append(packages, *p)
	}
	return packages, rows.Err()
}

// MarkPicked transitions pending -> picked; a nil result with nil error means
// the row was missing or already picked.
func (r *packageRepository) MarkPicked(ctx context.Context, communityID string, id int64) (*domain.Package, error) {
	const q = `UPDATE packages SET status='picked', updated_at=now()
	WHERE id=$1 AND community_id=$2 AND status='pending'
	RETURNING ` + packageCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanPackage(r.pool.QueryRow(ctx, q, id, communityID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}
