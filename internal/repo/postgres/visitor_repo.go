package postgres

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veridian/gatepass/internal/domain"
)

type VisitorRepository interface {
	Create(ctx context.Context, communityID string, hostID int64, req *domain.CreateVisitorReq, visitorType domain.VisitorType) (*domain.Visitor, error)
	GetByID(ctx context.Context, communityID, id string) (*domain.Visitor, error)
	SetCheckIn(ctx context.Context, communityID, id string, at time.Time) (*domain.Visitor, error)
	SetCheckOut(ctx context.Context, communityID, id string, at time.Time) (*domain.Visitor, error)
	ResetTimestamps(ctx context.Context, communityID, id string) (*domain.Visitor, error)
	List(ctx context.Context, communityID string, filter domain.VisitorFilter) ([]domain.Visitor, error)
	CountByRange(ctx context.Context, communityID string, from, to time.Time) (*domain.VisitorStats, error)
}

type visitorRepository struct {
	pool *pgxpool.Pool
}

func NewVisitorRepository(pool *pgxpool.Pool) VisitorRepository {
	return &visitorRepository{pool: pool}
}

const visitorCols = `v.id, v.community_id, v.host_id, v.name, v.contact,
v.vehicle_no, v.visitor_type, v.notes, v.visit_date,
v.check_in_at, v.check_out_at, v.created_at, v.updated_at,
COALESCE(u.name, ''), COALESCE(u.unit_number, ''), COALESCE(u.block_name, '')`

const visitorFrom = ` FROM visitors v LEFT JOIN users u ON u.id = v.host_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVisitor(row rowScanner) (*domain.Visitor, error) {
	var v domain.Visitor
	err := row.Scan(
		&v.ID, &v.CommunityID, &v.HostID, &v.Name, &v.Contact,
		&v.VehicleNo, &v.Type, &v.Notes, &v.VisitDate,
		&v.CheckInAt, &v.CheckOutAt, &v.CreatedAt, &v.UpdatedAt,
		&v.HostName, &v.HostUnit, &v.HostBlock,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *visitorRepository) Create(ctx context.Context, communityID string, hostID int64, req *domain.CreateVisitorReq, visitorType domain.VisitorType) (*domain.Visitor, error) {
	const q = `WITH ins AS (
		INSERT INTO visitors (
			id, community_id, host_id, name, contact,
			vehicle_no, visitor_type, notes, visit_date
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING *
	)
	SELECT ` + visitorCols + ` FROM ins v LEFT JOIN users u ON u.id = v.host_id`

	id := uuid.NewString()
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanVisitor(r.pool.QueryRow(ctx, q,
		id, communityID, hostID, req.Name, req.Contact,
		req.VehicleNo, visitorType, req.Notes, req.VisitDate,
	))
}

func (r *visitorRepository) GetByID(ctx context.Context, communityID, id string) (*domain.Visitor, error) {
	const q = `SELECT ` + visitorCols + visitorFrom + ` WHERE v.id=$1 AND v.community_id=$2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	v, err := scanVisitor(r.pool.QueryRow(ctx, q, id, communityID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return v, err
}

func (r *visitorRepository) SetCheckIn(ctx context.Context, communityID, id string, at time.Time) (*domain.Visitor, error) {
	const q = `WITH upd AS (
		UPDATE visitors SET check_in_at=$3, updated_at=now()
		WHERE id=$1 AND community_id=$2
		RETURNING *
	)
	SELECT ` + visitorCols + ` FROM upd v LEFT JOIN users u ON u.id = v.host_id`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	v, err := scanVisitor(r.pool.QueryRow(ctx, q, id, communityID, at))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return v, err
}

func (r *visitorRepository) SetCheckOut(ctx context.Context, communityID, id string, at time.Time) (*domain.Visitor, error) {
	const q = `WITH upd AS (
		UPDATE visitors SET check_out_at=$3, updated_at=now()
		WHERE id=$1 AND community_id=$2
		RETURNING *
	)
	SELECT ` + visitorCols + ` FROM upd v LEFT JOIN users u ON u.id = v.host_id`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	v, err := scanVisitor(r.pool.QueryRow(ctx, q, id, communityID, at))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return v, err
}

func (r *visitorRepository) ResetTimestamps(ctx context.Context, communityID, id string) (*domain.Visitor, error) {
	const q = `WITH upd AS (
		UPDATE visitors SET check_in_at=NULL, check_out_at=NULL, updated_at=now()
		WHERE id=$1 AND community_id=$2
		RETURNING *
	)
	SELECT ` + visitorCols + ` FROM upd v LEFT JOIN users u ON u.id = v.host_id`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	v, err := scanVisitor(r.pool.QueryRow(ctx, q, id, communityID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return v, err
}

func (r *visitorRepository) List(ctx context.Context, communityID string, filter domain.VisitorFilter) ([]domain.Visitor, error) {
	q := `SELECT ` + visitorCols + visitorFrom + ` WHERE v.community_id=$1`
	args := []any{communityID}

	if filter.From != nil {
		args = append(args, *filter.From)
		q += ` AND v.visit_date >= $` + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		q += ` AND v.visit_date <= $` + strconv.Itoa(len(args))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		q += ` AND v.visitor_type = $` + strconv.Itoa(len(args))
	}
	if filter.Status != nil {
		switch *filter.Status {
		case domain.VisitorPending:
			q += ` AND v.check_in_at IS NULL AND v.check_out_at IS NULL`
		case domain.VisitorCheckedIn:
			q += ` AND v.check_in_at IS NOT NULL AND v.check_out_at IS NULL`
		case domain.VisitorCheckedOut:
			q += ` AND v.check_out_at IS NOT NULL`
		}
	}

	q += ` ORDER BY v.visit_date DESC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visitors []domain.Visitor
	for rows.Next() {
		v, err := scanVisitor(rows)
		if err != nil {
			return nil, err
		}
		visitors = append(visitors, *v)
	}
	return visitors, rows.Err()
}

// CountByRange aggregates counts for [from, to). TypeBreakdown holds only the
// observed types; the service layer zero-fills the declared set.
func (r *visitorRepository) CountByRange(ctx context.Context, communityID string, from, to time.Time) (*domain.VisitorStats, error) {
	const totals = `SELECT
		COUNT(*) FILTER (WHERE check_in_at IS NULL AND check_out_at IS NULL),
		COUNT(*) FILTER (WHERE check_in_at IS NOT NULL AND check_out_at IS NULL),
		COUNT(*) FILTER (WHERE check_out_at IS NOT NULL),
		COUNT(*)
	FROM visitors
	WHERE community_id=$1 AND visit_date >= $2 AND visit_date < $3`

	const byType = `SELECT visitor_type, COUNT(*)
	FROM visitors
	WHERE community_id=$1 AND visit_date >= $2 AND visit_date < $3
	GROUP BY visitor_type`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	stats := &domain.VisitorStats{TypeBreakdown: make(map[domain.VisitorType]int)}
	err := r.pool.QueryRow(ctx, totals, communityID, from, to).Scan(
		&stats.Pending, &stats.CheckedIn, &stats.CheckedOut, &stats.Total,
	)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, byType, communityID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.VisitorType
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		stats.TypeBreakdown[t] = n
	}
	return stats, rows.Err()
}
