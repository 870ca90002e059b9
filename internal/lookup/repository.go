package lookup

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vecindario/luzvecinal/internal/lots"
	"github.com/vecindario/luzvecinal/internal/receipts"
)

// HistoryEntry is one receipt row in a lot's public history.
type HistoryEntry struct {
	Period         time.Time
	ConsumptionKwh float64
	Total          float64
	RawStatus      receipts.Status
	Status         string
	StatusBadge    string
	PaidAt         *time.Time
}

// Repository reads the public lookup projections.
type Repository interface {
	FindLots(ctx context.Context, filter Filter) ([]lots.Lot, error)
	History(ctx context.Context, lotID int64) ([]HistoryEntry, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed lookup repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const lotColumns = `id, block, lot_number, COALESCE(first_names,''), COALESCE(last_names,''),
	COALESCE(national_id,''), COALESCE(phone,''), service_type, created_at`

func (r *repository) FindLots(ctx context.Context, filter Filter) ([]lots.Lot, error) {
	var (
		query string
		args  []any
	)
	switch filter.Kind {
	case FilterBlockNumber:
		query = `SELECT ` + lotColumns + ` FROM lots WHERE block = $1 AND lot_number = $2`
		args = []any{filter.Block, filter.Number}
	case FilterNumber:
		query = `SELECT ` + lotColumns + ` FROM lots WHERE lot_number = $1 ORDER BY block`
		args = []any{filter.Number}
	case FilterNationalID:
		query = `SELECT ` + lotColumns + ` FROM lots WHERE national_id = $1 ORDER BY block, lot_number`
		args = []any{filter.NationalID}
	default:
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []lots.Lot
	for rows.Next() {
		var l lots.Lot
		if err := rows.Scan(&l.ID, &l.Block, &l.LotNumber, &l.FirstNames,
			&l.LastNames, &l.NationalID, &l.Phone, &l.Service, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repository) History(ctx context.Context, lotID int64) ([]HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.period, r.consumption_kwh, r.total, r.status, r.paid_at
		FROM receipts r
		JOIN billing_periods p ON p.id = r.period_id
		WHERE r.lot_id = $1
		ORDER BY p.period DESC`, lotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var (
			e      HistoryEntry
			paidAt pgtype.Timestamptz
		)
		if err := rows.Scan(&e.Period, &e.ConsumptionKwh, &e.Total, &e.RawStatus, &paidAt); err != nil {
			return nil, err
		}
		if paidAt.Valid {
			t := paidAt.Time
			e.PaidAt = &t
		}
		e.Status = e.RawStatus.Label()
		e.StatusBadge = e.RawStatus.Badge()
		out = append(out, e)
	}
	return out, rows.Err()
}
