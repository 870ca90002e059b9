package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PeriodSummary aggregates billing figures for one period.
type PeriodSummary struct {
	PeriodID     int64
	Period       time.Time
	Billed       float64
	Collected    float64
	Pending      float64
	ReceiptCount int
	PaidCount    int
}

// Debtor is a lot with outstanding receipts.
type Debtor struct {
	LotID         int64
	LotCode       string
	OwnerName     string
	PendingMonths int
	Debt          float64
}

// Overview feeds the admin dashboard.
type Overview struct {
	LotCount     int
	PendingCount int
	PendingTotal float64
}

// Repository reads reporting aggregates.
type Repository interface {
	PeriodSummaries(ctx context.Context) ([]PeriodSummary, error)
	Debtors(ctx context.Context) ([]Debtor, error)
	Overview(ctx context.Context) (Overview, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed reports repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) PeriodSummaries(ctx context.Context) ([]PeriodSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.period,
			COALESCE(SUM(rc.total), 0),
			COALESCE(SUM(rc.total) FILTER (WHERE rc.status = 'PAID'), 0),
			COALESCE(SUM(rc.total) FILTER (WHERE rc.status <> 'PAID'), 0),
			COUNT(rc.id),
			COUNT(rc.id) FILTER (WHERE rc.status = 'PAID')
		FROM billing_periods p
		LEFT JOIN receipts rc ON rc.period_id = p.id
		GROUP BY p.id, p.period
		ORDER BY p.period DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PeriodSummary
	for rows.Next() {
		var s PeriodSummary
		if err := rows.Scan(&s.PeriodID, &s.Period, &s.Billed, &s.Collected,
			&s.Pending, &s.ReceiptCount, &s.PaidCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repository) Debtors(ctx context.Context) ([]Debtor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT l.id, l.block, l.lot_number,
			TRIM(COALESCE(l.first_names,'') || ' ' || COALESCE(l.last_names,'')),
			COUNT(rc.id), COALESCE(SUM(rc.total), 0)
		FROM lots l
		JOIN receipts rc ON rc.lot_id = l.id AND rc.status <> 'PAID'
		GROUP BY l.id, l.block, l.lot_number, l.first_names, l.last_names
		HAVING COUNT(rc.id) > 0
		ORDER BY SUM(rc.total) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Debtor
	for rows.Next() {
		var (
			d         Debtor
			block     string
			lotNumber int
		)
		if err := rows.Scan(&d.LotID, &block, &lotNumber, &d.OwnerName,
			&d.PendingMonths, &d.Debt); err != nil {
			return nil, err
		}
		d.LotCode = lotCode(block, lotNumber)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *repository) Overview(ctx context.Context) (Overview, error) {
	var o Overview
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM lots),
			(SELECT COUNT(*) FROM receipts WHERE status <> 'PAID'),
			(SELECT COALESCE(SUM(total), 0) FROM receipts WHERE status <> 'PAID')`).
		Scan(&o.LotCount, &o.PendingCount, &o.PendingTotal)
	return o, err
}
