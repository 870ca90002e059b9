package tariffs

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vecindario/luzvecinal/internal/platform/db"
	"github.com/vecindario/luzvecinal/internal/shared"
)

// Repository defines data access for billing periods.
type Repository interface {
	List(ctx context.Context) ([]Period, error)
	Get(ctx context.Context, id int64) (Period, error)
	Create(ctx context.Context, in CreatePeriodInput) (Period, error)
	UpdateTariff(ctx context.Context, id int64, in UpdateTariffInput, compute ChargeFunc) error
	SetStatus(ctx context.Context, id int64, status PeriodStatus) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context) ([]Period, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, period, price_per_kwh, surcharge, status, created_at
		FROM billing_periods
		ORDER BY period DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []Period
	for rows.Next() {
		var p Period
		if err := rows.Scan(&p.ID, &p.Period, &p.PricePerKwh, &p.Surcharge, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Period, error) {
	var p Period
	err := r.pool.QueryRow(ctx, `
		SELECT id, period, price_per_kwh, surcharge, status, created_at
		FROM billing_periods
		WHERE id = $1`, id).
		Scan(&p.ID, &p.Period, &p.PricePerKwh, &p.Surcharge, &p.Status, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Period{}, ErrPeriodNotFound
	}
	if err != nil {
		return Period{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, in CreatePeriodInput) (Period, error) {
	p := Period{
		Period:      in.Month,
		PricePerKwh: in.PricePerKwh,
		Surcharge:   in.Surcharge,
		Status:      PeriodStatusOpen,
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO billing_periods (period, price_per_kwh, surcharge, status)
		VALUES ($1, $2, $3, 'OPEN')
		RETURNING id, created_at`,
		in.Month, in.PricePerKwh, in.Surcharge).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if errors.Is(shared.TranslatePgError(err), shared.ErrAlreadyExists) {
			return Period{}, ErrDuplicatePeriod
		}
		return Period{}, err
	}
	return p, nil
}

// UpdateTariff rewrites the period rates and the snapshots stored on every
// receipt already issued for the period. Totals are recomputed in Go through
// the injected charge function rather than in SQL, so there is exactly one
// implementation of the billing formula, and the whole edit commits or rolls
// back as one transaction.
func (r *repository) UpdateTariff(ctx context.Context, id int64, in UpdateTariffInput, compute ChargeFunc) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE billing_periods
			SET price_per_kwh = $2, surcharge = $3
			WHERE id = $1`, id, in.PricePerKwh, in.Surcharge)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrPeriodNotFound
		}

		rows, err := tx.Query(ctx, `
			SELECT id, consumption_kwh FROM receipts WHERE period_id = $1`, id)
		if err != nil {
			return err
		}
		type receiptRow struct {
			id          int64
			consumption float64
		}
		var recs []receiptRow
		for rows.Next() {
			var rec receiptRow
			if err := rows.Scan(&rec.id, &rec.consumption); err != nil {
				rows.Close()
				return err
			}
			recs = append(recs, rec)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, rec := range recs {
			subtotal, total := compute(rec.consumption, in.PricePerKwh, in.Surcharge)
			batch.Queue(`
				UPDATE receipts
				SET price_per_kwh = $2, surcharge = $3, subtotal = $4, total = $5
				WHERE id = $1`,
				rec.id, in.PricePerKwh, in.Surcharge, subtotal, total)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (r *repository) SetStatus(ctx context.Context, id int64, status PeriodStatus) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE billing_periods SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPeriodNotFound
	}
	return nil
}

// normalizeMonth truncates a date to the first of its month in UTC, the
// canonical representation for the unique month constraint.
func normalizeMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
