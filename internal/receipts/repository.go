package receipts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vecindario/luzvecinal/internal/shared"
)

// Repository provides PostgreSQL backed persistence for receipts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, rec Receipt) (Receipt, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO receipts (
			lot_id, period_id, consumption_kwh, price_per_kwh, surcharge,
			subtotal, total, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, 'PENDING')
		RETURNING id, created_at`,
		rec.LotID, rec.PeriodID, rec.ConsumptionKwh, rec.PricePerKwh,
		rec.Surcharge, rec.Subtotal, rec.Total).
		Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		if errors.Is(shared.TranslatePgError(err), shared.ErrAlreadyExists) {
			return Receipt{}, ErrDuplicate
		}
		return Receipt{}, err
	}
	rec.Status = StatusPending
	return rec, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (Receipt, error) {
	var rec Receipt
	var paidAt pgtype.Timestamptz
	err := r.pool.QueryRow(ctx, `
		SELECT id, lot_id, period_id, consumption_kwh, price_per_kwh, surcharge,
			subtotal, total, status, paid_at, created_at
		FROM receipts
		WHERE id = $1`, id).
		Scan(&rec.ID, &rec.LotID, &rec.PeriodID, &rec.ConsumptionKwh,
			&rec.PricePerKwh, &rec.Surcharge, &rec.Subtotal, &rec.Total,
			&rec.Status, &paidAt, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Receipt{}, ErrNotFound
	}
	if err != nil {
		return Receipt{}, err
	}
	if paidAt.Valid {
		rec.PaidAt = &paidAt.Time
	}
	return rec, nil
}

func (r *Repository) ListByPeriod(ctx context.Context, periodID int64) ([]ReceiptWithLot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT rc.id, rc.lot_id, rc.period_id, rc.consumption_kwh,
			rc.price_per_kwh, rc.surcharge, rc.subtotal, rc.total,
			rc.status, rc.paid_at, rc.created_at,
			l.block, l.lot_number,
			COALESCE(l.first_names, ''), COALESCE(l.last_names, ''),
			COALESCE(l.phone, '')
		FROM receipts rc
		JOIN lots l ON l.id = rc.lot_id
		WHERE rc.period_id = $1
		ORDER BY l.block, l.lot_number`, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReceiptWithLot
	for rows.Next() {
		var rec ReceiptWithLot
		var paidAt pgtype.Timestamptz
		var block string
		var lotNumber int
		var firstNames, lastNames string
		err := rows.Scan(&rec.ID, &rec.LotID, &rec.PeriodID, &rec.ConsumptionKwh,
			&rec.PricePerKwh, &rec.Surcharge, &rec.Subtotal, &rec.Total,
			&rec.Status, &paidAt, &rec.CreatedAt,
			&block, &lotNumber, &firstNames, &lastNames, &rec.Phone)
		if err != nil {
			return nil, err
		}
		if paidAt.Valid {
			rec.PaidAt = &paidAt.Time
		}
		rec.LotCode = fmt.Sprintf("MZ %s - LT %d", block, lotNumber)
		rec.OwnerName = strings.TrimSpace(firstNames + " " + lastNames)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// UpsertBatch writes the whole import as one multi-row statement so the batch
// succeeds or fails together. The (lot_id, period_id) conflict overwrites
// consumption and totals, which makes re-imports idempotent.
func (r *Repository) UpsertBatch(ctx context.Context, recs []Receipt) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO receipts (
		lot_id, period_id, consumption_kwh, price_per_kwh, surcharge, subtotal, total, status
	) VALUES `)
	args := make([]any, 0, len(recs)*7)
	for i, rec := range recs {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 7
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, 'PENDING')",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7)
		args = append(args, rec.LotID, rec.PeriodID, rec.ConsumptionKwh,
			rec.PricePerKwh, rec.Surcharge, rec.Subtotal, rec.Total)
	}
	sb.WriteString(`
	ON CONFLICT (lot_id, period_id) DO UPDATE SET
		consumption_kwh = EXCLUDED.consumption_kwh,
		price_per_kwh = EXCLUDED.price_per_kwh,
		surcharge = EXCLUDED.surcharge,
		subtotal = EXCLUDED.subtotal,
		total = EXCLUDED.total`)

	tag, err := r.pool.Exec(ctx, sb.String(), args...)
	if err != nil {
		return 0, shared.TranslatePgError(err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *Repository) UpdateConsumption(ctx context.Context, id int64, consumption, subtotal, total float64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE receipts
		SET consumption_kwh = $2, subtotal = $3, total = $4
		WHERE id = $1`, id, consumption, subtotal, total)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SetStatus(ctx context.Context, id int64, status Status, paidAt *time.Time) error {
	var stamp pgtype.Timestamptz
	if paidAt != nil {
		stamp = pgtype.Timestamptz{Time: *paidAt, Valid: true}
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE receipts SET status = $2, paid_at = $3 WHERE id = $1`,
		id, status, stamp)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM receipts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
