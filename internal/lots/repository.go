package lots

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vecindario/luzvecinal/internal/platform/db"
	"github.com/vecindario/luzvecinal/internal/receipts"
	"github.com/vecindario/luzvecinal/internal/shared"
)

// ListFilters narrows the lot listing.
type ListFilters struct {
	Search string
	Page   int
	Limit  int
}

// Repository defines data access for lots.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Lot, int, error)
	ListRefs(ctx context.Context) ([]receipts.LotRef, error)
	Get(ctx context.Context, id int64) (Lot, error)
	Create(ctx context.Context, form LotForm) (Lot, error)
	Update(ctx context.Context, id int64, form LotForm) error
	DeleteCascade(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Lot, int, error) {
	query := `SELECT id, block, lot_number, COALESCE(first_names,''), COALESCE(last_names,''),
		COALESCE(national_id,''), COALESCE(phone,''), service_type, created_at
		FROM lots WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM lots WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		clause := ` AND (first_names ILIKE $` + strconv.Itoa(argCount) +
			` OR last_names ILIKE $` + strconv.Itoa(argCount) +
			` OR national_id ILIKE $` + strconv.Itoa(argCount) + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY block, lot_number`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Lot
	for rows.Next() {
		var l Lot
		if err := rows.Scan(&l.ID, &l.Block, &l.LotNumber, &l.FirstNames,
			&l.LastNames, &l.NationalID, &l.Phone, &l.Service, &l.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func (r *repository) ListRefs(ctx context.Context) ([]receipts.LotRef, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, block, lot_number FROM lots`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []receipts.LotRef
	for rows.Next() {
		var ref receipts.LotRef
		if err := rows.Scan(&ref.ID, &ref.Block, &ref.LotNumber); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Lot, error) {
	var l Lot
	err := r.pool.QueryRow(ctx, `
		SELECT id, block, lot_number, COALESCE(first_names,''), COALESCE(last_names,''),
			COALESCE(national_id,''), COALESCE(phone,''), service_type, created_at
		FROM lots WHERE id = $1`, id).
		Scan(&l.ID, &l.Block, &l.LotNumber, &l.FirstNames, &l.LastNames,
			&l.NationalID, &l.Phone, &l.Service, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lot{}, ErrLotNotFound
	}
	if err != nil {
		return Lot{}, err
	}
	return l, nil
}

func (r *repository) Create(ctx context.Context, form LotForm) (Lot, error) {
	l := Lot{
		Block:      form.Block,
		LotNumber:  form.LotNumber,
		FirstNames: form.FirstNames,
		LastNames:  form.LastNames,
		NationalID: form.NationalID,
		Phone:      form.Phone,
		Service:    form.Service,
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO lots (block, lot_number, first_names, last_names, national_id, phone, service_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		form.Block, form.LotNumber, nullable(form.FirstNames), nullable(form.LastNames),
		nullable(form.NationalID), nullable(form.Phone), form.Service).
		Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		if errors.Is(shared.TranslatePgError(err), shared.ErrAlreadyExists) {
			return Lot{}, ErrDuplicateLot
		}
		return Lot{}, err
	}
	return l, nil
}

func (r *repository) Update(ctx context.Context, id int64, form LotForm) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE lots
		SET block = $2, lot_number = $3, first_names = $4, last_names = $5,
			national_id = $6, phone = $7, service_type = $8
		WHERE id = $1`,
		id, form.Block, form.LotNumber, nullable(form.FirstNames), nullable(form.LastNames),
		nullable(form.NationalID), nullable(form.Phone), form.Service)
	if err != nil {
		if errors.Is(shared.TranslatePgError(err), shared.ErrAlreadyExists) {
			return ErrDuplicateLot
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLotNotFound
	}
	return nil
}

// DeleteCascade removes the lot's receipts and then the lot inside one
// transaction, so no orphan receipts can survive a partial failure.
func (r *repository) DeleteCascade(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM receipts WHERE lot_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM lots WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrLotNotFound
		}
		return nil
	})
}

func nullable(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
