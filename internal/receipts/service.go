package receipts

import (
	"context"
	"time"

	"github.com/vecindario/luzvecinal/internal/tariffs"
)

// RepositoryPort defines data access methods for receipts.
type RepositoryPort interface {
	Create(ctx context.Context, rec Receipt) (Receipt, error)
	Get(ctx context.Context, id int64) (Receipt, error)
	ListByPeriod(ctx context.Context, periodID int64) ([]ReceiptWithLot, error)
	UpsertBatch(ctx context.Context, recs []Receipt) (int, error)
	UpdateConsumption(ctx context.Context, id int64, consumption, subtotal, total float64) error
	SetStatus(ctx context.Context, id int64, status Status, paidAt *time.Time) error
	Delete(ctx context.Context, id int64) error
}

// PeriodPort exposes the billing period lookup the lifecycle rules need.
type PeriodPort interface {
	GetPeriod(ctx context.Context, id int64) (tariffs.Period, error)
}

// Service handles the receipt lifecycle.
type Service struct {
	repo    RepositoryPort
	periods PeriodPort
	now     func() time.Time
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, periods PeriodPort) *Service {
	return &Service{repo: repo, periods: periods, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateReading records a single meter reading. The target period must be
// OPEN and the lot must not already have a receipt for it; the duplicate is
// enforced by the store's unique (lot, period) constraint.
func (s *Service) CreateReading(ctx context.Context, in CreateReadingInput) (Receipt, error) {
	if in.ConsumptionKwh < 0 {
		return Receipt{}, ErrNegativeConsumption
	}
	period, err := s.periods.GetPeriod(ctx, in.PeriodID)
	if err != nil {
		return Receipt{}, err
	}
	if !period.IsOpen() {
		return Receipt{}, tariffs.ErrPeriodClosed
	}
	subtotal, total := ComputeCharge(in.ConsumptionKwh, period.PricePerKwh, period.Surcharge)
	return s.repo.Create(ctx, Receipt{
		LotID:          in.LotID,
		PeriodID:       in.PeriodID,
		ConsumptionKwh: in.ConsumptionKwh,
		PricePerKwh:    period.PricePerKwh,
		Surcharge:      period.Surcharge,
		Subtotal:       subtotal,
		Total:          total,
		Status:         StatusPending,
	})
}

// ImportReadings bulk-imports readings for one period as a single upsert
// keyed on (lot, period): a re-import overwrites consumption and recomputes
// the totals instead of failing. The asymmetry with CreateReading is
// deliberate; re-running a sheet import must be safe.
func (s *Service) ImportReadings(ctx context.Context, periodID int64, rows []ImportRow) (int, error) {
	if len(rows) == 0 {
		return 0, ErrEmptyImport
	}
	period, err := s.periods.GetPeriod(ctx, periodID)
	if err != nil {
		return 0, err
	}
	if !period.IsOpen() {
		return 0, tariffs.ErrPeriodClosed
	}
	recs := make([]Receipt, 0, len(rows))
	for _, row := range rows {
		if row.ConsumptionKwh < 0 {
			return 0, ErrNegativeConsumption
		}
		subtotal, total := ComputeCharge(row.ConsumptionKwh, period.PricePerKwh, period.Surcharge)
		recs = append(recs, Receipt{
			LotID:          row.LotID,
			PeriodID:       periodID,
			ConsumptionKwh: row.ConsumptionKwh,
			PricePerKwh:    period.PricePerKwh,
			Surcharge:      period.Surcharge,
			Subtotal:       subtotal,
			Total:          total,
			Status:         StatusPending,
		})
	}
	return s.repo.UpsertBatch(ctx, recs)
}

// EditConsumption changes a receipt's consumption and recomputes its totals
// from the receipt's own stored price snapshot, not the period's current
// rates. Allowed in any state; deletion is the only terminal transition.
func (s *Service) EditConsumption(ctx context.Context, id int64, consumption float64) error {
	if consumption < 0 {
		return ErrNegativeConsumption
	}
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	subtotal, total := ComputeCharge(consumption, rec.PricePerKwh, rec.Surcharge)
	return s.repo.UpdateConsumption(ctx, id, consumption, subtotal, total)
}

// MarkPaid transitions a receipt to PAID and stamps the payment time.
func (s *Service) MarkPaid(ctx context.Context, id int64) error {
	paidAt := s.now()
	return s.repo.SetStatus(ctx, id, StatusPaid, &paidAt)
}

// MarkPending reverts a receipt to PENDING and clears the payment time.
func (s *Service) MarkPending(ctx context.Context, id int64) error {
	return s.repo.SetStatus(ctx, id, StatusPending, nil)
}

// SetOverdue flags a receipt as OVERDUE. There is no automatic transition;
// an administrator assigns this state by hand.
func (s *Service) SetOverdue(ctx context.Context, id int64) error {
	return s.repo.SetStatus(ctx, id, StatusOverdue, nil)
}

// Delete removes a receipt in any state, regardless of period status.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// GetReceipt returns a single receipt.
func (s *Service) GetReceipt(ctx context.Context, id int64) (Receipt, error) {
	return s.repo.Get(ctx, id)
}

// ListByPeriod returns the period's receipts with lot display fields.
func (s *Service) ListByPeriod(ctx context.Context, periodID int64) ([]ReceiptWithLot, error) {
	return s.repo.ListByPeriod(ctx, periodID)
}
