package tariffs

import (
	"context"
	"errors"
)

// ChargeFunc computes a receipt's subtotal and total from a reading and the
// period rates. The receipts package owns the billing formula; it is injected
// here so a tariff edit recomputes totals with the exact same code path that
// priced the receipts in the first place.
type ChargeFunc func(consumptionKwh, pricePerKwh, surcharge float64) (subtotal, total float64)

// Service orchestrates the billing period registry.
type Service struct {
	repo    Repository
	compute ChargeFunc
}

// NewService builds a Service instance.
func NewService(repo Repository, compute ChargeFunc) *Service {
	return &Service{repo: repo, compute: compute}
}

// ListPeriods returns all periods, newest first.
func (s *Service) ListPeriods(ctx context.Context) ([]Period, error) {
	return s.repo.List(ctx)
}

// GetPeriod returns a single period.
func (s *Service) GetPeriod(ctx context.Context, id int64) (Period, error) {
	if id <= 0 {
		return Period{}, ErrPeriodNotFound
	}
	return s.repo.Get(ctx, id)
}

// CreatePeriod opens a new billing month. The month is normalized to its
// first day; the database unique constraint rejects a second period for the
// same month.
func (s *Service) CreatePeriod(ctx context.Context, in CreatePeriodInput) (Period, error) {
	if err := in.Validate(); err != nil {
		return Period{}, err
	}
	in.Month = normalizeMonth(in.Month)
	return s.repo.Create(ctx, in)
}

// UpdateTariff edits the period rates and propagates the new snapshot to
// every receipt already issued under the period, recomputing their totals
// through the injected charge function. Totals are never left stale.
func (s *Service) UpdateTariff(ctx context.Context, id int64, in UpdateTariffInput) error {
	if id <= 0 {
		return ErrPeriodNotFound
	}
	if err := in.Validate(); err != nil {
		return err
	}
	return s.repo.UpdateTariff(ctx, id, in, s.compute)
}

// Close stops new receipts from being issued against the period. Existing
// receipts are not revalidated.
func (s *Service) Close(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, PeriodStatusClosed)
}

// Reopen allows receipt creation again. No checks are re-run.
func (s *Service) Reopen(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, PeriodStatusOpen)
}

func (s *Service) setStatus(ctx context.Context, id int64, status PeriodStatus) error {
	if id <= 0 {
		return ErrPeriodNotFound
	}
	err := s.repo.SetStatus(ctx, id, status)
	if err != nil && !errors.Is(err, ErrPeriodNotFound) {
		return err
	}
	return err
}
