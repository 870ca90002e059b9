package receipts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vecindario/luzvecinal/internal/tariffs"
)

type memoryReceiptRepo struct {
	receipts map[int64]*Receipt
	nextID   int64
}

func newMemoryReceiptRepo() *memoryReceiptRepo {
	return &memoryReceiptRepo{receipts: make(map[int64]*Receipt)}
}

func (r *memoryReceiptRepo) find(lotID, periodID int64) *Receipt {
	for _, rec := range r.receipts {
		if rec.LotID == lotID && rec.PeriodID == periodID {
			return rec
		}
	}
	return nil
}

func (r *memoryReceiptRepo) Create(ctx context.Context, rec Receipt) (Receipt, error) {
	if r.find(rec.LotID, rec.PeriodID) != nil {
		return Receipt{}, ErrDuplicate
	}
	r.nextID++
	rec.ID = r.nextID
	rec.CreatedAt = time.Now()
	r.receipts[rec.ID] = &rec
	return rec, nil
}

func (r *memoryReceiptRepo) Get(ctx context.Context, id int64) (Receipt, error) {
	rec, ok := r.receipts[id]
	if !ok {
		return Receipt{}, ErrNotFound
	}
	return *rec, nil
}

func (r *memoryReceiptRepo) ListByPeriod(ctx context.Context, periodID int64) ([]ReceiptWithLot, error) {
	var out []ReceiptWithLot
	for _, rec := range r.receipts {
		if rec.PeriodID == periodID {
			out = append(out, ReceiptWithLot{Receipt: *rec})
		}
	}
	return out, nil
}

func (r *memoryReceiptRepo) UpsertBatch(ctx context.Context, recs []Receipt) (int, error) {
	for _, rec := range recs {
		if existing := r.find(rec.LotID, rec.PeriodID); existing != nil {
			existing.ConsumptionKwh = rec.ConsumptionKwh
			existing.PricePerKwh = rec.PricePerKwh
			existing.Surcharge = rec.Surcharge
			existing.Subtotal = rec.Subtotal
			existing.Total = rec.Total
			continue
		}
		r.nextID++
		rec.ID = r.nextID
		rec.CreatedAt = time.Now()
		copied := rec
		r.receipts[copied.ID] = &copied
	}
	return len(recs), nil
}

func (r *memoryReceiptRepo) UpdateConsumption(ctx context.Context, id int64, consumption, subtotal, total float64) error {
	rec, ok := r.receipts[id]
	if !ok {
		return ErrNotFound
	}
	rec.ConsumptionKwh = consumption
	rec.Subtotal = subtotal
	rec.Total = total
	return nil
}

func (r *memoryReceiptRepo) SetStatus(ctx context.Context, id int64, status Status, paidAt *time.Time) error {
	rec, ok := r.receipts[id]
	if !ok {
		return ErrNotFound
	}
	rec.Status = status
	rec.PaidAt = paidAt
	return nil
}

func (r *memoryReceiptRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.receipts[id]; !ok {
		return ErrNotFound
	}
	delete(r.receipts, id)
	return nil
}

type stubPeriods struct {
	periods map[int64]tariffs.Period
}

func (s *stubPeriods) GetPeriod(ctx context.Context, id int64) (tariffs.Period, error) {
	p, ok := s.periods[id]
	if !ok {
		return tariffs.Period{}, tariffs.ErrPeriodNotFound
	}
	return p, nil
}

func newTestService() (*Service, *memoryReceiptRepo) {
	repo := newMemoryReceiptRepo()
	periods := &stubPeriods{periods: map[int64]tariffs.Period{
		1: {ID: 1, Period: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), PricePerKwh: 0.86, Surcharge: 10.00, Status: tariffs.PeriodStatusOpen},
		2: {ID: 2, Period: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), PricePerKwh: 0.80, Surcharge: 8.00, Status: tariffs.PeriodStatusClosed},
	}}
	return NewService(repo, periods), repo
}

func TestCreateReadingComputesCharge(t *testing.T) {
	svc, _ := newTestService()

	rec, err := svc.CreateReading(context.Background(), CreateReadingInput{LotID: 10, PeriodID: 1, ConsumptionKwh: 105})
	require.NoError(t, err)
	require.Equal(t, StatusPending, rec.Status)
	require.Equal(t, 0.86, rec.PricePerKwh)
	require.Equal(t, 10.00, rec.Surcharge)
	require.Equal(t, 100.30, rec.Total)
	require.Nil(t, rec.PaidAt)
}

func TestCreateReadingDuplicateFails(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateReading(context.Background(), CreateReadingInput{LotID: 10, PeriodID: 1, ConsumptionKwh: 50})
	require.NoError(t, err)

	_, err = svc.CreateReading(context.Background(), CreateReadingInput{LotID: 10, PeriodID: 1, ConsumptionKwh: 60})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestCreateReadingClosedPeriodFails(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateReading(context.Background(), CreateReadingInput{LotID: 10, PeriodID: 2, ConsumptionKwh: 50})
	require.ErrorIs(t, err, tariffs.ErrPeriodClosed)
}

func TestCreateReadingNegativeConsumption(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateReading(context.Background(), CreateReadingInput{LotID: 10, PeriodID: 1, ConsumptionKwh: -1})
	require.ErrorIs(t, err, ErrNegativeConsumption)
}

func TestImportOverwritesExistingReceipt(t *testing.T) {
	svc, repo := newTestService()

	first, err := svc.CreateReading(context.Background(), CreateReadingInput{LotID: 10, PeriodID: 1, ConsumptionKwh: 50})
	require.NoError(t, err)

	count, err := svc.ImportReadings(context.Background(), 1, []ImportRow{
		{LotID: 10, ConsumptionKwh: 105},
		{LotID: 11, ConsumptionKwh: 20},
	})
	require.NoError(t, err)
	require.Equal(t, 2, count)

	updated, err := repo.Get(context.Background(), first.ID)
	require.NoError(t, err)
	require.Equal(t, 105.0, updated.ConsumptionKwh)
	require.Equal(t, 100.30, updated.Total)
}

func TestImportEmptyFails(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.ImportReadings(context.Background(), 1, nil)
	require.ErrorIs(t, err, ErrEmptyImport)
}

func TestImportClosedPeriodFails(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.ImportReadings(context.Background(), 2, []ImportRow{{LotID: 10, ConsumptionKwh: 10}})
	require.ErrorIs(t, err, tariffs.ErrPeriodClosed)
}

func TestPaymentRoundTrip(t *testing.T) {
	svc, repo := newTestService()
	clock := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	svc.WithNow(func() time.Time { return clock })

	rec, err := svc.CreateReading(context.Background(), CreateReadingInput{LotID: 10, PeriodID: 1, ConsumptionKwh: 50})
	require.NoError(t, err)

	require.NoError(t, svc.MarkPaid(context.Background(), rec.ID))
	paid, _ := repo.Get(context.Background(), rec.ID)
	require.Equal(t, StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	require.Equal(t, clock, *paid.PaidAt)

	require.NoError(t, svc.MarkPending(context.Background(), rec.ID))
	pending, _ := repo.Get(context.Background(), rec.ID)
	require.Equal(t, StatusPending, pending.Status)
	require.Nil(t, pending.PaidAt)

	// Paying again stamps a fresh timestamp.
	clock = clock.Add(48 * time.Hour)
	require.NoError(t, svc.MarkPaid(context.Background(), rec.ID))
	repaid, _ := repo.Get(context.Background(), rec.ID)
	require.Equal(t, StatusPaid, repaid.Status)
	require.Equal(t, clock, *repaid.PaidAt)
}

func TestEditConsumptionUsesStoredSnapshot(t *testing.T) {
	svc, repo := newTestService()

	rec, err := svc.CreateReading(context.Background(), CreateReadingInput{LotID: 10, PeriodID: 1, ConsumptionKwh: 50})
	require.NoError(t, err)

	// Change the period's rates after the receipt was issued. The edit must
	// still use the receipt's own snapshot of 0.86 + 10.00.
	svc.periods.(*stubPeriods).periods[1] = tariffs.Period{
		ID: 1, PricePerKwh: 2.00, Surcharge: 50.00, Status: tariffs.PeriodStatusOpen,
	}

	require.NoError(t, svc.EditConsumption(context.Background(), rec.ID, 105))
	edited, _ := repo.Get(context.Background(), rec.ID)
	require.Equal(t, 105.0, edited.ConsumptionKwh)
	require.Equal(t, 100.30, edited.Total)
}

func TestEditConsumptionNegative(t *testing.T) {
	svc, _ := newTestService()
	require.ErrorIs(t, svc.EditConsumption(context.Background(), 1, -5), ErrNegativeConsumption)
}

func TestSetOverdueAndDelete(t *testing.T) {
	svc, repo := newTestService()

	rec, err := svc.CreateReading(context.Background(), CreateReadingInput{LotID: 10, PeriodID: 1, ConsumptionKwh: 50})
	require.NoError(t, err)

	require.NoError(t, svc.SetOverdue(context.Background(), rec.ID))
	overdue, _ := repo.Get(context.Background(), rec.ID)
	require.Equal(t, StatusOverdue, overdue.Status)

	require.NoError(t, svc.Delete(context.Background(), rec.ID))
	_, err = repo.Get(context.Background(), rec.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
