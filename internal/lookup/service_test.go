package lookup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vecindario/luzvecinal/internal/lots"
	"github.com/vecindario/luzvecinal/internal/receipts"
)

type stubLookupRepo struct {
	lots    []lots.Lot
	history map[int64][]HistoryEntry
}

func (s *stubLookupRepo) FindLots(ctx context.Context, filter Filter) ([]lots.Lot, error) {
	var out []lots.Lot
	for _, l := range s.lots {
		switch filter.Kind {
		case FilterBlockNumber:
			if l.Block == filter.Block && l.LotNumber == filter.Number {
				out = append(out, l)
			}
		case FilterNumber:
			if l.LotNumber == filter.Number {
				out = append(out, l)
			}
		case FilterNationalID:
			if l.NationalID == filter.NationalID {
				out = append(out, l)
			}
		}
	}
	return out, nil
}

func (s *stubLookupRepo) History(ctx context.Context, lotID int64) ([]HistoryEntry, error) {
	return s.history[lotID], nil
}

func entry(month time.Month, total float64, status receipts.Status) HistoryEntry {
	return HistoryEntry{
		Period:    time.Date(2026, month, 1, 0, 0, 0, 0, time.UTC),
		Total:     total,
		RawStatus: status,
	}
}

func newLookupService() *Service {
	repo := &stubLookupRepo{
		lots: []lots.Lot{
			{ID: 1, Block: "A", LotNumber: 1, FirstNames: "MARIA", LastNames: "QUISPE", NationalID: "45678912", Phone: "+51987654321"},
			{ID: 2, Block: "B", LotNumber: 1, FirstNames: "JORGE", LastNames: "MAMANI", NationalID: "45678912"},
			{ID: 3, Block: "I", LotNumber: 6, FirstNames: "PEDRO", LastNames: "CCOPA", NationalID: "43456789"},
		},
		history: map[int64][]HistoryEntry{
			1: {
				entry(time.February, 100.30, receipts.StatusPending),
				entry(time.January, 55.00, receipts.StatusOverdue),
				entry(time.December, 60.00, receipts.StatusPaid),
			},
			2: {entry(time.January, 40.00, receipts.StatusPaid)},
			3: {entry(time.January, 30.00, receipts.StatusPending)},
		},
	}
	return NewService(repo, "51921248292")
}

func TestLookupDebtAggregation(t *testing.T) {
	svc := newLookupService()

	results, err := svc.Lookup(context.Background(), "A-1")
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	require.Equal(t, int64(1), res.Lot.ID)
	require.Len(t, res.Receipts, 3)
	// Pending and overdue both count as debt; paid does not.
	require.InDelta(t, 155.30, res.Debt, 1e-9)
	require.Equal(t, 2, res.PendingMonths)
	require.Contains(t, res.WhatsAppURL, "wa.me/51921248292")
}

func TestLookupPaidLotHasNoLink(t *testing.T) {
	svc := newLookupService()

	results, err := svc.Lookup(context.Background(), "B1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Zero(t, results[0].Debt)
	require.Empty(t, results[0].WhatsAppURL)
}

func TestLookupNationalIDMayMatchSeveralLots(t *testing.T) {
	svc := newLookupService()

	results, err := svc.Lookup(context.Background(), "45678912")
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestLookupNumberAcrossBlocks(t *testing.T) {
	svc := newLookupService()

	results, err := svc.Lookup(context.Background(), "LT 1")
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestLookupNoMatchIsEmpty(t *testing.T) {
	svc := newLookupService()

	// Syntactically valid lot code with zero rows: reported as not found,
	// never retried as a national-ID query.
	results, err := svc.Lookup(context.Background(), "Z-99")
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestLookupEmptyQuery(t *testing.T) {
	svc := newLookupService()

	results, err := svc.Lookup(context.Background(), "  ")
	require.NoError(t, err)
	require.Empty(t, results)
}
