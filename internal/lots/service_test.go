package lots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vecindario/luzvecinal/internal/receipts"
)

type memoryLotRepo struct {
	lots            map[int64]*Lot
	receiptsByLot   map[int64]int
	nextID          int64
	deletedReceipts []int64
}

func newMemoryLotRepo() *memoryLotRepo {
	return &memoryLotRepo{
		lots:          make(map[int64]*Lot),
		receiptsByLot: make(map[int64]int),
	}
}

func (r *memoryLotRepo) List(ctx context.Context, filters ListFilters) ([]Lot, int, error) {
	var out []Lot
	for _, l := range r.lots {
		out = append(out, *l)
	}
	return out, len(out), nil
}

func (r *memoryLotRepo) ListRefs(ctx context.Context) ([]receipts.LotRef, error) {
	var refs []receipts.LotRef
	for _, l := range r.lots {
		refs = append(refs, receipts.LotRef{ID: l.ID, Block: l.Block, LotNumber: l.LotNumber})
	}
	return refs, nil
}

func (r *memoryLotRepo) Get(ctx context.Context, id int64) (Lot, error) {
	l, ok := r.lots[id]
	if !ok {
		return Lot{}, ErrLotNotFound
	}
	return *l, nil
}

func (r *memoryLotRepo) Create(ctx context.Context, form LotForm) (Lot, error) {
	for _, l := range r.lots {
		if l.Block == form.Block && l.LotNumber == form.LotNumber {
			return Lot{}, ErrDuplicateLot
		}
	}
	r.nextID++
	l := Lot{
		ID:         r.nextID,
		Block:      form.Block,
		LotNumber:  form.LotNumber,
		FirstNames: form.FirstNames,
		LastNames:  form.LastNames,
		NationalID: form.NationalID,
		Phone:      form.Phone,
		Service:    form.Service,
		CreatedAt:  time.Now(),
	}
	r.lots[l.ID] = &l
	return l, nil
}

func (r *memoryLotRepo) Update(ctx context.Context, id int64, form LotForm) error {
	l, ok := r.lots[id]
	if !ok {
		return ErrLotNotFound
	}
	l.Block = form.Block
	l.LotNumber = form.LotNumber
	l.FirstNames = form.FirstNames
	l.LastNames = form.LastNames
	l.NationalID = form.NationalID
	l.Phone = form.Phone
	l.Service = form.Service
	return nil
}

func (r *memoryLotRepo) DeleteCascade(ctx context.Context, id int64) error {
	if _, ok := r.lots[id]; !ok {
		return ErrLotNotFound
	}
	delete(r.lots, id)
	r.receiptsByLot[id] = 0
	r.deletedReceipts = append(r.deletedReceipts, id)
	return nil
}

func TestCreateLotNormalizesInput(t *testing.T) {
	svc := NewService(newMemoryLotRepo())

	lot, err := svc.Create(context.Background(), LotForm{
		Block:      " a ",
		LotNumber:  1,
		FirstNames: "maría",
		LastNames:  "quispe huamán",
		NationalID: " 45678912 ",
	})
	require.NoError(t, err)
	require.Equal(t, "A", lot.Block)
	require.Equal(t, "MARÍA", lot.FirstNames)
	require.Equal(t, "QUISPE HUAMÁN", lot.LastNames)
	require.Equal(t, "45678912", lot.NationalID)
	require.Equal(t, ServiceInhabited, lot.Service)
	require.Equal(t, "MZ A - LT 1", lot.Code())
}

func TestCreateLotDuplicateCode(t *testing.T) {
	svc := NewService(newMemoryLotRepo())

	_, err := svc.Create(context.Background(), LotForm{Block: "A", LotNumber: 1})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), LotForm{Block: "a", LotNumber: 1})
	require.ErrorIs(t, err, ErrDuplicateLot)
}

func TestCreateLotValidation(t *testing.T) {
	svc := NewService(newMemoryLotRepo())

	cases := []struct {
		name string
		form LotForm
	}{
		{"missing block", LotForm{LotNumber: 1}},
		{"long block", LotForm{Block: "AB", LotNumber: 1}},
		{"zero lot number", LotForm{Block: "A"}},
		{"short national id", LotForm{Block: "A", LotNumber: 1, NationalID: "123"}},
		{"letters in phone", LotForm{Block: "A", LotNumber: 1, Phone: "99-88-77abc"}},
		{"bad service type", LotForm{Block: "A", LotNumber: 1, Service: "PALACE"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.form)
			require.Error(t, err)
		})
	}
}

func TestUpdateLot(t *testing.T) {
	repo := newMemoryLotRepo()
	svc := NewService(repo)

	lot, err := svc.Create(context.Background(), LotForm{Block: "A", LotNumber: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Update(context.Background(), lot.ID, LotForm{
		Block:      "A",
		LotNumber:  1,
		FirstNames: "rosa",
		Service:    ServiceVacant,
	}))

	updated, err := svc.Get(context.Background(), lot.ID)
	require.NoError(t, err)
	require.Equal(t, "ROSA", updated.FirstNames)
	require.Equal(t, ServiceVacant, updated.Service)
}

func TestDeleteLotCascades(t *testing.T) {
	repo := newMemoryLotRepo()
	svc := NewService(repo)

	lot, err := svc.Create(context.Background(), LotForm{Block: "A", LotNumber: 1})
	require.NoError(t, err)
	repo.receiptsByLot[lot.ID] = 3

	require.NoError(t, svc.Delete(context.Background(), lot.ID))

	_, err = svc.Get(context.Background(), lot.ID)
	require.ErrorIs(t, err, ErrLotNotFound)
	require.Zero(t, repo.receiptsByLot[lot.ID])
	require.Contains(t, repo.deletedReceipts, lot.ID)
}

func TestOwnerName(t *testing.T) {
	require.Equal(t, "MARIA QUISPE", Lot{FirstNames: "MARIA", LastNames: "QUISPE"}.OwnerName())
	require.Equal(t, "MARIA", Lot{FirstNames: "MARIA"}.OwnerName())
	require.Equal(t, "QUISPE", Lot{LastNames: "QUISPE"}.OwnerName())
}
