package lots

import (
	"context"
	"fmt"

	"github.com/vecindario/luzvecinal/internal/receipts"
	"github.com/vecindario/luzvecinal/internal/shared"
)

var (
	ErrLotNotFound  = fmt.Errorf("lots: %w", shared.ErrNotFound)
	ErrDuplicateLot = fmt.Errorf("lots: duplicate block and number: %w", shared.ErrAlreadyExists)

	errInvalidServiceType = shared.NewUserError("Tipo de servicio no válido.")
	errInvalidPhone       = shared.NewUserError("El celular solo puede contener dígitos.")
)

// Service exposes lot management operations.
type Service struct {
	repo Repository
}

// NewService constructs a lot service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns a page of lots, optionally filtered by owner name or DNI.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Lot, int, error) {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	return s.repo.List(ctx, filters)
}

// ListRefs returns the lightweight lot references used by the CSV importer
// to resolve block/number pairs to lot IDs.
func (s *Service) ListRefs(ctx context.Context) ([]receipts.LotRef, error) {
	return s.repo.ListRefs(ctx)
}

// Get fetches a single lot by ID.
func (s *Service) Get(ctx context.Context, id int64) (Lot, error) {
	return s.repo.Get(ctx, id)
}

// Create validates the form and persists a new lot.
func (s *Service) Create(ctx context.Context, form LotForm) (Lot, error) {
	form.Normalize()
	if err := form.Validate(); err != nil {
		return Lot{}, fmt.Errorf("validate lot: %w", err)
	}
	return s.repo.Create(ctx, form)
}

// Update validates the form and updates an existing lot.
func (s *Service) Update(ctx context.Context, id int64, form LotForm) error {
	form.Normalize()
	if err := form.Validate(); err != nil {
		return fmt.Errorf("validate lot: %w", err)
	}
	return s.repo.Update(ctx, id, form)
}

// Delete removes the lot and every receipt issued to it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteCascade(ctx, id)
}
