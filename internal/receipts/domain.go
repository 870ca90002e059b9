package receipts

import (
	"errors"
	"time"
)

// Status enumerates receipt payment states.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
	StatusOverdue Status = "OVERDUE"
)

// Label is the Spanish display text for the status.
func (s Status) Label() string {
	switch s {
	case StatusPaid:
		return "Pagado"
	case StatusOverdue:
		return "Vencido"
	default:
		return "Pendiente"
	}
}

// Badge is the CSS badge class suffix for the status.
func (s Status) Badge() string {
	switch s {
	case StatusPaid:
		return "pagado"
	case StatusOverdue:
		return "vencido"
	default:
		return "pendiente"
	}
}

// Receipt is one lot's bill for one period. Price and surcharge are
// snapshots taken when the reading was entered; the period's current rates
// only reach existing receipts through an explicit tariff edit.
type Receipt struct {
	ID             int64
	LotID          int64
	PeriodID       int64
	ConsumptionKwh float64
	PricePerKwh    float64
	Surcharge      float64
	Subtotal       float64
	Total          float64
	Status         Status
	PaidAt         *time.Time
	CreatedAt      time.Time
}

// ReceiptWithLot joins the owning lot's display fields for admin tables.
type ReceiptWithLot struct {
	Receipt
	LotCode   string
	OwnerName string
	Phone     string
}

// CreateReadingInput is the single-entry path for recording a meter reading.
type CreateReadingInput struct {
	LotID          int64
	PeriodID       int64
	ConsumptionKwh float64
}

// ImportRow is one resolved row of a bulk import.
type ImportRow struct {
	LotID          int64
	ConsumptionKwh float64
}

var (
	// ErrNotFound indicates an unknown receipt.
	ErrNotFound = errors.New("receipts: not found")
	// ErrDuplicate is returned by the single-entry path when the lot already
	// has a receipt for the period. The bulk import path upserts instead.
	ErrDuplicate = errors.New("receipts: receipt already exists for this lot and period")
	// ErrNegativeConsumption rejects readings below zero.
	ErrNegativeConsumption = errors.New("receipts: consumption cannot be negative")
	// ErrEmptyImport is returned when a bulk import resolves zero rows.
	ErrEmptyImport = errors.New("receipts: no readings to import")
)
