package tariffs

import (
	"errors"
	"time"
)

// PeriodStatus enumerates the billing window states.
type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "OPEN"
	PeriodStatusClosed PeriodStatus = "CLOSED"
)

// Period is one calendar month's tariff snapshot. The month never changes
// after creation; only the rates and the open/closed status do.
type Period struct {
	ID          int64
	Period      time.Time // first day of the month
	PricePerKwh float64
	Surcharge   float64 // fixed public-lighting charge
	Status      PeriodStatus
	CreatedAt   time.Time
}

// IsOpen reports whether new receipts may be issued against the period.
func (p Period) IsOpen() bool {
	return p.Status == PeriodStatusOpen
}

// CreatePeriodInput captures the fields needed to open a new billing month.
type CreatePeriodInput struct {
	Month       time.Time
	PricePerKwh float64
	Surcharge   float64
}

// Validate ensures the input is coherent before touching the store.
func (in CreatePeriodInput) Validate() error {
	if in.Month.IsZero() {
		return errors.New("tariffs: month required")
	}
	if in.PricePerKwh <= 0 {
		return errors.New("tariffs: price per kWh must be positive")
	}
	if in.Surcharge < 0 {
		return errors.New("tariffs: surcharge cannot be negative")
	}
	return nil
}

// UpdateTariffInput carries a rate edit for an existing period.
type UpdateTariffInput struct {
	PricePerKwh float64
	Surcharge   float64
}

// Validate checks the new rates.
func (in UpdateTariffInput) Validate() error {
	if in.PricePerKwh <= 0 {
		return errors.New("tariffs: price per kWh must be positive")
	}
	if in.Surcharge < 0 {
		return errors.New("tariffs: surcharge cannot be negative")
	}
	return nil
}

// ErrDuplicatePeriod is returned when a period already exists for the month.
var ErrDuplicatePeriod = errors.New("tariffs: period already exists for that month")

// ErrPeriodNotFound indicates an unknown period.
var ErrPeriodNotFound = errors.New("tariffs: period not found")

// ErrPeriodClosed is returned when an operation requires an open period.
var ErrPeriodClosed = errors.New("tariffs: period is closed")
