package lots

import (
	"fmt"
	"time"
)

// ServiceType classifies how a lot consumes the shared service.
type ServiceType string

const (
	ServiceInhabited       ServiceType = "INHABITED"
	ServiceMaintenanceOnly ServiceType = "MAINTENANCE_ONLY"
	ServiceVacant          ServiceType = "VACANT"
)

// Lot is a billable property identified by block letter and lot number.
type Lot struct {
	ID         int64
	Block      string
	LotNumber  int
	FirstNames string
	LastNames  string
	NationalID string
	Phone      string
	Service    ServiceType
	CreatedAt  time.Time
}

// Code renders the community's lot notation, e.g. "MZ A - LT 1".
func (l Lot) Code() string {
	return fmt.Sprintf("MZ %s - LT %d", l.Block, l.LotNumber)
}

// OwnerName joins the owner name fields for display.
func (l Lot) OwnerName() string {
	switch {
	case l.FirstNames == "":
		return l.LastNames
	case l.LastNames == "":
		return l.FirstNames
	default:
		return l.FirstNames + " " + l.LastNames
	}
}

// ValidServiceType reports whether s is a known service type.
func ValidServiceType(s ServiceType) bool {
	switch s {
	case ServiceInhabited, ServiceMaintenanceOnly, ServiceVacant:
		return true
	default:
		return false
	}
}
