package reports

import (
	"context"
	"fmt"

	"github.com/vecindario/luzvecinal/internal/tariffs"
)

// PeriodsPort exposes the period registry the dashboard needs.
type PeriodsPort interface {
	ListPeriods(ctx context.Context) ([]tariffs.Period, error)
}

// Service assembles reporting views.
type Service struct {
	repo    Repository
	periods PeriodsPort
}

// NewService constructs a reports service.
func NewService(repo Repository, periods PeriodsPort) *Service {
	return &Service{repo: repo, periods: periods}
}

// Summaries returns the per-period billing figures, newest first.
func (s *Service) Summaries(ctx context.Context) ([]PeriodSummary, error) {
	return s.repo.PeriodSummaries(ctx)
}

// Debtors returns every lot with unpaid receipts, largest debt first.
func (s *Service) Debtors(ctx context.Context) ([]Debtor, error) {
	return s.repo.Debtors(ctx)
}

// Dashboard aggregates the admin landing page figures. CurrentPeriod is the
// most recent OPEN period, or nil when none is open.
func (s *Service) Dashboard(ctx context.Context) (Overview, *tariffs.Period, error) {
	overview, err := s.repo.Overview(ctx)
	if err != nil {
		return Overview{}, nil, err
	}

	periods, err := s.periods.ListPeriods(ctx)
	if err != nil {
		return Overview{}, nil, err
	}
	var current *tariffs.Period
	for i := range periods {
		if periods[i].IsOpen() {
			current = &periods[i]
			break
		}
	}
	return overview, current, nil
}

func lotCode(block string, number int) string {
	return fmt.Sprintf("MZ %s - LT %d", block, number)
}
