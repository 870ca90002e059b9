package lookup

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/vecindario/luzvecinal/internal/lots"
	"github.com/vecindario/luzvecinal/internal/receipts"
)

// LotResult is the public debt view for one matched lot.
type LotResult struct {
	Lot           lots.Lot
	Receipts      []HistoryEntry
	Debt          float64
	PendingMonths int
	WhatsAppURL   string
}

// Service answers public debt queries.
type Service struct {
	repo          Repository
	contactNumber string
}

// NewService constructs the lookup service. contactNumber is the community
// administrator's WhatsApp number used for payment coordination links.
func NewService(repo Repository, contactNumber string) *Service {
	return &Service{repo: repo, contactNumber: contactNumber}
}

// Lookup parses the free-text query and returns the matched lots with their
// receipt history and outstanding debt. An empty slice means no lot matched;
// the caller reports that as "not found" without trying other patterns.
func (s *Service) Lookup(ctx context.Context, query string) ([]LotResult, error) {
	filter := ParseQuery(query)
	if filter.Kind == FilterNone {
		return nil, nil
	}

	matched, err := s.repo.FindLots(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return nil, nil
	}

	// One owner's DNI or a bare lot number can map to several lots, so the
	// per-lot histories are fetched concurrently.
	results := make([]LotResult, len(matched))
	g, gctx := errgroup.WithContext(ctx)
	for i, lot := range matched {
		g.Go(func() error {
			history, err := s.repo.History(gctx, lot.ID)
			if err != nil {
				return err
			}
			res := LotResult{Lot: lot, Receipts: history}
			for _, e := range history {
				if e.RawStatus == receipts.StatusPaid {
					continue
				}
				res.Debt += e.Total
				res.PendingMonths++
			}
			if res.Debt > 0 {
				res.WhatsAppURL = BuildWhatsAppURL(s.contactNumber, lot.OwnerName(), lot.Code(), res.Debt, res.PendingMonths)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
