package service

import (
	"context"
	"sort"

	"github.com/smartextemp/extemp-backend/internal/inventory/repository"
)

// LotFilter narrows a stock listing
type LotFilter struct {
	Locations    []string
	RecordStatus string
	DrugName     string
}

func (f *LotFilter) matches(lot *repository.Lot) bool {
	if f.RecordStatus != "" && lot.RecordStatus != f.RecordStatus {
		return false
	}
	if f.DrugName != "" && repository.NormalizeName(lot.DrugName) != repository.NormalizeName(f.DrugName) {
		return false
	}
	if len(f.Locations) > 0 {
		found := false
		for _, loc := range f.Locations {
			if lot.Location == loc {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ListLots returns enriched stock rows sorted soonest-to-expire first,
// undated rows last
func (s *Service) ListLots(ctx context.Context, filter *LotFilter) ([]*EnrichedLot, error) {
	master, err := s.drugs.Load(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.lots.Load(ctx)
	if err != nil {
		return nil, err
	}

	today := s.now()
	enriched := make([]*EnrichedLot, 0, len(page.Lots))
	for _, lot := range page.Lots {
		if filter != nil && !filter.matches(lot) {
			continue
		}
		enriched = append(enriched, Enrich(lot, master, today))
	}

	sort.SliceStable(enriched, func(i, j int) bool {
		a, b := enriched[i].DaysLeft, enriched[j].DaysLeft
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})

	return enriched, nil
}

// SummaryRow is one drug's in-stock quantity at one ward
type SummaryRow struct {
	DrugName string  `json:"drug_name"`
	Location string  `json:"location"`
	Qty      float64 `json:"qty"`
}

// Summary aggregates in-stock quantity by drug and ward
func (s *Service) Summary(ctx context.Context, locations []string) ([]SummaryRow, error) {
	page, err := s.lots.Load(ctx)
	if err != nil {
		return nil, err
	}

	filter := &LotFilter{Locations: locations, RecordStatus: repository.RecordInStock}

	type key struct{ drug, location string }
	totals := make(map[key]float64)
	for _, lot := range page.Lots {
		if !filter.matches(lot) {
			continue
		}
		totals[key{lot.DrugName, lot.Location}] += lot.Qty
	}

	rows := make([]SummaryRow, 0, len(totals))
	for k, qty := range totals {
		rows = append(rows, SummaryRow{DrugName: k.drug, Location: k.location, Qty: qty})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DrugName != rows[j].DrugName {
			return rows[i].DrugName < rows[j].DrugName
		}
		return rows[i].Location < rows[j].Location
	})

	return rows, nil
}

// Locations lists the configured wards
func (s *Service) Locations(ctx context.Context) ([]string, error) {
	return s.locations.List(ctx)
}

// Drugs lists the drug master
func (s *Service) Drugs(ctx context.Context) ([]*repository.Drug, error) {
	master, err := s.drugs.Load(ctx)
	if err != nil {
		return nil, err
	}
	return master.Drugs, nil
}
