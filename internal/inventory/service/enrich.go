package service

import (
	"time"

	"github.com/smartextemp/extemp-backend/internal/inventory/repository"
)

// EnrichedLot is a stock row joined against the drug master. Derived fields
// are computed on every read and never written back to the stock tab.
type EnrichedLot struct {
	*repository.Lot

	DaysLeft   *int    `json:"days_left"`
	UnitCost   float64 `json:"unit_cost"`
	Type       string  `json:"type"`
	BUDCold    string  `json:"bud_cold"`
	TotalValue float64 `json:"total_value"`
}

// Enrich joins one lot against the drug master as of the given day.
// Enrichment is pure: the underlying lot is not modified, and enriching an
// already-enriched lot's source again yields the same result.
func Enrich(lot *repository.Lot, master *repository.DrugMaster, today time.Time) *EnrichedLot {
	enriched := &EnrichedLot{
		Lot:  lot,
		Type: repository.TypeRoom,
	}

	if master != nil {
		if drug := master.Lookup(lot.DrugName); drug != nil {
			enriched.UnitCost = drug.UnitCost
			enriched.Type = drug.Type
			enriched.BUDCold = drug.BUDCold
		}
	}

	enriched.TotalValue = lot.Qty * enriched.UnitCost

	if lot.ExpiryDate != nil {
		days := int(dateOnly(*lot.ExpiryDate).Sub(dateOnly(today)).Hours() / 24)
		enriched.DaysLeft = &days
	}

	return enriched
}

// EnrichAll joins a whole stock page against the drug master
func EnrichAll(lots []*repository.Lot, master *repository.DrugMaster, today time.Time) []*EnrichedLot {
	enriched := make([]*EnrichedLot, len(lots))
	for i, lot := range lots {
		enriched[i] = Enrich(lot, master, today)
	}
	return enriched
}

// Expired reports whether the lot is past its expiry date. Lots with no
// expiry date never count as expired.
func (e *EnrichedLot) Expired() bool {
	return e.DaysLeft != nil && *e.DaysLeft < 0
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
