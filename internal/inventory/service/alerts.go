package service

import (
	"context"
	"sort"

	"github.com/smartextemp/extemp-backend/internal/inventory/repository"
	"github.com/smartextemp/extemp-backend/pkg/messaging"
)

// Alert severity levels
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// criticalDays is the days-left threshold below which an expiry alert
// escalates from warning to critical
const criticalDays = 7

// ExpiryAlert is an in-stock lot inside the expiry alert window
type ExpiryAlert struct {
	*EnrichedLot
	Severity string `json:"severity"`
}

// ExpiryAlerts lists in-stock lots expiring within the configured window,
// soonest first. Lots without an expiry date are never alerted.
func (s *Service) ExpiryAlerts(ctx context.Context, locations []string) ([]*ExpiryAlert, error) {
	enriched, err := s.ListLots(ctx, &LotFilter{
		Locations:    locations,
		RecordStatus: repository.RecordInStock,
	})
	if err != nil {
		return nil, err
	}

	var alerts []*ExpiryAlert
	for _, lot := range enriched {
		if lot.DaysLeft == nil || *lot.DaysLeft > s.cfg.ExpiryAlertDays {
			continue
		}
		severity := SeverityWarning
		if *lot.DaysLeft <= criticalDays {
			severity = SeverityCritical
		}
		alerts = append(alerts, &ExpiryAlert{EnrichedLot: lot, Severity: severity})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return *alerts[i].DaysLeft < *alerts[j].DaysLeft
	})

	return alerts, nil
}

// ThawCandidates lists frozen-type lots still sitting frozen in stock
func (s *Service) ThawCandidates(ctx context.Context, locations []string) ([]*EnrichedLot, error) {
	enriched, err := s.ListLots(ctx, &LotFilter{
		Locations:    locations,
		RecordStatus: repository.RecordInStock,
	})
	if err != nil {
		return nil, err
	}

	var candidates []*EnrichedLot
	for _, lot := range enriched {
		if lot.Type == repository.TypeFrozen && lot.Status == repository.StatusFrozen {
			candidates = append(candidates, lot)
		}
	}
	return candidates, nil
}

// PublishExpiryAlerts pushes an event per expiring lot onto the inventory
// exchange. Run periodically from main; no-op without a publisher.
func (s *Service) PublishExpiryAlerts(ctx context.Context) error {
	if s.events == nil {
		return nil
	}

	alerts, err := s.ExpiryAlerts(ctx, nil)
	if err != nil {
		return err
	}

	for _, alert := range alerts {
		s.events.LotExpiring(ctx, &messaging.LotExpiringEvent{
			LotID:      alert.ID,
			DrugName:   alert.DrugName,
			BatchID:    alert.BatchID,
			Location:   alert.Location,
			Quantity:   alert.Qty,
			ExpiryDate: alert.ExpiryDate,
			DaysLeft:   *alert.DaysLeft,
			Severity:   alert.Severity,
		})
	}

	s.logger.Debug().Int("count", len(alerts)).Msg("expiry alerts published")
	return nil
}
