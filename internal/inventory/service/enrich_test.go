package service

import (
	"context"
	"testing"
	"time"

	"github.com/smartextemp/extemp-backend/internal/inventory/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadMaster(t *testing.T, svc *Service) *repository.DrugMaster {
	t.Helper()
	master, err := svc.drugs.Load(context.Background())
	require.NoError(t, err)
	return master
}

func TestEnrich_JoinsDrugMaster(t *testing.T) {
	svc, _ := newTestService(t, nil)
	master := loadMaster(t, svc)

	expiry := time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC)
	lot := &repository.Lot{
		DrugName:     "Frozen Mix",
		Qty:          3,
		ExpiryDate:   &expiry,
		RecordStatus: repository.RecordInStock,
	}

	enriched := Enrich(lot, master, testToday)
	assert.Equal(t, 200.0, enriched.UnitCost)
	assert.Equal(t, repository.TypeFrozen, enriched.Type)
	assert.Equal(t, "7 วัน", enriched.BUDCold)
	assert.Equal(t, 600.0, enriched.TotalValue)
	require.NotNil(t, enriched.DaysLeft)
	assert.Equal(t, 10, *enriched.DaysLeft)
	assert.False(t, enriched.Expired())
}

func TestEnrich_WhitespaceInsensitiveJoin(t *testing.T) {
	svc, _ := newTestService(t, nil)
	master := loadMaster(t, svc)

	lot := &repository.Lot{DrugName: "  frozen   MIX ", Qty: 1}
	enriched := Enrich(lot, master, testToday)
	assert.Equal(t, 200.0, enriched.UnitCost)
}

func TestEnrich_UnknownDrugDefaults(t *testing.T) {
	svc, _ := newTestService(t, nil)
	master := loadMaster(t, svc)

	lot := &repository.Lot{DrugName: "Not In Master", Qty: 5}
	enriched := Enrich(lot, master, testToday)
	assert.Equal(t, 0.0, enriched.UnitCost)
	assert.Equal(t, repository.TypeRoom, enriched.Type)
	assert.Equal(t, 0.0, enriched.TotalValue)
	assert.Nil(t, enriched.DaysLeft)
	assert.False(t, enriched.Expired())
}

func TestEnrich_ExpiredAndIdempotent(t *testing.T) {
	svc, _ := newTestService(t, nil)
	master := loadMaster(t, svc)

	expiry := time.Date(2026, 8, 28, 23, 59, 0, 0, time.UTC) // yesterday
	lot := &repository.Lot{DrugName: "Cold Syrup", Qty: 2, ExpiryDate: &expiry}

	first := Enrich(lot, master, testToday)
	require.NotNil(t, first.DaysLeft)
	assert.Equal(t, -1, *first.DaysLeft)
	assert.True(t, first.Expired())

	// enrichment does not mutate the lot; repeating it yields the same result
	second := Enrich(lot, master, testToday)
	assert.Equal(t, *first.DaysLeft, *second.DaysLeft)
	assert.Equal(t, first.TotalValue, second.TotalValue)
	assert.Equal(t, first.Type, second.Type)
}
