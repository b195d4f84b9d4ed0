package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_ValueBuckets(t *testing.T) {
	// Amoxicillin costs 100, Cold Syrup 50
	svc, _ := newTestService(t, [][]string{
		// in stock, produced in window: counts toward in-stock value
		{"lot-1", "2026-08-05", "Amoxicillin Suspension", "B1", "10", "2026-09-15", "Pediatric Ward", "Active", "-", "In_Stock"},
		// transferred and still in stock: in-stock value AND savings
		{"lot-2", "2026-08-10", "Amoxicillin Suspension", "B2", "2", "2026-09-15", "ICU", "Transferred", "jane", "In_Stock"},
		// transferred then dispensed: savings only
		{"lot-3", "2026-08-10", "Cold Syrup", "B3", "4", "2026-09-15", "ICU", "Transferred", "jane", "Dispensed"},
		// dispensed without transfer: neither savings nor waste
		{"lot-4", "2026-08-12", "Cold Syrup", "B4", "6", "2026-09-15", "Pediatric Ward", "Active", "jane", "Dispensed"},
		// disposed: waste; was transferred first, so flagged in the detail
		{"lot-5", "2026-08-15", "Cold Syrup", "B5", "3", "2026-08-20", "ICU", "Transferred", "jane", "Disposed"},
		// produced outside the window: excluded entirely
		{"lot-6", "2026-07-01", "Amoxicillin Suspension", "B6", "99", "2026-09-15", "Pediatric Ward", "Active", "-", "In_Stock"},
		// no production date: excluded
		{"lot-7", "", "Amoxicillin Suspension", "B7", "99", "2026-09-15", "Pediatric Ward", "Active", "-", "In_Stock"},
	})

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	report, err := svc.Report(context.Background(), start, end, nil)
	require.NoError(t, err)

	// in stock: lot-1 (10*100) + lot-2 (2*100)
	assert.Equal(t, 1200.0, report.InStockValue)
	// savings: lot-2 (200) + lot-3 (4*50)
	assert.Equal(t, 400.0, report.SavedValue)
	// waste: lot-5 (3*50)
	assert.Equal(t, 150.0, report.WasteValue)

	require.Len(t, report.WasteDetail, 1)
	assert.Equal(t, "lot-5", report.WasteDetail[0].ID)
	assert.True(t, report.WasteDetail[0].TransferredBeforeWaste)

	// active detail: lot-1, lot-2, lot-3, lot-4
	assert.Len(t, report.ActiveDetail, 4)
	for _, row := range report.ActiveDetail {
		if row.ID == "lot-3" {
			assert.True(t, row.ReceivedByTransfer)
		}
		if row.ID == "lot-4" {
			assert.False(t, row.ReceivedByTransfer)
		}
	}
}

func TestReport_InclusiveBoundsAndLocationFilter(t *testing.T) {
	svc, _ := newTestService(t, [][]string{
		{"lot-start", "2026-08-01", "Amoxicillin Suspension", "B1", "1", "2026-09-15", "Pediatric Ward", "Active", "-", "In_Stock"},
		{"lot-end", "2026-08-31", "Amoxicillin Suspension", "B2", "1", "2026-09-15", "Pediatric Ward", "Active", "-", "In_Stock"},
		{"lot-other-ward", "2026-08-15", "Amoxicillin Suspension", "B3", "1", "2026-09-15", "ICU", "Active", "-", "In_Stock"},
	})

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	report, err := svc.Report(context.Background(), start, end, []string{"Pediatric Ward"})
	require.NoError(t, err)

	// both boundary days included, other ward excluded
	assert.Equal(t, 200.0, report.InStockValue)
	assert.Len(t, report.ActiveDetail, 2)
}
