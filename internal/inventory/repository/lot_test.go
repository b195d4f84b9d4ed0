package repository

import (
	"context"
	"testing"
	"time"

	"github.com/smartextemp/extemp-backend/pkg/errors"
	"github.com/smartextemp/extemp-backend/pkg/logger"
	"github.com/smartextemp/extemp-backend/pkg/tablestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stockHeader = []string{
	"Lot_ID", "Date_Produced", "Drug_Name", "Batch_ID", "Qty",
	"Expiry_Date", "Location", "Status", "Action_By", "Record_Status",
}

func newLotRepo(t *testing.T, store *tablestore.MemoryStore, ttl time.Duration) *LotRepository {
	t.Helper()
	return NewLotRepository(store, "Stock", ttl, logger.New("test", "test"))
}

func TestLoad_ParsesRows(t *testing.T) {
	store := tablestore.NewMemoryStore()
	store.Seed("Stock", stockHeader, [][]string{
		{"lot-1", "2026-08-01", "Paracetamol Suspension", "B001", "100", "2026-09-01", "Pediatric Ward", "Active", "jane", "In_Stock"},
		{"lot-2", "", "Omeprazole", "B002", "2.5", "", "Pharmacy", "Frozen", "jane", "In_Stock"},
	})

	page, err := newLotRepo(t, store, 0).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, page.Lots, 2)

	first := page.Lots[0]
	assert.Equal(t, "lot-1", first.ID)
	assert.Equal(t, "Paracetamol Suspension", first.DrugName)
	assert.Equal(t, 100.0, first.Qty)
	require.NotNil(t, first.ExpiryDate)
	assert.Equal(t, "2026-09-01", first.ExpiryDate.Format("2006-01-02"))

	second := page.Lots[1]
	assert.Equal(t, 2.5, second.Qty)
	assert.Nil(t, second.DateProduced)
	assert.Nil(t, second.ExpiryDate)
}

func TestLoad_MigratesLegacyRows(t *testing.T) {
	// legacy sheet: no Lot_ID, Status, Action_By or Record_Status columns
	store := tablestore.NewMemoryStore()
	store.Seed("Stock", []string{"Date_Produced", "Drug_Name", "Batch_ID", "Qty", "Expiry_Date", "Location"}, [][]string{
		{"2026-08-01", "Paracetamol Suspension", "B001", "50", "2026-09-01", "Pediatric Ward"},
		{"2026-07-01", "Omeprazole", "B002", "10", "2026-07-20", "Disposal"},
	})

	page, err := newLotRepo(t, store, 0).Load(context.Background())
	require.NoError(t, err)

	first := page.Lots[0]
	assert.NotEmpty(t, first.ID) // synthetic id assigned
	assert.Equal(t, StatusActive, first.Status)
	assert.Equal(t, "-", first.ActionBy)
	assert.Equal(t, RecordInStock, first.RecordStatus)

	// rows parked at the Disposal location become Disposed records
	assert.Equal(t, RecordDisposed, page.Lots[1].RecordStatus)
}

func TestReplace_RoundTripPreservesExtraColumns(t *testing.T) {
	header := append(append([]string(nil), stockHeader...), "Is_Saved")
	store := tablestore.NewMemoryStore()
	store.Seed("Stock", header, [][]string{
		{"lot-1", "2026-08-01", "Paracetamol Suspension", "B001", "100", "2026-09-01", "Pediatric Ward", "Active", "jane", "In_Stock", "FALSE"},
	})

	repo := newLotRepo(t, store, 0)
	ctx := context.Background()

	page, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "FALSE", page.Lots[0].Extra["Is_Saved"])

	page.Lots[0].Qty = 70
	require.NoError(t, repo.Replace(ctx, page))

	again, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 70.0, again.Lots[0].Qty)
	assert.Equal(t, "FALSE", again.Lots[0].Extra["Is_Saved"])
}

func TestReplace_DropsDerivedColumns(t *testing.T) {
	header := append(append([]string(nil), stockHeader...), "Days_Left", "Total_Value")
	store := tablestore.NewMemoryStore()
	store.Seed("Stock", header, [][]string{
		{"lot-1", "2026-08-01", "Paracetamol Suspension", "B001", "100", "2026-09-01", "Pediatric Ward", "Active", "jane", "In_Stock", "12", "500"},
	})

	repo := newLotRepo(t, store, 0)
	ctx := context.Background()

	page, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Replace(ctx, page))

	snap, err := store.ReadAll(ctx, "Stock")
	require.NoError(t, err)
	assert.NotContains(t, snap.Header, "Days_Left")
	assert.NotContains(t, snap.Header, "Total_Value")
}

func TestReplace_ConflictSurfacesAsWriteConflict(t *testing.T) {
	store := tablestore.NewMemoryStore()
	store.Seed("Stock", stockHeader, [][]string{
		{"lot-1", "2026-08-01", "Paracetamol Suspension", "B001", "100", "2026-09-01", "Pediatric Ward", "Active", "jane", "In_Stock"},
	})

	repo := newLotRepo(t, store, 0)
	ctx := context.Background()

	page, err := repo.Load(ctx)
	require.NoError(t, err)

	// another writer replaces the tab in between
	other, err := store.ReadAll(ctx, "Stock")
	require.NoError(t, err)
	require.NoError(t, store.ReplaceAll(ctx, "Stock", other))

	err = repo.Replace(ctx, page)
	assert.ErrorIs(t, err, errors.ErrWriteConflict)
}

func TestLoad_CachesWithinTTL(t *testing.T) {
	store := tablestore.NewMemoryStore()
	store.Seed("Stock", stockHeader, [][]string{
		{"lot-1", "2026-08-01", "Paracetamol Suspension", "B001", "100", "2026-09-01", "Pediatric Ward", "Active", "jane", "In_Stock"},
	})

	repo := newLotRepo(t, store, time.Minute)
	ctx := context.Background()

	page, err := repo.Load(ctx)
	require.NoError(t, err)

	// out-of-band change is invisible until the cache is invalidated
	store.Seed("Stock", stockHeader, nil)

	cached, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, cached.Lots, 1)

	repo.invalidate()
	fresh, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, fresh.Lots)

	// cached pages are private copies
	page.Lots[0].Qty = 999
	repo.invalidate()
	_ = page
}

func TestParseQty(t *testing.T) {
	assert.Equal(t, 100.0, parseQty("100"))
	assert.Equal(t, 2.5, parseQty(" 2.5 "))
	assert.Equal(t, 1250.0, parseQty("1,250"))
	assert.Equal(t, 0.0, parseQty(""))
	assert.Equal(t, 0.0, parseQty("ten"))
}

func TestFormatQty(t *testing.T) {
	assert.Equal(t, "100", formatQty(100))
	assert.Equal(t, "2.5", formatQty(2.5))
	assert.Equal(t, "0", formatQty(0))
}

func TestParseDate_Lenient(t *testing.T) {
	d := parseDate("2026-08-01 00:00:00")
	require.NotNil(t, d)
	assert.Equal(t, "2026-08-01", d.Format("2006-01-02"))

	assert.Nil(t, parseDate("not a date"))
	assert.Nil(t, parseDate(""))
}
