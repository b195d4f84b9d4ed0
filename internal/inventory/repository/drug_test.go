package repository

import (
	"context"
	"testing"

	"github.com/smartextemp/extemp-backend/pkg/logger"
	"github.com/smartextemp/extemp-backend/pkg/tablestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrugMaster_FuzzyColumnsAndLookup(t *testing.T) {
	store := tablestore.NewMemoryStore()
	store.Seed("Drugs", []string{"Drug_Name", "ราคาต่อหน่วย (Cost)", "ประเภท Type", "BUD_Room", "BUD_Cold", "BUD_Frozen"}, [][]string{
		{"Paracetamol Suspension", "฿ 1,250.50", "Cold", "1 day", "30 days", ""},
		{"Omeprazole Syrup", "85", "Frozen", "", "14 วัน", "90 days"},
		{"Mystery Compound", "free", "", "", "", ""},
	})

	master, err := NewDrugRepository(store, "Drugs", 0, logger.New("test", "test")).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, master.Drugs, 3)

	para := master.Lookup("paracetamolsuspension")
	require.NotNil(t, para)
	assert.Equal(t, 1250.50, para.UnitCost)
	assert.Equal(t, TypeCold, para.Type)
	assert.Equal(t, "30 days", para.BUDCold)

	// merge key strips whitespace and case
	assert.NotNil(t, master.Lookup("  Paracetamol   Suspension "))

	// unparseable cost and empty type get safe defaults
	mystery := master.Lookup("MysteryCompound")
	require.NotNil(t, mystery)
	assert.Equal(t, 0.0, mystery.UnitCost)
	assert.Equal(t, TypeRoom, mystery.Type)

	assert.Nil(t, master.Lookup("Unknown Drug"))
}

func TestParseUnitCost(t *testing.T) {
	assert.Equal(t, 1250.50, parseUnitCost("฿ 1,250.50"))
	assert.Equal(t, 85.0, parseUnitCost("85"))
	assert.Equal(t, 0.0, parseUnitCost(""))
	assert.Equal(t, 0.0, parseUnitCost("call pharmacy"))
}

func TestLocationRepository_List(t *testing.T) {
	store := tablestore.NewMemoryStore()
	store.Seed("Locations", []string{"Location"}, [][]string{
		{"Pediatric Ward"},
		{"Pharmacy"},
		{"Pediatric Ward"}, // duplicate
		{""},
	})

	repo := NewLocationRepository(store, "Locations", 0, logger.New("test", "test"))
	locations, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Pediatric Ward", "Pharmacy"}, locations)

	ok, err := repo.Exists(context.Background(), "Pharmacy")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(context.Background(), "ICU")
	require.NoError(t, err)
	assert.False(t, ok)
}
