package tablestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ReadMissingTable(t *testing.T) {
	store := NewMemoryStore()

	snap, err := store.ReadAll(context.Background(), "Stock")
	require.NoError(t, err)
	assert.Nil(t, snap.Header)
	assert.Empty(t, snap.Rows)
	assert.Zero(t, snap.Revision)
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	snap, err := store.ReadAll(ctx, "Stock")
	require.NoError(t, err)

	snap.Header = []string{"Drug_Name", "Qty"}
	snap.Rows = [][]string{{"Paracetamol Suspension", "100"}, {"Omeprazole", "nan"}}
	require.NoError(t, store.ReplaceAll(ctx, "Stock", snap))

	got, err := store.ReadAll(ctx, "Stock")
	require.NoError(t, err)
	assert.Equal(t, []string{"Drug_Name", "Qty"}, got.Header)
	// sentinel cleaned on write
	assert.Equal(t, [][]string{{"Paracetamol Suspension", "100"}, {"Omeprazole", ""}}, got.Rows)
	assert.Equal(t, int64(1), got.Revision)
}

func TestMemoryStore_RevisionConflict(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.Seed("Stock", []string{"Drug_Name"}, [][]string{{"A"}})

	first, err := store.ReadAll(ctx, "Stock")
	require.NoError(t, err)
	second, err := store.ReadAll(ctx, "Stock")
	require.NoError(t, err)

	first.Rows = [][]string{{"B"}}
	require.NoError(t, store.ReplaceAll(ctx, "Stock", first))

	second.Rows = [][]string{{"C"}}
	err = store.ReplaceAll(ctx, "Stock", second)
	assert.ErrorIs(t, err, ErrConflict)

	// the first write survives
	got, err := store.ReadAll(ctx, "Stock")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"B"}}, got.Rows)
}

func TestMemoryStore_SnapshotIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.Seed("Stock", []string{"Drug_Name"}, [][]string{{"A"}})

	snap, err := store.ReadAll(ctx, "Stock")
	require.NoError(t, err)
	snap.Rows[0][0] = "mutated"

	again, err := store.ReadAll(ctx, "Stock")
	require.NoError(t, err)
	assert.Equal(t, "A", again.Rows[0][0])
}
