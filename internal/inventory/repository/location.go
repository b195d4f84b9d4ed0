package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/smartextemp/extemp-backend/pkg/errors"
	"github.com/smartextemp/extemp-backend/pkg/logger"
	"github.com/smartextemp/extemp-backend/pkg/tablestore"
)

// LocationRepository reads the configured ward list from the Locations tab
type LocationRepository struct {
	store    tablestore.Store
	tab      string
	cacheTTL time.Duration
	logger   *logger.Logger

	mu        sync.Mutex
	cached    []string
	fetchedAt time.Time
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(store tablestore.Store, tab string, cacheTTL time.Duration, log *logger.Logger) *LocationRepository {
	return &LocationRepository{
		store:    store,
		tab:      tab,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

// List returns the ward names in sheet order, deduplicated
func (r *LocationRepository) List(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	if r.cached != nil && time.Since(r.fetchedAt) < r.cacheTTL {
		locations := append([]string(nil), r.cached...)
		r.mu.Unlock()
		return locations, nil
	}
	r.mu.Unlock()

	snap, err := r.store.ReadAll(ctx, r.tab)
	if err != nil {
		r.logger.Error().Err(err).Str("tab", r.tab).Msg("failed to read locations tab")
		return nil, errors.StoreUnavailable(err)
	}

	cols := columnIndex(snap.Header)
	locIdx := cols.idx("location")
	if locIdx < 0 {
		locIdx = 0
	}

	seen := make(map[string]bool)
	var locations []string
	for _, row := range snap.Rows {
		name := strings.TrimSpace(cell(row, locIdx))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		locations = append(locations, name)
	}

	r.mu.Lock()
	r.cached = append([]string(nil), locations...)
	r.fetchedAt = time.Now()
	r.mu.Unlock()

	return locations, nil
}

// Exists reports whether a ward is configured
func (r *LocationRepository) Exists(ctx context.Context, name string) (bool, error) {
	locations, err := r.List(ctx)
	if err != nil {
		return false, err
	}
	for _, loc := range locations {
		if loc == name {
			return true, nil
		}
	}
	return false, nil
}

// RawSnapshot returns the locations tab exactly as stored
func (r *LocationRepository) RawSnapshot(ctx context.Context) (*tablestore.Snapshot, error) {
	snap, err := r.store.ReadAll(ctx, r.tab)
	if err != nil {
		return nil, errors.StoreUnavailable(err)
	}
	return snap, nil
}

// ReplaceRaw writes an admin-edited locations tab back verbatim
func (r *LocationRepository) ReplaceRaw(ctx context.Context, snap *tablestore.Snapshot) error {
	err := r.store.ReplaceAll(ctx, r.tab, snap)
	r.invalidate()

	if err != nil {
		if errors.Is(err, tablestore.ErrConflict) {
			return errors.WriteConflict()
		}
		return errors.StoreUnavailable(err)
	}
	return nil
}

// invalidate drops the read cache
func (r *LocationRepository) invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
}
