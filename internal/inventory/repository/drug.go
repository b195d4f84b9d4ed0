package repository

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/smartextemp/extemp-backend/pkg/errors"
	"github.com/smartextemp/extemp-backend/pkg/logger"
	"github.com/smartextemp/extemp-backend/pkg/tablestore"
)

// Storage type values from the drug master
const (
	TypeRoom   = "Room"
	TypeCold   = "Cold"
	TypeFrozen = "Frozen"
)

// Drug is one row of the drug master tab. BUD fields stay as raw text;
// shelf-life day counts are parsed at the point of use.
type Drug struct {
	Name      string  `json:"drug_name"`
	UnitCost  float64 `json:"unit_cost"`
	Type      string  `json:"type"`
	BUDRoom   string  `json:"bud_room"`
	BUDCold   string  `json:"bud_cold"`
	BUDFrozen string  `json:"bud_frozen"`
}

// DrugMaster is a full read of the drug master keyed for stock enrichment
type DrugMaster struct {
	Drugs    []*Drug
	Revision int64

	byKey map[string]*Drug
}

// Lookup finds a drug by name using the whitespace-insensitive merge key
func (m *DrugMaster) Lookup(name string) *Drug {
	return m.byKey[NormalizeName(name)]
}

// DrugRepository reads the drug master tab. The master sheet is maintained
// by hand, so column matching is fuzzy: any header containing "cost" (or the
// Thai word for price) is the unit cost, any containing "type" the storage
// type, and so on.
type DrugRepository struct {
	store    tablestore.Store
	tab      string
	cacheTTL time.Duration
	logger   *logger.Logger

	mu        sync.Mutex
	cached    *DrugMaster
	fetchedAt time.Time
}

// NewDrugRepository creates a new drug repository
func NewDrugRepository(store tablestore.Store, tab string, cacheTTL time.Duration, log *logger.Logger) *DrugRepository {
	return &DrugRepository{
		store:    store,
		tab:      tab,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

// Load reads the full drug master
func (r *DrugRepository) Load(ctx context.Context) (*DrugMaster, error) {
	r.mu.Lock()
	if r.cached != nil && time.Since(r.fetchedAt) < r.cacheTTL {
		master := r.cached
		r.mu.Unlock()
		return master, nil
	}
	r.mu.Unlock()

	snap, err := r.store.ReadAll(ctx, r.tab)
	if err != nil {
		r.logger.Error().Err(err).Str("tab", r.tab).Msg("failed to read drug master")
		return nil, errors.StoreUnavailable(err)
	}

	master := decodeDrugMaster(snap)

	r.mu.Lock()
	r.cached = master
	r.fetchedAt = time.Now()
	r.mu.Unlock()

	return master, nil
}

// RawSnapshot returns the drug master exactly as stored
func (r *DrugRepository) RawSnapshot(ctx context.Context) (*tablestore.Snapshot, error) {
	snap, err := r.store.ReadAll(ctx, r.tab)
	if err != nil {
		return nil, errors.StoreUnavailable(err)
	}
	return snap, nil
}

// ReplaceRaw writes an admin-edited drug master back verbatim
func (r *DrugRepository) ReplaceRaw(ctx context.Context, snap *tablestore.Snapshot) error {
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
func (r *DrugRepository) invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
}

func decodeDrugMaster(snap *tablestore.Snapshot) *DrugMaster {
	cols := columnIndex(snap.Header)

	nameIdx := cols.idx("drug_name")
	if nameIdx < 0 {
		nameIdx = cols.find("name", "ชื่อ")
	}
	costIdx := cols.find("cost", "ราคา")
	typeIdx := cols.find("type", "ประเภท")
	coldIdx := cols.find("cold")
	frozenIdx := cols.find("frozen")
	roomIdx := cols.find("room")

	master := &DrugMaster{
		Revision: snap.Revision,
		byKey:    make(map[string]*Drug, len(snap.Rows)),
	}

	for _, row := range snap.Rows {
		name := strings.TrimSpace(cell(row, nameIdx))
		if name == "" {
			continue
		}

		drugType := strings.TrimSpace(cell(row, typeIdx))
		if drugType == "" {
			drugType = TypeRoom
		}

		drug := &Drug{
			Name:      name,
			UnitCost:  parseUnitCost(cell(row, costIdx)),
			Type:      drugType,
			BUDRoom:   strings.TrimSpace(cell(row, roomIdx)),
			BUDCold:   strings.TrimSpace(cell(row, coldIdx)),
			BUDFrozen: strings.TrimSpace(cell(row, frozenIdx)),
		}

		master.Drugs = append(master.Drugs, drug)
		key := NormalizeName(name)
		if _, exists := master.byKey[key]; !exists {
			master.byKey[key] = drug
		}
	}

	return master
}

var nonNumericPattern = regexp.MustCompile(`[^\d.]`)

// parseUnitCost coerces a free-text price cell ("฿ 1,250.50") to a number.
// Unparseable values count as zero.
func parseUnitCost(s string) float64 {
	cleaned := nonNumericPattern.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0
	}
	cost, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return cost
}
