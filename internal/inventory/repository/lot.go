package repository

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smartextemp/extemp-backend/pkg/errors"
	"github.com/smartextemp/extemp-backend/pkg/logger"
	"github.com/smartextemp/extemp-backend/pkg/tablestore"
)

// Storage status values (where the lot physically is in its lifecycle)
const (
	StatusActive      = "Active"
	StatusFrozen      = "Frozen"
	StatusThawed      = "Thawed"
	StatusTransferred = "Transferred"
)

// Record status values (whether the row still counts as stock)
const (
	RecordInStock   = "In_Stock"
	RecordDispensed = "Dispensed"
	RecordDisposed  = "Disposed"
)

// locationDisposal is the legacy marker for disposed rows from before the
// Record_Status column existed
const locationDisposal = "Disposal"

// Stock tab column names
const (
	colLotID        = "Lot_ID"
	colDateProduced = "Date_Produced"
	colDrugName     = "Drug_Name"
	colBatchID      = "Batch_ID"
	colQty          = "Qty"
	colExpiryDate   = "Expiry_Date"
	colLocation     = "Location"
	colStatus       = "Status"
	colActionBy     = "Action_By"
	colRecordStatus = "Record_Status"
)

// canonicalStockColumns is the column order written back to the stock tab
var canonicalStockColumns = []string{
	colLotID, colDateProduced, colDrugName, colBatchID, colQty,
	colExpiryDate, colLocation, colStatus, colActionBy, colRecordStatus,
}

// derivedStockColumns are enrichment columns that must never be persisted.
// They are recomputed from the drug master on every read.
var derivedStockColumns = map[string]bool{
	"Days_Left":   true,
	"Total_Value": true,
	"Unit_Cost":   true,
	"Type":        true,
	"BUD_Cold":    true,
	"merge_key":   true,
}

const dateLayout = "2006-01-02"

// Lot is one row of the stock tab
type Lot struct {
	ID           string     `json:"lot_id"`
	DateProduced *time.Time `json:"date_produced"`
	DrugName     string     `json:"drug_name"`
	BatchID      string     `json:"batch_id"`
	Qty          float64    `json:"qty"`
	ExpiryDate   *time.Time `json:"expiry_date"`
	Location     string     `json:"location"`
	Status       string     `json:"status"`
	ActionBy     string     `json:"action_by"`
	RecordStatus string     `json:"record_status"`

	// Extra holds columns the engine does not model, preserved verbatim so
	// a replace-all write never destroys operator-maintained data.
	Extra map[string]string `json:"-"`
}

// Clone returns a deep copy of the lot
func (l *Lot) Clone() *Lot {
	c := *l
	if l.DateProduced != nil {
		d := *l.DateProduced
		c.DateProduced = &d
	}
	if l.ExpiryDate != nil {
		e := *l.ExpiryDate
		c.ExpiryDate = &e
	}
	if l.Extra != nil {
		c.Extra = make(map[string]string, len(l.Extra))
		for k, v := range l.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

// InStock reports whether the row still counts as physical stock
func (l *Lot) InStock() bool {
	return l.RecordStatus == RecordInStock
}

// StockPage is a full read of the stock tab. Revision carries the snapshot
// revision for write-back conflict detection.
type StockPage struct {
	Lots     []*Lot
	Revision int64
	// extraColumns preserves the order of unmodeled columns seen on read
	extraColumns []string
}

// Clone returns a deep copy of the page
func (p *StockPage) Clone() *StockPage {
	lots := make([]*Lot, len(p.Lots))
	for i, l := range p.Lots {
		lots[i] = l.Clone()
	}
	return &StockPage{
		Lots:         lots,
		Revision:     p.Revision,
		extraColumns: append([]string(nil), p.extraColumns...),
	}
}

// LotRepository reads and writes the stock tab through the table store.
// Reads are cached for the configured TTL; any write invalidates the cache.
type LotRepository struct {
	store    tablestore.Store
	tab      string
	cacheTTL time.Duration
	logger   *logger.Logger

	mu        sync.Mutex
	cached    *StockPage
	fetchedAt time.Time
}

// NewLotRepository creates a new lot repository
func NewLotRepository(store tablestore.Store, tab string, cacheTTL time.Duration, log *logger.Logger) *LotRepository {
	return &LotRepository{
		store:    store,
		tab:      tab,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

// Load reads the full stock tab, applying legacy migrations on the way in.
// The returned page is a private copy; callers may mutate it freely.
func (r *LotRepository) Load(ctx context.Context) (*StockPage, error) {
	r.mu.Lock()
	if r.cached != nil && time.Since(r.fetchedAt) < r.cacheTTL {
		page := r.cached.Clone()
		r.mu.Unlock()
		return page, nil
	}
	r.mu.Unlock()

	snap, err := r.store.ReadAll(ctx, r.tab)
	if err != nil {
		r.logger.Error().Err(err).Str("tab", r.tab).Msg("failed to read stock tab")
		return nil, errors.StoreUnavailable(err)
	}

	page := decodeStockPage(snap)

	r.mu.Lock()
	r.cached = page.Clone()
	r.fetchedAt = time.Now()
	r.mu.Unlock()

	return page, nil
}

// Replace writes the full stock tab back. The page revision must match the
// store's current revision or the write fails with a conflict.
func (r *LotRepository) Replace(ctx context.Context, page *StockPage) error {
	snap := encodeStockPage(page)

	err := r.store.ReplaceAll(ctx, r.tab, snap)
	r.invalidate()

	if err != nil {
		if errors.Is(err, tablestore.ErrConflict) {
			return errors.WriteConflict()
		}
		r.logger.Error().Err(err).Str("tab", r.tab).Msg("failed to write stock tab")
		return errors.StoreUnavailable(err)
	}
	return nil
}

// RawSnapshot returns the stock tab exactly as stored, for the admin raw
// edit surface. Bypasses the read cache.
func (r *LotRepository) RawSnapshot(ctx context.Context) (*tablestore.Snapshot, error) {
	snap, err := r.store.ReadAll(ctx, r.tab)
	if err != nil {
		return nil, errors.StoreUnavailable(err)
	}
	return snap, nil
}

// ReplaceRaw writes an operator-edited snapshot back verbatim
func (r *LotRepository) ReplaceRaw(ctx context.Context, snap *tablestore.Snapshot) error {
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
func (r *LotRepository) invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
}

func decodeStockPage(snap *tablestore.Snapshot) *StockPage {
	cols := columnIndex(snap.Header)

	known := make(map[int]bool, len(canonicalStockColumns))
	for _, name := range canonicalStockColumns {
		if i := cols.idx(strings.ToLower(name)); i >= 0 {
			known[i] = true
		}
	}

	var extraColumns []string
	extraIdx := make(map[string]int)
	for i, h := range snap.Header {
		h = strings.TrimSpace(h)
		if h == "" || known[i] || derivedStockColumns[h] {
			continue
		}
		extraColumns = append(extraColumns, h)
		extraIdx[h] = i
	}

	hasRecordStatus := cols.idx(strings.ToLower(colRecordStatus)) >= 0

	lots := make([]*Lot, 0, len(snap.Rows))
	for _, row := range snap.Rows {
		lot := &Lot{
			ID:           strings.TrimSpace(cell(row, cols.idx("lot_id"))),
			DateProduced: parseDate(cell(row, cols.idx("date_produced"))),
			DrugName:     strings.TrimSpace(cell(row, cols.idx("drug_name"))),
			BatchID:      strings.TrimSpace(cell(row, cols.idx("batch_id"))),
			Qty:          parseQty(cell(row, cols.idx("qty"))),
			ExpiryDate:   parseDate(cell(row, cols.idx("expiry_date"))),
			Location:     strings.TrimSpace(cell(row, cols.idx("location"))),
			Status:       strings.TrimSpace(cell(row, cols.idx("status"))),
			ActionBy:     strings.TrimSpace(cell(row, cols.idx("action_by"))),
			RecordStatus: strings.TrimSpace(cell(row, cols.idx("record_status"))),
		}

		// Legacy rows predate the lifecycle columns
		if lot.ID == "" {
			lot.ID = uuid.New().String()
		}
		if lot.Status == "" {
			lot.Status = StatusActive
		}
		if lot.ActionBy == "" {
			lot.ActionBy = "-"
		}
		if lot.RecordStatus == "" {
			if !hasRecordStatus && lot.Location == locationDisposal {
				lot.RecordStatus = RecordDisposed
			} else {
				lot.RecordStatus = RecordInStock
			}
		}

		if len(extraColumns) > 0 {
			lot.Extra = make(map[string]string, len(extraColumns))
			for _, name := range extraColumns {
				lot.Extra[name] = cell(row, extraIdx[name])
			}
		}

		lots = append(lots, lot)
	}

	return &StockPage{
		Lots:         lots,
		Revision:     snap.Revision,
		extraColumns: extraColumns,
	}
}

func encodeStockPage(page *StockPage) *tablestore.Snapshot {
	header := append([]string(nil), canonicalStockColumns...)
	header = append(header, page.extraColumns...)

	rows := make([][]string, 0, len(page.Lots))
	for _, lot := range page.Lots {
		row := []string{
			lot.ID,
			formatDate(lot.DateProduced),
			lot.DrugName,
			lot.BatchID,
			formatQty(lot.Qty),
			formatDate(lot.ExpiryDate),
			lot.Location,
			lot.Status,
			lot.ActionBy,
			lot.RecordStatus,
		}
		for _, name := range page.extraColumns {
			row = append(row, lot.Extra[name])
		}
		rows = append(rows, row)
	}

	return &tablestore.Snapshot{
		Header:   header,
		Rows:     rows,
		Revision: page.Revision,
	}
}

// parseDate parses a stored date leniently; unparseable values become nil,
// matching the spreadsheet's tolerance for hand-entered cells
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	// cells sometimes carry a time component
	if i := strings.IndexAny(s, " T"); i > 0 {
		s = s[:i]
	}
	for _, layout := range []string{dateLayout, "2006/01/02", "02/01/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func parseQty(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	q, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return q
}

func formatQty(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
