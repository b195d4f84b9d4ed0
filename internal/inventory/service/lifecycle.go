package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/smartextemp/extemp-backend/internal/inventory/bud"
	"github.com/smartextemp/extemp-backend/internal/inventory/events"
	"github.com/smartextemp/extemp-backend/internal/inventory/repository"
	"github.com/smartextemp/extemp-backend/pkg/config"
	"github.com/smartextemp/extemp-backend/pkg/errors"
	"github.com/smartextemp/extemp-backend/pkg/logger"
	"github.com/smartextemp/extemp-backend/pkg/messaging"
)

// Action_By annotations written by the lifecycle operations. The sheet is
// read directly by Thai pharmacy staff, so the labels stay in Thai.
const (
	actionDispensedFmt = "จ่ายยาให้ผู้ป่วย (%s)"
	actionDisposedFmt  = "ทิ้งโดย %s"
)

// Service runs the lot lifecycle over the stock tab: every operation reads
// the full tab, transforms it, and writes it back under the snapshot's
// revision.
type Service struct {
	lots      *repository.LotRepository
	drugs     *repository.DrugRepository
	locations *repository.LocationRepository
	events    *events.Publisher
	cfg       *config.InventoryConfig
	logger    *logger.Logger
	now       func() time.Time
}

// NewService creates the inventory service. The events publisher may be nil
// when messaging is not configured.
func NewService(
	lots *repository.LotRepository,
	drugs *repository.DrugRepository,
	locations *repository.LocationRepository,
	pub *events.Publisher,
	cfg *config.InventoryConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		lots:      lots,
		drugs:     drugs,
		locations: locations,
		events:    pub,
		cfg:       cfg,
		logger:    log,
		now:       time.Now,
	}
}

// ReceiveRequest records a new production lot into stock
type ReceiveRequest struct {
	DrugName     string  `json:"drug_name" validate:"required"`
	BatchID      string  `json:"batch_id" validate:"required"`
	Qty          float64 `json:"qty" validate:"required,gt=0"`
	DateProduced string  `json:"date_produced" validate:"required,datetime=2006-01-02"`
	Location     string  `json:"location" validate:"required"`
}

// Receive appends a new lot. The expiry date is the production date plus the
// drug's shelf life for its storage type; frozen drugs enter stock frozen.
func (s *Service) Receive(ctx context.Context, req *ReceiveRequest, actor string) (*EnrichedLot, error) {
	master, err := s.drugs.Load(ctx)
	if err != nil {
		return nil, err
	}

	drug := master.Lookup(req.DrugName)
	if drug == nil {
		return nil, errors.BadRequestWithKey("errors.unknown_drug", map[string]string{"drug": req.DrugName})
	}

	if err := s.requireLocation(ctx, req.Location); err != nil {
		return nil, err
	}

	produced, err := time.Parse("2006-01-02", req.DateProduced)
	if err != nil {
		return nil, errors.BadRequest("invalid date_produced")
	}

	var budText string
	switch drug.Type {
	case repository.TypeFrozen:
		budText = drug.BUDFrozen
	case repository.TypeCold:
		budText = drug.BUDCold
	default:
		budText = drug.BUDRoom
	}
	days := bud.ParseDays(budText, s.cfg.ReceiveDefaultBUDDays)
	expiry := produced.AddDate(0, 0, days)

	status := repository.StatusActive
	if drug.Type == repository.TypeFrozen {
		status = repository.StatusFrozen
	}

	lot := &repository.Lot{
		ID:           uuid.New().String(),
		DateProduced: &produced,
		DrugName:     drug.Name,
		BatchID:      req.BatchID,
		Qty:          req.Qty,
		ExpiryDate:   &expiry,
		Location:     req.Location,
		Status:       status,
		ActionBy:     actor,
		RecordStatus: repository.RecordInStock,
	}

	page, err := s.lots.Load(ctx)
	if err != nil {
		return nil, err
	}
	page.Lots = append(page.Lots, lot)

	if err := s.lots.Replace(ctx, page); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("lot_id", lot.ID).
		Str("drug", lot.DrugName).
		Str("location", lot.Location).
		Float64("qty", lot.Qty).
		Str("actor", actor).
		Msg("lot received")

	s.events.LotReceived(ctx, &messaging.LotReceivedEvent{
		LotID:        lot.ID,
		DrugName:     lot.DrugName,
		BatchID:      lot.BatchID,
		Quantity:     lot.Qty,
		Location:     lot.Location,
		Status:       lot.Status,
		DateProduced: lot.DateProduced,
		ExpiryDate:   lot.ExpiryDate,
		ReceivedBy:   actor,
	})

	return Enrich(lot, master, s.now()), nil
}

// DispenseRequest dispenses a quantity of a drug from one ward
type DispenseRequest struct {
	DrugName string  `json:"drug_name" validate:"required"`
	Location string  `json:"location" validate:"required"`
	Qty      float64 `json:"qty" validate:"required,gt=0"`
}

// DispenseResult reports which rows a dispense touched
type DispenseResult struct {
	DrugName string            `json:"drug_name"`
	Location string            `json:"location"`
	Qty      float64           `json:"qty"`
	Lots     []*repository.Lot `json:"lots"`
}

// Dispense cuts stock first-expire-first-out across the ward's lots of the
// drug. A fully consumed lot is relabeled Dispensed with its quantity kept,
// so the row still carries its value for the savings report; a partially
// consumed lot is split into a remaining In_Stock row and a new Dispensed
// row.
func (s *Service) Dispense(ctx context.Context, req *DispenseRequest, actor string) (*DispenseResult, error) {
	page, err := s.lots.Load(ctx)
	if err != nil {
		return nil, err
	}

	key := repository.NormalizeName(req.DrugName)
	var candidates []*repository.Lot
	available := 0.0
	for _, lot := range page.Lots {
		if !lot.InStock() || lot.Location != req.Location || lot.Qty <= 0 {
			continue
		}
		if repository.NormalizeName(lot.DrugName) != key {
			continue
		}
		candidates = append(candidates, lot)
		available += lot.Qty
	}

	if req.Qty > available {
		return nil, errors.InsufficientStock(req.Qty, available)
	}

	sortFEFO(candidates)

	actionBy := fmt.Sprintf(actionDispensedFmt, actor)
	var touched []*repository.Lot
	remain := req.Qty
	for _, lot := range candidates {
		if remain <= 0 {
			break
		}
		if lot.Qty <= remain {
			// full consume: relabel, keep the quantity on the row
			remain -= lot.Qty
			lot.RecordStatus = repository.RecordDispensed
			lot.ActionBy = actionBy
			touched = append(touched, lot)
		} else {
			lot.Qty -= remain
			lot.ActionBy = actionBy

			dispensed := lot.Clone()
			dispensed.ID = uuid.New().String()
			dispensed.Qty = remain
			dispensed.RecordStatus = repository.RecordDispensed
			page.Lots = append(page.Lots, dispensed)
			touched = append(touched, lot, dispensed)
			remain = 0
		}
	}

	if err := s.lots.Replace(ctx, page); err != nil {
		return nil, err
	}

	lotIDs := make([]string, len(touched))
	for i, lot := range touched {
		lotIDs[i] = lot.ID
	}

	s.logger.Info().
		Str("drug", req.DrugName).
		Str("location", req.Location).
		Float64("qty", req.Qty).
		Strs("lot_ids", lotIDs).
		Str("actor", actor).
		Msg("stock dispensed")

	s.events.LotDispensed(ctx, &messaging.LotDispensedEvent{
		DrugName:    req.DrugName,
		Location:    req.Location,
		Quantity:    req.Qty,
		LotIDs:      lotIDs,
		DispensedBy: actor,
	})

	return &DispenseResult{
		DrugName: req.DrugName,
		Location: req.Location,
		Qty:      req.Qty,
		Lots:     touched,
	}, nil
}

// TransferRequest moves quantity from one lot to another ward
type TransferRequest struct {
	LotID      string  `json:"lot_id" validate:"required"`
	ToLocation string  `json:"to_location" validate:"required"`
	Qty        float64 `json:"qty" validate:"required,gt=0"`
}

// Transfer moves stock between wards. A full transfer relabels the row in
// place; a partial transfer splits off a new row at the destination. Either
// way the moved row is marked Transferred, which is what the savings report
// keys on.
func (s *Service) Transfer(ctx context.Context, req *TransferRequest, actor string) (*repository.Lot, error) {
	if err := s.requireLocation(ctx, req.ToLocation); err != nil {
		return nil, err
	}

	page, err := s.lots.Load(ctx)
	if err != nil {
		return nil, err
	}

	lot := findInStock(page, req.LotID)
	if lot == nil {
		return nil, errors.NotFound("lot")
	}
	if lot.Location == req.ToLocation {
		return nil, errors.BadRequestWithKey("errors.same_location", nil)
	}
	if req.Qty > lot.Qty {
		return nil, errors.InsufficientStock(req.Qty, lot.Qty)
	}

	from := lot.Location
	moved := lot
	if req.Qty == lot.Qty {
		lot.Location = req.ToLocation
		lot.Status = repository.StatusTransferred
		lot.ActionBy = actor
	} else {
		lot.Qty -= req.Qty

		moved = lot.Clone()
		moved.ID = uuid.New().String()
		moved.Qty = req.Qty
		moved.Location = req.ToLocation
		moved.Status = repository.StatusTransferred
		moved.ActionBy = actor
		page.Lots = append(page.Lots, moved)
	}

	if err := s.lots.Replace(ctx, page); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("lot_id", moved.ID).
		Str("drug", moved.DrugName).
		Str("from", from).
		Str("to", req.ToLocation).
		Float64("qty", req.Qty).
		Str("actor", actor).
		Msg("lot transferred")

	s.events.LotTransferred(ctx, &messaging.LotTransferredEvent{
		LotID:         moved.ID,
		DrugName:      moved.DrugName,
		Quantity:      req.Qty,
		FromLocation:  from,
		ToLocation:    req.ToLocation,
		TransferredBy: actor,
	})

	return moved, nil
}

// DisposeRequest writes off expired stock
type DisposeRequest struct {
	LotID string  `json:"lot_id" validate:"required"`
	Qty   float64 `json:"qty" validate:"required,gt=0"`
}

// Dispose writes off an expired lot. Only lots past their expiry date are
// eligible. A partial disposal splits the row like a dispense.
func (s *Service) Dispose(ctx context.Context, req *DisposeRequest, actor string) (*repository.Lot, error) {
	master, err := s.drugs.Load(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.lots.Load(ctx)
	if err != nil {
		return nil, err
	}

	lot := findInStock(page, req.LotID)
	if lot == nil {
		return nil, errors.NotFound("lot")
	}
	if !Enrich(lot, master, s.now()).Expired() {
		return nil, errors.BadRequestWithKey("errors.not_expired", nil)
	}
	if req.Qty > lot.Qty {
		return nil, errors.InsufficientStock(req.Qty, lot.Qty)
	}

	actionBy := fmt.Sprintf(actionDisposedFmt, actor)
	disposed := lot
	if req.Qty == lot.Qty {
		lot.RecordStatus = repository.RecordDisposed
		lot.ActionBy = actionBy
	} else {
		lot.Qty -= req.Qty

		disposed = lot.Clone()
		disposed.ID = uuid.New().String()
		disposed.Qty = req.Qty
		disposed.RecordStatus = repository.RecordDisposed
		disposed.ActionBy = actionBy
		page.Lots = append(page.Lots, disposed)
	}

	if err := s.lots.Replace(ctx, page); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("lot_id", disposed.ID).
		Str("drug", disposed.DrugName).
		Str("location", disposed.Location).
		Float64("qty", req.Qty).
		Str("actor", actor).
		Msg("lot disposed")

	s.events.LotDisposed(ctx, &messaging.LotDisposedEvent{
		LotID:      disposed.ID,
		DrugName:   disposed.DrugName,
		Quantity:   req.Qty,
		Location:   disposed.Location,
		ExpiryDate: disposed.ExpiryDate,
		DisposedBy: actor,
	})

	return disposed, nil
}

// Thaw moves a frozen lot to cold storage: the lot's expiry is recomputed
// from today plus the drug's cold shelf life. Thaw always takes the whole
// row.
func (s *Service) Thaw(ctx context.Context, lotID string, actor string) (*EnrichedLot, error) {
	master, err := s.drugs.Load(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.lots.Load(ctx)
	if err != nil {
		return nil, err
	}

	lot := findInStock(page, lotID)
	if lot == nil {
		return nil, errors.NotFound("lot")
	}

	enriched := Enrich(lot, master, s.now())
	if lot.Status != repository.StatusFrozen || enriched.Type != repository.TypeFrozen {
		return nil, errors.BadRequestWithKey("errors.not_thawable", nil)
	}

	days := bud.ParseDays(enriched.BUDCold, s.cfg.ThawDefaultColdDays)
	expiry := dateOnly(s.now()).AddDate(0, 0, days)

	lot.Status = repository.StatusThawed
	lot.ExpiryDate = &expiry
	lot.ActionBy = actor

	if err := s.lots.Replace(ctx, page); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("lot_id", lot.ID).
		Str("drug", lot.DrugName).
		Str("new_expiry", expiry.Format("2006-01-02")).
		Str("actor", actor).
		Msg("lot thawed")

	s.events.LotThawed(ctx, &messaging.LotThawedEvent{
		LotID:         lot.ID,
		DrugName:      lot.DrugName,
		Quantity:      lot.Qty,
		Location:      lot.Location,
		NewExpiryDate: lot.ExpiryDate,
		ThawedBy:      actor,
	})

	return Enrich(lot, master, s.now()), nil
}

// requireLocation rejects wards that are not in the Locations tab
func (s *Service) requireLocation(ctx context.Context, name string) error {
	ok, err := s.locations.Exists(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return errors.BadRequestWithKey("errors.unknown_location", map[string]string{"location": name})
	}
	return nil
}

// findInStock locates an In_Stock row by lot id
func findInStock(page *repository.StockPage, lotID string) *repository.Lot {
	for _, lot := range page.Lots {
		if lot.ID == lotID && lot.InStock() {
			return lot
		}
	}
	return nil
}

// sortFEFO orders lots by expiry date ascending with undated lots last.
// The sort is stable so equal expiries keep sheet order.
func sortFEFO(lots []*repository.Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i].ExpiryDate, lots[j].ExpiryDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}
