package handler

import (
	"net/http"

	"github.com/smartextemp/extemp-backend/internal/inventory/repository"
	"github.com/smartextemp/extemp-backend/internal/inventory/service"
	"github.com/smartextemp/extemp-backend/pkg/errors"
	"github.com/smartextemp/extemp-backend/pkg/httputil"
	"github.com/smartextemp/extemp-backend/pkg/i18n"
	"github.com/smartextemp/extemp-backend/pkg/logger"
)

// InventoryHandler handles the inventory endpoints
type InventoryHandler struct {
	service *service.Service
	logger  *logger.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(svc *service.Service, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: svc,
		logger:  log,
	}
}

// degradeRead absorbs a store connectivity failure on a read-only endpoint:
// the dashboard keeps rendering with empty data plus a warning instead of a
// 503. Mutations never degrade; a failed write must surface to the caller.
func (h *InventoryHandler) degradeRead(w http.ResponseWriter, r *http.Request, err error, empty interface{}) bool {
	if !errors.Is(err, errors.ErrStoreUnavailable) {
		return false
	}

	h.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("store unreachable, read degraded to empty result")
	httputil.JSONWithWarning(w, http.StatusOK, empty, i18n.TFromContext(r.Context(), "errors.store_unavailable"))
	return true
}

// actor returns the display name to stamp into Action_By, falling back to
// the login name
func actor(r *http.Request) string {
	if name := httputil.GetUserName(r.Context()); name != "" {
		return name
	}
	return httputil.GetUsername(r.Context())
}

// ListLots returns enriched stock rows.
// Query params: location (repeatable), record_status, drug.
func (h *InventoryHandler) ListLots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := &service.LotFilter{
		Locations:    q["location"],
		RecordStatus: q.Get("record_status"),
		DrugName:     q.Get("drug"),
	}

	lots, err := h.service.ListLots(r.Context(), filter)
	if err != nil {
		if h.degradeRead(w, r, err, []*service.EnrichedLot{}) {
			return
		}
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, lots)
}

// Summary returns in-stock quantity grouped by drug and ward
func (h *InventoryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Summary(r.Context(), r.URL.Query()["location"])
	if err != nil {
		if h.degradeRead(w, r, err, []service.SummaryRow{}) {
			return
		}
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, rows)
}

// Receive records a new production lot (admin only)
func (h *InventoryHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var req service.ReceiveRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	lot, err := h.service.Receive(r.Context(), &req, actor(r))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.Created(w, lot)
}

// Locations lists the configured wards
func (h *InventoryHandler) Locations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.service.Locations(r.Context())
	if err != nil {
		if h.degradeRead(w, r, err, []string{}) {
			return
		}
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, locations)
}

// Drugs lists the drug master
func (h *InventoryHandler) Drugs(w http.ResponseWriter, r *http.Request) {
	drugs, err := h.service.Drugs(r.Context())
	if err != nil {
		if h.degradeRead(w, r, err, []*repository.Drug{}) {
			return
		}
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, drugs)
}
