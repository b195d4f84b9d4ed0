package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smartextemp/extemp-backend/internal/inventory/service"
	"github.com/smartextemp/extemp-backend/pkg/httputil"
)

// Dispense cuts stock first-expire-first-out
func (h *InventoryHandler) Dispense(w http.ResponseWriter, r *http.Request) {
	var req service.DispenseRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	result, err := h.service.Dispense(r.Context(), &req, actor(r))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// Transfer moves stock between wards
func (h *InventoryHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req service.TransferRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	lot, err := h.service.Transfer(r.Context(), &req, actor(r))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, lot)
}

// Dispose writes off expired stock
func (h *InventoryHandler) Dispose(w http.ResponseWriter, r *http.Request) {
	var req service.DisposeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	lot, err := h.service.Dispose(r.Context(), &req, actor(r))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, lot)
}

// Thaw moves a frozen lot to cold storage and recomputes its expiry
func (h *InventoryHandler) Thaw(w http.ResponseWriter, r *http.Request) {
	lotID := chi.URLParam(r, "lotID")

	lot, err := h.service.Thaw(r.Context(), lotID, actor(r))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, lot)
}
