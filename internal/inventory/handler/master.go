package handler

import (
	"net/http"

	"github.com/smartextemp/extemp-backend/pkg/httputil"
	"github.com/smartextemp/extemp-backend/pkg/tablestore"
)

// Raw table endpoints back the admin edit screens. The snapshot revision
// from the matching GET must be sent back on PUT so concurrent edits fail
// with a conflict instead of overwriting each other.

// RawStock returns the stock tab verbatim
func (h *InventoryHandler) RawStock(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.RawStock(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, snap)
}

// ReplaceRawStock overwrites the stock tab with an admin-edited snapshot
func (h *InventoryHandler) ReplaceRawStock(w http.ResponseWriter, r *http.Request) {
	var snap tablestore.Snapshot
	if err := httputil.DecodeJSON(r, &snap); err != nil {
		httputil.Error(w, r, err)
		return
	}

	if err := h.service.ReplaceRawStock(r.Context(), &snap, actor(r)); err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.NoContent(w)
}

// RawDrugs returns the drug master verbatim
func (h *InventoryHandler) RawDrugs(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.RawDrugs(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, snap)
}

// ReplaceRawDrugs overwrites the drug master
func (h *InventoryHandler) ReplaceRawDrugs(w http.ResponseWriter, r *http.Request) {
	var snap tablestore.Snapshot
	if err := httputil.DecodeJSON(r, &snap); err != nil {
		httputil.Error(w, r, err)
		return
	}

	if err := h.service.ReplaceRawDrugs(r.Context(), &snap, actor(r)); err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.NoContent(w)
}

// RawLocations returns the locations tab verbatim
func (h *InventoryHandler) RawLocations(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.RawLocations(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, snap)
}

// ReplaceRawLocations overwrites the locations tab
func (h *InventoryHandler) ReplaceRawLocations(w http.ResponseWriter, r *http.Request) {
	var snap tablestore.Snapshot
	if err := httputil.DecodeJSON(r, &snap); err != nil {
		httputil.Error(w, r, err)
		return
	}

	if err := h.service.ReplaceRawLocations(r.Context(), &snap, actor(r)); err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.NoContent(w)
}
