package handler

import (
	"net/http"

	"github.com/smartextemp/extemp-backend/internal/inventory/service"
	"github.com/smartextemp/extemp-backend/pkg/httputil"
)

// ExpiryAlerts lists in-stock lots inside the expiry alert window
func (h *InventoryHandler) ExpiryAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.service.ExpiryAlerts(r.Context(), r.URL.Query()["location"])
	if err != nil {
		if h.degradeRead(w, r, err, []*service.ExpiryAlert{}) {
			return
		}
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, alerts)
}

// ThawCandidates lists frozen lots eligible for thawing
func (h *InventoryHandler) ThawCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.service.ThawCandidates(r.Context(), r.URL.Query()["location"])
	if err != nil {
		if h.degradeRead(w, r, err, []*service.EnrichedLot{}) {
			return
		}
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, candidates)
}
