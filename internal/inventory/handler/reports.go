package handler

import (
	"net/http"
	"time"

	"github.com/smartextemp/extemp-backend/internal/inventory/service"
	"github.com/smartextemp/extemp-backend/pkg/errors"
	"github.com/smartextemp/extemp-backend/pkg/httputil"
)

const dateLayout = "2006-01-02"

// ValueReport totals stock value, savings and waste over a production-date
// window. start_date and end_date default to the current calendar month.
func (h *InventoryHandler) ValueReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	if raw := q.Get("start_date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			httputil.Error(w, r, errors.Validation(map[string]string{"start_date": "must be in YYYY-MM-DD format"}))
			return
		}
		start = parsed
	}

	if raw := q.Get("end_date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			httputil.Error(w, r, errors.Validation(map[string]string{"end_date": "must be in YYYY-MM-DD format"}))
			return
		}
		end = parsed
	}

	if end.Before(start) {
		httputil.Error(w, r, errors.Validation(map[string]string{"end_date": "must not be before start_date"}))
		return
	}

	report, err := h.service.Report(r.Context(), start, end, q["location"])
	if err != nil {
		empty := &service.ValueReport{
			StartDate: start.Format(dateLayout),
			EndDate:   end.Format(dateLayout),
		}
		if h.degradeRead(w, r, err, empty) {
			return
		}
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, report)
}
