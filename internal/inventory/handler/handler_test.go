package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartextemp/extemp-backend/internal/inventory/repository"
	"github.com/smartextemp/extemp-backend/internal/inventory/service"
	"github.com/smartextemp/extemp-backend/pkg/config"
	"github.com/smartextemp/extemp-backend/pkg/httputil"
	"github.com/smartextemp/extemp-backend/pkg/logger"
	"github.com/smartextemp/extemp-backend/pkg/tablestore"
)

// unreachableStore fails every call the way a dropped connection would
type unreachableStore struct{}

func (unreachableStore) ReadAll(ctx context.Context, table string) (*tablestore.Snapshot, error) {
	return nil, fmt.Errorf("dial tcp 10.0.0.1:5432: connection refused")
}

func (unreachableStore) ReplaceAll(ctx context.Context, table string, snap *tablestore.Snapshot) error {
	return fmt.Errorf("dial tcp 10.0.0.1:5432: connection refused")
}

func newUnreachableHandler(t *testing.T) *InventoryHandler {
	t.Helper()

	log := logger.New("extemp-service-test", "development")
	store := unreachableStore{}
	lots := repository.NewLotRepository(store, "Stock", 0, log)
	drugs := repository.NewDrugRepository(store, "Drugs", 0, log)
	locations := repository.NewLocationRepository(store, "Locations", 0, log)
	cfg := &config.InventoryConfig{
		ReceiveDefaultBUDDays: 30,
		ThawDefaultColdDays:   7,
		ExpiryAlertDays:       10,
	}
	svc := service.NewService(lots, drugs, locations, nil, cfg, log)
	return NewInventoryHandler(svc, log)
}

func TestReadEndpoints_DegradeToEmptyWhenStoreUnreachable(t *testing.T) {
	h := newUnreachableHandler(t)

	cases := []struct {
		name    string
		handler http.HandlerFunc
		path    string
	}{
		{"lots", h.ListLots, "/api/v1/inventory/lots"},
		{"summary", h.Summary, "/api/v1/inventory/lots/summary"},
		{"expiry alerts", h.ExpiryAlerts, "/api/v1/inventory/alerts/expiry"},
		{"thaw candidates", h.ThawCandidates, "/api/v1/inventory/alerts/thaw"},
		{"value report", h.ValueReport, "/api/v1/inventory/reports/value"},
		{"locations", h.Locations, "/api/v1/inventory/locations"},
		{"drugs", h.Drugs, "/api/v1/inventory/drugs"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			rec := httptest.NewRecorder()

			tc.handler(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)

			var resp httputil.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.True(t, resp.Success)
			assert.Nil(t, resp.Error)
			assert.NotEmpty(t, resp.Warning)
		})
	}
}

func TestMutations_SurfaceStoreFailure(t *testing.T) {
	h := newUnreachableHandler(t)

	body := strings.NewReader(`{"drug_name":"Cold Syrup","location":"ICU","qty":2}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/lots/dispense", body)
	rec := httptest.NewRecorder()

	h.Dispense(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp httputil.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "STORE_UNAVAILABLE", resp.Error.Code)
}
