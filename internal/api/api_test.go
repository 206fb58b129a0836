package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restoops/backend-go/internal/cache"
	"github.com/restoops/backend-go/internal/config"
	"github.com/restoops/backend-go/internal/domain"
	"github.com/restoops/backend-go/internal/repository"
	"github.com/restoops/backend-go/internal/service"
)

type stubMovements struct {
	events map[int64][]domain.UsageEvent
}

func (s *stubMovements) ListOutbound(_ context.Context, itemID int64, start, end time.Time) ([]domain.UsageEvent, error) {
	var out []domain.UsageEvent
	for _, ev := range s.events[itemID] {
		if !ev.OccurredAt.Before(start) && ev.OccurredAt.Before(end.AddDate(0, 0, 1)) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *stubMovements) RecordMovement(_ context.Context, event *domain.UsageEvent) error {
	s.events[event.ItemID] = append(s.events[event.ItemID], *event)
	return nil
}

type stubItems struct {
	items map[int64]*domain.Item
}

func (s *stubItems) GetItem(_ context.Context, id int64) (*domain.Item, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, repository.ErrItemNotFound
	}
	return item, nil
}

func (s *stubItems) ListActiveItems(_ context.Context) ([]*domain.Item, error) {
	var items []*domain.Item
	for _, item := range s.items {
		if item.Active {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s *stubItems) UpdateParLevels(_ context.Context, id int64, parLow, parHigh float64) error {
	item, ok := s.items[id]
	if !ok {
		return repository.ErrItemNotFound
	}
	item.ParLow, item.ParHigh = parLow, parHigh
	return nil
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	end := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	events := make([]domain.UsageEvent, 0, 90)
	for i := 0; i < 90; i++ {
		events = append(events, domain.UsageEvent{
			ItemID:     1,
			Quantity:   12,
			Direction:  domain.DirectionOut,
			OccurredAt: end.AddDate(0, 0, -i).Add(11 * time.Hour),
		})
	}

	movements := &stubMovements{events: map[int64][]domain.UsageEvent{1: events}}
	items := &stubItems{items: map[int64]*domain.Item{
		1: {ID: 1, Name: "flour", CurrentStock: 200, LeadTimeDays: 5, Active: true},
		2: {ID: 2, Name: "truffle oil", CurrentStock: 3, LeadTimeDays: 10, Active: true},
	}}

	svc := service.NewAnalyticsService(movements, items, cache.NewNoopReportCache(), config.EngineConfig{})
	return NewRouter(&Services{AnalyticsService: svc}, nil)
}

func doRequest(t *testing.T, router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetReportOK(t *testing.T) {
	router := testRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/analytics/items/1/report?window_days=60&as_of=2026-06-01")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		ItemID      int64   `json:"item_id"`
		HistoryDays int     `json:"history_days"`
		Velocity    float64 `json:"velocity"`
		Forecast    *struct {
			TotalEstimatedUsage float64 `json:"total_estimated_usage"`
		} `json:"forecast"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.ItemID)
	assert.Equal(t, 60, body.HistoryDays)
	assert.InDelta(t, 12.0, body.Velocity, 0.5)
	require.NotNil(t, body.Forecast)
	assert.InDelta(t, 360.0, body.Forecast.TotalEstimatedUsage, 5)
}

func TestGetReportUnknownItem(t *testing.T) {
	router := testRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/analytics/items/99/report")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetReportBadWindow(t *testing.T) {
	router := testRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/analytics/items/1/report?window_days=zero")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetReportBadItemID(t *testing.T) {
	router := testRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/analytics/items/abc/report")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetForecastInsufficientHistory(t *testing.T) {
	router := testRouter(t)

	// Item 2 has no movements at all; a short window cannot support a forecast.
	rec := doRequest(t, router, http.MethodGet, "/api/v1/analytics/items/2/forecast?window_days=7&as_of=2026-06-01")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetTrendReturnsSubset(t *testing.T) {
	router := testRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/analytics/items/1/trend?window_days=60&as_of=2026-06-01")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "trend")
	assert.Contains(t, body, "turnover")
	assert.NotContains(t, body, "forecast")
}

func TestApplyParLevelsPersists(t *testing.T) {
	router := testRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/analytics/items/1/par_levels/apply?window_days=60&as_of=2026-06-01")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Applied struct {
			Low  int `json:"low"`
			High int `json:"high"`
		} `json:"applied"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 90, body.Applied.Low)   // 12/day * 5 day lead * 1.5
	assert.Equal(t, 180, body.Applied.High) // 12/day * 5 day lead * 3
}

func TestGetRiskLeadTimeOverride(t *testing.T) {
	router := testRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/analytics/items/1/risk?window_days=60&as_of=2026-06-01&lead_time=10")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		ParLevels struct {
			Recommended struct {
				Low  int `json:"low"`
				High int `json:"high"`
			} `json:"recommended"`
		} `json:"par_levels"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 180, body.ParLevels.Recommended.Low)  // 12/day * 10 day override * 1.5
	assert.Equal(t, 360, body.ParLevels.Recommended.High) // 12/day * 10 day override * 3
}

func TestGetRiskBadLeadTime(t *testing.T) {
	router := testRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/analytics/items/1/risk?lead_time=-3")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchReportsCoversActiveItems(t *testing.T) {
	router := testRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/analytics/batch?window_days=60&as_of=2026-06-01")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Count   int                   `json:"count"`
		Results []service.BatchResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Results, 2)
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
