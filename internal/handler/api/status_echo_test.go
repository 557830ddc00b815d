package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"TrafficLight/internal/domain/models"
	"TrafficLight/internal/repository"
	"TrafficLight/pkg/cache"
	xlogger "TrafficLight/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func setup(t *testing.T) (*echo.Echo, *repository.CacheStatusStore) {
	t.Helper()
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	store := repository.NewCacheStatusStore(mc, 0)

	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	e := echo.New()
	NewStatusEchoHandler(xlogger.Nop(), store, berlin).RegisterRoutes(e)
	return e, store
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHealthUnknownBeforeFirstReport(t *testing.T) {
	e, _ := setup(t)
	rec := get(e, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNKNOWN")
}

func TestHealthFollowsPhase(t *testing.T) {
	e, store := setup(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, models.StatusSnapshot{Phase: models.PhaseHealthy}))
	assert.Equal(t, http.StatusOK, get(e, "/healthz").Code)

	require.NoError(t, store.Save(ctx, models.StatusSnapshot{
		Phase:         models.PhaseFailed,
		InFailure:     true,
		FailureReason: "stale data (2m5s)",
	}))
	rec := get(e, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "stale data (2m5s)")
}

func TestStatusRendersInRequestedZone(t *testing.T) {
	e, store := setup(t)
	end := time.Date(2025, 9, 8, 13, 25, 0, 0, time.UTC)
	require.NoError(t, store.Save(context.Background(), models.StatusSnapshot{
		Phase:         models.PhaseHealthy,
		Label:         "GREEN_POS",
		Magnitude:     1,
		Bucket:        "green",
		LastAppliedTo: &end,
		UpdatedAt:     end,
	}))

	env := decode(t, get(e, "/api/status"))
	require.Equal(t, http.StatusOK, env.Status)
	var v models.StatusView
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.Equal(t, "Europe/Berlin", v.Timezone)
	assert.Equal(t, "2025-09-08 15:25:00 CEST", v.LastAppliedToLocal)
	assert.Equal(t, "GREEN_POS", v.Label)
	assert.Equal(t, 1, v.Magnitude)

	env = decode(t, get(e, "/api/status?tz=UTC"))
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.Equal(t, "UTC", v.Timezone)
	assert.Equal(t, "2025-09-08 13:25:00 UTC", v.LastAppliedToLocal)
}

func TestStatusRejectsUnknownZone(t *testing.T) {
	e, store := setup(t)
	require.NoError(t, store.Save(context.Background(), models.StatusSnapshot{Phase: models.PhaseHealthy}))

	env := decode(t, get(e, "/api/status?tz=Mars/Olympus"))
	assert.Equal(t, http.StatusBadRequest, env.Status)
	assert.Contains(t, string(env.Data), "ERR_TIMEZONE")
}

func TestStatusNotFoundBeforeFirstReport(t *testing.T) {
	e, _ := setup(t)
	env := decode(t, get(e, "/api/status"))
	assert.Equal(t, http.StatusNotFound, env.Status)
}
