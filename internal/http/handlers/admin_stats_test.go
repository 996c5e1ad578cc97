package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossglow/salon-ai-receptionist/internal/observability/metrics"
	"github.com/glossglow/salon-ai-receptionist/pkg/logging"
)

func TestGetStats(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewReceptionistMetrics(reg)

	m.ObserveTurn("voice", "ok")
	m.ObserveTurn("voice", "ok")
	m.ObserveTurn("text", "skipped")
	m.ObserveExtractionFallback()
	m.ObserveBooking("confirmed")
	m.ObserveBooking("failed")
	m.ObserveNotification("sendgrid", "sent")
	m.ObserveNotification("sendgrid", "failed")

	h := NewAdminStatsHandler(reg, logging.Default())
	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	rec := httptest.NewRecorder()
	h.GetStats(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var stats ReceptionistStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(3), stats.TurnsTotal)
	assert.Equal(t, int64(2), stats.TurnsByStatus["ok"])
	assert.Equal(t, int64(1), stats.TurnsByStatus["skipped"])
	assert.Equal(t, int64(1), stats.ExtractionFallbacks)
	assert.Equal(t, int64(1), stats.BookingsConfirmed)
	assert.Equal(t, int64(1), stats.BookingsFailed)
	assert.Equal(t, int64(1), stats.NotificationsSent)
	assert.Equal(t, int64(1), stats.NotificationFailures)
}

func TestGetStatsEmptyRegistry(t *testing.T) {
	h := NewAdminStatsHandler(prometheus.NewRegistry(), logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	rec := httptest.NewRecorder()
	h.GetStats(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var stats ReceptionistStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Zero(t, stats.TurnsTotal)
	assert.NotNil(t, stats.TurnsByStatus)
}
