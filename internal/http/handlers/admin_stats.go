package handlers

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/glossglow/salon-ai-receptionist/pkg/logging"
)

// ReceptionistStats is an operator-facing snapshot aggregated from the
// in-process Prometheus registry.
type ReceptionistStats struct {
	TurnsTotal           int64            `json:"turns_total"`
	TurnsByStatus        map[string]int64 `json:"turns_by_status"`
	ExtractionFallbacks  int64            `json:"extraction_fallbacks"`
	BookingsConfirmed    int64            `json:"bookings_confirmed"`
	BookingsFailed       int64            `json:"bookings_failed"`
	NotificationsSent    int64            `json:"notifications_sent"`
	NotificationFailures int64            `json:"notification_failures"`
}

// AdminStatsHandler serves GET /admin/stats.
type AdminStatsHandler struct {
	gatherer prometheus.Gatherer
	logger   *logging.Logger
}

func NewAdminStatsHandler(gatherer prometheus.Gatherer, logger *logging.Logger) *AdminStatsHandler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminStatsHandler{gatherer: gatherer, logger: logger}
}

// GetStats aggregates receptionist counters into a JSON snapshot.
func (h *AdminStatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	families, err := h.gatherer.Gather()
	if err != nil {
		h.logger.Error("metric gather failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	stats := ReceptionistStats{TurnsByStatus: map[string]int64{}}
	for _, mf := range families {
		if mf == nil {
			continue
		}
		switch mf.GetName() {
		case "salon_receptionist_turns_total":
			for _, metric := range mf.Metric {
				value := counterValue(metric)
				stats.TurnsTotal += value
				if status := labelValue(metric, "status"); status != "" {
					stats.TurnsByStatus[status] += value
				}
			}
		case "salon_receptionist_extraction_fallback_total":
			for _, metric := range mf.Metric {
				stats.ExtractionFallbacks += counterValue(metric)
			}
		case "salon_receptionist_bookings_total":
			for _, metric := range mf.Metric {
				switch labelValue(metric, "status") {
				case "confirmed":
					stats.BookingsConfirmed += counterValue(metric)
				default:
					stats.BookingsFailed += counterValue(metric)
				}
			}
		case "salon_receptionist_notifications_total":
			for _, metric := range mf.Metric {
				if labelValue(metric, "status") == "sent" {
					stats.NotificationsSent += counterValue(metric)
				} else {
					stats.NotificationFailures += counterValue(metric)
				}
			}
		}
	}

	writeJSON(w, http.StatusOK, stats)
}

func counterValue(metric *dto.Metric) int64 {
	if metric == nil || metric.GetCounter() == nil {
		return 0
	}
	return int64(metric.GetCounter().GetValue())
}

func labelValue(metric *dto.Metric, name string) string {
	if metric == nil {
		return ""
	}
	for _, pair := range metric.Label {
		if pair != nil && strings.EqualFold(pair.GetName(), name) {
			return pair.GetValue()
		}
	}
	return ""
}
