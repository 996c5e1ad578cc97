package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatherFamily(t *testing.T, reg *prometheus.Registry, name string) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.Metric {
			key := ""
			for _, label := range metric.Label {
				if key != "" {
					key += ","
				}
				key += label.GetName() + "=" + label.GetValue()
			}
			if metric.GetCounter() != nil {
				values[key] = metric.GetCounter().GetValue()
			} else if metric.GetHistogram() != nil {
				values[key] = float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	return values
}

func TestReceptionistMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewReceptionistMetrics(reg)

	m.ObserveTurn("voice", "ok")
	m.ObserveTurn("voice", "ok")
	m.ObserveTurn("text", "error")
	m.ObserveExtractionFallback()
	m.ObserveBooking("confirmed")
	m.ObserveNotification("sendgrid", "sent")
	m.ObserveLLMLatency("reply", 0.42)

	turns := gatherFamily(t, reg, "salon_receptionist_turns_total")
	assert.Equal(t, 2.0, turns["channel=voice,status=ok"])
	assert.Equal(t, 1.0, turns["channel=text,status=error"])

	fallbacks := gatherFamily(t, reg, "salon_receptionist_extraction_fallback_total")
	assert.Equal(t, 1.0, fallbacks[""])

	bookings := gatherFamily(t, reg, "salon_receptionist_bookings_total")
	assert.Equal(t, 1.0, bookings["status=confirmed"])

	notifications := gatherFamily(t, reg, "salon_receptionist_notifications_total")
	assert.Equal(t, 1.0, notifications["provider=sendgrid,status=sent"])

	latency := gatherFamily(t, reg, "salon_receptionist_llm_latency_seconds")
	assert.Equal(t, 1.0, latency["operation=reply"])
}

func TestReceptionistMetricsNilReceiverIsSafe(t *testing.T) {
	var m *ReceptionistMetrics

	assert.NotPanics(t, func() {
		m.ObserveTurn("voice", "ok")
		m.ObserveExtractionFallback()
		m.ObserveBooking("confirmed")
		m.ObserveNotification("ses", "failed")
		m.ObserveLLMLatency("extract", 0.1)
	})
}
