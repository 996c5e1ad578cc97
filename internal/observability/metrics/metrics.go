package metrics

import "github.com/prometheus/client_golang/prometheus"

// ReceptionistMetrics exposes counters/histograms for conversation turns
// and booking flows.
type ReceptionistMetrics struct {
	turnsTotal          *prometheus.CounterVec
	extractionFallbacks prometheus.Counter
	bookingsTotal       *prometheus.CounterVec
	notificationsTotal  *prometheus.CounterVec
	llmLatency          *prometheus.HistogramVec
}

func NewReceptionistMetrics(reg prometheus.Registerer) *ReceptionistMetrics {
	m := &ReceptionistMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "receptionist",
			Name:      "turns_total",
			Help:      "Total conversation turns processed",
		}, []string{"channel", "status"}),
		extractionFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "receptionist",
			Name:      "extraction_fallback_total",
			Help:      "Turns where heuristic extraction replaced the model",
		}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "receptionist",
			Name:      "bookings_total",
			Help:      "Total booking attempts",
		}, []string{"status"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "receptionist",
			Name:      "notifications_total",
			Help:      "Total confirmation emails sent",
		}, []string{"provider", "status"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "salon",
			Subsystem: "receptionist",
			Name:      "llm_latency_seconds",
			Help:      "Latency of model calls by operation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.extractionFallbacks, m.bookingsTotal, m.notificationsTotal, m.llmLatency)
	return m
}

func (m *ReceptionistMetrics) ObserveTurn(channel, status string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(channel, status).Inc()
}

func (m *ReceptionistMetrics) ObserveExtractionFallback() {
	if m == nil {
		return
	}
	m.extractionFallbacks.Inc()
}

func (m *ReceptionistMetrics) ObserveBooking(status string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(status).Inc()
}

func (m *ReceptionistMetrics) ObserveNotification(provider, status string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(provider, status).Inc()
}

func (m *ReceptionistMetrics) ObserveLLMLatency(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(operation).Observe(seconds)
}
