package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	lookupCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nutricalc",
		Subsystem: "nutrition",
		Name:      "lookups_total",
		Help:      "Nutrition lookups by provider and outcome.",
	}, []string{"provider", "outcome"})

	verificationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nutricalc",
		Subsystem: "catalog",
		Name:      "verifications_total",
		Help:      "Background catalog verification attempts by outcome.",
	}, []string{"outcome"})

	sseClientsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "nutricalc",
		Subsystem: "sse",
		Name:      "connected_clients",
		Help:      "Currently connected SSE subscribers.",
	})
)

func init() {
	prometheus.MustRegister(lookupCounter, verificationCounter, sseClientsGauge)
}

// RecordLookup counts one nutrition lookup attempt.
func RecordLookup(provider, outcome string) {
	lookupCounter.WithLabelValues(provider, outcome).Inc()
}

// RecordVerification counts one background verification attempt.
func RecordVerification(outcome string) {
	verificationCounter.WithLabelValues(outcome).Inc()
}

// SSEClientConnected adjusts the connected-subscriber gauge.
func SSEClientConnected(delta int) {
	sseClientsGauge.Add(float64(delta))
}
