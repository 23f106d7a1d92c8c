// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the detector.
type Metrics struct {
	// Ingestion metrics
	TransactionsListed  *prometheus.CounterVec
	TransactionsFetched *prometheus.CounterVec
	FetchErrors         *prometheus.CounterVec
	DedupHits           *prometheus.CounterVec

	// Discovery metrics
	EventsDecoded  *prometheus.CounterVec
	RecordsSkipped *prometheus.CounterVec
	OffCurveAMMs   *prometheus.CounterVec

	// Arbitrage metrics
	ArbitragesFound *prometheus.CounterVec
	HighestSlotSeen prometheus.Gauge

	// Latency metrics
	FetchLatency *prometheus.HistogramVec
	CycleLatency *prometheus.HistogramVec

	// Storage metrics
	StoreErrors *prometheus.CounterVec

	// Health metrics
	LastSuccessfulCycle prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "arb_detector"
	}

	return &Metrics{
		TransactionsListed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "transactions_listed_total",
			Help:      "Total number of candidate transactions listed by source",
		}, []string{"protocol"}),
		TransactionsFetched: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "transactions_fetched_total",
			Help:      "Total number of full transactions fetched",
		}, []string{"protocol"}),
		FetchErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "fetch_errors_total",
			Help:      "Total number of failed transaction fetches",
		}, []string{"protocol"}),
		DedupHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "dedup_hits_total",
			Help:      "Total number of signatures skipped as already processed",
		}, []string{"protocol"}),

		EventsDecoded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "events_decoded_total",
			Help:      "Total number of swap events decoded",
		}, []string{"protocol"}),
		RecordsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "records_skipped_total",
			Help:      "Total number of inner-instruction payloads skipped as non-events",
		}, []string{"protocol"}),
		OffCurveAMMs: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "amm_addresses_total",
			Help:      "Decoded AMM addresses by curve membership",
		}, []string{"protocol", "curve"}),

		ArbitragesFound: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "arbitrage",
			Name:      "found_total",
			Help:      "Total number of profitable closed loops detected",
		}, []string{"protocol"}),
		HighestSlotSeen: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "highest_slot_seen",
			Help:      "Highest Solana slot number seen",
		}),

		FetchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "fetch_latency_seconds",
			Help:      "getTransaction latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"protocol"}),
		CycleLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "cycle_latency_seconds",
			Help:      "Full polling cycle duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"protocol"}),

		StoreErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "errors_total",
			Help:      "Total number of storage write errors",
		}, []string{"protocol", "store"}),

		LastSuccessfulCycle: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_cycle_timestamp",
			Help:      "Unix timestamp of last completed polling cycle",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordListed increments the listed counter by the batch size.
func RecordListed(protocol string, n int) {
	DefaultMetrics.TransactionsListed.WithLabelValues(protocol).Add(float64(n))
}

// RecordFetch records one getTransaction round trip.
func RecordFetch(protocol string, seconds float64, err error) {
	DefaultMetrics.FetchLatency.WithLabelValues(protocol).Observe(seconds)
	if err != nil {
		DefaultMetrics.FetchErrors.WithLabelValues(protocol).Inc()
	} else {
		DefaultMetrics.TransactionsFetched.WithLabelValues(protocol).Inc()
	}
}

// RecordDedupHit increments the dedup hits counter.
func RecordDedupHit(protocol string) {
	DefaultMetrics.DedupHits.WithLabelValues(protocol).Inc()
}

// RecordEventsDecoded increments the decoded events counter.
func RecordEventsDecoded(protocol string, n int) {
	DefaultMetrics.EventsDecoded.WithLabelValues(protocol).Add(float64(n))
}

// RecordAMMCurve tallies a decoded AMM address as on- or off-curve.
// AMM pools are PDAs, so a rising on-curve share suggests the decoder is
// matching payloads that are not real swap events.
func RecordAMMCurve(protocol string, onCurve bool) {
	curve := "off"
	if onCurve {
		curve = "on"
	}
	DefaultMetrics.OffCurveAMMs.WithLabelValues(protocol, curve).Inc()
}

// RecordArbitrageFound increments the arbitrage counter.
func RecordArbitrageFound(protocol string) {
	DefaultMetrics.ArbitragesFound.WithLabelValues(protocol).Inc()
}

// RecordStoreError records a storage write failure.
func RecordStoreError(protocol, store string) {
	DefaultMetrics.StoreErrors.WithLabelValues(protocol, store).Inc()
}

// UpdateHighestSlot updates the highest slot seen gauge.
func UpdateHighestSlot(slot int64) {
	DefaultMetrics.HighestSlotSeen.Set(float64(slot))
}

// RecordCycle records a completed polling cycle.
func RecordCycle(protocol string, seconds float64, completedAt int64) {
	DefaultMetrics.CycleLatency.WithLabelValues(protocol).Observe(seconds)
	DefaultMetrics.LastSuccessfulCycle.Set(float64(completedAt))
}
