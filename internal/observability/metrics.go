package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// Full collection cycles. Watch for: rate() stalls (refresh loop dead).
	CollectionCyclesTotal prometheus.Counter

	// Partition fetches that contributed no data. Watch for: sustained
	// nonzero rate = provider degradation.
	PartitionFetchFailures prometheus.Counter

	// Stations present after dedup in the last cycle.
	StationsCollected prometheus.Gauge

	// Ledger persistence outcomes by status ("ok"/"error").
	LedgerWritesTotal *prometheus.CounterVec

	// Stations currently flagged for maintenance.
	StationsDown prometheus.Gauge
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	CollectionCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "collectionCyclesTotal",
			Help: "Total number of full observation collection cycles",
		},
	)
	PartitionFetchFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "partitionFetchFailuresTotal",
			Help: "Total number of state partition fetches that failed and contributed no data",
		},
	)
	StationsCollected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stationsCollected",
			Help: "Number of unique stations collected in the most recent cycle",
		},
	)
	LedgerWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledgerWritesTotal",
			Help: "Outage ledger persistence attempts by status",
		},
		[]string{"status"},
	)
	StationsDown = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stationsDown",
			Help: "Number of stations currently flagged for maintenance",
		},
	)

	registry.MustRegister(
		CollectionCyclesTotal, PartitionFetchFailures, StationsCollected,
		LedgerWritesTotal, StationsDown,
	)
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
