package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for searches and catalog reloads.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	SearchesTotal        *prometheus.CounterVec
	SearchDuration       *prometheus.HistogramVec
	SearchResults        prometheus.Histogram
	CatalogReloadsTotal  *prometheus.CounterVec
	CatalogRecords       prometheus.Gauge
	CatalogActiveRecords prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SearchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "instrument_search_requests_total",
				Help: "Total number of instrument searches by mode and outcome.",
			},
			[]string{"mode", "outcome"}, // outcome = ok | empty | invalid
		),
		SearchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "instrument_search_duration_seconds",
				Help:    "Duration of instrument searches in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15), // 100µs → ~1.6s
			},
			[]string{"mode"},
		),
		SearchResults: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "instrument_search_results",
			Help:    "Number of matches returned per search.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		CatalogReloadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "instrument_catalog_reloads_total",
				Help: "Total number of catalog reload attempts.",
			},
			[]string{"result"}, // result = ok | error
		),
		CatalogRecords: factory.NewGauge(prometheus.GaugeOpts{
			Name: "instrument_catalog_records",
			Help: "Number of records in the current catalog snapshot.",
		}),
		CatalogActiveRecords: factory.NewGauge(prometheus.GaugeOpts{
			Name: "instrument_catalog_active_records",
			Help: "Number of active records in the current catalog snapshot.",
		}),
	}
}

func (m *Metrics) ObserveSearch(mode, outcome string, results int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(mode, outcome).Inc()
	m.SearchDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	m.SearchResults.Observe(float64(results))
}

func (m *Metrics) ObserveReload(err error, records, active int) {
	if m == nil {
		return
	}
	if err != nil {
		m.CatalogReloadsTotal.WithLabelValues("error").Inc()
		return
	}
	m.CatalogReloadsTotal.WithLabelValues("ok").Inc()
	m.CatalogRecords.Set(float64(records))
	m.CatalogActiveRecords.Set(float64(active))
}
