package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Skip reasons used as the "reason" label of AreaRowsSkipped.
const (
	SkipShortRow = "short_row"
	SkipBadArea  = "bad_area"
)

// Metrics holds the Prometheus counters and gauges for an areas run.
type Metrics struct {
	AreaRows        prometheus.Counter
	AreaRowsSkipped *prometheus.CounterVec // labels: reason={short_row,bad_area}
	FeaturesSeen    prometheus.Counter
	FeaturesUpdated prometheus.Counter

	DistrictsPublished prometheus.Counter

	RunDuration prometheus.Gauge
	LastSuccess prometheus.Gauge
}

// NewMetrics creates and registers all run metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AreaRows,
		m.AreaRowsSkipped,
		m.FeaturesSeen,
		m.FeaturesUpdated,
		m.DistrictsPublished,
		m.RunDuration,
		m.LastSuccess,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AreaRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "district_areas",
			Name:      "area_rows_total",
			Help:      "Rows read from the area table, including skipped rows.",
		}),
		AreaRowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "district_areas",
			Name:      "area_rows_skipped_total",
			Help:      "Area table rows skipped by reason.",
		}, []string{"reason"}),
		FeaturesSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "district_areas",
			Name:      "features_total",
			Help:      "Features read from the feature collection.",
		}),
		FeaturesUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "district_areas",
			Name:      "features_updated_total",
			Help:      "Features whose properties were replaced from the area table.",
		}),
		DistrictsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "district_areas",
			Name:      "districts_published_total",
			Help:      "Updated districts published to Kafka.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "district_areas",
			Name:      "last_run_duration_seconds",
			Help:      "Duration of the last successful run.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "district_areas",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}
}

// WriteTextfile dumps the default registry in the text exposition format,
// for the node_exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
