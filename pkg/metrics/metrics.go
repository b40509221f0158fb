package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// HistogramBuckets are millisecond buckets shared by request and billing tick latencies.
var HistogramBuckets = []float64{
	1, 5, 10, 25, 50, 100, 250, 500,
	1000, 2500, 5000, 10000, 30000,
}

// Metric is a definition for the name, description, type, ID, and
// prometheus.Collector type (i.e. CounterVec, Summary, etc) of each metric
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

// NewMetric associates prometheus.Collector based on Metric.Type
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	switch m.Type {
	case "counter_vec":
		return prometheus.NewCounterVec(prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description}, m.Args)
	case "counter":
		return prometheus.NewCounter(prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description})
	case "gauge":
		return prometheus.NewGauge(prometheus.GaugeOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description})
	case "histogram_vec":
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description, Buckets: HistogramBuckets}, m.Args)
	case "histogram":
		return prometheus.NewHistogram(prometheus.HistogramOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description, Buckets: HistogramBuckets})
	case "summary_vec":
		return prometheus.NewSummaryVec(prometheus.SummaryOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description}, m.Args)
	}
	return nil
}

// Register builds m and registers it with reg. A collector registered earlier under
// the same descriptor is reused.
func Register(reg prometheus.Registerer, m *Metric, subsystem string) (prometheus.Collector, error) {
	c := NewMetric(m, subsystem)
	if c == nil {
		return nil, errors.New("unknown metric type " + m.Type)
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector, nil
		}
		return nil, err
	}
	return c, nil
}

var MetricsCharges = &Metric{
	ID:          "charges",
	Name:        "charges_total",
	Description: "Completed subscription charges, partitioned by billing interval.",
	Type:        "counter_vec",
	Args:        []string{"interval"},
}

var MetricsChargeFailures = &Metric{
	ID:          "chargeFailures",
	Name:        "charge_failures_total",
	Description: "Charges that failed and were left for the next tick.",
	Type:        "counter",
}

var MetricsTickDuration = &Metric{
	ID:          "tickDur",
	Name:        "tick_dur_ms",
	Description: "Billing tick latency in milliseconds.",
	Type:        "histogram",
}

const (
	RefererKey = "X-Referer"
)
