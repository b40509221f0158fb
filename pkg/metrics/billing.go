package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Billing holds the collectors updated by the billing scheduler.
type Billing struct {
	Charges      *prometheus.CounterVec
	Failures     prometheus.Counter
	TickDuration prometheus.Histogram
}

func NewBilling(reg prometheus.Registerer) (*Billing, error) {
	charges, err := Register(reg, MetricsCharges, "billing")
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", MetricsCharges.Name, err)
	}
	failures, err := Register(reg, MetricsChargeFailures, "billing")
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", MetricsChargeFailures.Name, err)
	}
	dur, err := Register(reg, MetricsTickDuration, "billing")
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", MetricsTickDuration.Name, err)
	}
	return &Billing{
		Charges:      charges.(*prometheus.CounterVec),
		Failures:     failures.(prometheus.Counter),
		TickDuration: dur.(prometheus.Histogram),
	}, nil
}

// ObserveTick records the duration of a tick started at start.
func (b *Billing) ObserveTick(start time.Time) {
	if b == nil {
		return
	}
	b.TickDuration.Observe(MillisecondsSince(start))
}

func (b *Billing) IncCharge(interval string) {
	if b == nil {
		return
	}
	b.Charges.WithLabelValues(interval).Inc()
}

func (b *Billing) IncFailure() {
	if b == nil {
		return
	}
	b.Failures.Inc()
}

func MillisecondsSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
