package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/quentinlb/cocktaild/core/metrics"
)

// PromSink records pipeline events in Prometheus metrics.
type PromSink struct {
	dispenses *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	available prometheus.Gauge
	usable    prometheus.Gauge
}

// NewPromSink registers the pipeline metrics on the default Prometheus
// registerer. The metrics endpoint is served separately by StartPromServer.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	dispenses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cocktaild_dispenses_total",
		Help: "Total number of dispatch attempts by terminal status",
	}, []string{"status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cocktaild_dispense_duration_seconds",
		Help:    "Wall time of the machine actuation call",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	}, []string{"status"})
	available := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cocktaild_available_recipes",
		Help: "Number of recipes currently makeable",
	})
	usable := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cocktaild_usable_slots",
		Help: "Number of dispenser slots with an ingredient and a calibrated measure",
	})

	s := &PromSink{dispenses: dispenses, duration: duration, available: available, usable: usable}
	for _, c := range []prometheus.Collector{dispenses, duration, available, usable} {
		if err := register(reg, c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func register(reg prometheus.Registerer, c prometheus.Collector) error {
	err := reg.Register(c)
	if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
		return nil
	}
	return err
}

// RecordDispense increments the counter and observes the actuation duration.
func (s *PromSink) RecordDispense(res coremetrics.DispenseResult) error {
	s.dispenses.WithLabelValues(string(res.Status)).Inc()
	s.duration.WithLabelValues(string(res.Status)).Observe(res.Duration.Seconds())
	return nil
}

// RecordAvailability sets the derived-state gauges.
func (s *PromSink) RecordAvailability(res coremetrics.AvailabilityResult) error {
	s.available.Set(float64(res.AvailableRecipes))
	s.usable.Set(float64(res.UsableSlots))
	return nil
}
