// Package metrics defines the sink interface the pipeline reports into.
// Implementations live in infra/metrics and can be combined with a MultiSink.
package metrics

import (
	"time"

	"github.com/quentinlb/cocktaild/core/model"
)

// DispenseResult summarizes one completed dispatch attempt.
type DispenseResult struct {
	OrderID  string
	Status   model.OrderStatus
	Steps    int
	Duration time.Duration
}

// AvailabilityResult summarizes one availability recompute.
type AvailabilityResult struct {
	AvailableRecipes int
	TotalRecipes     int
	UsableSlots      int
}

// MetricsSink receives pipeline events. Implementations must be safe for
// concurrent use.
type MetricsSink interface {
	RecordDispense(DispenseResult) error
	RecordAvailability(AvailabilityResult) error
}

// NopSink discards every record.
type NopSink struct{}

func (NopSink) RecordDispense(DispenseResult) error         { return nil }
func (NopSink) RecordAvailability(AvailabilityResult) error { return nil }

// Config defines settings for metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusPort == "" {
		c.PrometheusPort = ":9091"
	}
}
