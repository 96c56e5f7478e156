package metrics

import coremetrics "github.com/quentinlb/cocktaild/core/metrics"

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDispense forwards the record to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordDispense(res coremetrics.DispenseResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordDispense(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordAvailability forwards the record to all sinks.
func (m *MultiSink) RecordAvailability(res coremetrics.AvailabilityResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordAvailability(res); err != nil {
			return err
		}
	}
	return nil
}
