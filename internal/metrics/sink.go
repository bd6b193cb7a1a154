package metrics

import (
	"time"
)

// Sink is an abstraction over a fire-and-forget metrics emission backend. Deliveries are
// best-effort: implementations may drop emissions, and callers are expected to discard the
// returned error outside of logging.
type Sink interface {
	// Increment emits a counter metric with the given delta, at the given sample rate.
	Increment(name string, value int64, tags map[string]string, rate float32) error

	// Timing emits a time duration metric, at the given sample rate.
	Timing(name string, d time.Duration, tags map[string]string, rate float32) error
}

// NoopSink implements the Sink interface but discards all emissions. It is used when no metrics
// backend is configured.
type NoopSink struct{}

// NewNoopSink creates a noop implementation of Sink.
func NewNoopSink() Sink {
	return &NoopSink{}
}

// Increment noops.
func (s *NoopSink) Increment(name string, value int64, tags map[string]string, rate float32) error {
	return nil
}

// Timing noops.
func (s *NoopSink) Timing(name string, d time.Duration, tags map[string]string, rate float32) error {
	return nil
}
