package metrics

// Counter accumulates signed integer deltas keyed by metric name, for emission as counter metrics
// at the end of the owning unit of work.
type Counter struct {
	prefix string
	data   map[string]int64
}

// NewCounter creates an empty counter accumulator whose flushed metric names are qualified with
// the given prefix.
func NewCounter(prefix string) *Counter {
	return &Counter{
		prefix: prefix,
		data:   make(map[string]int64),
	}
}

// Increment adds delta to the running total for key.
func (c *Counter) Increment(key string, delta int64) {
	c.data[key] += delta
}

// Decrement subtracts delta from the running total for key.
func (c *Counter) Decrement(key string, delta int64) {
	c.data[key] -= delta
}

// Flush emits one counter event per key with a non-zero accumulated value, then clears all
// entries. Zero-valued keys are skipped to avoid emitting no-op metrics. Sink errors are
// discarded; delivery is best-effort.
func (c *Counter) Flush(sink Sink, tags map[string]string, rate float32) {
	for key, value := range c.data {
		if value == 0 {
			continue
		}

		sink.Increment(qualifyMetric(c.prefix, key), value, tags, rate)
	}

	c.data = make(map[string]int64)
}

// qualifyMetric joins a scope prefix and a metric key into a fully qualified metric name.
func qualifyMetric(prefix string, key string) string {
	if prefix == "" {
		return key
	}

	return prefix + "." + key
}
