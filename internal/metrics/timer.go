package metrics

import (
	"fmt"
	"sort"
	"time"
)

// Timer accumulates elapsed durations of named timing spans, for emission as timing metrics at
// the end of the owning unit of work.
//
// Spans on the same key may nest: each Start pushes a monotonic timestamp onto the key's stack,
// and each Stop pops the most recent one, so recursive or overlapping operations accumulate
// correctly under a single label. Measurements rely on the monotonic clock reading carried by
// time.Time, so wall clock adjustments do not affect elapsed durations.
type Timer struct {
	prefix string
	data   map[string]time.Duration
	starts map[string][]time.Time
}

// NewTimer creates an empty timer accumulator whose flushed metric names are qualified with the
// given prefix.
func NewTimer(prefix string) *Timer {
	return &Timer{
		prefix: prefix,
		data:   make(map[string]time.Duration),
		starts: make(map[string][]time.Time),
	}
}

// Start opens a timing span for key.
func (t *Timer) Start(key string) {
	t.starts[key] = append(t.starts[key], time.Now())
}

// Stop closes the most recently opened span for key, adds its elapsed duration to the key's
// accumulated total, and returns the elapsed duration. Stopping a key with no open span is a
// programming error in calling code and is reported as such.
func (t *Timer) Stop(key string) (time.Duration, error) {
	stack := t.starts[key]
	if len(stack) == 0 {
		return 0, fmt.Errorf("metrics: stop without matching start: key=%s", key)
	}

	elapsed := time.Since(stack[len(stack)-1])

	if len(stack) == 1 {
		delete(t.starts, key)
	} else {
		t.starts[key] = stack[:len(stack)-1]
	}

	t.data[key] += elapsed

	return elapsed, nil
}

// Outstanding returns the keys that currently have open spans, in sorted order. A non-empty
// result at flush time indicates a Start that was never paired with a Stop.
func (t *Timer) Outstanding() []string {
	var keys []string
	for key := range t.starts {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// Flush emits one timing event per key with its accumulated duration, then clears all entries,
// including any open span stacks. Unlike counters, zero totals are emitted. Sink errors are
// discarded; delivery is best-effort.
func (t *Timer) Flush(sink Sink, tags map[string]string, rate float32) {
	for key, total := range t.data {
		sink.Timing(qualifyMetric(t.prefix, key), total, tags, rate)
	}

	t.data = make(map[string]time.Duration)
	t.starts = make(map[string][]time.Time)
}
