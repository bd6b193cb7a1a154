package metrics

import (
	"sync"
	"time"
)

// capturedMetric records a single emission received by a captureSink.
type capturedMetric struct {
	name  string
	value int64
	d     time.Duration
	tags  map[string]string
	rate  float32
}

// captureSink is a Sink implementation that records all emissions in memory. It is safe for
// concurrent use so isolation tests can share one instance across goroutines.
type captureSink struct {
	mu      sync.Mutex
	counts  []capturedMetric
	timings []capturedMetric
}

func (s *captureSink) Increment(name string, value int64, tags map[string]string, rate float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts = append(s.counts, capturedMetric{name: name, value: value, tags: tags, rate: rate})

	return nil
}

func (s *captureSink) Timing(name string, d time.Duration, tags map[string]string, rate float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timings = append(s.timings, capturedMetric{name: name, d: d, tags: tags, rate: rate})

	return nil
}

// countsFor returns the captured counter emissions whose tags contain the given key/value pair.
func (s *captureSink) countsFor(key string, value string) []capturedMetric {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []capturedMetric
	for _, m := range s.counts {
		if m.tags[key] == value {
			matches = append(matches, m)
		}
	}

	return matches
}
