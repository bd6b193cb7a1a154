package metrics

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cactus/go-statsd-client/statsd"
)

// StatsdSink is a Sink implementation backed by a UDP statsd emitter.
type StatsdSink struct {
	backend     statsd.Statter
	defaultTags map[string]string
}

// NewStatsdSink creates a new sink pointed at the specified listener/server address with an
// optional global metric name prefix and set of default tags to include with every metric.
func NewStatsdSink(addr string, prefix string, defaultTags map[string]string) (*StatsdSink, error) {
	client, err := statsd.NewClient(addr, prefix)
	if err != nil {
		return nil, fmt.Errorf("statsd: error creating statsd client: err=%v", err)
	}

	return &StatsdSink{
		backend:     client,
		defaultTags: defaultTags,
	}, nil
}

// Increment emits a counter metric with a configurable delta.
func (s *StatsdSink) Increment(name string, value int64, tags map[string]string, rate float32) error {
	return s.backend.Inc(s.formatMetric(name, tags), value, rate)
}

// Timing emits a time duration metric.
func (s *StatsdSink) Timing(name string, d time.Duration, tags map[string]string, rate float32) error {
	return s.backend.TimingDuration(s.formatMetric(name, tags), d, rate)
}

// formatMetric serializes a metric and a map of tags (in addition to any default tags) into a
// single string to ship to the time-series database backend.
func (s *StatsdSink) formatMetric(metric string, tags map[string]string) string {
	// Some characters, like colons, are incompatible with the statsd protocol.
	// This standardizes on URL escaping to encode such characters that may appear in the metric
	// name or tag keys/values.
	escapedMetric := url.QueryEscape(metric)

	if len(s.defaultTags)+len(tags) == 0 {
		return escapedMetric
	}

	// Merge specified tags with the default tags, if available.
	mergedTags := make(map[string]string)
	for key, value := range s.defaultTags {
		mergedTags[key] = value
	}
	for key, value := range tags {
		mergedTags[key] = value
	}

	// Tags are delimited InfluxDB-style.
	var components []string
	for key, value := range mergedTags {
		components = append(
			components,
			fmt.Sprintf("%s=%s", url.QueryEscape(key), url.QueryEscape(value)),
		)
	}

	return fmt.Sprintf("%s,%s", escapedMetric, strings.Join(components, ","))
}
