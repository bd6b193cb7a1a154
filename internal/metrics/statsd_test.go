package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMetricNoTags(t *testing.T) {
	sink := &StatsdSink{}

	assert.Equal(t, "view.hit", sink.formatMetric("view.hit", nil))
}

func TestFormatMetricMergesDefaultTags(t *testing.T) {
	sink := &StatsdSink{
		defaultTags: map[string]string{"host": "web1"},
	}

	formatted := sink.formatMetric("view.hit", map[string]string{"method": "get"})

	assert.Contains(t, formatted, "view.hit,")
	assert.Contains(t, formatted, "host=web1")
	assert.Contains(t, formatted, "method=get")
}

func TestFormatMetricOverridesDefaultTags(t *testing.T) {
	sink := &StatsdSink{
		defaultTags: map[string]string{"host": "web1"},
	}

	formatted := sink.formatMetric("view.hit", map[string]string{"host": "web2"})

	assert.Equal(t, "view.hit,host=web2", formatted)
}

func TestFormatMetricEscapesIncompatibleCharacters(t *testing.T) {
	sink := &StatsdSink{}

	formatted := sink.formatMetric("view.hit", map[string]string{"view": "app:index"})

	assert.NotContains(t, formatted, ":")
	assert.Contains(t, formatted, "view=app%3Aindex")
}
