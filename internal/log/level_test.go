package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		ok       bool
	}{
		{"debug", Debug, true},
		{"INFO", Info, true},
		{"Warn", Warn, true},
		{"error", Error, true},
		{"verbose", Error, false},
		{"", Error, false},
	}

	for _, test := range tests {
		level, ok := ParseLevel(test.input)
		assert.Equal(t, test.expected, level, "input=%s", test.input)
		assert.Equal(t, test.ok, ok, "input=%s", test.input)
	}
}

func TestLevelEnables(t *testing.T) {
	assert.True(t, Debug.Enables(Error))
	assert.True(t, Info.Enables(Warn))
	assert.True(t, Error.Enables(Error))
	assert.False(t, Info.Enables(Debug))
	assert.False(t, Error.Enables(Warn))
}
