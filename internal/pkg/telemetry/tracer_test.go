package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripScheme(t *testing.T) {
	tests := map[string]string{
		"http://collector:4317":  "collector:4317",
		"https://collector:4317": "collector:4317",
		"collector:4317":         "collector:4317",
		"http://":                "http://",
	}
	for in, want := range tests {
		assert.Equal(t, want, stripScheme(in), in)
	}
}

func TestSampleRatio(t *testing.T) {
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.25")
	assert.Equal(t, 0.25, sampleRatio())

	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "7")
	assert.Equal(t, 1.0, sampleRatio())

	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "")
	assert.Equal(t, 1.0, sampleRatio())
}
