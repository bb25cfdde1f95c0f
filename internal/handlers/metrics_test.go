package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricDateTruncation(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2024-03-15T10:00:00Z", "2024-03-15", false},
		{"2024-03-15T23:59:59Z", "2024-03-15", false},
		{"2024-03-15T01:30:00+03:00", "2024-03-14", false}, // normalized to UTC
		{"2024-03-15", "2024-03-15", false},
		{"15-03-2024", "", true},
		{"not a date", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := metricDate(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestValidMetricType(t *testing.T) {
	assert.True(t, validMetricType("revenue"))
	assert.True(t, validMetricType("usage"))
	assert.False(t, validMetricType("latency"))
	assert.False(t, validMetricType(""))
	assert.False(t, validMetricType("Revenue"))
}
