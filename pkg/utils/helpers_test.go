package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFloat(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"2020", 2020, false},
		{" 6.5 ", 6.5, false},
		{"abc", 0, true},
		{"", 0, true},
		{"NaN", 0, true},
		{"+Inf", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFloat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestIsIntegral(t *testing.T) {
	assert.True(t, IsIntegral(2030))
	assert.False(t, IsIntegral(2030.5))
}

func TestParseKeyValue(t *testing.T) {
	k, v, ok := ParseKeyValue(" sector =Energy=Oil")
	assert.True(t, ok)
	assert.Equal(t, "sector", k)
	assert.Equal(t, "Energy=Oil", v)

	_, _, ok = ParseKeyValue("sector")
	assert.False(t, ok)
	_, _, ok = ParseKeyValue("=Energy")
	assert.False(t, ok)
}
