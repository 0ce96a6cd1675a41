package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToIDR(t *testing.T) {
	tests := []struct {
		name string
		usd  float64
		want int64
	}{
		{"zero", 0, 0},
		{"whole dollars", 10, 150000},
		{"rounds up", 10.004, 150060},
		{"rounds down", 9.996, 149940},
		{"half rounds away from zero", 0.0001, 2}, // 1.5 IDR
		{"cents", 0.99, 14850},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToIDR(tt.usd))
		})
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, int64(300000), Round(299999.6))
	assert.Equal(t, int64(299999), Round(299999.4))
	assert.Equal(t, int64(150060), Round(150060))
}
