package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlatformFee(t *testing.T) {
	tests := []struct {
		price float64
		fee   float64
	}{
		{1, 49},
		{499, 49},
		{500, 69},
		{999, 69},
		{1000, 99},
		{4999, 99},
		{5000, 199},
		{9999, 199},
		{10000, 299},
		{19999, 299},
		{20000, 399},
		{30000, 399},
		{30001, 499},
		{100000, 499},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.fee, PlatformFee(tt.price), "fee for price %.0f", tt.price)
	}
}

func TestTotalDue(t *testing.T) {
	assert.Equal(t, float64(1049), TotalDue(1000))
	assert.Equal(t, float64(548), TotalDue(499))
}
