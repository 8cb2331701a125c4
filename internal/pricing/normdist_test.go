package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErfMatchesReference(t *testing.T) {
	for z := -5.0; z <= 5.0; z += 0.01 {
		assert.InDelta(t, math.Erf(z), erf(z), 1e-6, "z=%.2f", z)
	}
}

func TestNormalCDF(t *testing.T) {
	assert.InDelta(t, 0.5, normalCDF(70, 70, 2.5), 1e-9)
	assert.InDelta(t, 0.8413, normalCDF(72.5, 70, 2.5), 1e-4)
	assert.InDelta(t, 0.1587, normalCDF(67.5, 70, 2.5), 1e-4)

	// Monotone in x.
	prev := -1.0
	for x := 50.0; x <= 90.0; x += 0.5 {
		v := normalCDF(x, 70, 3)
		assert.Greater(t, v, prev)
		prev = v
	}
}

func TestNormalCDFDegenerateSigma(t *testing.T) {
	assert.Equal(t, 0.0, normalCDF(69.9, 70, 0))
	assert.Equal(t, 1.0, normalCDF(70, 70, 0))
	assert.Equal(t, 1.0, normalCDF(80, 70, -1))
}
