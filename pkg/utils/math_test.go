package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeL2(t *testing.T) {
	x := []float32{3, 4}
	NormalizeL2(x)
	assert.InDelta(t, 0.6, x[0], 1e-6)
	assert.InDelta(t, 0.8, x[1], 1e-6)
	assert.InDelta(t, 1.0, L2Norm(x), 1e-6)
}

func TestNormalizeL2_zeroVector(t *testing.T) {
	x := []float32{0, 0, 0}
	NormalizeL2(x)
	assert.Equal(t, []float32{0, 0, 0}, x)
}

func TestNormalizeL2_idempotentOnUnitVector(t *testing.T) {
	x := []float32{0, 1, 0}
	NormalizeL2(x)
	assert.Equal(t, []float32{0, 1, 0}, x)
}

func TestDot(t *testing.T) {
	assert.InDelta(t, 32.0, Dot([]float32{1, 2, 3}, []float32{4, 5, 6}), 1e-6)
	assert.Equal(t, float32(0), Dot(nil, []float32{1}))
}
