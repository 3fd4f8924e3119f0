package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 2.5, Mean([]float64{1, 2, 3, 4}))
	assert.True(t, math.IsNaN(Mean(nil)))
}

func TestHistogram_DensityIntegratesToOne(t *testing.T) {
	xs := []float64{10, 12, 15, 15, 20, 33, 47, 50}
	edges, density := Histogram(xs, 75)
	require.Len(t, edges, 76)
	require.Len(t, density, 75)

	assert.Equal(t, 10.0, edges[0])
	assert.Equal(t, 50.0, edges[75])

	total := 0.0
	for i, d := range density {
		total += d * (edges[i+1] - edges[i])
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestHistogram_MaxFallsInLastBin(t *testing.T) {
	edges, density := Histogram([]float64{0, 1, 2, 3, 4}, 4)
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, edges)
	// Bin width 1, n=5: [0,1) [1,2) [2,3) [3,4] holds 3 and 4.
	assert.InDeltaSlice(t, []float64{0.2, 0.2, 0.2, 0.4}, density, 1e-12)
}

func TestHistogram_SingleValue(t *testing.T) {
	edges, density := Histogram([]float64{60}, 2)
	assert.Equal(t, []float64{59.5, 60, 60.5}, edges)
	assert.InDeltaSlice(t, []float64{0, 2}, density, 1e-12)
}

func TestHistogram_Empty(t *testing.T) {
	edges, density := Histogram(nil, 75)
	assert.Nil(t, edges)
	assert.Nil(t, density)
}

func TestHistogram_UnsortedInput(t *testing.T) {
	_, density := Histogram([]float64{4, 0, 3, 1, 2}, 4)
	assert.InDeltaSlice(t, []float64{0.2, 0.2, 0.2, 0.4}, density, 1e-12)
}
