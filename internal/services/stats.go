package services

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean of xs, or NaN when xs is empty.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(xs, nil)
}

// Histogram bins xs into equal-width bins over [min, max] and returns the bin
// edges together with the probability density of each bin, so that the
// densities times the bin width sum to one. The last bin includes max.
// A zero-width range is widened by 0.5 on each side.
func Histogram(xs []float64, bins int) (edges, density []float64) {
	if len(xs) == 0 || bins <= 0 {
		return nil, nil
	}

	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	edges = floats.Span(make([]float64, bins+1), lo, hi)

	// stat.Histogram bins are half-open; nudge the top divider past max.
	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	density = make([]float64, bins)
	n := float64(len(xs))
	for i, c := range counts {
		density[i] = c / (n * (edges[i+1] - edges[i]))
	}
	return edges, density
}
