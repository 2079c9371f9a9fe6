// Package engine implements the financial metrics and forecast engine.
// Every function is pure and stateless: degenerate input (short series,
// zero variance, mismatched lengths) resolves to a documented neutral
// default rather than an error, so a data-sparse symbol renders as
// zeros on the dashboard instead of failing.
package engine

import "github.com/prismfin/prism/internal/core"

// CloseSeries extracts close prices from price points, discarding
// points with a non-positive close.
func CloseSeries(points []core.PricePoint) []float64 {
	closes := make([]float64, 0, len(points))
	for _, p := range points {
		if p.Close <= 0 {
			continue
		}
		closes = append(closes, p.Close)
	}
	return closes
}

// Returns derives simple returns from a close-price series:
// r[i] = (closes[i+1] - closes[i]) / closes[i].
// Returns an empty slice for fewer than two observations.
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return []float64{}
	}
	returns := make([]float64, len(closes)-1)
	for i := 0; i < len(closes)-1; i++ {
		returns[i] = (closes[i+1] - closes[i]) / closes[i]
	}
	return returns
}

// mean computes the arithmetic mean, 0 for an empty series.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
