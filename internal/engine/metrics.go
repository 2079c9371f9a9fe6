package engine

import "math"

// RiskSummary holds the risk/return statistics for a close-price series
// measured against a benchmark return series. Growth, Volatility and
// Confidence are percentages; Beta, Covariance and Sharpe are unit-less.
type RiskSummary struct {
	Growth     float64 `json:"growth"`
	Volatility float64 `json:"volatility"`
	Beta       float64 `json:"beta"`
	Covariance float64 `json:"covariance"`
	Sharpe     float64 `json:"sharpe"`
	Confidence float64 `json:"confidence"`
}

// NeutralSummary is the cold-start default returned for series too short
// to compute anything: zero growth and volatility, market-neutral beta.
func NeutralSummary() RiskSummary {
	return RiskSummary{Beta: 1}
}

// ComputeRiskSummary converts a close-price series into a risk/return
// summary relative to a benchmark return series.
//
// Growth is the mean simple return, Volatility the population standard
// deviation of returns, both in percent. Sharpe is Growth/Volatility
// with 0 as the sentinel when Volatility is 0 (the divide-by-zero hazard
// is resolved here, not left to the caller). Confidence is the R² of a
// linear trend fitted to the same closes, in percent.
func ComputeRiskSummary(closes, benchmarkReturns []float64) RiskSummary {
	if len(closes) < 2 {
		return NeutralSummary()
	}

	returns := Returns(closes)

	meanReturn := mean(returns)
	growth := meanReturn * 100

	// Population variance, not sample
	var variance float64
	for _, r := range returns {
		variance += (r - meanReturn) * (r - meanReturn)
	}
	variance /= float64(len(returns))
	volatility := math.Sqrt(variance) * 100

	sharpe := 0.0
	if volatility != 0 {
		sharpe = growth / volatility
	}

	return RiskSummary{
		Growth:     growth,
		Volatility: volatility,
		Beta:       Beta(returns, benchmarkReturns),
		Covariance: Covariance(returns, benchmarkReturns),
		Sharpe:     sharpe,
		Confidence: ComputeForecast(closes, 0).RSquared * 100,
	}
}

// Beta measures the sensitivity of a return series to a benchmark:
// Σ(x-meanX)(y-meanY) / Σ(y-meanY)². Returns the market-neutral 1.0
// when the benchmark has zero variance or the lengths differ.
func Beta(series, benchmark []float64) float64 {
	if len(series) == 0 || len(series) != len(benchmark) {
		return 1.0
	}

	meanX := mean(series)
	meanY := mean(benchmark)

	var cov, varY float64
	for i := range series {
		dx := series[i] - meanX
		dy := benchmark[i] - meanY
		cov += dx * dy
		varY += dy * dy
	}

	if varY == 0 {
		return 1.0
	}
	return cov / varY
}

// Covariance computes the sample covariance Σ(a-meanA)(b-meanB)/(n-1).
// Returns 0 for fewer than two observations or mismatched lengths.
func Covariance(a, b []float64) float64 {
	if len(a) < 2 || len(a) != len(b) {
		return 0
	}

	meanA := mean(a)
	meanB := mean(b)

	var sum float64
	for i := range a {
		sum += (a[i] - meanA) * (b[i] - meanB)
	}
	return sum / float64(len(a)-1)
}
