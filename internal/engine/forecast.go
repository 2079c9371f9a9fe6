package engine

// Forecast holds projected close prices and the goodness of fit of the
// underlying linear trend, measured over the historical window only.
type Forecast struct {
	Points   []float64 `json:"points"`
	RSquared float64   `json:"rSquared"`
}

// ComputeForecast fits an ordinary least-squares line over the index
// positions of the close prices (x = 0..n-1) and extrapolates it for
// the requested number of future steps.
//
// The fitted line is not clamped: a strongly negative trend can project
// negative prices. A degenerate input (fewer than two points) yields an
// empty forecast with RSquared 0. A flat series also reports RSquared 0
// rather than 1, to avoid signaling confidence in a trivial fit.
// Repeated calls with different step counts share no state.
func ComputeForecast(closes []float64, steps int) Forecast {
	empty := Forecast{Points: []float64{}}

	n := len(closes)
	if n < 2 {
		return empty
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range closes {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := float64(n)*sumXX - sumX*sumX
	if denom == 0 {
		return empty
	}

	slope := (float64(n)*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / float64(n)

	points := make([]float64, 0, max(steps, 0))
	for i := 0; i < steps; i++ {
		points = append(points, slope*float64(n+i)+intercept)
	}

	// R² over the historical window
	meanY := sumY / float64(n)
	var ssTot, ssRes float64
	for i, y := range closes {
		fitted := slope*float64(i) + intercept
		ssTot += (y - meanY) * (y - meanY)
		ssRes += (y - fitted) * (y - fitted)
	}

	rSquared := 0.0
	if ssTot != 0 {
		rSquared = 1 - ssRes/ssTot
	}

	return Forecast{Points: points, RSquared: rSquared}
}
