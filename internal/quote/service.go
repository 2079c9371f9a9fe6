package quote

import (
	"strings"
	"time"

	"github.com/prismfin/prism/internal/core"
	"github.com/prismfin/prism/internal/engine"
	"go.uber.org/zap"
)

// Service selects a source and prepares aligned numeric series for the
// engine. The engine itself never sees symbols or date ranges; this is
// the boundary where price points become plain float slices.
type Service struct {
	registry  *Registry
	benchmark string
	logger    *zap.Logger
}

// NewService creates a quote service using the given benchmark symbol
// for beta/covariance comparisons.
func NewService(registry *Registry, benchmarkSymbol string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		registry:  registry,
		benchmark: benchmarkSymbol,
		logger:    logger,
	}
}

// BenchmarkSymbol returns the configured comparator symbol.
func (s *Service) BenchmarkSymbol() string {
	return s.benchmark
}

// History fetches daily price history for the symbol over the named
// range ("1M", "3M", "6M", "1Y").
func (s *Service) History(symbol, rng string) ([]core.PricePoint, error) {
	src := s.selectSource(symbol)
	if src == nil {
		return nil, core.ErrNoData
	}

	end := time.Now()
	points, err := src.FetchHistory(symbol, rangeStart(end, rng), end, "1d")
	if err != nil {
		return nil, core.WrapError(core.ErrQuoteFailed, err)
	}
	return points, nil
}

// RiskInputs fetches the symbol's close series and the benchmark return
// series over the same range, trimmed to a common window so that
// len(benchmarkReturns) == len(closes)-1 as the engine expects.
// A failed or empty benchmark fetch degrades to an empty return series;
// the engine then falls back to its neutral beta/covariance defaults.
func (s *Service) RiskInputs(symbol, rng string) ([]float64, []float64, error) {
	points, err := s.History(symbol, rng)
	if err != nil {
		return nil, nil, err
	}
	closes := engine.CloseSeries(points)

	benchPoints, err := s.History(s.benchmark, rng)
	if err != nil {
		s.logger.Warn("benchmark fetch failed, beta will default to neutral",
			zap.String("benchmark", s.benchmark),
			zap.Error(err),
		)
		return closes, []float64{}, nil
	}
	benchCloses := engine.CloseSeries(benchPoints)

	closes, benchCloses = alignTail(closes, benchCloses)
	return closes, engine.Returns(benchCloses), nil
}

// alignTail trims both series to their common most-recent window.
func alignTail(a, b []float64) ([]float64, []float64) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	return a[len(a)-n:], b[len(b)-n:]
}

// selectSource chooses the source for a symbol, preferring yahoo.
func (s *Service) selectSource(symbol string) Source {
	upperSymbol := strings.ToUpper(symbol)

	// A-share symbols need a mainland-capable source when one is registered
	if strings.HasSuffix(upperSymbol, ".SH") || strings.HasSuffix(upperSymbol, ".SZ") {
		if src, ok := s.registry.Get("eastmoney"); ok {
			return src
		}
	}

	if src, ok := s.registry.Get("yahoo"); ok {
		return src
	}

	// Fall back to any registered source
	for _, src := range s.registry.GetAll() {
		return src
	}
	return nil
}

// rangeStart maps a named range to its start time.
func rangeStart(end time.Time, rng string) time.Time {
	switch rng {
	case "1M":
		return end.AddDate(0, -1, 0)
	case "3M":
		return end.AddDate(0, -3, 0)
	case "6M":
		return end.AddDate(0, -6, 0)
	case "1Y":
		return end.AddDate(-1, 0, 0)
	default:
		return end.AddDate(0, -3, 0)
	}
}
