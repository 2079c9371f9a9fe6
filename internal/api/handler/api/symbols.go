// internal/api/handler/api/symbols.go
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prismfin/prism/internal/api/response"
	"github.com/prismfin/prism/internal/core"
	"github.com/prismfin/prism/internal/engine"
	"github.com/prismfin/prism/internal/metrics"
)

// defaultForecastSteps is the projection horizon when the request does
// not name one.
const defaultForecastSteps = 10

// maxForecastSteps caps the horizon; the linear fit has no business
// extrapolating further than a year of trading days.
const maxForecastSteps = 252

// QuoteReader supplies price history and engine-ready series for a symbol.
type QuoteReader interface {
	History(symbol, rng string) ([]core.PricePoint, error)
	RiskInputs(symbol, rng string) (closes []float64, benchmarkReturns []float64, err error)
	BenchmarkSymbol() string
}

// SymbolsHandler serves history, risk metrics and forecasts for live symbols.
type SymbolsHandler struct {
	quotes  QuoteReader
	metrics *metrics.Registry
}

// NewSymbolsHandler creates a symbols handler.
func NewSymbolsHandler(quotes QuoteReader, reg *metrics.Registry) *SymbolsHandler {
	return &SymbolsHandler{quotes: quotes, metrics: reg}
}

// History handles GET /api/v1/symbols/{symbol}/history?range=3M
func (h *SymbolsHandler) History(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	points, err := h.quotes.History(symbol, rangeParam(r))
	if err != nil {
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"symbol": symbol,
		"points": points,
	})
}

// Metrics handles GET /api/v1/symbols/{symbol}/metrics?range=3M
func (h *SymbolsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	closes, benchReturns, err := h.quotes.RiskInputs(symbol, rangeParam(r))
	if err != nil {
		response.Fail(w, err)
		return
	}

	start := time.Now()
	summary := engine.ComputeRiskSummary(closes, benchReturns)
	if h.metrics != nil {
		h.metrics.RecordRiskSummary(time.Since(start).Seconds())
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"symbol":    symbol,
		"benchmark": h.quotes.BenchmarkSymbol(),
		"summary":   summary,
	})
}

// Forecast handles GET /api/v1/symbols/{symbol}/forecast?range=3M&steps=10
func (h *SymbolsHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	steps, err := stepsParam(r)
	if err != nil {
		response.Fail(w, err)
		return
	}

	closes, _, err := h.quotes.RiskInputs(symbol, rangeParam(r))
	if err != nil {
		response.Fail(w, err)
		return
	}

	start := time.Now()
	forecast := engine.ComputeForecast(closes, steps)
	if h.metrics != nil {
		h.metrics.RecordForecast("symbol", time.Since(start).Seconds())
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"symbol":   symbol,
		"steps":    steps,
		"forecast": forecast,
	})
}

// rangeParam extracts the history range, defaulting to 3M.
func rangeParam(r *http.Request) string {
	rng := r.URL.Query().Get("range")
	if rng == "" {
		return "3M"
	}
	return rng
}

// stepsParam extracts and bounds the forecast horizon.
func stepsParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("steps")
	if raw == "" {
		return defaultForecastSteps, nil
	}

	steps, err := strconv.Atoi(raw)
	if err != nil || steps < 0 || steps > maxForecastSteps {
		return 0, core.WrapError(core.ErrInvalidParam, fmt.Errorf("steps must be 0-%d, got %q", maxForecastSteps, raw))
	}
	return steps, nil
}
