package quote

import (
	"time"

	"github.com/prismfin/prism/internal/core"
)

// Config holds quote source configuration
type Config struct {
	Enabled  bool
	Markets  []string
	Interval string
	APIKey   string
	Extra    map[string]any
}

// Source defines the interface for price data providers
type Source interface {
	// Metadata
	Name() string
	SupportedMarkets() []core.Market

	// Lifecycle
	Init(cfg Config) error

	// Data fetching
	FetchQuote(symbol string) (*core.Quote, error)
	FetchHistory(symbol string, start, end time.Time, interval string) ([]core.PricePoint, error)
}
