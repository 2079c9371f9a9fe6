package core

import "time"

// Market represents a trading market
type Market string

const (
	MarketUS  Market = "US"
	MarketHK  Market = "HK"
	MarketCNA Market = "CN_A"
	MarketEU  Market = "EU"
)

// Quote represents a real-time price quote
type Quote struct {
	Symbol string
	Market Market
	Price  float64
	Volume int64
	Time   time.Time
	Source string
}

// IsValid checks if the quote has required fields
func (q Quote) IsValid() bool {
	return q.Symbol != "" && q.Price > 0
}

// PricePoint represents a daily OHLC price observation
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// IsValid checks the OHLC invariant: high >= max(open, close),
// low <= min(open, close), positive close, non-negative volume.
// Points that fail this are discarded before any computation.
func (p PricePoint) IsValid() bool {
	if p.Close <= 0 || p.Volume < 0 {
		return false
	}
	hi, lo := p.Open, p.Open
	if p.Close > hi {
		hi = p.Close
	}
	if p.Close < lo {
		lo = p.Close
	}
	return p.High >= hi && p.Low <= lo
}
