package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrInvalidInput marks caller-supplied data rejected at a boundary.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientData marks a series too short for the requested computation.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrUnknownSymbol is returned when a symbol is not in the asset catalog.
	ErrUnknownSymbol = errors.New("unknown symbol")
)

// PriceBar represents a single OHLCV candlestick. Timestamp is milliseconds since epoch.
type PriceBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Time returns the bar's open time in UTC.
func (b PriceBar) Time() time.Time {
	return time.UnixMilli(b.Timestamp).UTC()
}

// Validate checks the OHLC ordering invariant and that every field is finite.
func (b PriceBar) Validate() error {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: bar %d has non-finite value", ErrInvalidInput, b.Timestamp)
		}
	}
	if b.Low <= 0 {
		return fmt.Errorf("%w: bar %d has non-positive low %g", ErrInvalidInput, b.Timestamp, b.Low)
	}
	if b.Volume < 0 {
		return fmt.Errorf("%w: bar %d has negative volume %.4f", ErrInvalidInput, b.Timestamp, b.Volume)
	}
	lo, hi := math.Min(b.Open, b.Close), math.Max(b.Open, b.Close)
	if b.Low > lo || hi > b.High {
		return fmt.Errorf("%w: bar %d violates low <= open,close <= high (o=%g h=%g l=%g c=%g)",
			ErrInvalidInput, b.Timestamp, b.Open, b.High, b.Low, b.Close)
	}
	return nil
}

// BarSeries is an oldest-first sequence of bars for one instrument.
type BarSeries []PriceBar

// Validate checks every bar and that timestamps never go backwards.
func (s BarSeries) Validate() error {
	for i, b := range s {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("bar %d: %w", i, err)
		}
		if i > 0 && b.Timestamp < s[i-1].Timestamp {
			return fmt.Errorf("%w: bar %d timestamp %d before previous %d", ErrInvalidInput, i, b.Timestamp, s[i-1].Timestamp)
		}
	}
	return nil
}

// Closes returns the close prices in order.
func (s BarSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Highs returns the high prices in order.
func (s BarSeries) Highs() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.High
	}
	return out
}

// Lows returns the low prices in order.
func (s BarSeries) Lows() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Low
	}
	return out
}

// Volumes returns the volumes in order.
func (s BarSeries) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Volume
	}
	return out
}

// Last returns the newest bar. ok is false for an empty series.
func (s BarSeries) Last() (PriceBar, bool) {
	if len(s) == 0 {
		return PriceBar{}, false
	}
	return s[len(s)-1], true
}

// Tail returns the newest n bars, or the whole series if it is shorter.
func (s BarSeries) Tail(n int) BarSeries {
	if n >= len(s) || n < 0 {
		return s
	}
	return s[len(s)-n:]
}

// AssetClass is the instrument type used to pick volatility and volume regimes.
type AssetClass string

const (
	ClassCurrency  AssetClass = "CURRENCY"
	ClassIndex     AssetClass = "INDEX"
	ClassCommodity AssetClass = "COMMODITY"
	ClassCrypto    AssetClass = "CRYPTO"
	ClassStock     AssetClass = "STOCK"
	ClassOTC       AssetClass = "OTC"
)

// Asset is one entry of the tradable instrument catalog.
type Asset struct {
	Symbol         string     `json:"symbol"`
	Name           string     `json:"name"`
	Type           AssetClass `json:"type"`
	Category       string     `json:"category"`
	IsActive       bool       `json:"isActive"`
	MinTradeAmount float64    `json:"minTradeAmount"`
	MaxTradeAmount float64    `json:"maxTradeAmount"`
	Spread         float64    `json:"spread"`
	BasePrice      float64    `json:"basePrice"`
	Decimals       int32      `json:"decimals"`
}

// MarketData summarises the recent price history of one asset.
type MarketData struct {
	Asset         string    `json:"asset"`
	CurrentPrice  float64   `json:"currentPrice"`
	PreviousClose float64   `json:"previousClose"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	High24h       float64   `json:"high24h"`
	Low24h        float64   `json:"low24h"`
	Volume24h     float64   `json:"volume24h"`
	LastUpdate    int64     `json:"lastUpdate"`
	PriceHistory  BarSeries `json:"priceHistory"`
}

// MarketCondition is a coarse description of the current regime.
type MarketCondition struct {
	Trend       string  `json:"trend"`      // BULLISH, BEARISH, SIDEWAYS
	Volatility  string  `json:"volatility"` // LOW, MEDIUM, HIGH
	Volume      string  `json:"volume"`     // LOW, MEDIUM, HIGH
	Sentiment   string  `json:"sentiment"`  // BULLISH, BEARISH, NEUTRAL
	Strength    float64 `json:"strength"`
	Description string  `json:"description"`
}
