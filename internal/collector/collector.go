package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"SignalDesk/internal/catalog"
	"SignalDesk/internal/model"
	"SignalDesk/internal/strategy"
)

// DefaultHistoryBars is the number of bars fetched per evaluation.
const DefaultHistoryBars = 100

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  model.BarSeries
	Err   error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, _ string, count int) (model.BarSeries, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Bars.Tail(count), nil
}

func (m *MockFetcher) LastPrice(_ context.Context, _ string) (float64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	if m.Price == 0 {
		if last, ok := m.Bars.Last(); ok {
			return last.Close, nil
		}
	}
	return m.Price, nil
}

// Snapshot is the result of one collection pass for a symbol.
type Snapshot struct {
	Series    model.BarSeries
	Signal    *model.TradingSignal
	Condition model.MarketCondition
	Market    model.MarketData
}

// Collector orchestrates data fetching and signal aggregation.
type Collector struct {
	Fetcher     Fetcher
	Aggregator  *strategy.Aggregator
	HistoryBars int
	// Period is the spacing of the fetched bars; zero means one minute.
	Period time.Duration
	// ResampleWidth merges fetched bars before aggregation when positive.
	ResampleWidth time.Duration
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, agg *strategy.Aggregator, historyBars int) *Collector {
	if historyBars <= 0 {
		historyBars = DefaultHistoryBars
	}
	return &Collector{Fetcher: fetcher, Aggregator: agg, HistoryBars: historyBars}
}

// Series fetches the evaluation window for symbol.
func (c *Collector) Series(ctx context.Context, symbol string) (model.BarSeries, error) {
	count := c.HistoryBars
	if n := c.barsPerBucket(); n > 1 {
		count *= n
	}
	series, err := c.Fetcher.FetchBars(ctx, symbol, count)
	if err != nil {
		return nil, fmt.Errorf("fetch bars %s from %s: %w", symbol, c.Fetcher.Name(), err)
	}
	if c.ResampleWidth > 0 {
		series = Resample(series, c.ResampleWidth)
	}
	return series, nil
}

// barsPerBucket is the number of fetched bars merged into one resampled bar.
func (c *Collector) barsPerBucket() int {
	period := c.Period
	if period <= 0 {
		period = time.Minute
	}
	if c.ResampleWidth <= period {
		return 1
	}
	return int((c.ResampleWidth + period - 1) / period)
}

// Collect fetches market data and computes the composite signal.
func (c *Collector) Collect(ctx context.Context, symbol string) (*Snapshot, error) {
	series, err := c.Series(ctx, symbol)
	if err != nil {
		return nil, err
	}
	sig, err := c.Aggregator.Aggregate(symbol, series)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", symbol, err)
	}
	if sig.Partial {
		log.Warn().Str("symbol", symbol).Int("bars", len(series)).Msg("partial signal, history still short")
	}
	return &Snapshot{
		Series:    series,
		Signal:    sig,
		Condition: strategy.AnalyzeCondition(series),
		Market:    BuildMarketData(symbol, series),
	}, nil
}

// BuildMarketData summarises series, quantising prices to the asset's decimals.
func BuildMarketData(symbol string, series model.BarSeries) model.MarketData {
	md := model.MarketData{Asset: symbol, PriceHistory: series}
	last, ok := series.Last()
	if !ok {
		return md
	}
	md.CurrentPrice = catalog.Round(symbol, last.Close)
	md.PreviousClose = md.CurrentPrice
	if len(series) > 1 {
		md.PreviousClose = catalog.Round(symbol, series[len(series)-2].Close)
	}
	md.Change = catalog.Round(symbol, last.Close-series[0].Open)
	if series[0].Open > 0 {
		md.ChangePercent = (last.Close - series[0].Open) / series[0].Open * 100
	}
	md.LastUpdate = last.Timestamp

	cutoff := last.Timestamp - (24 * time.Hour).Milliseconds()
	md.High24h, md.Low24h = last.High, last.Low
	for _, b := range series {
		if b.Timestamp <= cutoff {
			continue
		}
		if b.High > md.High24h {
			md.High24h = b.High
		}
		if b.Low < md.Low24h {
			md.Low24h = b.Low
		}
		md.Volume24h += b.Volume
	}
	md.High24h = catalog.Round(symbol, md.High24h)
	md.Low24h = catalog.Round(symbol, md.Low24h)
	return md
}
