package collector

import (
	"context"

	"SignalDesk/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchBars(ctx context.Context, symbol string, count int) (model.BarSeries, error)
	LastPrice(ctx context.Context, symbol string) (float64, error)
	Name() string
}
