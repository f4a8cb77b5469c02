package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"SignalDesk/internal/cache"
	"SignalDesk/internal/collector"
	"SignalDesk/internal/config"
	"SignalDesk/internal/notifier"
	"SignalDesk/internal/recorder"
	"SignalDesk/internal/scheduler"
	"SignalDesk/internal/simulator"
	"SignalDesk/internal/strategy"
)

// feed is the configured bar source. sim is set only for the simulated source.
type feed struct {
	fetcher collector.Fetcher
	sim     *collector.SimulatedFetcher
}

// ticker returns the simulated feed as a scheduler ticker, or nil for live sources.
func (f feed) ticker() scheduler.Ticker {
	if f.sim == nil {
		return nil
	}
	return f.sim
}

func newFeed(cfg *config.Config) (feed, error) {
	switch cfg.Market.Source {
	case "rest":
		return feed{fetcher: collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)}, nil
	case "yahoo":
		return feed{fetcher: collector.NewYahooFetcher(cfg.Proxy)}, nil
	}

	prices, err := simulator.LoadPrices(cfg.Market.StateFile)
	if err != nil {
		log.Warn().Err(err).Str("file", cfg.Market.StateFile).Msg("load simulated prices, starting from catalog")
		prices = nil
	}
	sim, err := collector.NewSimulatedFetcher(collector.SimConfig{
		PeriodMs: cfg.Market.Period.Milliseconds(),
		History:  cfg.Market.History,
		MaxBars:  cfg.Market.MaxBars,
		Seed:     cfg.Market.Seed,
		Prices:   prices,
	}, cfg.Market.Symbols, time.Now)
	if err != nil {
		return feed{}, fmt.Errorf("init simulated feed: %w", err)
	}
	return feed{fetcher: sim, sim: sim}, nil
}

func strategyConfig(cfg config.StrategyConfig) strategy.Config {
	return strategy.Config{
		MinBars:          cfg.MinBars,
		MinStrength:      cfg.MinStrength,
		MinConfidence:    cfg.MinConfidence,
		HighThreshold:    cfg.HighThreshold,
		ExpectedDuration: cfg.ExpectedDuration,
		Timeframe:        cfg.Timeframe,
		FibTolerance:     cfg.FibTolerance,
	}
}

func acceptance(cfg config.AcceptanceConfig) strategy.Acceptance {
	return strategy.Acceptance{
		MinStrength:   cfg.MinStrength,
		MinConfidence: cfg.MinConfidence,
		MinConsensus:  cfg.MinConsensus,
	}
}

func newCollector(cfg *config.Config, f collector.Fetcher) *collector.Collector {
	col := collector.NewCollector(f, strategy.NewAggregator(strategyConfig(cfg.Strategy)), cfg.Market.History)
	col.Period = cfg.Market.Period
	col.ResampleWidth = cfg.Market.Resample
	return col
}

func newRecorder(path string) recorder.Recorder {
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	rec, err := recorder.NewSQLiteRecorder(path)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return rec
}

func newCache(ctx context.Context, cfg config.RedisConfig) cache.SignalCache {
	if !cfg.Enabled() {
		return cache.NewMemorySignalCache(cfg.TTL)
	}
	rc, err := cache.NewRedisSignalCache(ctx, cfg.Addr, cfg.Password, cfg.DB, cfg.TTL)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Msg("redis unavailable, using in-memory cache")
		return cache.NewMemorySignalCache(cfg.TTL)
	}
	return rc
}

func newPublisher(cfg config.KafkaConfig) notifier.Publisher {
	if !cfg.Enabled() {
		return notifier.NoopPublisher{}
	}
	p, err := notifier.NewKafkaPublisher(cfg.Brokers, cfg.Topic)
	if err != nil {
		log.Warn().Err(err).Msg("init kafka publisher failed, signals will not be published")
		return notifier.NoopPublisher{}
	}
	return p
}
