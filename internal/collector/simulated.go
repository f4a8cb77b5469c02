package collector

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"SignalDesk/internal/catalog"
	"SignalDesk/internal/model"
	"SignalDesk/internal/simulator"
)

// SimConfig configures the simulated feed.
type SimConfig struct {
	PeriodMs int64
	History  int
	MaxBars  int
	Seed     int64              // 0 seeds from the clock
	Prices   map[string]float64 // resume prices, usually from simulator.LoadPrices
}

// SimulatedFetcher serves bars from one MarketState per instrument.
type SimulatedFetcher struct {
	cfg    SimConfig
	now    func() time.Time
	mu     sync.Mutex
	states map[string]*simulator.MarketState
}

// NewSimulatedFetcher seeds a state for every symbol.
func NewSimulatedFetcher(cfg SimConfig, symbols []string, now func() time.Time) (*SimulatedFetcher, error) {
	if now == nil {
		now = time.Now
	}
	f := &SimulatedFetcher{cfg: cfg, now: now, states: make(map[string]*simulator.MarketState)}
	for _, sym := range symbols {
		if _, err := f.State(sym); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *SimulatedFetcher) Name() string { return "simulated" }

// State returns the running state of symbol, seeding it on first use.
func (f *SimulatedFetcher) State(symbol string) (*simulator.MarketState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if st, ok := f.states[symbol]; ok {
		return st, nil
	}
	asset, err := catalog.Lookup(symbol)
	if err != nil {
		return nil, err
	}
	base := asset.BasePrice
	if p, ok := f.cfg.Prices[symbol]; ok && p > 0 {
		base = p
	}
	st, err := simulator.NewMarketState(simulator.StateConfig{
		Symbol:    symbol,
		Class:     asset.Type,
		BasePrice: base,
		PeriodMs:  f.cfg.PeriodMs,
		MaxBars:   f.cfg.MaxBars,
		Seed:      symbolSeed(f.cfg.Seed, symbol),
	}, f.cfg.History, f.now())
	if err != nil {
		return nil, err
	}
	f.states[symbol] = st
	log.Debug().Str("symbol", symbol).Float64("base", base).Int("bars", st.Len()).Msg("market state seeded")
	return st, nil
}

func symbolSeed(seed int64, symbol string) int64 {
	if seed == 0 {
		return 0
	}
	h := fnv.New64a()
	h.Write([]byte(symbol))
	return seed ^ int64(h.Sum64()>>1)
}

// Tick advances every state to now and returns the number of bars added.
func (f *SimulatedFetcher) Tick(now time.Time) int {
	f.mu.Lock()
	states := make([]*simulator.MarketState, 0, len(f.states))
	for _, st := range f.states {
		states = append(states, st)
	}
	f.mu.Unlock()

	var added int
	for _, st := range states {
		added += st.Tick(now)
	}
	return added
}

// Prices returns the latest close of every state.
func (f *SimulatedFetcher) Prices() map[string]float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]float64, len(f.states))
	for sym, st := range f.states {
		out[sym] = st.Last().Close
	}
	return out
}

func (f *SimulatedFetcher) FetchBars(_ context.Context, symbol string, count int) (model.BarSeries, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: bar count must be positive, got %d", model.ErrInvalidInput, count)
	}
	st, err := f.State(symbol)
	if err != nil {
		return nil, err
	}
	return st.Snapshot(count), nil
}

func (f *SimulatedFetcher) LastPrice(_ context.Context, symbol string) (float64, error) {
	st, err := f.State(symbol)
	if err != nil {
		return 0, err
	}
	return catalog.Round(symbol, st.Last().Close), nil
}
