package simulator

import (
	"fmt"
	"sync"
	"time"

	"SignalDesk/internal/catalog"
	"SignalDesk/internal/model"
)

// DefaultMaxBars bounds the history a MarketState keeps.
const DefaultMaxBars = 500

// StateConfig configures one instrument's running series.
type StateConfig struct {
	Symbol    string
	Class     model.AssetClass
	BasePrice float64
	PeriodMs  int64
	MaxBars   int
	Seed      int64
}

// MarketState is the running bar series of one instrument.
// Tick is the only writer; readers get copies via Snapshot.
type MarketState struct {
	mu       sync.RWMutex
	symbol   string
	periodMs int64
	maxBars  int
	bars     model.BarSeries
	walker   *walker
}

// NewMarketState seeds a state with `history` bars ending at now.
func NewMarketState(cfg StateConfig, history int, now time.Time) (*MarketState, error) {
	if cfg.MaxBars <= 0 {
		cfg.MaxBars = DefaultMaxBars
	}
	if history >= cfg.MaxBars {
		history = cfg.MaxBars - 1
	}
	p := Params{
		Symbol:    cfg.Symbol,
		Class:     cfg.Class,
		BasePrice: cfg.BasePrice,
		Periods:   history,
		PeriodMs:  cfg.PeriodMs,
		Now:       now,
		Seed:      cfg.Seed,
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("seed %s: %w", cfg.Symbol, err)
	}
	if p.Class == "" {
		p.Class = catalog.ClassOf(cfg.Symbol)
	}
	if p.Seed == 0 {
		p.Seed = now.UnixNano()
	}
	bars, w := generate(p)
	return &MarketState{
		symbol:   cfg.Symbol,
		periodMs: cfg.PeriodMs,
		maxBars:  cfg.MaxBars,
		bars:     bars,
		walker:   w,
	}, nil
}

// Symbol returns the instrument symbol.
func (s *MarketState) Symbol() string { return s.symbol }

// Tick appends one bar for every period fully elapsed since the last bar and
// returns how many were added.
func (s *MarketState) Tick(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	last := s.bars[len(s.bars)-1]
	missing := (now.UnixMilli() - last.Timestamp) / s.periodMs
	if missing <= 0 {
		return 0
	}
	next := last.Timestamp + s.periodMs
	if missing > int64(s.maxBars) {
		// Long gap: only simulate what the buffer can hold.
		next += (missing - int64(s.maxBars)) * s.periodMs
		missing = int64(s.maxBars)
	}
	price := last.Close
	for i := int64(0); i < missing; i++ {
		bar := s.walker.step(next+i*s.periodMs, price)
		s.bars = append(s.bars, bar)
		price = bar.Close
	}
	if len(s.bars) > s.maxBars {
		trimmed := make(model.BarSeries, s.maxBars)
		copy(trimmed, s.bars[len(s.bars)-s.maxBars:])
		s.bars = trimmed
	}
	return int(missing)
}

// Snapshot returns a copy of the newest n bars (all bars when n <= 0).
func (s *MarketState) Snapshot(n int) model.BarSeries {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.bars.Tail(n)
	if n <= 0 {
		src = s.bars
	}
	out := make(model.BarSeries, len(src))
	copy(out, src)
	return out
}

// Last returns the newest bar.
func (s *MarketState) Last() model.PriceBar {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bars[len(s.bars)-1]
}

// Len returns the number of buffered bars.
func (s *MarketState) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bars)
}
