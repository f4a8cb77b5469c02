package strategy

import (
	"errors"
	"fmt"
	"math"
	"time"

	"SignalDesk/internal/model"
	"SignalDesk/internal/session"
)

// Config holds the aggregation policy.
type Config struct {
	MinBars          int
	MinStrength      float64
	MinConfidence    float64
	HighThreshold    float64
	ExpectedDuration int    // seconds
	Timeframe        string // used when bar spacing cannot be measured
	FibTolerance     float64
	Weights          map[string]float64
}

// DefaultConfig returns the standard aggregation policy.
func DefaultConfig() Config {
	return Config{
		MinBars:          55,
		MinStrength:      70,
		MinConfidence:    75,
		HighThreshold:    85,
		ExpectedDuration: 60,
		Timeframe:        "1m",
		FibTolerance:     0.001,
		Weights:          DefaultWeights,
	}
}

// Score is the weighted vote of a set of indicators.
type Score struct {
	Buy       float64
	Sell      float64
	BuyCount  int
	SellCount int
}

// ScoreIndicators adds weight·strength/100 to the side each non-neutral indicator points to.
func ScoreIndicators(results []model.IndicatorResult, weights map[string]float64) Score {
	var s Score
	for _, r := range results {
		if r.Strength <= 0 {
			continue
		}
		w := weights[r.Name]
		switch r.Signal {
		case model.Buy:
			s.Buy += w * r.Strength / 100
			s.BuyCount++
		case model.Sell:
			s.Sell += w * r.Strength / 100
			s.SellCount++
		}
	}
	return s
}

// Consensus returns |#buy − #sell| / #indicators for a set of results.
func Consensus(results []model.IndicatorResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var buy, sell int
	for _, r := range results {
		switch r.Signal {
		case model.Buy:
			buy++
		case model.Sell:
			sell++
		}
	}
	return math.Abs(float64(buy-sell)) / float64(len(results))
}

// Aggregator combines indicator readings and structural confirmations into one signal.
type Aggregator struct {
	cfg Config
	now func() time.Time
}

// Option customises an Aggregator.
type Option func(*Aggregator)

// WithClock overrides the wall clock used for session premiums and timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// NewAggregator creates an Aggregator; zero config fields fall back to DefaultConfig.
func NewAggregator(cfg Config, opts ...Option) *Aggregator {
	def := DefaultConfig()
	if cfg.MinBars <= 0 {
		cfg.MinBars = def.MinBars
	}
	if cfg.HighThreshold <= 0 {
		cfg.HighThreshold = def.HighThreshold
	}
	if cfg.ExpectedDuration <= 0 {
		cfg.ExpectedDuration = def.ExpectedDuration
	}
	if cfg.Timeframe == "" {
		cfg.Timeframe = def.Timeframe
	}
	if cfg.FibTolerance <= 0 {
		cfg.FibTolerance = def.FibTolerance
	}
	if len(cfg.Weights) == 0 {
		cfg.Weights = def.Weights
	}
	a := &Aggregator{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Config returns the effective configuration.
func (a *Aggregator) Config() Config { return a.cfg }

// Aggregate evaluates the series and returns a composite signal.
// Malformed bars are rejected; a short series yields a partial, zero-confidence signal.
func (a *Aggregator) Aggregate(asset string, series model.BarSeries) (*model.TradingSignal, error) {
	if asset == "" {
		return nil, fmt.Errorf("%w: asset is required", model.ErrInvalidInput)
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", asset, err)
	}
	now := a.now()
	if len(series) < a.cfg.MinBars {
		return a.insufficient(asset, series, now), nil
	}

	indicators := BuildIndicators(series)
	score := ScoreIndicators(indicators, a.cfg.Weights)
	total := TotalWeight(a.cfg.Weights)

	var reasoning []string
	for _, r := range indicators {
		if r.Name == NameMarketStructure && r.Signal != model.Neutral {
			reasoning = append(reasoning, fmt.Sprintf("Market structure: %s", r.Description))
		}
	}

	var buyBonus, sellBonus float64
	for _, c := range Confirmations(series, a.cfg.FibTolerance) {
		if c.Direction == model.Buy {
			buyBonus += c.Bonus
		} else {
			sellBonus += c.Bonus
		}
		reasoning = append(reasoning, fmt.Sprintf("%s: %s", c.Name, c.Reason))
	}

	premium := session.Premium(now)
	sess := session.At(now)
	buyScore := normalise(score.Buy*premium, total, buyBonus)
	sellScore := normalise(score.Sell*premium, total, sellBonus)
	reasoning = append(reasoning, fmt.Sprintf("Session %s: score premium x%.2f", sess.Name, premium))

	dir, dominant := model.Sell, sellScore
	if buyScore > sellScore {
		dir, dominant = model.Buy, buyScore
	}

	gap := math.Abs(buyScore - sellScore)
	consensus := float64(abs(score.BuyCount-score.SellCount)) / float64(len(indicators))
	confidence := math.Max(math.Min(gap*2.5+consensus*100, 100), a.cfg.MinConfidence)
	strength := math.Max(dominant, a.cfg.MinStrength)

	risk := model.RiskMedium
	if confidence >= a.cfg.HighThreshold && strength >= a.cfg.HighThreshold {
		risk = model.RiskLow
	}

	return &model.TradingSignal{
		Asset:            asset,
		Signal:           dir,
		Strength:         round(strength, 2),
		Confidence:       round(confidence, 2),
		Timestamp:        now.UnixMilli(),
		Timeframe:        a.timeframe(series),
		Indicators:       indicators,
		Reasoning:        reasoning,
		RiskLevel:        risk,
		ExpectedDuration: a.cfg.ExpectedDuration,
	}, nil
}

func normalise(raw, total, bonus float64) float64 {
	if total <= 0 {
		return math.Min(bonus, 100)
	}
	return math.Min(raw/total*100+bonus, 100)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *Aggregator) insufficient(asset string, series model.BarSeries, now time.Time) *model.TradingSignal {
	dir := model.Sell
	if len(series) > 1 && series[len(series)-1].Close > series[0].Close {
		dir = model.Buy
	}
	return &model.TradingSignal{
		Asset:      asset,
		Signal:     dir,
		Strength:   0,
		Confidence: 0,
		Timestamp:  now.UnixMilli(),
		Timeframe:  a.timeframe(series),
		Indicators: []model.IndicatorResult{},
		Reasoning: []string{
			fmt.Sprintf("Insufficient data: %d of %d bars, still gathering data", len(series), a.cfg.MinBars),
		},
		RiskLevel:        model.RiskHigh,
		ExpectedDuration: a.cfg.ExpectedDuration,
		Partial:          true,
	}
}

// timeframe labels the bar period from the spacing of the newest two bars.
func (a *Aggregator) timeframe(series model.BarSeries) string {
	if len(series) < 2 {
		return a.cfg.Timeframe
	}
	step := time.Duration(series[len(series)-1].Timestamp-series[len(series)-2].Timestamp) * time.Millisecond
	return TimeframeLabel(step, a.cfg.Timeframe)
}

// TimeframeLabel renders a bar period as "30s", "1m", "4h"; non-positive periods yield fallback.
func TimeframeLabel(d time.Duration, fallback string) string {
	switch {
	case d <= 0:
		return fallback
	case d%time.Hour == 0:
		return fmt.Sprintf("%dh", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%dm", d/time.Minute)
	case d%time.Second == 0:
		return fmt.Sprintf("%ds", d/time.Second)
	default:
		return fallback
	}
}

// Acceptance is the high-conviction filter applied before a signal is pushed to users.
type Acceptance struct {
	MinStrength   float64
	MinConfidence float64
	MinConsensus  float64
}

// DefaultAcceptance returns the standard high-conviction thresholds.
func DefaultAcceptance() Acceptance {
	return Acceptance{MinStrength: 80, MinConfidence: 85, MinConsensus: 0.3}
}

// ErrRejected is wrapped by Check when a signal fails the acceptance filter.
var ErrRejected = errors.New("signal rejected")

// Check explains why a signal fails the filter, or returns nil.
func (a Acceptance) Check(sig *model.TradingSignal) error {
	switch {
	case sig == nil:
		return fmt.Errorf("%w: nil signal", ErrRejected)
	case sig.Partial:
		return fmt.Errorf("%w: partial evaluation", ErrRejected)
	case sig.Strength < a.MinStrength:
		return fmt.Errorf("%w: strength %.1f below %.1f", ErrRejected, sig.Strength, a.MinStrength)
	case sig.Confidence < a.MinConfidence:
		return fmt.Errorf("%w: confidence %.1f below %.1f", ErrRejected, sig.Confidence, a.MinConfidence)
	case sig.RiskLevel != model.RiskLow:
		return fmt.Errorf("%w: risk level %s", ErrRejected, sig.RiskLevel)
	}
	if c := Consensus(sig.Indicators); c < a.MinConsensus {
		return fmt.Errorf("%w: consensus %.2f below %.2f", ErrRejected, c, a.MinConsensus)
	}
	return nil
}

// IsAcceptable reports whether a signal passes every threshold.
func (a Acceptance) IsAcceptable(sig *model.TradingSignal) bool {
	return a.Check(sig) == nil
}
