package simulator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"SignalDesk/internal/catalog"
	"SignalDesk/internal/model"
	"SignalDesk/internal/session"
)

const (
	minPrice   = 1e-4
	maxMoveSD  = 3.0  // clamp a single-bar move to this many σ
	volumeK    = 10.0 // volume sensitivity to the bar's price move
	biasDrift  = 0.05 // per-bar random walk of the unit trend bias
	fxTrend    = 0.05
	otherTrend = 0.10
)

// Params describes one generation run.
type Params struct {
	Symbol    string
	Class     model.AssetClass // defaults to the catalog class of Symbol
	BasePrice float64
	Periods   int
	PeriodMs  int64
	Now       time.Time // timestamp of the newest bar; defaults to time.Now
	Seed      int64     // 0 derives a seed from Now
}

func (p Params) validate() error {
	if math.IsNaN(p.BasePrice) || math.IsInf(p.BasePrice, 0) || p.BasePrice <= 0 {
		return fmt.Errorf("%w: base price must be a positive number, got %v", model.ErrInvalidInput, p.BasePrice)
	}
	if p.Periods < 0 {
		return fmt.Errorf("%w: periods must be >= 0, got %d", model.ErrInvalidInput, p.Periods)
	}
	if p.PeriodMs <= 0 {
		return fmt.Errorf("%w: period must be positive, got %dms", model.ErrInvalidInput, p.PeriodMs)
	}
	return nil
}

// Generate produces Periods+1 bars ending at Now, oldest first. Bar 0 is the flat base bar.
// Identical Params always produce an identical series.
func Generate(p Params) (model.BarSeries, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if p.Now.IsZero() {
		p.Now = time.Now()
	}
	if p.Class == "" {
		p.Class = catalog.ClassOf(p.Symbol)
	}
	if p.Seed == 0 {
		p.Seed = p.Now.UnixNano()
	}

	series, _ := generate(p)
	return series, nil
}

func generate(p Params) (model.BarSeries, *walker) {
	w := newWalker(p.Class, p.Seed)
	start := p.Now.UnixMilli() - int64(p.Periods)*p.PeriodMs

	series := make(model.BarSeries, 0, p.Periods+1)
	series = append(series, w.baseBar(start, p.BasePrice))
	for i := 1; i <= p.Periods; i++ {
		prev := series[i-1].Close
		series = append(series, w.step(start+int64(i)*p.PeriodMs, prev))
	}
	return series, w
}

// walker carries the random state of one run.
type walker struct {
	rng        *rand.Rand
	sigma      float64
	baseVolume float64
	trendScale float64
	bias       float64 // in [-1, 1]
}

func newWalker(class model.AssetClass, seed int64) *walker {
	rng := rand.New(rand.NewSource(seed))
	scale := otherTrend
	if class == model.ClassCurrency || class == model.ClassOTC {
		scale = fxTrend
	}
	return &walker{
		rng:        rng,
		sigma:      catalog.Volatility(class),
		baseVolume: catalog.BaseVolume(class),
		trendScale: scale,
		bias:       rng.Float64()*2 - 1,
	}
}

func (w *walker) baseBar(ts int64, price float64) model.PriceBar {
	sess := session.At(time.UnixMilli(ts))
	return model.PriceBar{
		Timestamp: ts,
		Open:      price,
		High:      price,
		Low:       price,
		Close:     price,
		Volume:    math.Floor(w.baseVolume * session.VolumeMultiplier(sess)),
	}
}

func (w *walker) step(ts int64, open float64) model.PriceBar {
	at := time.UnixMilli(ts).UTC()
	sess := session.At(at)
	sigma := w.sigma * sess.Multiplier

	w.bias = math.Max(-1, math.Min(1, w.bias+(w.rng.Float64()-0.5)*2*biasDrift))
	b := w.bias * w.trendScale * sigma
	noise := w.rng.Float64() - 0.5
	eps := noise * sigma
	var news float64
	if at.Minute() == 0 || at.Minute() == 30 {
		news = (w.rng.Float64() - 0.5) * 2 * sigma
	}

	move := (b + eps + news) * open
	limit := maxMoveSD * sigma * open
	move = math.Max(-limit, math.Min(limit, move))
	closePrice := math.Max(open+move, minPrice)

	upper := w.rng.Float64() * sigma * open * (0.3 + 0.5*w.rng.Float64())
	lower := w.rng.Float64() * sigma * open * (0.3 + 0.5*w.rng.Float64())
	high := math.Max(open, closePrice) + upper
	low := math.Max(math.Min(open, closePrice)-lower, minPrice)

	// Enforce low <= min(o,c) <= max(o,c) <= high even after the price floor.
	high = math.Max(high, math.Max(open, closePrice))
	low = math.Min(low, math.Min(open, closePrice))

	change := math.Abs(closePrice-open) / open
	volume := w.baseVolume * (1 + volumeK*change) * session.VolumeMultiplier(sess) * (0.8 + 0.4*w.rng.Float64())

	return model.PriceBar{
		Timestamp: ts,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    math.Floor(volume),
	}
}
