package strategy

import (
	"encoding/json"
	"errors"
	"math"
	"sort"
	"testing"
	"time"

	"SignalDesk/internal/model"
	"SignalDesk/internal/simulator"
)

// quietHour is outside every major session, so the score premium is 1.0.
var quietHour = time.Date(2024, 3, 5, 23, 10, 0, 0, time.UTC)

func fixedClock() Option { return WithClock(func() time.Time { return quietHour }) }

// trendSeries builds n bars whose close moves by a constant factor per bar.
func trendSeries(n int, factor float64) model.BarSeries {
	bars := make(model.BarSeries, n)
	prev := 100.0 / factor
	for i := 0; i < n; i++ {
		c := prev * factor
		o := prev
		bars[i] = model.PriceBar{
			Timestamp: int64(i) * 60000,
			Open:      o,
			High:      math.Max(o, c) * 1.0005,
			Low:       math.Min(o, c) * 0.9995,
			Close:     c,
			Volume:    1000,
		}
		prev = c
	}
	return bars
}

func flatSeries(n int, price float64) model.BarSeries {
	bars := make(model.BarSeries, n)
	for i := range bars {
		bars[i] = model.PriceBar{Timestamp: int64(i) * 60000, Open: price, High: price, Low: price, Close: price, Volume: 1000}
	}
	return bars
}

func TestAggregate_RisingSeries(t *testing.T) {
	agg := NewAggregator(DefaultConfig(), fixedClock())
	sig, err := agg.Aggregate("EUR/USD", trendSeries(60, 1.001))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Signal != model.Buy {
		t.Errorf("expected BUY, got %s (reasoning %v)", sig.Signal, sig.Reasoning)
	}
	if sig.RiskLevel != model.RiskLow {
		t.Errorf("expected LOW risk, got %s (strength %.1f confidence %.1f)", sig.RiskLevel, sig.Strength, sig.Confidence)
	}
	if sig.Timeframe != "1m" {
		t.Errorf("expected 1m timeframe, got %s", sig.Timeframe)
	}
	if sig.ExpectedDuration != 60 {
		t.Errorf("expected duration 60, got %d", sig.ExpectedDuration)
	}
	if sig.Timestamp != quietHour.UnixMilli() {
		t.Errorf("timestamp should come from the injected clock")
	}
}

func TestAggregate_FallingSeries(t *testing.T) {
	agg := NewAggregator(DefaultConfig(), fixedClock())
	sig, err := agg.Aggregate("EUR/USD", trendSeries(60, 0.999))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Signal != model.Sell {
		t.Errorf("expected SELL, got %s (reasoning %v)", sig.Signal, sig.Reasoning)
	}
}

func TestAggregate_FlatSeries(t *testing.T) {
	cfg := DefaultConfig()
	agg := NewAggregator(cfg, fixedClock())
	sig, err := agg.Aggregate("EUR/USD", flatSeries(60, 1.0847))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Strength != cfg.MinStrength {
		t.Errorf("expected strength at floor %.0f, got %.2f", cfg.MinStrength, sig.Strength)
	}
	if sig.Confidence != cfg.MinConfidence {
		t.Errorf("expected confidence at floor %.0f, got %.2f", cfg.MinConfidence, sig.Confidence)
	}
	if sig.RiskLevel != model.RiskMedium {
		t.Errorf("expected MEDIUM risk, got %s", sig.RiskLevel)
	}
	for _, ind := range sig.Indicators {
		if ind.Signal != model.Neutral {
			t.Errorf("%s should be neutral on a flat series, got %s", ind.Name, ind.Signal)
		}
		if ind.Name == NameRSI && ind.Value != 50.0 {
			t.Errorf("expected RSI 50, got %v", ind.Value)
		}
	}
}

func TestAggregate_ShortSeries(t *testing.T) {
	agg := NewAggregator(DefaultConfig(), fixedClock())
	sig, err := agg.Aggregate("EUR/USD", trendSeries(10, 1.001))
	if err != nil {
		t.Fatalf("short series must not fail: %v", err)
	}
	if sig.Confidence > 50 {
		t.Errorf("expected confidence <= 50, got %.2f", sig.Confidence)
	}
	if !sig.Partial || sig.RiskLevel != model.RiskHigh {
		t.Errorf("expected a partial HIGH-risk signal, got %+v", sig)
	}
	if len(sig.Reasoning) == 0 {
		t.Error("expected an insufficient-data note")
	}

	empty, err := agg.Aggregate("EUR/USD", nil)
	if err != nil || empty.Confidence != 0 {
		t.Errorf("empty series: expected zero-confidence signal, got %+v / %v", empty, err)
	}
}

func TestAggregate_RejectsMalformedBars(t *testing.T) {
	agg := NewAggregator(DefaultConfig(), fixedClock())
	series := trendSeries(60, 1.001)
	series[30].High = series[30].Low - 1

	if _, err := agg.Aggregate("EUR/USD", series); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := agg.Aggregate("", trendSeries(60, 1.001)); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty asset, got %v", err)
	}
}

func TestAggregate_SimulatedSeriesBounds(t *testing.T) {
	cfg := DefaultConfig()
	agg := NewAggregator(cfg, fixedClock())
	for seed := int64(1); seed <= 25; seed++ {
		series, err := simulator.Generate(simulator.Params{
			Symbol: "GBP/USD", BasePrice: 1.2634, Periods: 120, PeriodMs: 60000, Now: quietHour, Seed: seed,
		})
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		sig, err := agg.Aggregate("GBP/USD", series)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if sig.Strength < cfg.MinStrength || sig.Strength > 100 {
			t.Errorf("seed %d: strength %.2f out of range", seed, sig.Strength)
		}
		if sig.Confidence < cfg.MinConfidence || sig.Confidence > 100 {
			t.Errorf("seed %d: confidence %.2f out of range", seed, sig.Confidence)
		}
		if len(sig.Indicators) != len(DefaultWeights) {
			t.Errorf("seed %d: expected %d indicators, got %d", seed, len(DefaultWeights), len(sig.Indicators))
		}
		for _, ind := range sig.Indicators {
			if ind.Strength < 0 || ind.Strength > 100 {
				t.Errorf("seed %d: %s strength %.2f out of range", seed, ind.Name, ind.Strength)
			}
			if ind.Signal == model.Neutral && ind.Strength != 0 {
				t.Errorf("seed %d: neutral %s carries strength %.2f", seed, ind.Name, ind.Strength)
			}
		}
	}
}

func TestTradingSignal_JSONFields(t *testing.T) {
	agg := NewAggregator(DefaultConfig(), fixedClock())
	sig, _ := agg.Aggregate("EUR/USD", trendSeries(60, 1.001))
	data, err := json.Marshal(sig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	var keys []string
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	want := []string{"asset", "confidence", "expectedDuration", "indicators", "reasoning", "riskLevel", "signal", "strength", "timeframe", "timestamp"}
	if len(keys) != len(want) {
		t.Fatalf("expected fields %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected fields %v, got %v", want, keys)
		}
	}
}

func TestScoreIndicators_Monotonic(t *testing.T) {
	base := []model.IndicatorResult{
		{Name: NameRSI, Signal: model.Sell, Strength: 40},
		{Name: NameMACD, Signal: model.Buy, Strength: 10},
		{Name: NameCCI, Signal: model.Neutral},
	}
	prevBuy := -1.0
	sell := ScoreIndicators(base, DefaultWeights).Sell
	for s := 0.0; s <= 100; s += 10 {
		results := append([]model.IndicatorResult(nil), base...)
		results[1].Strength = s
		score := ScoreIndicators(results, DefaultWeights)
		if score.Buy < prevBuy {
			t.Fatalf("buy score decreased from %.4f to %.4f at strength %.0f", prevBuy, score.Buy, s)
		}
		if score.Sell != sell {
			t.Fatalf("sell score changed with a buy indicator")
		}
		prevBuy = score.Buy
	}
}

func TestConsensus(t *testing.T) {
	results := []model.IndicatorResult{
		{Signal: model.Buy}, {Signal: model.Buy}, {Signal: model.Buy},
		{Signal: model.Sell}, {Signal: model.Neutral},
	}
	if got := Consensus(results); got != 0.4 {
		t.Errorf("expected 0.4, got %v", got)
	}
	if Consensus(nil) != 0 {
		t.Error("empty consensus should be 0")
	}
}

func TestAcceptance(t *testing.T) {
	strong := []model.IndicatorResult{
		{Signal: model.Buy}, {Signal: model.Buy}, {Signal: model.Buy}, {Signal: model.Neutral},
	}
	good := &model.TradingSignal{Signal: model.Buy, Strength: 90, Confidence: 90, RiskLevel: model.RiskLow, Indicators: strong}
	acc := DefaultAcceptance()
	if !acc.IsAcceptable(good) {
		t.Errorf("expected acceptable: %v", acc.Check(good))
	}

	tests := []struct {
		name   string
		mutate func(s *model.TradingSignal)
	}{
		{"weak", func(s *model.TradingSignal) { s.Strength = 70 }},
		{"unsure", func(s *model.TradingSignal) { s.Confidence = 75 }},
		{"risky", func(s *model.TradingSignal) { s.RiskLevel = model.RiskMedium }},
		{"split", func(s *model.TradingSignal) {
			s.Indicators = []model.IndicatorResult{{Signal: model.Buy}, {Signal: model.Sell}, {Signal: model.Neutral}}
		}},
		{"partial", func(s *model.TradingSignal) { s.Partial = true }},
	}
	for _, tt := range tests {
		sig := *good
		tt.mutate(&sig)
		err := acc.Check(&sig)
		if !errors.Is(err, ErrRejected) {
			t.Errorf("%s: expected rejection, got %v", tt.name, err)
		}
	}
	if acc.IsAcceptable(nil) {
		t.Error("nil signal must not be acceptable")
	}
}

func TestTimeframeLabel(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{time.Minute, "1m"},
		{2 * time.Minute, "2m"},
		{30 * time.Second, "30s"},
		{4 * time.Hour, "4h"},
		{0, "1m"},
		{1500 * time.Millisecond, "1m"},
	}
	for _, tt := range tests {
		if got := TimeframeLabel(tt.d, "1m"); got != tt.want {
			t.Errorf("%v: expected %s, got %s", tt.d, tt.want, got)
		}
	}
}
