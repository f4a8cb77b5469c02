package calculator

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/markcheno/go-talib"

	"SignalDesk/internal/model"
	"SignalDesk/internal/simulator"
)

// wave builds a deterministic oscillating series with a mild drift.
func wave(n int) model.BarSeries {
	bars := make(model.BarSeries, n)
	for i := 0; i < n; i++ {
		c := 100 + 5*math.Sin(float64(i)/4) + 0.05*float64(i)
		o := 100 + 5*math.Sin(float64(i-1)/4) + 0.05*float64(i-1)
		hi := math.Max(o, c) + 0.4 + 0.1*math.Cos(float64(i))
		lo := math.Min(o, c) - 0.4 - 0.1*math.Sin(float64(i))
		bars[i] = model.PriceBar{Timestamp: int64(i) * 60000, Open: o, High: hi, Low: lo, Close: c, Volume: 1000}
	}
	return bars
}

func flat(n int, price float64) model.BarSeries {
	bars := make(model.BarSeries, n)
	for i := range bars {
		bars[i] = model.PriceBar{Timestamp: int64(i) * 60000, Open: price, High: price, Low: price, Close: price, Volume: 1000}
	}
	return bars
}

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestCalculateSMA_MatchesTalib(t *testing.T) {
	closes := wave(80).Closes()
	ref := talib.Sma(closes, 20)
	got, err := CalculateSMA(closes, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !near(got, ref[len(ref)-1], 1e-9) {
		t.Errorf("expected %.10f, got %.10f", ref[len(ref)-1], got)
	}
}

func TestCalculateSMA_Errors(t *testing.T) {
	if _, err := CalculateSMA([]float64{1, 2}, 0); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := CalculateSMA([]float64{1, 2}, 5); !errors.Is(err, model.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestSMASeries(t *testing.T) {
	s, err := SMASeries([]float64{1, 2, 3, 4, 5}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0, 0, 2, 3, 4}
	for i := range want {
		if s[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], s[i])
		}
	}
}

func TestEMA_ConstantSeries(t *testing.T) {
	for _, price := range []float64{1.0847, 43567.89, 0.5678} {
		for _, period := range []int{1, 5, 9, 21, 55} {
			s, err := EMASeries(flat(60, price).Closes(), period)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for i, v := range s {
				if v != price {
					t.Fatalf("EMA(%d) of constant %v at %d = %v", period, price, i, v)
				}
			}
		}
	}
}

func TestEMA_Recursion(t *testing.T) {
	got, _ := CalculateEMA([]float64{10, 20}, 3)
	// alpha = 0.5
	if got != 15 {
		t.Errorf("expected 15, got %v", got)
	}
	if v, err := CalculateEMA(nil, 3); err != nil || v != 0 {
		t.Errorf("empty input: expected 0/nil, got %v/%v", v, err)
	}
}

func TestCalculateRSI(t *testing.T) {
	closes := wave(100).Closes()
	ref := talib.Rsi(closes, 14)
	got, err := CalculateRSI(closes, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !near(got, ref[len(ref)-1], 1e-6) {
		t.Errorf("expected %.6f, got %.6f", ref[len(ref)-1], got)
	}

	tests := []struct {
		name   string
		closes []float64
		want   float64
	}{
		{"insufficient", []float64{1, 2, 3}, 50},
		{"flat", flat(30, 5).Closes(), 50},
		{"only gains", []float64{1, 2, 3, 4, 5, 6}, 100},
		{"only losses", []float64{6, 5, 4, 3, 2, 1}, 0},
	}
	for _, tt := range tests {
		got, _ := CalculateRSI(tt.closes, 5)
		if got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestCalculateMACD(t *testing.T) {
	short, err := CalculateMACD(wave(30).Closes(), 12, 26, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if short != (MACDResult{}) {
		t.Errorf("expected zero result for short series, got %+v", short)
	}

	rising := make([]float64, 60)
	for i := range rising {
		rising[i] = 100 * math.Pow(1.001, float64(i))
	}
	res, _ := CalculateMACD(rising, 12, 26, 9)
	if res.MACD <= 0 {
		t.Errorf("rising series should have positive MACD, got %v", res.MACD)
	}
	if !near(res.Histogram, res.MACD-res.Signal, 1e-12) {
		t.Errorf("histogram must equal macd-signal")
	}

	if _, err := CalculateMACD(rising, 26, 12, 9); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for fast >= slow, got %v", err)
	}
}

func TestCalculateBollinger(t *testing.T) {
	bb, err := CalculateBollinger(wave(60).Closes(), 20, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !(bb.Lower <= bb.Middle && bb.Middle <= bb.Upper) {
		t.Errorf("band ordering violated: %+v", bb)
	}

	collapsed, _ := CalculateBollinger(flat(60, 1.0847).Closes(), 20, 2)
	if collapsed.Upper != 1.0847 || collapsed.Middle != 1.0847 || collapsed.Lower != 1.0847 {
		t.Errorf("flat series bands should collapse to price, got %+v", collapsed)
	}
	if collapsed.Position(1.0847) != 0.5 {
		t.Errorf("collapsed bands position should be 0.5")
	}

	if _, err := CalculateBollinger(wave(60).Closes(), 20, -1); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for negative k, got %v", err)
	}
}

// generated returns seeded simulator series across asset classes.
func generated(t *testing.T) map[string]model.BarSeries {
	t.Helper()
	out := make(map[string]model.BarSeries)
	for _, sym := range []string{"EUR/USD", "BTC/USD", "GOLD", "S&P500"} {
		for _, seed := range []int64{1, 7, 42} {
			series, err := simulator.Generate(simulator.Params{
				Symbol: sym, BasePrice: 100, Periods: 150, PeriodMs: 60_000, Seed: seed,
			})
			if err != nil {
				t.Fatalf("Generate %s seed %d: %v", sym, seed, err)
			}
			out[fmt.Sprintf("%s/%d", sym, seed)] = series
		}
	}
	return out
}

func TestBollingerOrdering_GeneratedSeries(t *testing.T) {
	for name, series := range generated(t) {
		closes := series.Closes()
		for end := 1; end <= len(closes); end++ {
			for _, k := range []float64{0, 1, 2, 3} {
				bb, err := CalculateBollinger(closes[:end], 20, k)
				if err != nil {
					t.Fatalf("%s: unexpected error: %v", name, err)
				}
				if !(bb.Lower <= bb.Middle && bb.Middle <= bb.Upper) {
					t.Fatalf("%s: band ordering violated at %d (k=%v): %+v", name, end, k, bb)
				}
			}
		}
	}
}

func TestOscillatorRanges_GeneratedSeries(t *testing.T) {
	for name, series := range generated(t) {
		for end := 1; end <= len(series); end++ {
			window := series[:end]
			st, _ := CalculateStochastic(window, 14, 3)
			if st.K < 0 || st.K > 100 || st.D < 0 || st.D > 100 {
				t.Fatalf("%s: stochastic out of range at %d: %+v", name, end, st)
			}
			wr, _ := CalculateWilliamsR(window, 14)
			if wr < -100 || wr > 0 {
				t.Fatalf("%s: williams %%R out of range at %d: %v", name, end, wr)
			}
			rsi, _ := CalculateRSI(window.Closes(), 14)
			if rsi < 0 || rsi > 100 {
				t.Fatalf("%s: rsi out of range at %d: %v", name, end, rsi)
			}
		}
	}
}

func TestOscillatorRanges(t *testing.T) {
	series := wave(120)
	for end := 1; end <= len(series); end++ {
		window := series[:end]
		st, _ := CalculateStochastic(window, 14, 3)
		if st.K < 0 || st.K > 100 || st.D < 0 || st.D > 100 {
			t.Fatalf("stochastic out of range at %d: %+v", end, st)
		}
		wr, _ := CalculateWilliamsR(window, 14)
		if wr < -100 || wr > 0 {
			t.Fatalf("williams %%R out of range at %d: %v", end, wr)
		}
		rsi, _ := CalculateRSI(window.Closes(), 14)
		if rsi < 0 || rsi > 100 {
			t.Fatalf("rsi out of range at %d: %v", end, rsi)
		}
	}
}

func TestCalculateWilliamsR_MatchesTalib(t *testing.T) {
	series := wave(60)
	ref := talib.WillR(series.Highs(), series.Lows(), series.Closes(), 14)
	got, _ := CalculateWilliamsR(series, 14)
	if !near(got, ref[len(ref)-1], 1e-9) {
		t.Errorf("expected %.9f, got %.9f", ref[len(ref)-1], got)
	}
}

func TestDegenerateRanges(t *testing.T) {
	f := flat(40, 10)
	st, _ := CalculateStochastic(f, 14, 3)
	if st.K != 50 || st.D != 50 {
		t.Errorf("flat stochastic: expected 50/50, got %+v", st)
	}
	if wr, _ := CalculateWilliamsR(f, 14); wr != -50 {
		t.Errorf("flat williams: expected -50, got %v", wr)
	}
	if cci, _ := CalculateCCI(f, 20); cci != 0 {
		t.Errorf("flat cci: expected 0, got %v", cci)
	}
	adx, _ := CalculateADX(f, 14)
	if adx.ADX != 0 || adx.PlusDI != 0 || adx.MinusDI != 0 {
		t.Errorf("flat adx: expected zero, got %+v", adx)
	}
	short, _ := CalculateStochastic(f[:5], 14, 3)
	if short.K != 50 || short.D != 50 {
		t.Errorf("short stochastic: expected 50/50, got %+v", short)
	}
}

func TestCalculateADX_Trending(t *testing.T) {
	bars := make(model.BarSeries, 60)
	for i := range bars {
		c := 100 * math.Pow(1.002, float64(i))
		bars[i] = model.PriceBar{Open: c / 1.002, High: c * 1.001, Low: c / 1.002 * 0.999, Close: c, Volume: 1}
	}
	res, err := CalculateADX(bars, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PlusDI <= res.MinusDI {
		t.Errorf("uptrend should have +DI > -DI, got %+v", res)
	}
	if res.ADX < 25 {
		t.Errorf("steady trend should have ADX >= 25, got %v", res.ADX)
	}
}

func TestCalculateParabolicSAR(t *testing.T) {
	bars := make(model.BarSeries, 40)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = model.PriceBar{Open: c - 0.5, High: c + 0.5, Low: c - 1, Close: c, Volume: 1}
	}
	res, err := CalculateParabolicSAR(bars, 0.02, 0.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Trend != 1 || res.SAR >= bars[len(bars)-1].Low {
		t.Errorf("uptrend SAR should trail below price, got %+v", res)
	}

	// Reverse the series: a downtrend keeps SAR above price.
	down := make(model.BarSeries, len(bars))
	for i := range bars {
		c := 140 - float64(i)
		down[i] = model.PriceBar{Open: c + 0.5, High: c + 1, Low: c - 0.5, Close: c, Volume: 1}
	}
	res, _ = CalculateParabolicSAR(down, 0.02, 0.2)
	if res.Trend != -1 || res.SAR <= down[len(down)-1].High {
		t.Errorf("downtrend SAR should sit above price, got %+v", res)
	}

	if _, err := CalculateParabolicSAR(bars, 0.3, 0.2); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	one, _ := CalculateParabolicSAR(bars[:1], 0.02, 0.2)
	if one.SAR != bars[0].Low || one.Trend != 0 {
		t.Errorf("single bar: expected last low, got %+v", one)
	}
}

func TestCalculateATR(t *testing.T) {
	f := flat(30, 10)
	if atr, _ := CalculateATR(f, 14); atr != 0 {
		t.Errorf("flat atr: expected 0, got %v", atr)
	}
	atr, _ := CalculateATR(wave(60), 14)
	if atr <= 0 {
		t.Errorf("expected positive atr, got %v", atr)
	}
}

func TestHighestLowest(t *testing.T) {
	bars := model.BarSeries{
		{High: 10, Low: 5},
		{High: 12, Low: 7},
		{High: 11, Low: 6},
	}
	hi, lo, err := HighestLowest(bars, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hi != 12 || lo != 6 {
		t.Errorf("expected 12/6, got %v/%v", hi, lo)
	}
	if _, _, err := HighestLowest(nil, 5); err == nil {
		t.Error("expected error on empty bars")
	}
}

func TestRangePosition(t *testing.T) {
	tests := []struct {
		cur, hi, lo, want float64
	}{
		{5, 10, 0, 0.5},
		{10, 10, 0, 1},
		{-1, 10, 0, 0},
		{3, 3, 3, 0.5},
	}
	for _, tt := range tests {
		got, err := RangePosition(tt.cur, tt.hi, tt.lo)
		if err != nil || got != tt.want {
			t.Errorf("RangePosition(%v,%v,%v): expected %v, got %v (%v)", tt.cur, tt.hi, tt.lo, tt.want, got, err)
		}
	}
	if _, err := RangePosition(1, 0, 5); err == nil {
		t.Error("expected error when high < low")
	}
}
