package simulator

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"SignalDesk/internal/model"
)

var fixedNow = time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

func TestGenerate_BarInvariants(t *testing.T) {
	symbols := []string{"EUR/USD", "BTC/USD", "GOLD", "S&P500", "AAPL", "OTC_EUR/USD", "UNLISTED"}
	for _, sym := range symbols {
		for seed := int64(1); seed <= 5; seed++ {
			series, err := Generate(Params{Symbol: sym, BasePrice: 1.2, Periods: 300, PeriodMs: 60000, Now: fixedNow, Seed: seed})
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", sym, err)
			}
			if len(series) != 301 {
				t.Fatalf("%s: expected 301 bars, got %d", sym, len(series))
			}
			if err := series.Validate(); err != nil {
				t.Fatalf("%s seed %d: %v", sym, seed, err)
			}
			for i, b := range series {
				if b.Low < minPrice || b.Close < minPrice {
					t.Fatalf("%s bar %d below price floor: %+v", sym, i, b)
				}
				if i > 0 && b.Open != series[i-1].Close {
					t.Fatalf("%s bar %d open %v != previous close %v", sym, i, b.Open, series[i-1].Close)
				}
				if b.Volume != math.Floor(b.Volume) {
					t.Fatalf("%s bar %d volume not integral: %v", sym, i, b.Volume)
				}
			}
		}
	}
}

func TestGenerate_ExtremeVolatilityStaysPositive(t *testing.T) {
	series, err := Generate(Params{Symbol: "X", Class: model.ClassCrypto, BasePrice: 0.0002, Periods: 2000, PeriodMs: 60000, Now: fixedNow, Seed: 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := series.Validate(); err != nil {
		t.Fatal(err)
	}
	for i, b := range series {
		if b.Low <= 0 {
			t.Fatalf("bar %d has non-positive low %v", i, b.Low)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	p := Params{Symbol: "GOLD", BasePrice: 2034.56, Periods: 120, PeriodMs: 60000, Now: fixedNow, Seed: 42}
	a, _ := Generate(p)
	b, _ := Generate(p)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different series")
	}
	p.Seed = 43
	c, _ := Generate(p)
	if reflect.DeepEqual(a, c) {
		t.Fatal("different seeds produced identical series")
	}
}

func TestGenerate_ZeroPeriodsReturnsBaseBar(t *testing.T) {
	series, err := Generate(Params{Symbol: "EUR/USD", BasePrice: 1.0847, Periods: 0, PeriodMs: 60000, Now: fixedNow, Seed: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("expected 1 bar, got %d", len(series))
	}
	b := series[0]
	if b.Open != 1.0847 || b.High != 1.0847 || b.Low != 1.0847 || b.Close != 1.0847 {
		t.Errorf("expected flat base bar, got %+v", b)
	}
	if b.Timestamp != fixedNow.UnixMilli() {
		t.Errorf("expected timestamp %d, got %d", fixedNow.UnixMilli(), b.Timestamp)
	}
}

func TestGenerate_Timestamps(t *testing.T) {
	series, _ := Generate(Params{Symbol: "EUR/USD", BasePrice: 1.08, Periods: 10, PeriodMs: 120000, Now: fixedNow, Seed: 1})
	for i := 1; i < len(series); i++ {
		if series[i].Timestamp-series[i-1].Timestamp != 120000 {
			t.Fatalf("bar %d spacing %d", i, series[i].Timestamp-series[i-1].Timestamp)
		}
	}
	if series[len(series)-1].Timestamp != fixedNow.UnixMilli() {
		t.Error("newest bar must be stamped at Now")
	}
}

func TestGenerate_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"zero price", Params{BasePrice: 0, Periods: 5, PeriodMs: 1000}},
		{"negative price", Params{BasePrice: -1, Periods: 5, PeriodMs: 1000}},
		{"nan price", Params{BasePrice: math.NaN(), Periods: 5, PeriodMs: 1000}},
		{"negative periods", Params{BasePrice: 1, Periods: -1, PeriodMs: 1000}},
		{"zero period length", Params{BasePrice: 1, Periods: 5, PeriodMs: 0}},
	}
	for _, tt := range tests {
		if _, err := Generate(tt.p); !errors.Is(err, model.ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", tt.name, err)
		}
	}
}

func TestGenerate_ClassVolatilityOrdering(t *testing.T) {
	spread := func(class model.AssetClass) float64 {
		series, _ := Generate(Params{Symbol: "X", Class: class, BasePrice: 100, Periods: 500, PeriodMs: 60000, Now: fixedNow, Seed: 7})
		var sum float64
		for _, b := range series[1:] {
			sum += (b.High - b.Low) / b.Open
		}
		return sum / float64(len(series)-1)
	}
	if spread(model.ClassCrypto) <= spread(model.ClassCurrency) {
		t.Error("crypto bars should be wider than currency bars")
	}
}
