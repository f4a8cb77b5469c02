package strategy

import (
	"fmt"
	"math"

	"SignalDesk/internal/calculator"
	"SignalDesk/internal/model"
)

// Confirmation bonuses, in score points added after normalisation.
const (
	bonusEMAStack    = 25
	bonusMomentum    = 20
	bonusThreeCandle = 30
	bonusEngulfing   = 20
	bonusVolume      = 15
	bonusFibonacci   = 15

	volumeSurgeRatio = 2.0
	volumeLookback   = 20
	fibLookback      = 20
)

var (
	emaStackPeriods  = []int{5, 13, 21, 34, 55}
	momentumHorizons = []int{1, 3, 5, 10}
	fibLevels        = []float64{0.236, 0.382, 0.618, 0.786}
)

// Confirmation is a structural pattern that adds a bonus to one side.
type Confirmation struct {
	Name      string
	Direction model.Direction
	Bonus     float64
	Reason    string
}

// Confirmations evaluates every structural check in order and returns the triggered ones.
func Confirmations(series model.BarSeries, fibTolerance float64) []Confirmation {
	checks := []func() (Confirmation, bool){
		func() (Confirmation, bool) { return emaStack(series) },
		func() (Confirmation, bool) { return momentum(series) },
		func() (Confirmation, bool) { return candlePattern(series) },
		func() (Confirmation, bool) { return volumeSurge(series) },
		func() (Confirmation, bool) { return fibonacci(series, fibTolerance) },
	}
	var out []Confirmation
	for _, check := range checks {
		if c, ok := check(); ok {
			out = append(out, c)
		}
	}
	return out
}

// emaStack checks price and the 5/13/21/34/55 EMAs for strict ordering.
func emaStack(series model.BarSeries) (Confirmation, bool) {
	closes := series.Closes()
	if len(closes) < emaStackPeriods[len(emaStackPeriods)-1] {
		return Confirmation{}, false
	}
	levels := []float64{closes[len(closes)-1]}
	for _, p := range emaStackPeriods {
		v, _ := calculator.CalculateEMA(closes, p)
		levels = append(levels, v)
	}
	bull, bear := true, true
	for i := 1; i < len(levels); i++ {
		bull = bull && levels[i-1] > levels[i]
		bear = bear && levels[i-1] < levels[i]
	}
	switch {
	case bull:
		return Confirmation{"EMA stack", model.Buy, bonusEMAStack, "EMA 5/13/21/34/55 stacked bullish"}, true
	case bear:
		return Confirmation{"EMA stack", model.Sell, bonusEMAStack, "EMA 5/13/21/34/55 stacked bearish"}, true
	}
	return Confirmation{}, false
}

// momentum checks that price change agrees in sign over every horizon.
func momentum(series model.BarSeries) (Confirmation, bool) {
	n := len(series)
	if n <= momentumHorizons[len(momentumHorizons)-1] {
		return Confirmation{}, false
	}
	last := series[n-1].Close
	up, down := true, true
	for _, h := range momentumHorizons {
		d := last - series[n-1-h].Close
		up = up && d > 0
		down = down && d < 0
	}
	switch {
	case up:
		return Confirmation{"Momentum", model.Buy, bonusMomentum, "momentum positive over 1/3/5/10 bars"}, true
	case down:
		return Confirmation{"Momentum", model.Sell, bonusMomentum, "momentum negative over 1/3/5/10 bars"}, true
	}
	return Confirmation{}, false
}

// candlePattern looks for a three-candle run first, then an engulfing pair.
func candlePattern(series model.BarSeries) (Confirmation, bool) {
	n := len(series)
	if n >= 3 {
		a, b, c := series[n-3], series[n-2], series[n-1]
		if bullish(a) && bullish(b) && bullish(c) && b.Close > a.Close && c.Close > b.Close {
			return Confirmation{"Candles", model.Buy, bonusThreeCandle, "three advancing bullish candles"}, true
		}
		if bearish(a) && bearish(b) && bearish(c) && b.Close < a.Close && c.Close < b.Close {
			return Confirmation{"Candles", model.Sell, bonusThreeCandle, "three declining bearish candles"}, true
		}
	}
	if n >= 2 {
		prev, cur := series[n-2], series[n-1]
		if bearish(prev) && bullish(cur) && cur.Open <= prev.Close && cur.Close >= prev.Open {
			return Confirmation{"Candles", model.Buy, bonusEngulfing, "bullish engulfing"}, true
		}
		if bullish(prev) && bearish(cur) && cur.Open >= prev.Close && cur.Close <= prev.Open {
			return Confirmation{"Candles", model.Sell, bonusEngulfing, "bearish engulfing"}, true
		}
	}
	return Confirmation{}, false
}

func bullish(b model.PriceBar) bool { return b.Close > b.Open }
func bearish(b model.PriceBar) bool { return b.Close < b.Open }

// volumeSurge flags a bar trading more than twice the prior average in its candle direction.
func volumeSurge(series model.BarSeries) (Confirmation, bool) {
	n := len(series)
	if n < volumeLookback+1 {
		return Confirmation{}, false
	}
	var sum float64
	for _, b := range series[n-1-volumeLookback : n-1] {
		sum += b.Volume
	}
	avg := sum / volumeLookback
	if avg <= 0 {
		return Confirmation{}, false
	}
	last := series[n-1]
	ratio := last.Volume / avg
	if ratio <= volumeSurgeRatio {
		return Confirmation{}, false
	}
	reason := fmt.Sprintf("volume %.1fx average", ratio)
	switch {
	case bullish(last):
		return Confirmation{"Volume", model.Buy, bonusVolume, reason + " on a bullish candle"}, true
	case bearish(last):
		return Confirmation{"Volume", model.Sell, bonusVolume, reason + " on a bearish candle"}, true
	}
	return Confirmation{}, false
}

// fibonacci checks whether price sits on a retracement level of the recent range,
// confirming the direction of 5-bar momentum.
func fibonacci(series model.BarSeries, tolerance float64) (Confirmation, bool) {
	n := len(series)
	if n < fibLookback || tolerance <= 0 {
		return Confirmation{}, false
	}
	high, low, err := calculator.HighestLowest(series, fibLookback)
	if err != nil || high <= low {
		return Confirmation{}, false
	}
	price := series[n-1].Close
	drift := price - series[n-6].Close
	if drift == 0 {
		return Confirmation{}, false
	}
	for _, lvl := range fibLevels {
		level := high - lvl*(high-low)
		if math.Abs(price-level)/price > tolerance {
			continue
		}
		reason := fmt.Sprintf("price on %.1f%% retracement", lvl*100)
		if drift > 0 {
			return Confirmation{"Fibonacci", model.Buy, bonusFibonacci, reason + " with rising momentum"}, true
		}
		return Confirmation{"Fibonacci", model.Sell, bonusFibonacci, reason + " with falling momentum"}, true
	}
	return Confirmation{}, false
}
