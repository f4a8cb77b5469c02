package strategy

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"SignalDesk/internal/calculator"
	"SignalDesk/internal/model"
)

// Indicator names, also the keys of the weight table.
const (
	NameRSI             = "RSI"
	NameMACD            = "MACD"
	NameBollinger       = "Bollinger Bands"
	NameStochastic      = "Stochastic"
	NameWilliams        = "Williams %R"
	NameCCI             = "CCI"
	NameADX             = "ADX"
	NameSAR             = "Parabolic SAR"
	NameMovingAverage   = "Moving Average"
	NameMarketStructure = "Market Structure"
)

// DefaultWeights is the per-indicator weight table. Market structure is the
// price-action measure and carries a price-action weight.
var DefaultWeights = map[string]float64{
	NameRSI:             0.20,
	NameMACD:            0.30,
	NameBollinger:       0.25,
	NameStochastic:      0.20,
	NameWilliams:        0.15,
	NameCCI:             0.20,
	NameADX:             0.15,
	NameSAR:             0.20,
	NameMovingAverage:   0.35,
	NameMarketStructure: 0.35,
}

// TotalWeight sums a weight table.
func TotalWeight(weights map[string]float64) float64 {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	return sum
}

// BuildIndicators computes and classifies every indicator on the series in a fixed order.
// Short series degrade to neutral readings.
func BuildIndicators(series model.BarSeries) []model.IndicatorResult {
	if len(series) == 0 {
		return []model.IndicatorResult{}
	}
	closes := series.Closes()
	price := closes[len(closes)-1]

	return []model.IndicatorResult{
		rsiResult(closes),
		macdResult(closes, price),
		bollingerResult(closes, price),
		stochasticResult(series),
		williamsResult(series),
		cciResult(series),
		adxResult(series),
		sarResult(series, price),
		movingAverageResult(closes, price),
		marketStructureResult(series),
	}
}

func result(name string, value any, dir model.Direction, strength float64, desc string) model.IndicatorResult {
	if dir == model.Neutral {
		strength = 0
	}
	return model.IndicatorResult{
		Name:        name,
		Value:       value,
		Signal:      dir,
		Strength:    round(clampStrength(strength), 2),
		Description: desc,
	}
}

func clampStrength(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, 100)
}

func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func rsiResult(closes []float64) model.IndicatorResult {
	var sum float64
	for _, p := range []int{9, 14, 21} {
		v, _ := calculator.CalculateRSI(closes, p)
		sum += v
	}
	rsi := sum / 3
	switch {
	case rsi > 75:
		return result(NameRSI, round(rsi, 2), model.Sell, (rsi-75)*4, fmt.Sprintf("RSI %.1f overbought", rsi))
	case rsi < 25:
		return result(NameRSI, round(rsi, 2), model.Buy, (25-rsi)*4, fmt.Sprintf("RSI %.1f oversold", rsi))
	default:
		return result(NameRSI, round(rsi, 2), model.Neutral, 0, fmt.Sprintf("RSI %.1f neutral", rsi))
	}
}

func macdResult(closes []float64, price float64) model.IndicatorResult {
	std, _ := calculator.CalculateMACD(closes, 12, 26, 9)
	fast, _ := calculator.CalculateMACD(closes, 8, 17, 6)
	strength := (math.Abs(std.Histogram) + math.Abs(fast.Histogram)) / price * 20000
	value := round(std.Histogram, 6)
	switch {
	case std.Histogram > 0 && fast.Histogram > 0:
		return result(NameMACD, value, model.Buy, strength, "MACD histogram positive on both speeds")
	case std.Histogram < 0 && fast.Histogram < 0:
		return result(NameMACD, value, model.Sell, strength, "MACD histogram negative on both speeds")
	default:
		return result(NameMACD, value, model.Neutral, 0, "MACD speeds disagree")
	}
}

func bollingerResult(closes []float64, price float64) model.IndicatorResult {
	wide, _ := calculator.CalculateBollinger(closes, 20, 2)
	narrow, _ := calculator.CalculateBollinger(closes, 10, 1.5)
	pos := (wide.Position(price) + narrow.Position(price)) / 2

	label := "Middle"
	switch {
	case pos > 0.8:
		label = "Upper"
	case pos < 0.2:
		label = "Lower"
	}
	desc := fmt.Sprintf("price at %.0f%% of band width", pos*100)
	switch {
	case pos > 0.85:
		return result(NameBollinger, label, model.Sell, (pos-0.85)*667, desc)
	case pos < 0.15:
		return result(NameBollinger, label, model.Buy, (0.15-pos)*667, desc)
	default:
		return result(NameBollinger, label, model.Neutral, 0, desc)
	}
}

func stochasticResult(series model.BarSeries) model.IndicatorResult {
	std, _ := calculator.CalculateStochastic(series, 14, 3)
	fast, _ := calculator.CalculateStochastic(series, 9, 2)
	value := round(std.K, 2)
	switch {
	case std.K > 85 && fast.K > 85:
		return result(NameStochastic, value, model.Sell, (std.K-85)*6.67, fmt.Sprintf("%%K %.1f overbought", std.K))
	case std.K < 15 && fast.K < 15:
		return result(NameStochastic, value, model.Buy, (15-std.K)*6.67, fmt.Sprintf("%%K %.1f oversold", std.K))
	default:
		return result(NameStochastic, value, model.Neutral, 0, fmt.Sprintf("%%K %.1f / %%D %.1f", std.K, std.D))
	}
}

func williamsResult(series model.BarSeries) model.IndicatorResult {
	std, _ := calculator.CalculateWilliamsR(series, 14)
	fast, _ := calculator.CalculateWilliamsR(series, 9)
	value := round(std, 2)
	switch {
	case std > -15 && fast > -15:
		return result(NameWilliams, value, model.Sell, (std+15)*6.67, fmt.Sprintf("%%R %.1f overbought", std))
	case std < -85 && fast < -85:
		return result(NameWilliams, value, model.Buy, (-85-std)*6.67, fmt.Sprintf("%%R %.1f oversold", std))
	default:
		return result(NameWilliams, value, model.Neutral, 0, fmt.Sprintf("%%R %.1f", std))
	}
}

func cciResult(series model.BarSeries) model.IndicatorResult {
	std, _ := calculator.CalculateCCI(series, 20)
	fast, _ := calculator.CalculateCCI(series, 14)
	value := round(std, 2)
	strength := (math.Abs(std) - 150) / 150 * 100
	switch {
	case std > 150 && fast > 100:
		return result(NameCCI, value, model.Sell, strength, fmt.Sprintf("CCI %.0f overbought", std))
	case std < -150 && fast < -100:
		return result(NameCCI, value, model.Buy, strength, fmt.Sprintf("CCI %.0f oversold", std))
	default:
		return result(NameCCI, value, model.Neutral, 0, fmt.Sprintf("CCI %.0f", std))
	}
}

func adxResult(series model.BarSeries) model.IndicatorResult {
	adx, _ := calculator.CalculateADX(series, 14)
	value := round(adx.ADX, 2)
	if adx.ADX < 25 {
		return result(NameADX, value, model.Neutral, 0, fmt.Sprintf("ADX %.1f, no trend", adx.ADX))
	}
	strength := (adx.ADX - 25) * 2
	switch {
	case adx.PlusDI > adx.MinusDI:
		return result(NameADX, value, model.Buy, strength, fmt.Sprintf("ADX %.1f, +DI leads", adx.ADX))
	case adx.MinusDI > adx.PlusDI:
		return result(NameADX, value, model.Sell, strength, fmt.Sprintf("ADX %.1f, -DI leads", adx.ADX))
	default:
		return result(NameADX, value, model.Neutral, 0, fmt.Sprintf("ADX %.1f, DI balanced", adx.ADX))
	}
}

func sarResult(series model.BarSeries, price float64) model.IndicatorResult {
	sar, _ := calculator.CalculateParabolicSAR(series, 0.02, 0.2)
	value := round(sar.SAR, 6)
	strength := math.Abs(price-sar.SAR) / price * 10000
	switch {
	case len(series) < 2:
		return result(NameSAR, value, model.Neutral, 0, "SAR needs two bars")
	case price > sar.SAR:
		return result(NameSAR, value, model.Buy, strength, "price above SAR")
	case price < sar.SAR:
		return result(NameSAR, value, model.Sell, strength, "price below SAR")
	default:
		return result(NameSAR, value, model.Neutral, 0, "price on SAR")
	}
}

func movingAverageResult(closes []float64, price float64) model.IndicatorResult {
	fast, _ := calculator.CalculateEMA(closes, 9)
	slow, _ := calculator.CalculateEMA(closes, 21)
	value := round(fast, 6)
	strength := math.Abs(fast-slow) / slow * 20000
	switch {
	case price > fast && fast > slow:
		return result(NameMovingAverage, value, model.Buy, strength, "price > EMA9 > EMA21")
	case price < fast && fast < slow:
		return result(NameMovingAverage, value, model.Sell, strength, "price < EMA9 < EMA21")
	default:
		return result(NameMovingAverage, value, model.Neutral, 0, "EMA9/EMA21 mixed")
	}
}

// marketStructureResult counts strict higher-high/higher-low steps over the last 10 bars.
func marketStructureResult(series model.BarSeries) model.IndicatorResult {
	window := series.Tail(10)
	steps := len(window) - 1
	if steps < 1 {
		return result(NameMarketStructure, "n/a", model.Neutral, 0, "not enough bars")
	}
	var higher, lower int
	for i := 1; i < len(window); i++ {
		cur, prev := window[i], window[i-1]
		if cur.High > prev.High && cur.Low > prev.Low {
			higher++
		}
		if cur.High < prev.High && cur.Low < prev.Low {
			lower++
		}
	}
	hr := float64(higher) / float64(steps)
	lr := float64(lower) / float64(steps)
	value := fmt.Sprintf("HH/HL %d/%d, LH/LL %d/%d", higher, steps, lower, steps)
	switch {
	case hr > 0.7:
		return result(NameMarketStructure, value, model.Buy, hr*100, "higher highs and higher lows")
	case lr > 0.7:
		return result(NameMarketStructure, value, model.Sell, lr*100, "lower highs and lower lows")
	default:
		return result(NameMarketStructure, value, model.Neutral, 0, "no clear structure")
	}
}
