package strategy

import (
	"fmt"
	"strings"

	"SignalDesk/internal/calculator"
	"SignalDesk/internal/model"
)

// AnalyzeCondition classifies trend, volatility, volume and sentiment of the series.
func AnalyzeCondition(series model.BarSeries) model.MarketCondition {
	if len(series) < 20 {
		return model.MarketCondition{
			Trend:       "SIDEWAYS",
			Volatility:  "MEDIUM",
			Volume:      "MEDIUM",
			Sentiment:   "NEUTRAL",
			Strength:    50,
			Description: "Insufficient data for analysis",
		}
	}

	closes := series.Closes()
	ema10, _ := calculator.CalculateEMA(closes, 10)
	ema20, _ := calculator.CalculateEMA(closes, 20)
	ema50, _ := calculator.CalculateEMA(closes, 50)

	trend, strength := "SIDEWAYS", 30.0
	switch {
	case ema10 > ema20 && ema20 > ema50:
		trend, strength = "BULLISH", 80
	case ema10 < ema20 && ema20 < ema50:
		trend, strength = "BEARISH", 80
	}

	atr, _ := calculator.CalculateATR(series, 14)
	avgPrice := mean(closes)
	volatility := "HIGH"
	if avgPrice > 0 {
		switch ratio := atr / avgPrice * 100; {
		case ratio < 0.5:
			volatility = "LOW"
		case ratio < 1.5:
			volatility = "MEDIUM"
		}
	}

	volumes := series.Volumes()
	volume := "MEDIUM"
	if avgVol := mean(volumes); avgVol > 0 {
		switch ratio := mean(volumes[len(volumes)-5:]) / avgVol; {
		case ratio < 0.8:
			volume = "LOW"
		case ratio < 1.5:
			volume = "MEDIUM"
		default:
			volume = "HIGH"
		}
	}

	rsi, _ := calculator.CalculateRSI(closes, 14)
	macd, _ := calculator.CalculateMACD(closes, 12, 26, 9)
	sentiment := "NEUTRAL"
	switch {
	case rsi > 55 && macd.MACD > macd.Signal && trend == "BULLISH":
		sentiment = "BULLISH"
	case rsi < 45 && macd.MACD < macd.Signal && trend == "BEARISH":
		sentiment = "BEARISH"
	}

	return model.MarketCondition{
		Trend:      trend,
		Volatility: volatility,
		Volume:     volume,
		Sentiment:  sentiment,
		Strength:   strength,
		Description: fmt.Sprintf("%s trend with %s volatility and %s volume",
			strings.ToLower(trend), strings.ToLower(volatility), strings.ToLower(volume)),
	}
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
