package calculator

import (
	"math"

	"SignalDesk/internal/model"
)

// StochasticResult holds the latest %K and %D.
type StochasticResult struct {
	K float64
	D float64
}

// CalculateStochastic computes %K over kPeriod bars and %D as the mean of the last dPeriod %K values.
// Fewer than kPeriod bars yields 50/50; a zero high-low range yields %K = 50.
func CalculateStochastic(bars model.BarSeries, kPeriod, dPeriod int) (StochasticResult, error) {
	if kPeriod <= 0 || dPeriod <= 0 {
		return StochasticResult{}, errPeriod(min(kPeriod, dPeriod))
	}
	if len(bars) < kPeriod {
		return StochasticResult{K: 50, D: 50}, nil
	}

	var ks []float64
	for end := len(bars) - dPeriod + 1; end <= len(bars); end++ {
		if end < kPeriod {
			continue
		}
		ks = append(ks, stochK(bars[end-kPeriod:end]))
	}
	return StochasticResult{K: ks[len(ks)-1], D: clamp(windowMean(ks), 0, 100)}, nil
}

func stochK(window model.BarSeries) float64 {
	hh, ll := extremes(window)
	rng := hh - ll
	if rng <= 0 {
		return 50
	}
	return clamp((window[len(window)-1].Close-ll)/rng*100, 0, 100)
}

// CalculateWilliamsR returns Williams %R in [-100, 0].
// Fewer than period bars or a zero range yields -50.
func CalculateWilliamsR(bars model.BarSeries, period int) (float64, error) {
	if period <= 0 {
		return 0, errPeriod(period)
	}
	if len(bars) < period {
		return -50, nil
	}
	window := bars[len(bars)-period:]
	hh, ll := extremes(window)
	rng := hh - ll
	if rng <= 0 {
		return -50, nil
	}
	return clamp((hh-window[len(window)-1].Close)/rng*-100, -100, 0), nil
}

// CalculateCCI computes the commodity channel index on typical prices.
// Fewer than period bars or a zero mean deviation yields 0.
func CalculateCCI(bars model.BarSeries, period int) (float64, error) {
	if period <= 0 {
		return 0, errPeriod(period)
	}
	if len(bars) < period {
		return 0, nil
	}
	window := bars[len(bars)-period:]
	tp := make([]float64, len(window))
	for i, b := range window {
		tp[i] = (b.High + b.Low + b.Close) / 3
	}
	mean := windowMean(tp)
	var dev float64
	for _, v := range tp {
		dev += math.Abs(v - mean)
	}
	dev /= float64(period)
	if dev == 0 {
		return 0, nil
	}
	return (tp[len(tp)-1] - mean) / (0.015 * dev), nil
}

func extremes(window model.BarSeries) (high, low float64) {
	high, low = math.Inf(-1), math.Inf(1)
	for _, b := range window {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high, low
}
