package calculator

import (
	"fmt"
	"math"

	"SignalDesk/internal/model"
)

// ADXResult holds the latest ADX with its directional indicators.
type ADXResult struct {
	ADX     float64
	PlusDI  float64
	MinusDI float64
}

// CalculateADX computes Wilder's average directional index.
// Fewer than period+1 bars yields a zero result.
func CalculateADX(bars model.BarSeries, period int) (ADXResult, error) {
	if period <= 0 {
		return ADXResult{}, errPeriod(period)
	}
	if len(bars) < period+1 {
		return ADXResult{}, nil
	}

	n := len(bars) - 1
	tr := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < len(bars); i++ {
		cur, prev := bars[i], bars[i-1]
		tr[i-1] = trueRange(cur, prev)
		up := cur.High - prev.High
		down := prev.Low - cur.Low
		if up > down && up > 0 {
			plusDM[i-1] = up
		}
		if down > up && down > 0 {
			minusDM[i-1] = down
		}
	}

	var sTR, sPlus, sMinus float64
	for i := 0; i < period; i++ {
		sTR += tr[i]
		sPlus += plusDM[i]
		sMinus += minusDM[i]
	}

	p := float64(period)
	var res ADXResult
	var dx []float64
	for i := period - 1; i < n; i++ {
		if i >= period {
			sTR = sTR - sTR/p + tr[i]
			sPlus = sPlus - sPlus/p + plusDM[i]
			sMinus = sMinus - sMinus/p + minusDM[i]
		}
		res.PlusDI, res.MinusDI = 0, 0
		if sTR > 0 {
			res.PlusDI = 100 * sPlus / sTR
			res.MinusDI = 100 * sMinus / sTR
		}
		sum := res.PlusDI + res.MinusDI
		if sum > 0 {
			dx = append(dx, math.Abs(res.PlusDI-res.MinusDI)/sum*100)
		} else {
			dx = append(dx, 0)
		}
	}

	if len(dx) < period {
		res.ADX = windowMean(dx)
		return res, nil
	}
	adx := windowMean(dx[:period])
	for _, v := range dx[period:] {
		adx = (adx*(p-1) + v) / p
	}
	res.ADX = clamp(adx, 0, 100)
	return res, nil
}

// CalculateATR computes Wilder's average true range. Fewer than period+1 bars yields 0.
func CalculateATR(bars model.BarSeries, period int) (float64, error) {
	if period <= 0 {
		return 0, errPeriod(period)
	}
	if len(bars) < period+1 {
		return 0, nil
	}
	var atr float64
	for i := 1; i <= period; i++ {
		atr += trueRange(bars[i], bars[i-1])
	}
	atr /= float64(period)
	for i := period + 1; i < len(bars); i++ {
		atr = (atr*float64(period-1) + trueRange(bars[i], bars[i-1])) / float64(period)
	}
	return atr, nil
}

func trueRange(cur, prev model.PriceBar) float64 {
	return math.Max(cur.High-cur.Low, math.Max(math.Abs(cur.High-prev.Close), math.Abs(cur.Low-prev.Close)))
}

// SARResult holds the latest parabolic SAR and trend (+1 up, -1 down).
type SARResult struct {
	SAR   float64
	Trend int
}

// CalculateParabolicSAR runs Wilder's parabolic stop-and-reverse.
// Fewer than 2 bars yields the last low with no trend.
func CalculateParabolicSAR(bars model.BarSeries, accel, maxAccel float64) (SARResult, error) {
	if accel <= 0 || maxAccel < accel {
		return SARResult{}, fmt.Errorf("%w: need 0 < accel <= max, got %v/%v", model.ErrInvalidInput, accel, maxAccel)
	}
	if len(bars) < 2 {
		if len(bars) == 1 {
			return SARResult{SAR: bars[0].Low}, nil
		}
		return SARResult{}, nil
	}

	up := bars[1].Close >= bars[0].Close
	sar, ep := bars[0].Low, bars[0].High
	if !up {
		sar, ep = bars[0].High, bars[0].Low
	}
	af := accel

	for i := 1; i < len(bars); i++ {
		cur := bars[i]
		sar += af * (ep - sar)

		if up {
			// SAR may not sit above the prior two lows.
			sar = math.Min(sar, bars[i-1].Low)
			if i >= 2 {
				sar = math.Min(sar, bars[i-2].Low)
			}
			if cur.Low < sar {
				up = false
				sar, ep, af = ep, cur.Low, accel
				continue
			}
			if cur.High > ep {
				ep = cur.High
				af = math.Min(af+accel, maxAccel)
			}
			continue
		}

		sar = math.Max(sar, bars[i-1].High)
		if i >= 2 {
			sar = math.Max(sar, bars[i-2].High)
		}
		if cur.High > sar {
			up = true
			sar, ep, af = ep, cur.High, accel
			continue
		}
		if cur.Low < ep {
			ep = cur.Low
			af = math.Min(af+accel, maxAccel)
		}
	}

	trend := -1
	if up {
		trend = 1
	}
	return SARResult{SAR: sar, Trend: trend}, nil
}
