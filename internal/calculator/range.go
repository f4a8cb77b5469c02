package calculator

import (
	"errors"
	"fmt"
	"math"

	"SignalDesk/internal/model"
)

// HighestLowest scans the most recent `lookback` bars and returns the high and low.
// A lookback <= 0 or beyond the series scans every bar.
func HighestLowest(bars model.BarSeries, lookback int) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, fmt.Errorf("%w: no bars provided", model.ErrInsufficientData)
	}
	n := len(bars)
	start := n - lookback
	if lookback <= 0 || start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	return high, low, nil
}

// RangePosition returns where the current price sits within [low, high] (0.0~1.0).
func RangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
