package calculator

import (
	"fmt"

	"SignalDesk/internal/model"
)

func errPeriod(period int) error {
	return fmt.Errorf("%w: period must be positive, got %d", model.ErrInvalidInput, period)
}

// CalculateSMA computes the simple moving average of the last `period` prices.
// The window is summed as offsets from its first value so a constant window is exact.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errPeriod(period)
	}
	if len(prices) < period {
		return 0, fmt.Errorf("%w: SMA(%d) needs %d prices, got %d", model.ErrInsufficientData, period, period, len(prices))
	}
	return windowMean(prices[len(prices)-period:]), nil
}

// SMASeries returns the rolling SMA aligned with prices; the first period-1 entries are zero.
func SMASeries(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errPeriod(period)
	}
	out := make([]float64, len(prices))
	for i := period - 1; i < len(prices); i++ {
		out[i] = windowMean(prices[i-period+1 : i+1])
	}
	return out, nil
}

func windowMean(w []float64) float64 {
	if len(w) == 0 {
		return 0
	}
	ref := w[0]
	var sum float64
	for _, v := range w {
		sum += v - ref
	}
	return ref + sum/float64(len(w))
}

// EMASeries returns the exponential moving average for every index, seeded with the first value.
func EMASeries(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errPeriod(period)
	}
	if len(values) == 0 {
		return nil, nil
	}
	alpha := 2.0 / float64(period+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		// Same as v*α + prev*(1-α), but exact when v == prev.
		out[i] = out[i-1] + alpha*(values[i]-out[i-1])
	}
	return out, nil
}

// CalculateEMA returns the latest EMA value. An empty input yields 0.
func CalculateEMA(values []float64, period int) (float64, error) {
	s, err := EMASeries(values, period)
	if err != nil {
		return 0, err
	}
	if len(s) == 0 {
		return 0, nil
	}
	return s[len(s)-1], nil
}
