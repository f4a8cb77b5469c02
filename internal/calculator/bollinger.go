package calculator

import (
	"fmt"
	"math"

	"SignalDesk/internal/model"
)

// BollingerBands holds the bands over the latest window.
type BollingerBands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// Width returns upper minus lower.
func (b BollingerBands) Width() float64 { return b.Upper - b.Lower }

// Position returns where price sits within the bands (0 at lower, 1 at upper).
// Collapsed bands place every price at 0.5.
func (b BollingerBands) Position(price float64) float64 {
	if b.Width() <= 0 {
		return 0.5
	}
	return (price - b.Lower) / b.Width()
}

// CalculateBollinger computes middle = SMA(period) and middle ± k·σ with population σ.
// Fewer than period closes yields zero bands.
func CalculateBollinger(closes []float64, period int, k float64) (BollingerBands, error) {
	if period <= 0 {
		return BollingerBands{}, errPeriod(period)
	}
	if k < 0 || math.IsNaN(k) {
		return BollingerBands{}, fmt.Errorf("%w: band multiplier must be >= 0, got %v", model.ErrInvalidInput, k)
	}
	if len(closes) < period {
		return BollingerBands{}, nil
	}

	window := closes[len(closes)-period:]
	mid := windowMean(window)
	var variance float64
	for _, v := range window {
		d := v - mid
		variance += d * d
	}
	sd := math.Sqrt(variance / float64(period))
	return BollingerBands{Upper: mid + k*sd, Middle: mid, Lower: mid - k*sd}, nil
}
