package calculator

import (
	"fmt"

	"SignalDesk/internal/model"
)

// MACDResult holds the latest MACD line, signal line and histogram.
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// CalculateMACD computes MACD(fast, slow, signal) on closes.
// Fewer than slow+signal closes yields a zero result.
func CalculateMACD(closes []float64, fast, slow, signal int) (MACDResult, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return MACDResult{}, errPeriod(min(fast, slow, signal))
	}
	if fast >= slow {
		return MACDResult{}, fmt.Errorf("%w: fast period %d must be below slow period %d", model.ErrInvalidInput, fast, slow)
	}
	if len(closes) < slow+signal {
		return MACDResult{}, nil
	}

	emaFast, _ := EMASeries(closes, fast)
	emaSlow, _ := EMASeries(closes, slow)

	// The MACD line starts once the slow EMA has a full window behind it.
	line := make([]float64, 0, len(closes)-slow+1)
	for i := slow - 1; i < len(closes); i++ {
		line = append(line, emaFast[i]-emaSlow[i])
	}
	sig, _ := EMASeries(line, signal)

	m := line[len(line)-1]
	s := sig[len(sig)-1]
	return MACDResult{MACD: m, Signal: s, Histogram: m - s}, nil
}
