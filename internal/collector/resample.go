package collector

import (
	"time"

	"SignalDesk/internal/model"
)

// Resample merges consecutive bars into buckets of the given width, aligned to the epoch.
// A bucket opens with its first bar and closes with its last.
func Resample(bars model.BarSeries, width time.Duration) model.BarSeries {
	if len(bars) == 0 || width <= 0 {
		return bars
	}
	widthMs := width.Milliseconds()
	var out model.BarSeries
	var cur model.PriceBar
	var curKey int64
	started := false

	for _, b := range bars {
		key := b.Timestamp / widthMs
		if !started {
			cur, curKey, started = bucketStart(b, key, widthMs), key, true
			continue
		}
		if key != curKey {
			out = append(out, cur)
			cur, curKey = bucketStart(b, key, widthMs), key
			continue
		}
		if b.High > cur.High {
			cur.High = b.High
		}
		if b.Low < cur.Low {
			cur.Low = b.Low
		}
		cur.Close = b.Close
		cur.Volume += b.Volume
	}
	if started {
		out = append(out, cur)
	}
	return out
}

func bucketStart(b model.PriceBar, key, widthMs int64) model.PriceBar {
	b.Timestamp = key * widthMs
	return b
}
