package session

import (
	"math"
	"time"

	"SignalDesk/internal/model"
)

// Session names.
const (
	Overlap = "LONDON_NY_OVERLAP"
	London  = "LONDON"
	NewYork = "NEW_YORK"
	Tokyo   = "TOKYO"
	Quiet   = "QUIET"
)

// window is one row of the session table. Hours are a half-open UTC range [From, To).
type window struct {
	From, To   int
	Name       string
	Volatility float64 // simulation volatility multiplier
	Premium    float64 // signal score multiplier
	Optimal    bool
}

// Rows are checked in priority order; the first match wins.
var windows = []window{
	{13, 17, Overlap, 2.0, 1.5, true},
	{8, 17, London, 1.6, 1.2, true},
	{13, 22, NewYork, 1.5, 1.2, true},
	{0, 9, Tokyo, 1.1, 1.1, false},
}

var quiet = window{Name: Quiet, Volatility: 0.6, Premium: 1.0}

const (
	minPremium     = 1.0
	maxPremium     = 1.5
	openingPremium = 1.3
)

func lookup(hour int) window {
	h := ((hour % 24) + 24) % 24
	for _, w := range windows {
		if h >= w.From && h < w.To {
			return w
		}
	}
	return quiet
}

// Classify maps a UTC hour to its session. Hours outside 0..23 are taken mod 24.
func Classify(hour int) model.SessionInfo {
	w := lookup(hour)
	return model.SessionInfo{Name: w.Name, Multiplier: w.Volatility, IsOptimal: w.Optimal}
}

// At classifies the session active at t.
func At(t time.Time) model.SessionInfo {
	return Classify(t.UTC().Hour())
}

// VolumeMultiplier scales simulated volume: busy sessions trade more.
func VolumeMultiplier(info model.SessionInfo) float64 {
	if info.IsOptimal {
		return 1.3
	}
	return 0.8
}

// Premium returns the signal score multiplier at t, within [1.0, 1.5].
// The first half hour after the London and New York opens counts at least 1.3.
func Premium(t time.Time) float64 {
	t = t.UTC()
	p := lookup(t.Hour()).Premium
	if (t.Hour() == 8 || t.Hour() == 13) && t.Minute() < 30 {
		p = math.Max(p, openingPremium)
	}
	return math.Min(math.Max(p, minPremium), maxPremium)
}
