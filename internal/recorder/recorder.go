package recorder

import (
	"time"

	"github.com/google/uuid"

	"SignalDesk/internal/model"
)

// SignalRecord is one emitted signal awaiting or carrying its outcome.
type SignalRecord struct {
	ID         string
	Asset      string
	Signal     model.Direction
	Strength   float64
	Confidence float64
	RiskLevel  model.RiskLevel
	Timeframe  string
	EntryPrice float64
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// NewSignalRecord captures sig at entry price. The record expires after the signal's expected duration.
func NewSignalRecord(sig *model.TradingSignal, entry float64) *SignalRecord {
	created := time.UnixMilli(sig.Timestamp)
	return &SignalRecord{
		ID:         uuid.NewString(),
		Asset:      sig.Asset,
		Signal:     sig.Signal,
		Strength:   sig.Strength,
		Confidence: sig.Confidence,
		RiskLevel:  sig.RiskLevel,
		Timeframe:  sig.Timeframe,
		EntryPrice: entry,
		CreatedAt:  created,
		ExpiresAt:  created.Add(time.Duration(sig.ExpectedDuration) * time.Second),
	}
}

// Outcome is the resolution of a SignalRecord.
type Outcome struct {
	SignalID   string
	ExitPrice  float64
	Result     model.Outcome
	ResolvedAt time.Time
}

// Resolve judges rec against the exit price. BUY wins on a rise, SELL on a fall; an unchanged price is a draw.
func Resolve(rec SignalRecord, exit float64, at time.Time) *Outcome {
	result := model.OutcomeDraw
	switch {
	case exit == rec.EntryPrice:
	case (exit > rec.EntryPrice) == (rec.Signal == model.Buy):
		result = model.OutcomeWin
	default:
		result = model.OutcomeLoss
	}
	return &Outcome{SignalID: rec.ID, ExitPrice: exit, Result: result, ResolvedAt: at}
}

// Summarize fills the win rate of p. Draws and pending signals do not count.
func Summarize(p *model.Performance) *model.Performance {
	p.Total = p.Wins + p.Losses + p.Draws + p.Pending
	p.WinRate = 0
	if decided := p.Wins + p.Losses; decided > 0 {
		p.WinRate = float64(p.Wins) / float64(decided) * 100
	}
	return p
}

// Recorder persists signal history for accuracy tracking.
type Recorder interface {
	RecordSignal(rec *SignalRecord) error
	// PendingSignals returns unresolved signals that expired at or before the given time.
	PendingSignals(before time.Time) ([]SignalRecord, error)
	RecordOutcome(out *Outcome) error
	// Performance summarises outcomes for asset, or for all assets when empty.
	Performance(asset string) (*model.Performance, error)
	Close() error
}
