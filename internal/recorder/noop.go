package recorder

import (
	"time"

	"SignalDesk/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSignal(_ *SignalRecord) error                 { return nil }
func (n *NoopRecorder) PendingSignals(_ time.Time) ([]SignalRecord, error) { return nil, nil }
func (n *NoopRecorder) RecordOutcome(_ *Outcome) error                     { return nil }
func (n *NoopRecorder) Close() error                                       { return nil }

func (n *NoopRecorder) Performance(asset string) (*model.Performance, error) {
	return &model.Performance{Asset: asset}, nil
}
