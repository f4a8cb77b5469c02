package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"SignalDesk/internal/model"
)

// Recorder exposes signal pipeline metrics to Prometheus.
type Recorder struct {
	signalsTotal  *prometheus.CounterVec
	strength      *prometheus.HistogramVec
	lastPrice     *prometheus.GaugeVec
	outcomesTotal *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	taskDuration  *prometheus.HistogramVec
	acceptedTotal *prometheus.CounterVec
}

// New registers the metrics on reg. Use prometheus.DefaultRegisterer in production.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		signalsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaldesk_signals_total",
				Help: "Total number of signals generated",
			},
			[]string{"asset", "signal", "risk"},
		),
		strength: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signaldesk_signal_strength",
				Help:    "Strength of generated signals",
				Buckets: prometheus.LinearBuckets(70, 5, 7),
			},
			[]string{"asset"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "signaldesk_last_price",
				Help: "Last close price for an asset",
			},
			[]string{"asset"},
		),
		outcomesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaldesk_outcomes_total",
				Help: "Resolved signal outcomes",
			},
			[]string{"asset", "outcome"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaldesk_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		taskDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signaldesk_task_duration_seconds",
				Help:    "Duration of scheduled tasks in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"task"},
		),
		acceptedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaldesk_signals_accepted_total",
				Help: "Signals that passed the acceptance filter",
			},
			[]string{"asset"},
		),
	}
}

// RecordSignal records a generated signal.
func (r *Recorder) RecordSignal(sig *model.TradingSignal) {
	r.signalsTotal.WithLabelValues(sig.Asset, string(sig.Signal), string(sig.RiskLevel)).Inc()
	r.strength.WithLabelValues(sig.Asset).Observe(sig.Strength)
}

// RecordAccepted records a signal pushed to subscribers.
func (r *Recorder) RecordAccepted(asset string) {
	r.acceptedTotal.WithLabelValues(asset).Inc()
}

// RecordLastPrice records the last price for an asset.
func (r *Recorder) RecordLastPrice(asset string, price float64) {
	r.lastPrice.WithLabelValues(asset).Set(price)
}

// RecordOutcome records a resolved signal.
func (r *Recorder) RecordOutcome(asset string, outcome model.Outcome) {
	r.outcomesTotal.WithLabelValues(asset, string(outcome)).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordTask records scheduled task latency in seconds.
func (r *Recorder) RecordTask(task string, seconds float64) {
	r.taskDuration.WithLabelValues(task).Observe(seconds)
}
