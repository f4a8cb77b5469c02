package scheduler

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"SignalDesk/internal/cache"
	"SignalDesk/internal/catalog"
	"SignalDesk/internal/collector"
	"SignalDesk/internal/metrics"
	"SignalDesk/internal/model"
	"SignalDesk/internal/notifier"
	"SignalDesk/internal/recorder"
	"SignalDesk/internal/strategy"
)

// Sender delivers formatted messages to subscribers.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Ticker advances a simulated feed to the given time.
type Ticker interface {
	Tick(now time.Time) int
}

// Deps are the collaborators of a Scheduler. Ticker and Notifier may be nil.
type Deps struct {
	Collector  *collector.Collector
	Ticker     Ticker
	Symbols    []string
	Acceptance strategy.Acceptance
	Recorder   recorder.Recorder
	Cache      cache.SignalCache
	Publisher  notifier.Publisher
	Notifier   Sender
	Metrics    *metrics.Recorder
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Deps
	Cron *cron.Cron
	Ctx  context.Context
	Now  func() time.Time

	mu         sync.Mutex
	lastPushed map[string]time.Time
}

// NewScheduler creates a new Scheduler. Overlapping runs of one task are skipped.
func NewScheduler(ctx context.Context, deps Deps) *Scheduler {
	return &Scheduler{
		Deps:       deps,
		Cron:       cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		Ctx:        ctx,
		Now:        time.Now,
		lastPushed: make(map[string]time.Time),
	}
}

// RegisterAll registers the refresh, signal and outcome tasks.
func (s *Scheduler) RegisterAll(refreshCron, signalCron, outcomeCron string) error {
	if s.Ticker != nil {
		if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
			return fmt.Errorf("register refresh task: %w", err)
		}
	}
	if _, err := s.Cron.AddFunc(signalCron, s.signalTask); err != nil {
		return fmt.Errorf("register signal task: %w", err)
	}
	if _, err := s.Cron.AddFunc(outcomeCron, s.outcomeTask); err != nil {
		return fmt.Errorf("register outcome task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("tasks", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunSignalsNow executes the signal task immediately.
func (s *Scheduler) RunSignalsNow() {
	s.signalTask()
}

func (s *Scheduler) timed(task string, start time.Time) {
	s.Metrics.RecordTask(task, time.Since(start).Seconds())
}

func (s *Scheduler) refreshTask() {
	defer s.timed("refresh", time.Now())
	if added := s.Ticker.Tick(s.Now()); added > 0 {
		log.Debug().Int("bars", added).Msg("market refreshed")
	}
}

func (s *Scheduler) signalTask() {
	defer s.timed("signals", time.Now())
	for _, sym := range s.Symbols {
		if s.Ctx.Err() != nil {
			return
		}
		if _, err := s.processSymbol(sym); err != nil {
			s.Metrics.RecordError("signal")
			log.Error().Err(err).Str("symbol", sym).Msg("signal task")
		}
	}
}

// processSymbol runs the full pipeline for one asset and returns the signal.
func (s *Scheduler) processSymbol(symbol string) (*model.TradingSignal, error) {
	snap, err := s.Collector.Collect(s.Ctx, symbol)
	if err != nil {
		return nil, err
	}
	sig := snap.Signal
	s.Metrics.RecordSignal(sig)
	s.Metrics.RecordLastPrice(symbol, snap.Market.CurrentPrice)
	if sig.Partial {
		return sig, nil
	}

	last, _ := snap.Series.Last()
	if err := s.Recorder.RecordSignal(recorder.NewSignalRecord(sig, catalog.Round(symbol, last.Close))); err != nil {
		s.Metrics.RecordError("recorder")
		log.Error().Err(err).Str("symbol", symbol).Msg("record signal")
	}
	if err := s.Cache.Put(s.Ctx, sig); err != nil {
		s.Metrics.RecordError("cache")
		log.Error().Err(err).Str("symbol", symbol).Msg("cache signal")
	}
	if err := s.Publisher.Publish(s.Ctx, sig); err != nil {
		s.Metrics.RecordError("publish")
		log.Error().Err(err).Str("symbol", symbol).Msg("publish signal")
	}

	if err := s.Acceptance.Check(sig); err != nil {
		log.Debug().Str("symbol", symbol).Str("signal", string(sig.Signal)).Err(err).Msg("signal not pushed")
		return sig, nil
	}
	if s.claimPush(symbol, sig) {
		s.Metrics.RecordAccepted(symbol)
		log.Info().Str("symbol", symbol).Str("signal", string(sig.Signal)).
			Float64("strength", sig.Strength).Float64("confidence", sig.Confidence).Msg("high-conviction signal")
		s.trySend(notifier.FormatSignal(sig))
	}
	return sig, nil
}

// claimPush allows one push per asset per expected signal duration.
func (s *Scheduler) claimPush(symbol string, sig *model.TradingSignal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.UnixMilli(sig.Timestamp)
	if until, ok := s.lastPushed[symbol]; ok && now.Before(until) {
		return false
	}
	s.lastPushed[symbol] = now.Add(time.Duration(sig.ExpectedDuration) * time.Second)
	return true
}

func (s *Scheduler) outcomeTask() {
	defer s.timed("outcomes", time.Now())
	now := s.Now()
	pending, err := s.Recorder.PendingSignals(now)
	if err != nil {
		s.Metrics.RecordError("recorder")
		log.Error().Err(err).Msg("load pending signals")
		return
	}

	prices := make(map[string]float64)
	for _, rec := range pending {
		price, ok := prices[rec.Asset]
		if !ok {
			price, err = s.Collector.Fetcher.LastPrice(s.Ctx, rec.Asset)
			if err != nil {
				s.Metrics.RecordError("fetch")
				log.Error().Err(err).Str("symbol", rec.Asset).Msg("fetch exit price")
				continue
			}
			price = catalog.Round(rec.Asset, price)
			prices[rec.Asset] = price
		}
		out := recorder.Resolve(rec, price, now)
		if err := s.Recorder.RecordOutcome(out); err != nil {
			s.Metrics.RecordError("recorder")
			log.Error().Err(err).Str("id", rec.ID).Msg("record outcome")
			continue
		}
		s.Metrics.RecordOutcome(rec.Asset, out.Result)
	}
	if len(pending) > 0 {
		log.Debug().Int("resolved", len(pending)).Msg("outcomes resolved")
	}
}

const helpText = "Available commands:\n" +
	"• /signal &lt;SYMBOL&gt; current signal\n" +
	"• /stats [SYMBOL] win/loss statistics\n" +
	"• /assets tradable assets"

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	arg := ""
	if len(fields) > 1 {
		arg = strings.ToUpper(strings.Join(fields[1:], " "))
	}

	switch fields[0] {
	case "/signal":
		if arg == "" {
			return "Usage: /signal &lt;SYMBOL&gt;"
		}
		if _, err := catalog.Lookup(arg); err != nil {
			return "Unknown symbol " + html.EscapeString(arg)
		}
		snap, err := s.Collector.Collect(s.Ctx, arg)
		if err != nil {
			log.Error().Err(err).Str("symbol", arg).Msg("signal command")
			return "Signal generation failed, try again later"
		}
		return notifier.FormatSignal(snap.Signal)
	case "/stats":
		perf, err := s.Recorder.Performance(arg)
		if err != nil {
			log.Error().Err(err).Msg("stats command")
			return "Statistics unavailable"
		}
		return notifier.FormatPerformance(perf)
	case "/assets":
		return notifier.FormatAssets(catalog.Active())
	default:
		return helpText
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Metrics.RecordError("notify")
		log.Error().Err(err).Msg("send notification")
	}
}
