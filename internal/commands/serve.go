package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"SignalDesk/internal/api"
	"SignalDesk/internal/metrics"
	"SignalDesk/internal/notifier"
	"SignalDesk/internal/scheduler"
	"SignalDesk/internal/simulator"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the signal service",
	Long:  "Start the market feed, cron tasks, Telegram bot and HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log.Info().Str("source", cfg.Market.Source).Strs("symbols", cfg.Market.Symbols).Msg("signal desk starting")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f, err := newFeed(cfg)
	if err != nil {
		return err
	}
	log.Info().Str("fetcher", f.fetcher.Name()).Msg("data source ready")

	col := newCollector(cfg, f.fetcher)

	rec := newRecorder(cfg.Database.SQLitePath)
	defer rec.Close()

	sc := newCache(ctx, cfg.Redis)
	defer sc.Close()

	pub := newPublisher(cfg.Kafka)
	defer pub.Close()

	m := metrics.New(prometheus.DefaultRegisterer)

	deps := scheduler.Deps{
		Collector:  col,
		Ticker:     f.ticker(),
		Symbols:    cfg.Market.Symbols,
		Acceptance: acceptance(cfg.Strategy.Acceptance),
		Recorder:   rec,
		Cache:      sc,
		Publisher:  pub,
		Metrics:    m,
	}
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.Enabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		deps.Notifier = tn
	} else {
		log.Warn().Msg("telegram not configured, high-conviction signals will only be logged")
	}

	sched := scheduler.NewScheduler(ctx, deps)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.SignalCron, cfg.Schedule.OutcomeCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, evaluating signals now")
		go sched.RunSignalsNow()
	}

	srv := api.NewServer(cfg.Server.Addr, api.NewHandler(col, sc, rec), prometheus.DefaultGatherer)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received, stopping")
	case err = <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		log.Error().Err(serr).Msg("http shutdown")
	}

	if f.sim != nil {
		if serr := simulator.SavePrices(cfg.Market.StateFile, f.sim.Prices()); serr != nil {
			log.Error().Err(serr).Msg("save simulated prices")
		} else {
			log.Info().Str("file", cfg.Market.StateFile).Msg("simulated prices saved")
		}
	}
	log.Info().Msg("signal desk stopped")
	return err
}
