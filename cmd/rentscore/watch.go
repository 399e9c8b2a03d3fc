package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rewired-gh/rentscore/internal/analyzer"
	"github.com/rewired-gh/rentscore/internal/config"
	"github.com/rewired-gh/rentscore/internal/logger"
	"github.com/rewired-gh/rentscore/internal/models"
	"github.com/rewired-gh/rentscore/internal/monitor"
	"github.com/rewired-gh/rentscore/internal/rentcast"
	"github.com/rewired-gh/rentscore/internal/telegram"
	"github.com/urfave/cli/v3"
)

// notifier receives the reports of a watch cycle.
type notifier interface {
	Send(ctx context.Context, report models.Report) error
	SendError(ctx context.Context, cycleErr error) error
	SendRecovery(ctx context.Context, failedCycles int) error
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Periodically score the configured zip codes and notify via Telegram",
		ArgsUsage: "[zip code...]",
		UsageText: `rentscore watch                      # zip codes from watch.zip_codes
   rentscore watch 78244 10001 --interval 1h
   rentscore watch 78244 --once`,
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "interval", Usage: "Poll interval (default: watch.poll_interval from config)"},
			&cli.BoolFlag{Name: "once", Usage: "Run a single cycle and exit"},
			profileFlag(),
		},
		Action: cmdWatch,
	}
}

func cmdWatch(ctx context.Context, cmd *cli.Command) error {
	st := getState(cmd)
	cfg := st.cfg

	zips := cmd.Args().Slice()
	if len(zips) == 0 {
		zips = cfg.Watch.ZipCodes
	}
	if len(zips) == 0 {
		return errors.New("no zip codes to watch: pass them as arguments or set watch.zip_codes")
	}

	interval := cfg.Watch.PollInterval
	if d := cmd.Duration("interval"); d > 0 {
		interval = d
	}

	a, err := newAnalyzer(st)
	if err != nil {
		return err
	}

	var notify notifier
	if cfg.Telegram.Enabled {
		tg, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			return fmt.Errorf("failed to initialize Telegram client: %w", err)
		}
		notify = tg
		logger.Info("Telegram client initialized successfully")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	w := &watcher{
		analyzer: a,
		notify:   notify,
		monitor:  monitor.New(),
		cfg:      cfg.Watch,
		profile:  cmd.String("profile"),
		zips:     zips,
	}

	if cmd.Bool("once") {
		return w.runCycle(ctx)
	}
	return w.run(ctx, interval)
}

type watcher struct {
	analyzer *analyzer.Analyzer
	notify   notifier
	monitor  *monitor.Monitor
	cfg      config.WatchConfig
	profile  string
	zips     []string

	consecutiveFailures int
}

func (w *watcher) run(ctx context.Context, interval time.Duration) error {
	logger.Info("Starting watch (interval: %v, zip codes: %v, top_k: %d)", interval, w.zips, w.cfg.TopK)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Debug("Running initial scoring cycle")
	w.handleCycleResult(ctx, w.runCycle(ctx))

	for {
		select {
		case <-ctx.Done():
			logger.Info("Watch stopped")
			return nil

		case <-ticker.C:
			logger.Debug("Starting scheduled scoring cycle")
			w.handleCycleResult(ctx, w.runCycle(ctx))
			if removed := w.monitor.Rotate(w.cfg.NotifyCooldown); removed > 0 {
				logger.Debug("Forgot %d notified properties past the cooldown", removed)
			}
		}
	}
}

// handleCycleResult notifies on the first failure of a streak and on recovery.
func (w *watcher) handleCycleResult(ctx context.Context, err error) {
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.consecutiveFailures++
		logger.Error("Scoring cycle failed: %v", err)
		if w.consecutiveFailures == 1 && w.notify != nil {
			if sendErr := w.notify.SendError(ctx, err); sendErr != nil {
				logger.Warn("Failed to send error notification to Telegram: %v", sendErr)
			}
		}
		return
	}

	if w.consecutiveFailures > 0 && w.notify != nil {
		if sendErr := w.notify.SendRecovery(ctx, w.consecutiveFailures); sendErr != nil {
			logger.Warn("Failed to send recovery notification to Telegram: %v", sendErr)
		}
	}
	w.consecutiveFailures = 0
}

// runCycle scores every zip code in turn. A failing zip code does not stop the
// others; the joined errors are returned.
func (w *watcher) runCycle(ctx context.Context) error {
	startTime := time.Now()
	var errs []error

	for _, zip := range w.zips {
		if err := ctx.Err(); err != nil {
			return err
		}

		report, err := w.analyzer.ScoreZip(ctx, analyzer.Request{
			Query:         rentcast.Query{ZipCode: zip, Limit: w.cfg.Limit},
			Profile:       w.profile,
			TopK:          w.cfg.TopK,
			RentEstimates: w.cfg.RentEstimates,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("zip %s: %w", zip, err))
			continue
		}

		if len(report.Scores) > 0 {
			best := report.Scores[0]
			logger.Info("Zip %s: best %.1f %s (%s)", zip, best.OverallScore, best.Rating.Label, best.Address)
		} else {
			logger.Info("Zip %s: no properties scored", zip)
		}

		if w.notify == nil || len(report.Scores) == 0 {
			continue
		}

		fresh := w.monitor.FilterRecentlySent(report, w.cfg.NotifyCooldown)
		if len(fresh.Scores) == 0 {
			logger.Debug("Zip %s: all %d properties already notified", zip, len(report.Scores))
			continue
		}
		if err := w.notify.Send(ctx, fresh); err != nil {
			errs = append(errs, fmt.Errorf("zip %s: failed to send notification: %w", zip, err))
			continue
		}
		w.monitor.RecordNotified(fresh)
		logger.Debug("Notification sent for zip %s (%d properties)", zip, len(fresh.Scores))
	}

	logger.Info("Scoring cycle completed in %v", time.Since(startTime))
	return errors.Join(errs...)
}
