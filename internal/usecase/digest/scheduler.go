package digest

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"prpulse/internal/bootstrap/logging"
	"prpulse/internal/domain/digest"
	"prpulse/internal/errs"
	"prpulse/internal/ports"
)

// ErrRunInProgress is returned when a tick lands while the previous run
// is still going. The tick is dropped, not queued.
var ErrRunInProgress = errors.New("digest run already in progress")

// RunStats summarizes one scheduler tick.
type RunStats struct {
	Configs int
	Matched int
	Sent    int
	Empty   int
	Skipped int
	Errors  int
}

// Scheduler drives digest delivery on a fixed cadence. A single-flight
// lock scoped to this instance prevents overlapping runs; multi-instance
// deployments need external coordination.
type Scheduler struct {
	service  *Service
	digests  ports.DigestRepository
	interval time.Duration

	running sync.Mutex
}

func NewScheduler(service *Service, digests ports.DigestRepository, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Scheduler{
		service:  service,
		digests:  digests,
		interval: interval,
	}
}

// Start registers the periodic tick and starts the cron runner. The
// returned cron must be stopped by the caller on shutdown.
func (s *Scheduler) Start(ctx context.Context) (*cron.Cron, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	runner := cron.New()
	_, err := runner.AddFunc("@every "+s.interval.String(), func() {
		stats, err := s.Tick(ctx, time.Now())
		if errors.Is(err, ErrRunInProgress) {
			logging.Warn(ctx, "digest tick dropped, previous run still going")
			return
		}
		if err != nil {
			logging.Error(ctx, "digest tick failed", slog.Any("err", errs.Loggable(err)))
			return
		}
		logging.Info(ctx, "digest tick complete",
			slog.Int("configs", stats.Configs),
			slog.Int("matched", stats.Matched),
			slog.Int("sent", stats.Sent),
			slog.Int("empty", stats.Empty),
			slog.Int("skipped", stats.Skipped),
			slog.Int("errors", stats.Errors),
		)
	})
	if err != nil {
		return nil, errs.Wrap(err, "register digest tick")
	}

	runner.Start()
	logging.Info(ctx, "digest scheduler started", slog.Duration("interval", s.interval))
	return runner, nil
}

// Tick runs one scheduler pass over all enabled configs. Overlapping
// ticks return ErrRunInProgress and do nothing.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) (RunStats, error) {
	if ctx == nil {
		return RunStats{}, errors.New("context is required")
	}
	if !s.running.TryLock() {
		return RunStats{}, ErrRunInProgress
	}
	defer s.running.Unlock()

	configs, err := s.digests.ListEnabledDigestConfigs(ctx)
	if err != nil {
		return RunStats{}, errs.Wrap(err, "list enabled digest configs")
	}

	stats := RunStats{Configs: len(configs)}
	for _, cfg := range configs {
		logCtx := logging.WithAttrs(ctx,
			slog.String("component", "digest.scheduler"),
			slog.Uint64("config_id", cfg.ConfigID),
		)

		matched, skipped, err := s.evaluate(logCtx, cfg, now)
		if err != nil {
			stats.Errors++
			logging.Error(logCtx, "config evaluation failed",
				slog.Any("err", errs.Loggable(err)),
			)
			continue
		}
		if !matched {
			continue
		}
		stats.Matched++
		if skipped {
			stats.Skipped++
			logging.Info(logCtx, "digest already sent today, skipping")
			continue
		}

		outcome, err := s.service.RunConfig(ctx, cfg, now)
		if err != nil {
			stats.Errors++
			logging.Error(logCtx, "digest run failed",
				slog.Any("err", errs.Loggable(err)),
			)
			continue
		}
		if outcome.Sent {
			stats.Sent++
		}
		if outcome.Empty {
			stats.Empty++
		}
	}
	return stats, nil
}

// evaluate reports whether cfg's schedule matches now and, if so,
// whether a digest was already recorded inside today's local window.
func (s *Scheduler) evaluate(ctx context.Context, cfg ports.DigestConfigRecord, now time.Time) (matched bool, skipped bool, err error) {
	weekdays, err := digest.ParseWeekdays(cfg.Weekdays)
	if err != nil {
		return false, false, err
	}

	matched, err = digest.Matches(now, cfg.Timezone, weekdays, cfg.DeliveryTime)
	if err != nil || !matched {
		return false, false, err
	}

	start, end, err := digest.DayWindow(now, cfg.Timezone)
	if err != nil {
		return true, false, err
	}
	count, err := s.digests.CountUserDigestsInWindow(ctx, cfg.ConfigID, start, end)
	if err != nil {
		return true, false, errs.Wrap(err, "count digests in day window")
	}
	return true, count > 0, nil
}
