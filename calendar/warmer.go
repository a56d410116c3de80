/*
warmer.go - Background holiday cache warmer

PURPOSE:
  Periodically loads the holidays of the current year and the years after
  it, so estimates near a year boundary do not pay for a cache miss.

DESIGN:
  - Runs on a cron schedule (robfig/cron), "@every 6h" by default
  - Loads immediately on Start, then on every scheduled run
  - Overlapping runs are skipped; failures are logged and retried next run

USAGE:
  w := calendar.NewWarmer(cached, logger)
  if err := w.Start(); err != nil { ... }
  // ... later
  w.Stop()
*/
package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultWarmSchedule reloads holidays four times a day.
const DefaultWarmSchedule = "@every 6h"

// Warmer keeps a HolidayCalendar's cache populated.
type Warmer struct {
	Calendar HolidayCalendar
	Schedule string // cron spec
	Years    int    // how many years from the current one to load
	Now      func() time.Time

	logger *slog.Logger
	cron   *cron.Cron
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewWarmer returns a warmer loading this year and the next on
// DefaultWarmSchedule.
func NewWarmer(cal HolidayCalendar, logger *slog.Logger) *Warmer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Warmer{
		Calendar: cal,
		Schedule: DefaultWarmSchedule,
		Years:    2,
		Now:      time.Now,
		logger:   logger,
	}
}

// Start runs one warm-up in the background and schedules the next ones.
// Calling Start on a running warmer has no effect.
func (w *Warmer) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cron != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(w.Schedule, func() { w.Warm(ctx) }); err != nil {
		cancel()
		return fmt.Errorf("invalid warm schedule %q: %w", w.Schedule, err)
	}

	w.cron = c
	w.cancel = cancel
	c.Start()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.Warm(ctx)
	}()

	w.logger.Info("holiday warmer started", slog.String("schedule", w.Schedule), slog.Int("years", w.Years))
	return nil
}

// Stop cancels in-flight loads and waits for them to return.
func (w *Warmer) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cron == nil {
		return
	}
	w.cancel()
	<-w.cron.Stop().Done()
	w.wg.Wait()
	w.cron = nil
	w.logger.Info("holiday warmer stopped")
}

// Warm loads the configured years once and returns how many succeeded.
func (w *Warmer) Warm(ctx context.Context) int {
	first := w.Now().UTC().Year()
	loaded := 0
	for year := first; year < first+w.Years; year++ {
		if _, err := w.Calendar.Holidays(ctx, year); err != nil {
			w.logger.WarnContext(ctx, "failed to warm holidays", slog.Int("year", year), slog.Any("error", err))
			continue
		}
		loaded++
	}
	w.logger.DebugContext(ctx, "holidays warmed", slog.Int("from", first), slog.Int("loaded", loaded))
	return loaded
}
