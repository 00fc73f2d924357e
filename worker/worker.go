package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/phamluong43-design/quan-ly-chung-thu-so/notify"
)

// Worker fires the scheduled expiry scan once per calendar day at a fixed
// local time. There is no catch-up: a trigger missed while the process was
// down is skipped, and a trigger that lands while a scan is still running is
// a no-op.
type Worker struct {
	service *notify.Service
	window  notify.Window
	log     *logrus.Logger
	cron    *cron.Cron
}

func New(service *notify.Service, window notify.Window, log *logrus.Logger) *Worker {
	return &Worker{service: service, window: window, log: log}
}

// Start schedules the daily run at dailyAt (HH:MM) in the given timezone and
// returns immediately.
func (w *Worker) Start(dailyAt, timezone string) error {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	spec, err := cronSpec(dailyAt)
	if err != nil {
		return err
	}

	w.cron = cron.New(cron.WithLocation(loc))
	if _, err := w.cron.AddFunc(spec, w.runOnce); err != nil {
		return fmt.Errorf("schedule daily scan: %w", err)
	}
	w.cron.Start()
	w.log.WithFields(logrus.Fields{"daily_at": dailyAt, "timezone": timezone}).
		Info("daily expiry scan scheduled")
	return nil
}

func (w *Worker) Stop() {
	if w.cron != nil {
		w.cron.Stop()
	}
}

// runOnce executes a single scheduled scan. Failures are terminal for this
// day's run only: they are logged and the worker stays ready for the next
// trigger.
func (w *Worker) runOnce() {
	sum, err := w.service.RunScan(context.Background(), w.window, notify.ModeScheduled)
	if errors.Is(err, notify.ErrScanBusy) {
		w.log.Warn("previous scan still running, skipping this trigger")
		return
	}
	if err != nil {
		w.log.WithError(err).Error("scheduled expiry scan failed")
		return
	}
	w.log.WithFields(logrus.Fields{
		"run_id":   sum.RunID,
		"found":    sum.Found,
		"notified": sum.Notified,
		"errors":   len(sum.Errors),
	}).Info("scheduled expiry scan finished")
}

// cronSpec converts "HH:MM" into a daily cron expression.
func cronSpec(dailyAt string) (string, error) {
	t, err := time.Parse("15:04", dailyAt)
	if err != nil {
		return "", fmt.Errorf("invalid daily time %q, want HH:MM: %w", dailyAt, err)
	}
	return fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()), nil
}
