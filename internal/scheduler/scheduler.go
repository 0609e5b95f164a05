package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

type Populator interface {
	Populate(ctx context.Context) (int, error)
}

// Scheduler re-runs the feed import on a fixed interval. A zero interval
// leaves it disabled.
type Scheduler struct {
	sched    gocron.Scheduler
	importer Populator
	interval time.Duration
	log      *slog.Logger
	cancel   context.CancelFunc
}

func New(importer Populator, interval time.Duration, log *slog.Logger) (*Scheduler, error) {
	const op = "scheduler.New"

	s := &Scheduler{
		importer: importer,
		interval: interval,
		log:      log.With(slog.String("component", "scheduler")),
	}

	if !s.Enabled() {
		return s, nil
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.sched = sched

	return s, nil
}

func (s *Scheduler) Enabled() bool {
	return s.interval > 0
}

// Start registers the import job and starts the scheduler. Runs are bound to
// ctx and a run still in progress when the next tick fires is skipped.
func (s *Scheduler) Start(ctx context.Context) error {
	const op = "scheduler.Start"

	if !s.Enabled() {
		s.log.Info("periodic import disabled")
		return nil
	}

	ctx, s.cancel = context.WithCancel(ctx)

	_, err := s.sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() { s.run(ctx) }),
		gocron.WithName("populate"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		s.cancel()
		return fmt.Errorf("%s: %w", op, err)
	}

	s.sched.Start()
	s.log.Info("periodic import scheduled", slog.String("interval", s.interval.String()))

	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	const op = "scheduler.run"

	count, err := s.importer.Populate(ctx)
	if err != nil {
		s.log.Error("scheduled import failed", slog.String("operation", op), slog.String("error", err.Error()))
		return
	}

	s.log.Info("scheduled import finished", slog.String("operation", op), slog.Int("count", count))
}

func (s *Scheduler) Shutdown() error {
	const op = "scheduler.Shutdown"

	if s.sched == nil {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}

	if err := s.sched.Shutdown(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
