package waitlist

import (
	"context"
	"time"

	"parkwise/pkg/logger"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule runs the expiry sweep once a minute
const DefaultSweepSchedule = "0 * * * * *"

// Sweeper periodically resolves pending offers whose acceptance window has
// passed. It is the authoritative expiry mechanism; reads only treat expired
// offers as unacceptable, they never mutate them.
type Sweeper struct {
	service  Service
	cron     *cron.Cron
	schedule string
	log      *logger.Logger
}

// NewSweeper creates a sweeper on the given cron schedule (with seconds
// precision); an empty schedule uses DefaultSweepSchedule
func NewSweeper(service Service, schedule string) *Sweeper {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	return &Sweeper{
		service: service,
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithSeconds(),
		),
		schedule: schedule,
		log:      logger.GetDefault(),
	}
}

// Start registers the sweep job and begins the scheduler
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.runOnce)
	if err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("offer expiry sweeper started", "schedule", s.schedule)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep to finish
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("offer expiry sweeper stopped")
}

func (s *Sweeper) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	processed, err := s.service.ProcessExpiredOffers(ctx)
	if err != nil {
		s.log.ErrorWithContext(ctx, "expiry sweep failed", err, nil)
		return
	}
	if processed > 0 {
		s.log.InfoWithContext(ctx, "expiry sweep completed", map[string]interface{}{
			"expired": processed,
		})
	}
}
