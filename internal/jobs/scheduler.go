package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Refresher is a job the scheduler runs on a cron spec.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshFunc adapts a plain function to Refresher.
type RefreshFunc func(ctx context.Context) error

func (f RefreshFunc) Refresh(ctx context.Context) error { return f(ctx) }

type Scheduler struct {
	cron    *cron.Cron
	log     zerolog.Logger
	timeout time.Duration
}

func NewScheduler(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:     log.With().Str("component", "scheduler").Logger(),
		timeout: 30 * time.Second,
	}
}

// Every registers job under name to run on spec (six fields, seconds first).
func (s *Scheduler) Every(spec, name string, job Refresher) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		if err := job.Refresh(ctx); err != nil {
			s.log.Error().Err(err).Str("job", name).Msg("scheduled refresh failed")
			return
		}
		s.log.Debug().Str("job", name).Dur("took", time.Since(start)).Msg("scheduled refresh done")
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling; the returned context is done once running jobs
// have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
