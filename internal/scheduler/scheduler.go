// Package scheduler runs the worker loop: poll the job queue on a fixed
// interval and dispatch each pending job to the report generator.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Paulkm2006/hust-ledger-back/internal/domain"
	"github.com/Paulkm2006/hust-ledger-back/internal/queue"
	"github.com/Paulkm2006/hust-ledger-back/internal/report"
)

// DefaultInterval matches the polling cadence of the original deployment.
const DefaultInterval = 5 * time.Second

// Generator produces and persists one report. Implemented by
// report.Aggregator.
type Generator interface {
	Generate(ctx context.Context, account string, period domain.Period, token string) (*domain.ReportDocument, report.Locator, error)
}

// Scheduler is the single active worker loop. Jobs within one tick run
// sequentially; per-account ordering follows from that.
type Scheduler struct {
	queue    *queue.Queue
	gen      Generator
	interval time.Duration
	log      zerolog.Logger
}

// New creates a scheduler polling q every interval.
func New(q *queue.Queue, gen Generator, interval time.Duration, log zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{queue: q, gen: gen, interval: interval, log: log}
}

// Run polls until ctx is cancelled. Job failures never stop the loop; they
// are recorded as result-pointer error markers and the loop moves on.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info().Dur("interval", s.interval).Msg("scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler stopped")
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick processes every currently pending job once.
func (s *Scheduler) Tick(ctx context.Context) {
	jobs, err := s.queue.Pending(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to enumerate pending jobs")
		return
	}

	for _, job := range jobs {
		s.process(ctx, job)
	}
}

func (s *Scheduler) process(ctx context.Context, job queue.Job) {
	log := s.log.With().
		Str("run_id", uuid.NewString()).
		Str("account", job.Key.Account).
		Str("period", string(job.Key.Period)).
		Logger()

	// Delete the job key first so the next tick cannot pick the job up again.
	if err := s.queue.Take(ctx, job.Key); err != nil {
		log.Error().Err(err).Msg("failed to take job")
		return
	}

	start := time.Now()
	_, loc, err := s.gen.Generate(ctx, job.Key.Account, job.Key.Period, job.Token)
	if err != nil {
		log.Error().Err(err).Str("kind", errorKind(err)).Msg("report generation failed")
		if failErr := s.queue.Fail(ctx, job.Key, err); failErr != nil {
			log.Error().Err(failErr).Msg("failed to record job error")
		}
		return
	}

	if err := s.queue.Complete(ctx, job.Key, loc.String()); err != nil {
		log.Error().Err(err).Msg("failed to record job result")
		return
	}

	log.Info().
		Str("locator", loc.String()).
		Dur("elapsed", time.Since(start)).
		Msg("report generated")
}

// errorKind labels a job failure for logging, keeping upstream contract
// violations distinguishable from upstream-reported errors.
func errorKind(err error) string {
	var (
		cardErr  *domain.CardSystemError
		authErr  *domain.AuthError
		parseErr *domain.ParseError
		storeErr *domain.StoreError
	)
	switch {
	case errors.Is(err, domain.ErrInvalidPeriod):
		return "invalid_period"
	case errors.As(err, &cardErr):
		return "card_system"
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &storeErr):
		return "store"
	}
	return "internal"
}
