package sla

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"approval-engine/internal/domain/request"
)

// Escalator is the single entry point the scheduler drives. It must be
// idempotent: escalating a level that is no longer pending is a no-op.
type Escalator interface {
	Escalate(ctx context.Context, requestID string, levelOrder int) error
}

// Sweeper expires delegations whose window has closed.
type Sweeper interface {
	ExpireOverdue(ctx context.Context, now time.Time) error
}

// Scheduler polls for breached levels and drives escalation. It is the only
// source of autonomously-triggered transitions; it never touches transition
// logic itself, so the timing strategy can change without touching the state
// machine.
type Scheduler struct {
	requests  request.Repository
	escalator Escalator
	sweeper   Sweeper
	interval  time.Duration
	batchSize int
	log       *logrus.Logger
}

func NewScheduler(requests request.Repository, esc Escalator, sweeper Sweeper, interval time.Duration, log *logrus.Logger) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Scheduler{
		requests:  requests,
		escalator: esc,
		sweeper:   sweeper,
		interval:  interval,
		batchSize: 100,
		log:       log,
	}
}

// Run blocks until ctx is done, ticking at the configured interval.
func (s *Scheduler) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	s.log.WithField("interval", s.interval.String()).Info("sla scheduler started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info("sla scheduler stopped")
			return
		case now := <-t.C:
			s.Tick(ctx, now.UTC())
		}
	}
}

// Tick runs one scan. Exported so tests and cron-style deployments can drive
// the scheduler without the ticker loop.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	due, err := s.requests.ListDuePending(ctx, now, s.batchSize)
	if err != nil {
		s.log.WithError(err).Error("sla scan failed")
		return
	}
	for _, d := range due {
		if err := s.escalator.Escalate(ctx, d.RequestID, d.LevelOrder); err != nil {
			s.log.WithError(err).
				WithFields(logrus.Fields{"request_id": d.RequestID, "level": d.LevelOrder}).
				Error("escalation failed")
		}
	}
	if s.sweeper != nil {
		if err := s.sweeper.ExpireOverdue(ctx, now); err != nil {
			s.log.WithError(err).Error("delegation expiry sweep failed")
		}
	}
}
