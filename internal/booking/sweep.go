package booking

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/scooter-rental/internal/apperror"
)

// SweepResult counts what one pass changed.
type SweepResult struct {
	Activated      int `json:"activated"`
	FlaggedOverdue int `json:"flagged_overdue"`
}

// Sweeper periodically starts confirmed bookings whose window has begun and
// flags active bookings that ran past their end.
type Sweeper struct {
	svc      *Service
	interval time.Duration
	logger   *logrus.Logger
	now      func() time.Time
}

// NewSweeper returns a sweeper for svc ticking every interval.
func NewSweeper(svc *Service, interval time.Duration, logger *logrus.Logger) *Sweeper {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Sweeper{svc: svc, interval: interval, logger: logger, now: time.Now}
}

// Run sweeps on every tick until ctx is cancelled. A non-positive interval disables it.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("booking sweeper disabled")
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.WithField("interval", s.interval).Info("booking sweeper started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("booking sweeper stopped")
			return
		case <-ticker.C:
			res, err := s.SweepOnce(ctx, s.now().UTC())
			if err != nil {
				s.logger.WithError(err).Error("booking sweep failed")
				continue
			}
			if res.Activated > 0 || res.FlaggedOverdue > 0 {
				s.logger.WithFields(logrus.Fields{
					"activated":       res.Activated,
					"flagged_overdue": res.FlaggedOverdue,
				}).Info("booking sweep finished")
			}
		}
	}
}

// SweepOnce runs a single pass against now. Individual failures are logged and
// skipped; a losing race with an admin edit is not an error.
func (s *Sweeper) SweepOnce(ctx context.Context, now time.Time) (SweepResult, error) {
	var res SweepResult

	due, err := s.svc.DueForActivation(ctx, now)
	if err != nil {
		return res, err
	}
	for _, b := range due {
		if _, err := s.svc.Activate(ctx, b.ID); err != nil {
			if !apperror.Is(err, apperror.KindInvalidTransition) {
				s.logger.WithError(err).WithField("booking_id", b.ID.Hex()).Warn("activate booking failed")
			}
			continue
		}
		res.Activated++
	}

	late, err := s.svc.PastDue(ctx, now)
	if err != nil {
		return res, err
	}
	var errs []error
	for _, b := range late {
		if b.Overdue {
			continue
		}
		if _, err := s.svc.FlagOverdue(ctx, b.ID); err != nil {
			if !apperror.Is(err, apperror.KindInvalidTransition) {
				errs = append(errs, err)
			}
			continue
		}
		res.FlaggedOverdue++
	}
	return res, errors.Join(errs...)
}
