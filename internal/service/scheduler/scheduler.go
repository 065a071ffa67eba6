package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mediiq/mediiq-api/internal/model"
	"github.com/mediiq/mediiq-api/internal/repository"
	"github.com/mediiq/mediiq-api/pkg/logger"
	"github.com/mediiq/mediiq-api/pkg/metrics"
)

// Presenter is the alarm side of the scheduler: it owns the presented
// alarm state and the delivery channels.
type Presenter interface {
	// Present promotes the reminder to the presented alarm for its scope.
	Present(ctx context.Context, reminder *model.Reminder) error

	// IsPresented reports whether a scope currently has a presented alarm.
	IsPresented(scope string) bool
}

// Scheduler decides, once per tick, whether any reminder should
// transition to the presented alarm state. Matching is best-effort: a
// reminder fires at most once during its target minute and is missed
// entirely if the process is not running at that moment.
type Scheduler struct {
	repo      repository.ReminderRepository
	presenter Presenter
	interval  time.Duration
	logger    *logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time

	// fired tracks the last minute each reminder exact-matched, so a
	// dismissal inside the target minute does not re-trigger it.
	fired map[uuid.UUID]string
}

func NewScheduler(
	repo repository.ReminderRepository,
	presenter Presenter,
	interval time.Duration,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Scheduler {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Scheduler{
		repo:      repo,
		presenter: presenter,
		interval:  interval,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
		fired:     make(map[uuid.UUID]string),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("starting reminder scheduler", "interval", s.interval.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down reminder scheduler")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one scheduling pass over all active reminders.
func (s *Scheduler) Tick(ctx context.Context) {
	s.metrics.SchedulerTicks.Inc()

	reminders, err := s.repo.ListActive(ctx)
	if err != nil {
		s.logger.Error(err, "failed to list active reminders")
		return
	}

	now := s.now()
	for _, scope := range scopesInOrder(reminders) {
		s.tickScope(ctx, scope, groupByScope(reminders)[scope], now)
	}
}

func (s *Scheduler) tickScope(ctx context.Context, scope string, reminders []*model.Reminder, now time.Time) {
	// While an alarm is presented no second candidate may trigger, even
	// if other reminders match this tick.
	if s.presenter.IsPresented(scope) {
		for _, r := range reminders {
			if s.isCandidate(r, now) {
				s.metrics.AlarmsSuppressed.Inc()
			}
		}
		return
	}

	// First candidate in stored order wins.
	for _, r := range reminders {
		if !s.isCandidate(r, now) {
			continue
		}
		if err := s.present(ctx, r, now); err != nil {
			s.logger.Error(err, "failed to present alarm",
				"reminder_id", r.ID.String(), "scope", scope)
		}
		return
	}
}

func (s *Scheduler) present(ctx context.Context, r *model.Reminder, now time.Time) error {
	if r.SnoozedUntil != nil {
		// Consume the snooze so the next occurrence is a fresh match.
		if err := s.repo.SetSnoozedUntil(ctx, r.Scope, r.ID, nil); err != nil {
			return err
		}
		r.SnoozedUntil = nil
	}
	s.fired[r.ID] = minuteKey(now)

	if err := s.presenter.Present(ctx, r); err != nil {
		return err
	}
	s.metrics.AlarmsTriggered.Inc()
	return nil
}

// isCandidate applies the trigger rule: the reminder is active, not
// inside a snooze window, and either exact-matches the current minute on
// a day its repeat rule covers, or its snooze window just expired.
func (s *Scheduler) isCandidate(r *model.Reminder, now time.Time) bool {
	if !r.Active {
		return false
	}

	if r.SnoozedUntil != nil {
		if now.Before(*r.SnoozedUntil) {
			return false
		}
		// A snooze expiry re-triggers regardless of the minute string;
		// "remind me in N minutes" means N minutes, not the next day the
		// original time-of-day comes around again.
		return true
	}

	if r.Time != now.Format("15:04") {
		return false
	}
	if s.fired[r.ID] == minuteKey(now) {
		return false
	}
	return dueOn(r, now)
}

func minuteKey(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

func scopesInOrder(reminders []*model.Reminder) []string {
	var scopes []string
	seen := make(map[string]bool)
	for _, r := range reminders {
		if !seen[r.Scope] {
			seen[r.Scope] = true
			scopes = append(scopes, r.Scope)
		}
	}
	return scopes
}

func groupByScope(reminders []*model.Reminder) map[string][]*model.Reminder {
	groups := make(map[string][]*model.Reminder)
	for _, r := range reminders {
		groups[r.Scope] = append(groups[r.Scope], r)
	}
	return groups
}
