package alarm

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mediiq/mediiq-api/internal/email"
	"github.com/mediiq/mediiq-api/internal/model"
	"github.com/mediiq/mediiq-api/internal/repository"
	apperrors "github.com/mediiq/mediiq-api/pkg/errors"
	"github.com/mediiq/mediiq-api/pkg/logger"
	"github.com/mediiq/mediiq-api/pkg/messaging"
	"github.com/mediiq/mediiq-api/pkg/metrics"
)

var ErrAlreadyPresenting = errors.New("an alarm is already presented for this scope")

type AlarmService interface {
	Present(ctx context.Context, reminder *model.Reminder) error
	IsPresented(scope string) bool
	Presented(scope string) *model.PresentedAlarm
	Dismiss(ctx context.Context, scope string, disposition *model.AlarmDisposition) error
	Shutdown()
}

// Service holds the presented-alarm state: at most one live session per
// scope at any instant.
type Service struct {
	reminders repository.ReminderRepository
	users     repository.UserRepository
	outbox    repository.OutboxRepository
	broker    messaging.Broker
	emailSvc  email.Service
	logger    *logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func NewService(
	reminders repository.ReminderRepository,
	users repository.UserRepository,
	outbox repository.OutboxRepository,
	broker messaging.Broker,
	emailSvc email.Service,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		reminders: reminders,
		users:     users,
		outbox:    outbox,
		broker:    broker,
		emailSvc:  emailSvc,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
}

// Present promotes a reminder to the presented alarm and starts its
// delivery channels. A second candidate while one is presented is
// rejected, which upholds the single-presented-alarm invariant.
func (s *Service) Present(ctx context.Context, reminder *model.Reminder) error {
	s.mu.Lock()
	if _, exists := s.sessions[reminder.Scope]; exists {
		s.mu.Unlock()
		return ErrAlreadyPresenting
	}
	sess := newSession(reminder, s.broker, s.logger)
	s.sessions[reminder.Scope] = sess
	s.mu.Unlock()

	// Sessions outlive the presenting request; they end only on
	// dismissal or service shutdown.
	sess.start(context.Background())
	s.metrics.AlarmSessionsActive.Inc()

	s.recordOutbox(ctx, model.AlarmEventTriggered, reminder)
	s.logger.Info("alarm presented",
		"reminder_id", reminder.ID.String(),
		"scope", reminder.Scope,
		"medicine", reminder.MedicineName)
	return nil
}

func (s *Service) IsPresented(scope string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[scope]
	return ok
}

func (s *Service) Presented(scope string) *model.PresentedAlarm {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[scope]
	if !ok {
		return nil
	}
	return &model.PresentedAlarm{
		ReminderID:  sess.reminder.ID,
		Medicine:    sess.reminder.MedicineName,
		Dose:        sess.reminder.Dose,
		TriggeredAt: sess.triggeredAt,
	}
}

// Dismiss applies the user's disposition and tears the session down.
// Every path through here leaves zero running timers and zero open
// delivery channels for the session.
func (s *Service) Dismiss(ctx context.Context, scope string, disposition *model.AlarmDisposition) error {
	s.mu.Lock()
	sess, ok := s.sessions[scope]
	if !ok {
		s.mu.Unlock()
		return apperrors.NotFound("presented alarm", nil)
	}
	delete(s.sessions, scope)
	s.mu.Unlock()

	sess.stop()
	s.metrics.AlarmSessionsActive.Dec()
	s.metrics.AlarmDispositions.WithLabelValues(disposition.Action).Inc()

	reminder := sess.reminder
	var err error
	switch disposition.Action {
	case "take":
		err = s.take(ctx, reminder)
	case "snooze":
		err = s.snooze(ctx, reminder, disposition.Minutes)
	case "skip":
		err = s.skip(ctx, reminder)
	default:
		err = apperrors.BadRequest("unknown disposition", nil)
	}

	s.recordOutbox(ctx, model.AlarmEventStopped, reminder)
	return err
}

// Shutdown stops every live session, the teardown analog of the process
// going away mid-alarm.
func (s *Service) Shutdown() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.stop()
		s.metrics.AlarmSessionsActive.Dec()
	}
}

func (s *Service) take(ctx context.Context, reminder *model.Reminder) error {
	if err := s.recordDose(ctx, reminder, model.DoseActionTaken); err != nil {
		return err
	}
	// Taking acknowledges the dose and parks the reminder until the user
	// re-arms it.
	if err := s.reminders.SetActive(ctx, reminder.Scope, reminder.ID, false); err != nil {
		return fmt.Errorf("failed to deactivate reminder: %w", err)
	}
	return nil
}

func (s *Service) snooze(ctx context.Context, reminder *model.Reminder, minutes int) error {
	if minutes <= 0 {
		minutes = 10
	}
	if err := s.recordDose(ctx, reminder, model.DoseActionSnoozed); err != nil {
		return err
	}
	until := s.now().Add(time.Duration(minutes) * time.Minute)
	if err := s.reminders.SetSnoozedUntil(ctx, reminder.Scope, reminder.ID, &until); err != nil {
		return fmt.Errorf("failed to snooze reminder: %w", err)
	}
	return nil
}

func (s *Service) skip(ctx context.Context, reminder *model.Reminder) error {
	if err := s.recordDose(ctx, reminder, model.DoseActionSkipped); err != nil {
		return err
	}
	// No schedule change; the reminder stays armed for its next natural
	// occurrence. A caregiver alert goes out when one is configured.
	s.alertCaregiver(ctx, reminder)
	return nil
}

func (s *Service) recordDose(ctx context.Context, reminder *model.Reminder, action string) error {
	event := &model.DoseEvent{
		ID:         uuid.New(),
		Scope:      reminder.Scope,
		ReminderID: reminder.ID,
		Action:     action,
		OccurredAt: s.now(),
	}
	if err := s.reminders.RecordDose(ctx, event); err != nil {
		return fmt.Errorf("failed to record dose event: %w", err)
	}
	return nil
}

func (s *Service) alertCaregiver(ctx context.Context, reminder *model.Reminder) {
	if reminder.Scope == model.GuestScope {
		return
	}
	user, err := s.users.GetBySubject(ctx, reminder.Scope)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Error(err, "failed to load user for adherence alert", "scope", reminder.Scope)
		}
		return
	}
	if user.CaregiverEmail == "" {
		return
	}
	if err := s.emailSvc.SendAdherenceAlert(ctx, user.CaregiverEmail, user.DisplayName, reminder.MedicineName, reminder.Dose); err != nil {
		s.logger.Error(err, "failed to send adherence alert", "scope", reminder.Scope)
	}
}

func (s *Service) recordOutbox(ctx context.Context, eventType string, reminder *model.Reminder) {
	payload, err := json.Marshal(model.AlarmEvent{
		Type:       eventType,
		Scope:      reminder.Scope,
		ReminderID: reminder.ID,
		Medicine:   reminder.MedicineName,
		Dose:       reminder.Dose,
		EmittedAt:  s.now(),
	})
	if err != nil {
		s.logger.Error(err, "failed to marshal alarm event")
		return
	}
	if err := s.outbox.Create(ctx, &model.OutboxEvent{
		EventType: eventType,
		Scope:     reminder.Scope,
		Payload:   payload,
	}); err != nil {
		s.logger.Error(err, "failed to record alarm outbox event")
	}
}
