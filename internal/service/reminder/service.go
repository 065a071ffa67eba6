package reminder

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/mediiq/mediiq-api/internal/model"
	"github.com/mediiq/mediiq-api/internal/repository"
	apperrors "github.com/mediiq/mediiq-api/pkg/errors"
)

var timeOfDayRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type ReminderService interface {
	CreateReminder(ctx context.Context, scope string, req *model.CreateReminderRequest) (*model.Reminder, error)
	GetReminder(ctx context.Context, scope string, id uuid.UUID) (*model.Reminder, error)
	UpdateReminder(ctx context.Context, scope string, id uuid.UUID, req *model.UpdateReminderRequest) (*model.Reminder, error)
	DeleteReminder(ctx context.Context, scope string, id uuid.UUID) error
	ToggleReminder(ctx context.Context, scope string, id uuid.UUID) (*model.Reminder, error)
	SnoozeReminder(ctx context.Context, scope string, id uuid.UUID, minutes int) (*model.Reminder, error)
	ListReminders(ctx context.Context, scope string) ([]*model.Reminder, error)
	ListDoseEvents(ctx context.Context, scope string, id uuid.UUID) ([]*model.DoseEvent, error)
}

type Service struct {
	repo repository.ReminderRepository
	now  func() time.Time
}

func NewService(repo repository.ReminderRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) CreateReminder(ctx context.Context, scope string, req *model.CreateReminderRequest) (*model.Reminder, error) {
	if !timeOfDayRe.MatchString(req.Time) {
		return nil, apperrors.BadRequest("time must be HH:MM in 24h format", nil)
	}

	reminder := &model.Reminder{
		Base: model.Base{
			ID: uuid.New(),
		},
		Scope:        scope,
		MedicineName: req.MedicineName,
		Dose:         req.Dose,
		Time:         req.Time,
		FoodContext:  model.FoodContext(defaultString(req.FoodContext, string(model.FoodContextAny))),
		Repeat:       model.RepeatKind(defaultString(req.Repeat, string(model.RepeatDaily))),
		Weekdays:     model.WeekdaySet(req.Weekdays),
		SoundType:    model.SoundType(defaultString(req.SoundType, string(model.SoundRingtone))),
		VoiceTone:    model.VoiceTone(req.VoiceTone),
		VoiceGender:  model.VoiceGender(req.VoiceGender),
		CustomSound:  req.CustomSound,
		Active:       true,
	}

	if err := s.validateSound(reminder); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	return reminder, nil
}

func (s *Service) GetReminder(ctx context.Context, scope string, id uuid.UUID) (*model.Reminder, error) {
	reminder, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return nil, apperrors.NotFound("reminder", err)
	}
	return reminder, nil
}

// UpdateReminder replaces mutable fields while preserving the identifier
// and creation timestamp.
func (s *Service) UpdateReminder(ctx context.Context, scope string, id uuid.UUID, req *model.UpdateReminderRequest) (*model.Reminder, error) {
	reminder, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return nil, apperrors.NotFound("reminder", err)
	}

	if req.MedicineName != nil {
		reminder.MedicineName = *req.MedicineName
	}
	if req.Dose != nil {
		reminder.Dose = *req.Dose
	}
	if req.Time != nil {
		if !timeOfDayRe.MatchString(*req.Time) {
			return nil, apperrors.BadRequest("time must be HH:MM in 24h format", nil)
		}
		reminder.Time = *req.Time
	}
	if req.FoodContext != nil {
		reminder.FoodContext = model.FoodContext(*req.FoodContext)
	}
	if req.Repeat != nil {
		reminder.Repeat = model.RepeatKind(*req.Repeat)
	}
	if req.Weekdays != nil {
		reminder.Weekdays = model.WeekdaySet(req.Weekdays)
	}
	if req.SoundType != nil {
		reminder.SoundType = model.SoundType(*req.SoundType)
	}
	if req.VoiceTone != nil {
		reminder.VoiceTone = model.VoiceTone(*req.VoiceTone)
	}
	if req.VoiceGender != nil {
		reminder.VoiceGender = model.VoiceGender(*req.VoiceGender)
	}
	if req.CustomSound != nil {
		reminder.CustomSound = *req.CustomSound
	}

	if err := s.validateSound(reminder); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}
	return reminder, nil
}

func (s *Service) DeleteReminder(ctx context.Context, scope string, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, scope, id); err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	return nil
}

func (s *Service) ToggleReminder(ctx context.Context, scope string, id uuid.UUID) (*model.Reminder, error) {
	reminder, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return nil, apperrors.NotFound("reminder", err)
	}

	reminder.Active = !reminder.Active
	if err := s.repo.SetActive(ctx, scope, id, reminder.Active); err != nil {
		return nil, fmt.Errorf("failed to toggle reminder: %w", err)
	}
	return reminder, nil
}

func (s *Service) SnoozeReminder(ctx context.Context, scope string, id uuid.UUID, minutes int) (*model.Reminder, error) {
	reminder, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return nil, apperrors.NotFound("reminder", err)
	}

	until := s.now().Add(time.Duration(minutes) * time.Minute)
	if err := s.repo.SetSnoozedUntil(ctx, scope, id, &until); err != nil {
		return nil, fmt.Errorf("failed to snooze reminder: %w", err)
	}
	reminder.SnoozedUntil = &until
	return reminder, nil
}

func (s *Service) ListReminders(ctx context.Context, scope string) ([]*model.Reminder, error) {
	reminders, err := s.repo.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

func (s *Service) ListDoseEvents(ctx context.Context, scope string, id uuid.UUID) ([]*model.DoseEvent, error) {
	events, err := s.repo.ListDoses(ctx, scope, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list dose events: %w", err)
	}
	return events, nil
}

func (s *Service) validateSound(reminder *model.Reminder) error {
	switch reminder.SoundType {
	case model.SoundVoice:
		if reminder.VoiceTone == "" {
			reminder.VoiceTone = model.VoiceToneNormal
		}
		if reminder.VoiceGender == "" {
			reminder.VoiceGender = model.VoiceGenderFemale
		}
	case model.SoundCustom:
		if reminder.CustomSound == "" {
			return apperrors.BadRequest("custom sound requires an audio clip", nil)
		}
	}
	return nil
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
