package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mediiq/mediiq-api/internal/model"
	"github.com/mediiq/mediiq-api/internal/repository"
)

type reminderRepository struct {
	db *sqlx.DB
}

func NewReminderRepository(db *sqlx.DB) repository.ReminderRepository {
	return &reminderRepository{db: db}
}

func (r *reminderRepository) Create(ctx context.Context, reminder *model.Reminder) error {
	query := `
		INSERT INTO reminders (
			id, scope, medicine_name, dose, time, food_context, repeat, weekdays,
			sound_type, voice_tone, voice_gender, custom_sound, active,
			snoozed_until, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	reminder.CreatedAt = time.Now()
	reminder.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		reminder.ID,
		reminder.Scope,
		reminder.MedicineName,
		reminder.Dose,
		reminder.Time,
		reminder.FoodContext,
		reminder.Repeat,
		reminder.Weekdays,
		reminder.SoundType,
		reminder.VoiceTone,
		reminder.VoiceGender,
		reminder.CustomSound,
		reminder.Active,
		reminder.SnoozedUntil,
		reminder.CreatedAt,
		reminder.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

func (r *reminderRepository) Get(ctx context.Context, scope string, id uuid.UUID) (*model.Reminder, error) {
	query := `SELECT * FROM reminders WHERE scope = $1 AND id = $2`
	var reminder model.Reminder
	err := r.db.GetContext(ctx, &reminder, query, scope, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return &reminder, nil
}

func (r *reminderRepository) Update(ctx context.Context, reminder *model.Reminder) error {
	query := `
		UPDATE reminders SET
			medicine_name = $1, dose = $2, time = $3, food_context = $4,
			repeat = $5, weekdays = $6, sound_type = $7, voice_tone = $8,
			voice_gender = $9, custom_sound = $10, updated_at = $11
		WHERE scope = $12 AND id = $13
	`
	reminder.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		reminder.MedicineName,
		reminder.Dose,
		reminder.Time,
		reminder.FoodContext,
		reminder.Repeat,
		reminder.Weekdays,
		reminder.SoundType,
		reminder.VoiceTone,
		reminder.VoiceGender,
		reminder.CustomSound,
		reminder.UpdatedAt,
		reminder.Scope,
		reminder.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	return nil
}

func (r *reminderRepository) Delete(ctx context.Context, scope string, id uuid.UUID) error {
	query := `DELETE FROM reminders WHERE scope = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, query, scope, id)
	if err != nil {
		return err
	}
	return requireRow(res, "reminder")
}

// List returns reminders in stored (creation) order; the scheduler's
// tie-break depends on this ordering.
func (r *reminderRepository) List(ctx context.Context, scope string) ([]*model.Reminder, error) {
	query := `SELECT * FROM reminders WHERE scope = $1 ORDER BY created_at ASC`
	var reminders []*model.Reminder
	err := r.db.SelectContext(ctx, &reminders, query, scope)
	return reminders, err
}

func (r *reminderRepository) ListActive(ctx context.Context) ([]*model.Reminder, error) {
	query := `SELECT * FROM reminders WHERE active = true ORDER BY scope, created_at ASC`
	var reminders []*model.Reminder
	err := r.db.SelectContext(ctx, &reminders, query)
	return reminders, err
}

func (r *reminderRepository) SetActive(ctx context.Context, scope string, id uuid.UUID, active bool) error {
	query := `UPDATE reminders SET active = $1, updated_at = $2 WHERE scope = $3 AND id = $4`
	res, err := r.db.ExecContext(ctx, query, active, time.Now(), scope, id)
	if err != nil {
		return fmt.Errorf("failed to toggle reminder: %w", err)
	}
	return requireRow(res, "reminder")
}

func (r *reminderRepository) SetSnoozedUntil(ctx context.Context, scope string, id uuid.UUID, until *time.Time) error {
	query := `UPDATE reminders SET snoozed_until = $1, updated_at = $2 WHERE scope = $3 AND id = $4`
	res, err := r.db.ExecContext(ctx, query, until, time.Now(), scope, id)
	if err != nil {
		return fmt.Errorf("failed to set snooze: %w", err)
	}
	return requireRow(res, "reminder")
}

func (r *reminderRepository) RecordDose(ctx context.Context, event *model.DoseEvent) error {
	query := `
		INSERT INTO dose_events (id, scope, reminder_id, action, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.Scope, event.ReminderID, event.Action, event.OccurredAt)
	if err != nil {
		return fmt.Errorf("failed to record dose event: %w", err)
	}
	return nil
}

func (r *reminderRepository) ListDoses(ctx context.Context, scope string, reminderID uuid.UUID) ([]*model.DoseEvent, error) {
	query := `
		SELECT * FROM dose_events
		WHERE scope = $1 AND reminder_id = $2
		ORDER BY occurred_at DESC
	`
	var events []*model.DoseEvent
	err := r.db.SelectContext(ctx, &events, query, scope, reminderID)
	return events, err
}

func requireRow(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s not found", entity)
	}
	return nil
}
