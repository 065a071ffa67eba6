package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mediiq/mediiq-api/internal/model"
)

// All repository interfaces in one file
type (
	// ReminderRepository handles reminder persistence; every operation is
	// scoped to one account namespace and writes are immediate.
	ReminderRepository interface {
		Create(ctx context.Context, reminder *model.Reminder) error
		Get(ctx context.Context, scope string, id uuid.UUID) (*model.Reminder, error)
		Update(ctx context.Context, reminder *model.Reminder) error
		Delete(ctx context.Context, scope string, id uuid.UUID) error
		List(ctx context.Context, scope string) ([]*model.Reminder, error)
		ListActive(ctx context.Context) ([]*model.Reminder, error)
		SetActive(ctx context.Context, scope string, id uuid.UUID, active bool) error
		SetSnoozedUntil(ctx context.Context, scope string, id uuid.UUID, until *time.Time) error
		RecordDose(ctx context.Context, event *model.DoseEvent) error
		ListDoses(ctx context.Context, scope string, reminderID uuid.UUID) ([]*model.DoseEvent, error)
	}

	ScanRepository interface {
		Create(ctx context.Context, record *model.ScanRecord) error
		Get(ctx context.Context, scope string, id uuid.UUID) (*model.ScanRecord, error)
		List(ctx context.Context, scope string) ([]*model.ScanRecord, error)
		Delete(ctx context.Context, scope string, id uuid.UUID) error
		DeleteAll(ctx context.Context, scope string) error
	}

	FamilyRepository interface {
		Create(ctx context.Context, member *model.FamilyMember) error
		Get(ctx context.Context, scope string, id uuid.UUID) (*model.FamilyMember, error)
		GetSelf(ctx context.Context, scope string) (*model.FamilyMember, error)
		Update(ctx context.Context, member *model.FamilyMember) error
		Delete(ctx context.Context, scope string, id uuid.UUID) error
		List(ctx context.Context, scope string) ([]*model.FamilyMember, error)
	}

	UserRepository interface {
		GetBySubject(ctx context.Context, subject string) (*model.User, error)
		Upsert(ctx context.Context, user *model.User) error
		Update(ctx context.Context, user *model.User) error
		SetPremium(ctx context.Context, subject string, premium bool) error
	}

	ChatRepository interface {
		CreateMessage(ctx context.Context, msg *model.ChatMessage) error
		ListMessages(ctx context.Context, scope string, limit int) ([]*model.ChatMessage, error)
		GetUsage(ctx context.Context, scope, date string) (*model.ChatUsage, error)
		IncrementUsage(ctx context.Context, scope, date string) (int, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
