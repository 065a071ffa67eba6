package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mediiq/mediiq-api/internal/model"
	"github.com/mediiq/mediiq-api/internal/repository"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetBySubject(ctx context.Context, subject string) (*model.User, error) {
	query := `SELECT * FROM users WHERE subject = $1`
	var user model.User
	err := r.db.GetContext(ctx, &user, query, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// Upsert inserts a user on first sign-in and refreshes provider-sourced
// fields on subsequent ones. Premium and caregiver settings survive.
func (r *userRepository) Upsert(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, subject, display_name, email, avatar_url, premium,
			caregiver_email, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (subject) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			email = EXCLUDED.email,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = EXCLUDED.updated_at
	`
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Subject,
		user.DisplayName,
		user.Email,
		user.AvatarURL,
		user.Premium,
		user.CaregiverEmail,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users SET display_name = $1, caregiver_email = $2, updated_at = $3
		WHERE subject = $4
	`
	user.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		user.DisplayName, user.CaregiverEmail, user.UpdatedAt, user.Subject)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireRow(res, "user")
}

func (r *userRepository) SetPremium(ctx context.Context, subject string, premium bool) error {
	query := `UPDATE users SET premium = $1, updated_at = $2 WHERE subject = $3`
	res, err := r.db.ExecContext(ctx, query, premium, time.Now(), subject)
	if err != nil {
		return fmt.Errorf("failed to set premium flag: %w", err)
	}
	return requireRow(res, "user")
}
