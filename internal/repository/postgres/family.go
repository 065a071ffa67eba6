package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mediiq/mediiq-api/internal/model"
	"github.com/mediiq/mediiq-api/internal/repository"
)

type familyRepository struct {
	db *sqlx.DB
}

func NewFamilyRepository(db *sqlx.DB) repository.FamilyRepository {
	return &familyRepository{db: db}
}

func (r *familyRepository) Create(ctx context.Context, member *model.FamilyMember) error {
	query := `
		INSERT INTO family_members (
			id, scope, name, relation, age_group, gender, pregnant,
			breastfeeding, language, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	member.CreatedAt = time.Now()
	member.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		member.ID,
		member.Scope,
		member.Name,
		member.Relation,
		member.AgeGroup,
		member.Gender,
		member.Pregnant,
		member.Breastfeeding,
		member.Language,
		member.CreatedAt,
		member.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create family member: %w", err)
	}
	return nil
}

func (r *familyRepository) Get(ctx context.Context, scope string, id uuid.UUID) (*model.FamilyMember, error) {
	query := `SELECT * FROM family_members WHERE scope = $1 AND id = $2`
	var member model.FamilyMember
	err := r.db.GetContext(ctx, &member, query, scope, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get family member: %w", err)
	}
	return &member, nil
}

func (r *familyRepository) GetSelf(ctx context.Context, scope string) (*model.FamilyMember, error) {
	query := `SELECT * FROM family_members WHERE scope = $1 AND relation = $2`
	var member model.FamilyMember
	err := r.db.GetContext(ctx, &member, query, scope, model.SelfRelation)
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *familyRepository) Update(ctx context.Context, member *model.FamilyMember) error {
	query := `
		UPDATE family_members SET
			name = $1, age_group = $2, gender = $3, pregnant = $4,
			breastfeeding = $5, language = $6, updated_at = $7
		WHERE scope = $8 AND id = $9
	`
	member.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		member.Name,
		member.AgeGroup,
		member.Gender,
		member.Pregnant,
		member.Breastfeeding,
		member.Language,
		member.UpdatedAt,
		member.Scope,
		member.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update family member: %w", err)
	}
	return nil
}

// Delete removes exactly one member. The reserved self member is guarded
// at the service layer; the predicate here is a second line of defense.
func (r *familyRepository) Delete(ctx context.Context, scope string, id uuid.UUID) error {
	query := `DELETE FROM family_members WHERE scope = $1 AND id = $2 AND relation <> $3`
	res, err := r.db.ExecContext(ctx, query, scope, id, model.SelfRelation)
	if err != nil {
		return fmt.Errorf("failed to delete family member: %w", err)
	}
	return requireRow(res, "family member")
}

func (r *familyRepository) List(ctx context.Context, scope string) ([]*model.FamilyMember, error) {
	query := `SELECT * FROM family_members WHERE scope = $1 ORDER BY created_at ASC`
	var members []*model.FamilyMember
	err := r.db.SelectContext(ctx, &members, query, scope)
	return members, err
}
