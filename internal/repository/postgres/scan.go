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

type scanRepository struct {
	db *sqlx.DB
}

func NewScanRepository(db *sqlx.DB) repository.ScanRepository {
	return &scanRepository{db: db}
}

// Create inserts a record and evicts the oldest entries beyond the
// history limit within the same transaction.
func (r *scanRepository) Create(ctx context.Context, record *model.ScanRecord) error {
	record.CreatedAt = time.Now()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin scan insert: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO scan_records (id, scope, medicine_name, member_id, analysis, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.ExecContext(ctx, insert,
		record.ID, record.Scope, record.MedicineName, record.MemberID,
		record.AnalysisJSON, record.CreatedAt); err != nil {
		return fmt.Errorf("failed to create scan record: %w", err)
	}

	evict := `
		DELETE FROM scan_records
		WHERE scope = $1 AND id NOT IN (
			SELECT id FROM scan_records
			WHERE scope = $1
			ORDER BY created_at DESC
			LIMIT $2
		)
	`
	if _, err := tx.ExecContext(ctx, evict, record.Scope, model.ScanHistoryLimit); err != nil {
		return fmt.Errorf("failed to trim scan history: %w", err)
	}

	return tx.Commit()
}

func (r *scanRepository) Get(ctx context.Context, scope string, id uuid.UUID) (*model.ScanRecord, error) {
	query := `SELECT * FROM scan_records WHERE scope = $1 AND id = $2`
	var record model.ScanRecord
	err := r.db.GetContext(ctx, &record, query, scope, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan record: %w", err)
	}
	return &record, nil
}

// List returns scan records newest-first.
func (r *scanRepository) List(ctx context.Context, scope string) ([]*model.ScanRecord, error) {
	query := `SELECT * FROM scan_records WHERE scope = $1 ORDER BY created_at DESC`
	var records []*model.ScanRecord
	err := r.db.SelectContext(ctx, &records, query, scope)
	return records, err
}

func (r *scanRepository) Delete(ctx context.Context, scope string, id uuid.UUID) error {
	query := `DELETE FROM scan_records WHERE scope = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, query, scope, id)
	if err != nil {
		return fmt.Errorf("failed to delete scan record: %w", err)
	}
	return requireRow(res, "scan record")
}

func (r *scanRepository) DeleteAll(ctx context.Context, scope string) error {
	query := `DELETE FROM scan_records WHERE scope = $1`
	_, err := r.db.ExecContext(ctx, query, scope)
	return err
}
