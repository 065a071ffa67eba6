package model

import (
	"time"

	"github.com/google/uuid"
)

// ScanHistoryLimit bounds the number of retained scan records per scope.
// Inserting past the limit evicts the oldest record.
const ScanHistoryLimit = 20

// AnalysisResult is the structured record returned by the analysis
// provider for a scanned medicine package.
type AnalysisResult struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	PlainExplanation  string   `json:"plain_explanation"`
	Uses              []string `json:"uses"`
	Dosage            string   `json:"dosage"`
	SideEffects       []string `json:"side_effects"`
	Warnings          []string `json:"warnings"`
	ConditionWarnings []string `json:"condition_warnings,omitempty"`
}

type ScanRecord struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	Scope        string          `db:"scope" json:"-"`
	MedicineName string          `db:"medicine_name" json:"medicine_name"`
	MemberID     *uuid.UUID      `db:"member_id" json:"member_id,omitempty"`
	Analysis     *AnalysisResult `db:"-" json:"analysis,omitempty"`
	AnalysisJSON string          `db:"analysis" json:"-"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

type AnalyzeRequest struct {
	Image    string `json:"image" binding:"required"`
	MimeType string `json:"mime_type"`
	MemberID string `json:"member_id"`
}
