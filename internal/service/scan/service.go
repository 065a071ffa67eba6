package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mediiq/mediiq-api/internal/analysis"
	"github.com/mediiq/mediiq-api/internal/model"
	"github.com/mediiq/mediiq-api/internal/repository"
	"github.com/mediiq/mediiq-api/pkg/circuitbreaker"
	apperrors "github.com/mediiq/mediiq-api/pkg/errors"
	"github.com/mediiq/mediiq-api/pkg/logger"
	"github.com/mediiq/mediiq-api/pkg/metrics"
)

type ScanService interface {
	Analyze(ctx context.Context, scope string, premium bool, req *model.AnalyzeRequest) (*model.ScanRecord, error)
	ListHistory(ctx context.Context, scope string) ([]*model.ScanRecord, error)
	GetHistory(ctx context.Context, scope string, id uuid.UUID) (*model.ScanRecord, error)
	DeleteHistory(ctx context.Context, scope string, id uuid.UUID) error
	ClearHistory(ctx context.Context, scope string) error
}

type Service struct {
	repo     repository.ScanRepository
	family   repository.FamilyRepository
	provider analysis.Provider
	breaker  *circuitbreaker.CircuitBreaker
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(
	repo repository.ScanRepository,
	family repository.FamilyRepository,
	provider analysis.Provider,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		repo:     repo,
		family:   family,
		provider: provider,
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "analysis-provider",
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		}),
		logger:  logger,
		metrics: metrics,
	}
}

// Analyze identifies the scanned package via the analysis provider and
// records the result in the capped history. Provider failures surface
// once; there is no automatic retry.
func (s *Service) Analyze(ctx context.Context, scope string, premium bool, req *model.AnalyzeRequest) (*model.ScanRecord, error) {
	profile, memberID, err := s.resolveMember(ctx, scope, req.MemberID)
	if err != nil {
		return nil, err
	}

	var result *model.AnalysisResult
	timer := prometheus.NewTimer(s.metrics.AnalysisLatency)
	err = s.breaker.Execute(func() error {
		var callErr error
		result, callErr = s.provider.AnalyzeMedicine(ctx, req.Image, req.MimeType, profile)
		return callErr
	})
	timer.ObserveDuration()
	if err != nil {
		s.metrics.AnalysisRequests.WithLabelValues("error").Inc()
		return nil, apperrors.External("analysis", err)
	}
	s.metrics.AnalysisRequests.WithLabelValues("success").Inc()

	if !premium {
		// Condition-specific warnings are a premium section.
		result.ConditionWarnings = nil
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis: %w", err)
	}

	record := &model.ScanRecord{
		ID:           uuid.New(),
		Scope:        scope,
		MedicineName: result.Name,
		MemberID:     memberID,
		Analysis:     result,
		AnalysisJSON: string(payload),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record scan: %w", err)
	}
	return record, nil
}

func (s *Service) ListHistory(ctx context.Context, scope string) ([]*model.ScanRecord, error) {
	records, err := s.repo.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list scan history: %w", err)
	}
	for _, record := range records {
		s.unmarshalAnalysis(record)
	}
	return records, nil
}

func (s *Service) GetHistory(ctx context.Context, scope string, id uuid.UUID) (*model.ScanRecord, error) {
	record, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return nil, apperrors.NotFound("scan record", err)
	}
	s.unmarshalAnalysis(record)
	return record, nil
}

func (s *Service) DeleteHistory(ctx context.Context, scope string, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, scope, id); err != nil {
		return apperrors.NotFound("scan record", err)
	}
	return nil
}

func (s *Service) ClearHistory(ctx context.Context, scope string) error {
	if err := s.repo.DeleteAll(ctx, scope); err != nil {
		return fmt.Errorf("failed to clear scan history: %w", err)
	}
	return nil
}

// unmarshalAnalysis decodes the stored payload; malformed data degrades
// silently to an empty analysis.
func (s *Service) unmarshalAnalysis(record *model.ScanRecord) {
	if record.AnalysisJSON == "" {
		return
	}
	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(record.AnalysisJSON), &result); err != nil {
		s.logger.Warn("malformed stored analysis, dropping payload",
			"scan_id", record.ID.String())
		return
	}
	record.Analysis = &result
}

func (s *Service) resolveMember(ctx context.Context, scope, memberID string) (*model.FamilyMember, *uuid.UUID, error) {
	if memberID == "" {
		member, err := s.family.GetSelf(ctx, scope)
		if err != nil {
			// No profile yet; analysis proceeds with a generic one.
			return nil, nil, nil
		}
		return member, &member.ID, nil
	}

	id, err := uuid.Parse(memberID)
	if err != nil {
		return nil, nil, apperrors.BadRequest("invalid member ID", err)
	}
	member, err := s.family.Get(ctx, scope, id)
	if err != nil {
		return nil, nil, apperrors.NotFound("family member", err)
	}
	return member, &member.ID, nil
}
