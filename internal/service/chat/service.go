package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mediiq/mediiq-api/internal/analysis"
	"github.com/mediiq/mediiq-api/internal/model"
	"github.com/mediiq/mediiq-api/internal/repository"
	apperrors "github.com/mediiq/mediiq-api/pkg/errors"
	"github.com/mediiq/mediiq-api/pkg/logger"
	"github.com/mediiq/mediiq-api/pkg/metrics"
)

type ChatService interface {
	Send(ctx context.Context, scope string, premium bool, req *model.ChatSendRequest) (*model.ChatSendResponse, error)
	History(ctx context.Context, scope string) ([]*model.ChatMessage, error)
	Remaining(ctx context.Context, scope string, premium bool) (int, error)
}

type Service struct {
	repo       repository.ChatRepository
	family     repository.FamilyRepository
	provider   analysis.Provider
	dailyQuota int
	window     int
	logger     *logger.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewService(
	repo repository.ChatRepository,
	family repository.FamilyRepository,
	provider analysis.Provider,
	dailyQuota, historyWindow int,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		repo:       repo,
		family:     family,
		provider:   provider,
		dailyQuota: dailyQuota,
		window:     historyWindow,
		logger:     logger,
		metrics:    metrics,
		now:        time.Now,
	}
}

// Send runs one assistant turn. The quota gate sits before the provider
// call: a non-premium scope at its daily limit never reaches the
// provider, and a failed provider call does not consume quota.
func (s *Service) Send(ctx context.Context, scope string, premium bool, req *model.ChatSendRequest) (*model.ChatSendResponse, error) {
	if !premium {
		usage, err := s.repo.GetUsage(ctx, scope, s.today())
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to read chat usage: %w", err)
		}
		if usage != nil && usage.Count >= s.dailyQuota {
			s.metrics.ChatRequests.WithLabelValues("quota_exceeded").Inc()
			return nil, apperrors.QuotaExceeded("daily chat limit reached")
		}
	}

	history, err := s.recentHistory(ctx, scope)
	if err != nil {
		return nil, err
	}
	history = append(history, analysis.Message{Role: model.ChatRoleUser, Content: req.Message})

	profile, _ := s.family.GetSelf(ctx, scope)

	reply, err := s.provider.Chat(ctx, history, profile)
	if err != nil {
		s.metrics.ChatRequests.WithLabelValues("error").Inc()
		return nil, apperrors.External("chat", err)
	}
	s.metrics.ChatRequests.WithLabelValues("success").Inc()

	if err := s.persistTurn(ctx, scope, req.Message, reply); err != nil {
		s.logger.Error(err, "failed to persist chat turn", "scope", scope)
	}

	remaining := -1
	if !premium {
		count, err := s.repo.IncrementUsage(ctx, scope, s.today())
		if err != nil {
			return nil, fmt.Errorf("failed to record chat usage: %w", err)
		}
		remaining = s.dailyQuota - count
		if remaining < 0 {
			remaining = 0
		}
	}

	return &model.ChatSendResponse{
		Reply:     reply,
		Remaining: remaining,
		Premium:   premium,
	}, nil
}

func (s *Service) History(ctx context.Context, scope string) ([]*model.ChatMessage, error) {
	messages, err := s.repo.ListMessages(ctx, scope, s.window)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat history: %w", err)
	}
	return messages, nil
}

// Remaining reports turns left today. Premium scopes report -1, meaning
// unmetered.
func (s *Service) Remaining(ctx context.Context, scope string, premium bool) (int, error) {
	if premium {
		return -1, nil
	}
	usage, err := s.repo.GetUsage(ctx, scope, s.today())
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to read chat usage: %w", err)
	}
	used := 0
	if usage != nil {
		used = usage.Count
	}
	remaining := s.dailyQuota - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (s *Service) recentHistory(ctx context.Context, scope string) ([]analysis.Message, error) {
	messages, err := s.repo.ListMessages(ctx, scope, s.window)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	out := make([]analysis.Message, 0, len(messages)+1)
	for _, msg := range messages {
		out = append(out, analysis.Message{Role: msg.Role, Content: msg.Content})
	}
	return out, nil
}

func (s *Service) persistTurn(ctx context.Context, scope, userMsg, reply string) error {
	turn := []*model.ChatMessage{
		{ID: uuid.New(), Scope: scope, Role: model.ChatRoleUser, Content: userMsg},
		{ID: uuid.New(), Scope: scope, Role: model.ChatRoleAssistant, Content: reply},
	}
	for _, msg := range turn {
		if err := s.repo.CreateMessage(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// today is the local calendar date, which is also the quota rollover
// boundary.
func (s *Service) today() string {
	return s.now().Format("2006-01-02")
}
