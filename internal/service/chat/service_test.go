package chat

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediiq/mediiq-api/internal/analysis"
	"github.com/mediiq/mediiq-api/internal/model"
	apperrors "github.com/mediiq/mediiq-api/pkg/errors"
	"github.com/mediiq/mediiq-api/pkg/logger"
	"github.com/mediiq/mediiq-api/pkg/metrics"
)

var testMetrics = metrics.New("chattest")

type fakeChatRepo struct {
	messages []*model.ChatMessage
	usage    map[string]int // scope|date -> count
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{usage: make(map[string]int)}
}

func (f *fakeChatRepo) CreateMessage(ctx context.Context, msg *model.ChatMessage) error {
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeChatRepo) ListMessages(ctx context.Context, scope string, limit int) ([]*model.ChatMessage, error) {
	var out []*model.ChatMessage
	for _, m := range f.messages {
		if m.Scope == scope {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeChatRepo) GetUsage(ctx context.Context, scope, date string) (*model.ChatUsage, error) {
	count, ok := f.usage[scope+"|"+date]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &model.ChatUsage{Scope: scope, Date: date, Count: count}, nil
}

func (f *fakeChatRepo) IncrementUsage(ctx context.Context, scope, date string) (int, error) {
	f.usage[scope+"|"+date]++
	return f.usage[scope+"|"+date], nil
}

type fakeProvider struct {
	reply string
	err   error
	calls int
}

func (f *fakeProvider) AnalyzeMedicine(ctx context.Context, image, mimeType string, profile *model.FamilyMember) (*model.AnalysisResult, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeProvider) Chat(ctx context.Context, history []analysis.Message, profile *model.FamilyMember) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeProvider) Name() string { return "fake" }

type fakeFamilyRepo struct {
	self *model.FamilyMember
}

func (f *fakeFamilyRepo) Create(ctx context.Context, m *model.FamilyMember) error { return nil }

func (f *fakeFamilyRepo) Get(ctx context.Context, scope string, id uuid.UUID) (*model.FamilyMember, error) {
	return nil, sql.ErrNoRows
}

func (f *fakeFamilyRepo) GetSelf(ctx context.Context, scope string) (*model.FamilyMember, error) {
	if f.self == nil {
		return nil, sql.ErrNoRows
	}
	return f.self, nil
}

func (f *fakeFamilyRepo) Update(ctx context.Context, m *model.FamilyMember) error { return nil }

func (f *fakeFamilyRepo) Delete(ctx context.Context, scope string, id uuid.UUID) error { return nil }

func (f *fakeFamilyRepo) List(ctx context.Context, scope string) ([]*model.FamilyMember, error) {
	return nil, nil
}

func newTestService(repo *fakeChatRepo, provider *fakeProvider) *Service {
	s := NewService(repo, &fakeFamilyRepo{}, provider, 10, 20,
		logger.NewLogger(nil), testMetrics)
	s.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local) }
	return s
}

func TestSendReturnsReplyAndDecrementsQuota(t *testing.T) {
	repo := newFakeChatRepo()
	provider := &fakeProvider{reply: "Take it after food."}
	s := newTestService(repo, provider)

	resp, err := s.Send(context.Background(), "guest", false,
		&model.ChatSendRequest{Message: "When should I take metformin?"})
	require.NoError(t, err)
	assert.Equal(t, "Take it after food.", resp.Reply)
	assert.Equal(t, 9, resp.Remaining)
	assert.False(t, resp.Premium)

	// Both turns are persisted in order.
	require.Len(t, repo.messages, 2)
	assert.Equal(t, model.ChatRoleUser, repo.messages[0].Role)
	assert.Equal(t, model.ChatRoleAssistant, repo.messages[1].Role)
}

func TestQuotaGateBlocksEleventhTurn(t *testing.T) {
	repo := newFakeChatRepo()
	repo.usage["guest|2026-03-10"] = 10
	provider := &fakeProvider{reply: "hello"}
	s := newTestService(repo, provider)

	_, err := s.Send(context.Background(), "guest", false,
		&model.ChatSendRequest{Message: "one more"})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrQuotaExceeded, appErr.Code)
	assert.Zero(t, provider.calls, "the provider must not be reached at the limit")
}

func TestProviderErrorDoesNotConsumeQuota(t *testing.T) {
	repo := newFakeChatRepo()
	provider := &fakeProvider{err: errors.New("upstream down")}
	s := newTestService(repo, provider)

	_, err := s.Send(context.Background(), "guest", false,
		&model.ChatSendRequest{Message: "hi"})
	require.Error(t, err)
	assert.Zero(t, repo.usage["guest|2026-03-10"])
	assert.Empty(t, repo.messages)
}

func TestQuotaResetsAtLocalDateRollover(t *testing.T) {
	repo := newFakeChatRepo()
	repo.usage["guest|2026-03-09"] = 10
	provider := &fakeProvider{reply: "fresh day"}
	s := newTestService(repo, provider)

	resp, err := s.Send(context.Background(), "guest", false,
		&model.ChatSendRequest{Message: "morning"})
	require.NoError(t, err)
	assert.Equal(t, 9, resp.Remaining)
}

func TestPremiumIsUnmetered(t *testing.T) {
	repo := newFakeChatRepo()
	repo.usage["user-123|2026-03-10"] = 10
	provider := &fakeProvider{reply: "of course"}
	s := newTestService(repo, provider)

	resp, err := s.Send(context.Background(), "user-123", true,
		&model.ChatSendRequest{Message: "more please"})
	require.NoError(t, err)
	assert.Equal(t, -1, resp.Remaining)
	assert.True(t, resp.Premium)
	assert.Equal(t, 10, repo.usage["user-123|2026-03-10"], "premium turns are not metered")
}

func TestRemaining(t *testing.T) {
	repo := newFakeChatRepo()
	repo.usage["guest|2026-03-10"] = 4
	s := newTestService(repo, &fakeProvider{})

	remaining, err := s.Remaining(context.Background(), "guest", false)
	require.NoError(t, err)
	assert.Equal(t, 6, remaining)

	remaining, err = s.Remaining(context.Background(), "user-123", true)
	require.NoError(t, err)
	assert.Equal(t, -1, remaining)
}

func TestHistoryWindowPassedToProvider(t *testing.T) {
	repo := newFakeChatRepo()
	for i := 0; i < 30; i++ {
		repo.messages = append(repo.messages, &model.ChatMessage{
			ID: uuid.New(), Scope: "guest", Role: model.ChatRoleUser, Content: "older",
		})
	}
	provider := &fakeProvider{reply: "ok"}
	s := newTestService(repo, provider)

	_, err := s.Send(context.Background(), "guest", false,
		&model.ChatSendRequest{Message: "latest"})
	require.NoError(t, err)

	history, err := s.History(context.Background(), "guest")
	require.NoError(t, err)
	assert.Len(t, history, 20)
}
