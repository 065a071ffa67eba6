package auth

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediiq/mediiq-api/internal/model"
	"github.com/mediiq/mediiq-api/pkg/auth"
	apperrors "github.com/mediiq/mediiq-api/pkg/errors"
	"github.com/mediiq/mediiq-api/pkg/logger"
)

type fakeIdentity struct {
	identities map[string]*model.Identity
}

func (f *fakeIdentity) Verify(ctx context.Context, providerToken string) (*model.Identity, error) {
	if ident, ok := f.identities[providerToken]; ok {
		return ident, nil
	}
	return nil, fmt.Errorf("token rejected")
}

type fakeUserRepo struct {
	users    map[string]*model.User
	upserted []*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (f *fakeUserRepo) GetBySubject(ctx context.Context, subject string) (*model.User, error) {
	if u, ok := f.users[subject]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) Upsert(ctx context.Context, user *model.User) error {
	f.upserted = append(f.upserted, user)
	if existing, ok := f.users[user.Subject]; ok {
		existing.DisplayName = user.DisplayName
		existing.Email = user.Email
		existing.AvatarURL = user.AvatarURL
		return nil
	}
	f.users[user.Subject] = user
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	f.users[user.Subject] = user
	return nil
}

func (f *fakeUserRepo) SetPremium(ctx context.Context, subject string, premium bool) error {
	u, ok := f.users[subject]
	if !ok {
		return sql.ErrNoRows
	}
	u.Premium = premium
	return nil
}

type fakeJWT struct {
	issued map[string]*auth.Claims
}

func newFakeJWT() *fakeJWT {
	return &fakeJWT{issued: map[string]*auth.Claims{}}
}

func (f *fakeJWT) GenerateToken(subject, displayName string, premium bool) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Hour)
	token := "session-" + subject
	f.issued[token] = &auth.Claims{
		Subject:     subject,
		DisplayName: displayName,
		Premium:     premium,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return token, expiresAt, nil
}

func (f *fakeJWT) ValidateToken(token string) (*auth.Claims, error) {
	if claims, ok := f.issued[token]; ok {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func newTestService(identities map[string]*model.Identity, repo *fakeUserRepo) *Service {
	return NewService(&fakeIdentity{identities: identities}, repo, newFakeJWT(), logger.NewLogger(nil))
}

func TestSignInAssignsAccountID(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(map[string]*model.Identity{
		"tok-a": {Subject: "user-a", DisplayName: "Asha"},
		"tok-b": {Subject: "user-b", DisplayName: "Ben"},
	}, repo)

	_, err := svc.SignIn(context.Background(), &model.SignInRequest{ProviderToken: "tok-a"})
	require.NoError(t, err)
	_, err = svc.SignIn(context.Background(), &model.SignInRequest{ProviderToken: "tok-b"})
	require.NoError(t, err)

	require.Len(t, repo.upserted, 2)
	assert.NotEqual(t, uuid.Nil, repo.upserted[0].ID)
	assert.NotEqual(t, uuid.Nil, repo.upserted[1].ID)
	assert.NotEqual(t, repo.upserted[0].ID, repo.upserted[1].ID)
}

func TestSignInIssuesSessionForVerifiedIdentity(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(map[string]*model.Identity{
		"tok-a": {Subject: "user-a", DisplayName: "Asha", Email: "asha@example.com"},
	}, repo)

	resp, err := svc.SignIn(context.Background(), &model.SignInRequest{ProviderToken: "tok-a"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "user-a", resp.User.Subject)
	assert.True(t, resp.ExpiresAt.After(time.Now()))
}

func TestSignInRejectsUnverifiableToken(t *testing.T) {
	svc := newTestService(map[string]*model.Identity{}, newFakeUserRepo())

	_, err := svc.SignIn(context.Background(), &model.SignInRequest{ProviderToken: "bogus"})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)
}

func TestSignInPremiumComesFromStoredAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(map[string]*model.Identity{
		"tok-a": {Subject: "user-a", DisplayName: "Asha"},
	}, repo)

	_, err := svc.SignIn(context.Background(), &model.SignInRequest{ProviderToken: "tok-a"})
	require.NoError(t, err)
	require.NoError(t, repo.SetPremium(context.Background(), "user-a", true))

	resp, err := svc.SignIn(context.Background(), &model.SignInRequest{ProviderToken: "tok-a"})
	require.NoError(t, err)
	assert.True(t, resp.User.Premium)
}

func TestSignOutRevokesSession(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(map[string]*model.Identity{
		"tok-a": {Subject: "user-a", DisplayName: "Asha"},
	}, repo)

	resp, err := svc.SignIn(context.Background(), &model.SignInRequest{ProviderToken: "tok-a"})
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), resp.Token)
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(context.Background(), resp.Token))

	_, err = svc.Authenticate(context.Background(), resp.Token)
	require.Error(t, err)
}
