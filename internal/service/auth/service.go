package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/mediiq/mediiq-api/internal/identity"
	"github.com/mediiq/mediiq-api/internal/model"
	"github.com/mediiq/mediiq-api/internal/repository"
	"github.com/mediiq/mediiq-api/pkg/auth"
	apperrors "github.com/mediiq/mediiq-api/pkg/errors"
	"github.com/mediiq/mediiq-api/pkg/logger"
)

type AuthService interface {
	SignIn(ctx context.Context, req *model.SignInRequest) (*model.SignInResponse, error)
	SignOut(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

type Service struct {
	identity identity.Provider
	users    repository.UserRepository
	jwt      auth.JWTService
	// revoked holds signed-out tokens until their natural expiry.
	revoked *gocache.Cache
	logger  *logger.Logger
}

func NewService(
	identityProvider identity.Provider,
	users repository.UserRepository,
	jwtService auth.JWTService,
	logger *logger.Logger,
) *Service {
	return &Service{
		identity: identityProvider,
		users:    users,
		jwt:      jwtService,
		revoked:  gocache.New(24*time.Hour, time.Hour),
		logger:   logger,
	}
}

// SignIn verifies the provider token, upserts the account and issues a
// session token. A failed verification never falls through to guest; the
// client decides whether to continue unauthenticated.
func (s *Service) SignIn(ctx context.Context, req *model.SignInRequest) (*model.SignInResponse, error) {
	ident, err := s.identity.Verify(ctx, req.ProviderToken)
	if err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("identity verification failed: %w", err))
	}

	// A fresh id per sign-in; the upsert keeps the original row id when
	// the subject already exists.
	user := &model.User{
		Base:        model.Base{ID: uuid.New()},
		Subject:     ident.Subject,
		DisplayName: ident.DisplayName,
		Email:       ident.Email,
		AvatarURL:   ident.AvatarURL,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	// Premium comes from the stored account, not the identity provider.
	stored, err := s.users.GetBySubject(ctx, ident.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	token, expiresAt, err := s.jwt.GenerateToken(stored.Subject, stored.DisplayName, stored.Premium)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	s.logger.Info("sign-in", "subject", stored.Subject)
	return &model.SignInResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      stored,
	}, nil
}

// SignOut revokes the session token for the rest of its lifetime.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		// Already invalid, nothing to revoke.
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	s.revoked.Set(token, true, ttl)
	s.logger.Info("sign-out", "subject", claims.Subject)
	return nil
}

// Authenticate validates a session token against signature, expiry and
// the revocation list.
func (s *Service) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	if _, found := s.revoked.Get(token); found {
		return nil, apperrors.Unauthorized(fmt.Errorf("token revoked"))
	}
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	return claims, nil
}
