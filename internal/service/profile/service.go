package profile

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/mediiq/mediiq-api/internal/model"
	"github.com/mediiq/mediiq-api/internal/repository"
	apperrors "github.com/mediiq/mediiq-api/pkg/errors"
	"github.com/mediiq/mediiq-api/pkg/logger"
)

const premiumCacheTTL = time.Minute

type ProfileService interface {
	Get(ctx context.Context, subject string) (*model.User, error)
	Update(ctx context.Context, subject string, req *model.UpdateProfileRequest) (*model.User, error)
	IsPremium(ctx context.Context, subject string) bool
	SetPremium(ctx context.Context, subject string, premium bool) error
}

type Service struct {
	repo   repository.UserRepository
	cache  *gocache.Cache
	logger *logger.Logger
}

func NewService(repo repository.UserRepository, logger *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  gocache.New(premiumCacheTTL, 5*time.Minute),
		logger: logger,
	}
}

func (s *Service) Get(ctx context.Context, subject string) (*model.User, error) {
	user, err := s.repo.GetBySubject(ctx, subject)
	if err != nil {
		return nil, apperrors.NotFound("profile", err)
	}
	return user, nil
}

func (s *Service) Update(ctx context.Context, subject string, req *model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.repo.GetBySubject(ctx, subject)
	if err != nil {
		return nil, apperrors.NotFound("profile", err)
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}
	if req.CaregiverEmail != nil {
		user.CaregiverEmail = *req.CaregiverEmail
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// IsPremium resolves the premium flag with a short-lived cache in front
// of the store. The guest scope has no account and is never premium.
func (s *Service) IsPremium(ctx context.Context, subject string) bool {
	if subject == model.GuestScope {
		return false
	}
	if cached, found := s.cache.Get(subject); found {
		return cached.(bool)
	}

	user, err := s.repo.GetBySubject(ctx, subject)
	if err != nil {
		return false
	}
	s.cache.Set(subject, user.Premium, premiumCacheTTL)
	return user.Premium
}

// SetPremium flips the premium flag. Reserved for the admin surface.
func (s *Service) SetPremium(ctx context.Context, subject string, premium bool) error {
	if err := s.repo.SetPremium(ctx, subject, premium); err != nil {
		return apperrors.NotFound("profile", err)
	}
	s.cache.Set(subject, premium, premiumCacheTTL)
	s.logger.Info("premium flag updated", "subject", subject, "premium", premium)
	return nil
}
