package family

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mediiq/mediiq-api/internal/model"
	"github.com/mediiq/mediiq-api/internal/repository"
	apperrors "github.com/mediiq/mediiq-api/pkg/errors"
	"github.com/mediiq/mediiq-api/pkg/logger"
)

type FamilyService interface {
	Create(ctx context.Context, scope string, req *model.CreateFamilyMemberRequest) (*model.FamilyMember, error)
	Get(ctx context.Context, scope string, id uuid.UUID) (*model.FamilyMember, error)
	Update(ctx context.Context, scope string, id uuid.UUID, req *model.UpdateFamilyMemberRequest) (*model.FamilyMember, error)
	Delete(ctx context.Context, scope string, id uuid.UUID) error
	List(ctx context.Context, scope string) ([]*model.FamilyMember, error)
	EnsureSelf(ctx context.Context, scope, name string) (*model.FamilyMember, error)
}

type Service struct {
	repo   repository.FamilyRepository
	logger *logger.Logger
}

func NewService(repo repository.FamilyRepository, logger *logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Create(ctx context.Context, scope string, req *model.CreateFamilyMemberRequest) (*model.FamilyMember, error) {
	if req.Relation == model.SelfRelation {
		if _, err := s.repo.GetSelf(ctx, scope); err == nil {
			return nil, apperrors.BadRequest("a self member already exists", nil)
		}
	}

	member := &model.FamilyMember{
		Scope:         scope,
		Name:          req.Name,
		Relation:      req.Relation,
		AgeGroup:      model.AgeGroup(req.AgeGroup),
		Gender:        req.Gender,
		Pregnant:      req.Pregnant,
		Breastfeeding: req.Breastfeeding,
		Language:      req.Language,
	}
	member.ID = uuid.New()
	if member.AgeGroup == "" {
		member.AgeGroup = model.AgeGroupAdult
	}
	if err := s.repo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create family member: %w", err)
	}
	return member, nil
}

func (s *Service) Get(ctx context.Context, scope string, id uuid.UUID) (*model.FamilyMember, error) {
	member, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return nil, apperrors.NotFound("family member", err)
	}
	return member, nil
}

func (s *Service) Update(ctx context.Context, scope string, id uuid.UUID, req *model.UpdateFamilyMemberRequest) (*model.FamilyMember, error) {
	member, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return nil, apperrors.NotFound("family member", err)
	}

	if req.Name != nil {
		member.Name = *req.Name
	}
	if req.AgeGroup != nil {
		member.AgeGroup = model.AgeGroup(*req.AgeGroup)
	}
	if req.Gender != nil {
		member.Gender = *req.Gender
	}
	if req.Pregnant != nil {
		member.Pregnant = *req.Pregnant
	}
	if req.Breastfeeding != nil {
		member.Breastfeeding = *req.Breastfeeding
	}
	if req.Language != nil {
		member.Language = *req.Language
	}

	if err := s.repo.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update family member: %w", err)
	}
	return member, nil
}

// Delete removes a member. The self member is protected and cannot be
// removed regardless of how it is addressed.
func (s *Service) Delete(ctx context.Context, scope string, id uuid.UUID) error {
	member, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return apperrors.NotFound("family member", err)
	}
	if member.Relation == model.SelfRelation {
		return apperrors.Forbidden("the self member cannot be deleted", nil)
	}
	if err := s.repo.Delete(ctx, scope, id); err != nil {
		return fmt.Errorf("failed to delete family member: %w", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, scope string) ([]*model.FamilyMember, error) {
	members, err := s.repo.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}
	return members, nil
}

// EnsureSelf returns the scope's self member, creating a default adult
// profile on first use.
func (s *Service) EnsureSelf(ctx context.Context, scope, name string) (*model.FamilyMember, error) {
	member, err := s.repo.GetSelf(ctx, scope)
	if err == nil {
		return member, nil
	}

	if name == "" {
		name = "Me"
	}
	member = &model.FamilyMember{
		Scope:    scope,
		Name:     name,
		Relation: model.SelfRelation,
		AgeGroup: model.AgeGroupAdult,
	}
	member.ID = uuid.New()
	if err := s.repo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create self member: %w", err)
	}
	s.logger.Info("created self member", "scope", scope)
	return member, nil
}
