package family

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediiq/mediiq-api/internal/model"
	apperrors "github.com/mediiq/mediiq-api/pkg/errors"
	"github.com/mediiq/mediiq-api/pkg/logger"
)

type fakeFamilyRepo struct {
	members []*model.FamilyMember
}

func (f *fakeFamilyRepo) Create(ctx context.Context, m *model.FamilyMember) error {
	f.members = append(f.members, m)
	return nil
}

func (f *fakeFamilyRepo) Get(ctx context.Context, scope string, id uuid.UUID) (*model.FamilyMember, error) {
	for _, m := range f.members {
		if m.Scope == scope && m.ID == id {
			return m, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeFamilyRepo) GetSelf(ctx context.Context, scope string) (*model.FamilyMember, error) {
	for _, m := range f.members {
		if m.Scope == scope && m.Relation == model.SelfRelation {
			return m, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeFamilyRepo) Update(ctx context.Context, m *model.FamilyMember) error { return nil }

func (f *fakeFamilyRepo) Delete(ctx context.Context, scope string, id uuid.UUID) error {
	for i, m := range f.members {
		if m.Scope == scope && m.ID == id && m.Relation != model.SelfRelation {
			f.members = append(f.members[:i], f.members[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeFamilyRepo) List(ctx context.Context, scope string) ([]*model.FamilyMember, error) {
	var out []*model.FamilyMember
	for _, m := range f.members {
		if m.Scope == scope {
			out = append(out, m)
		}
	}
	return out, nil
}

func newTestService(repo *fakeFamilyRepo) *Service {
	return NewService(repo, logger.NewLogger(nil))
}

func TestCreateMemberDefaultsToAdult(t *testing.T) {
	s := newTestService(&fakeFamilyRepo{})

	member, err := s.Create(context.Background(), "guest", &model.CreateFamilyMemberRequest{
		Name:     "Appa",
		Relation: "father",
	})
	require.NoError(t, err)
	assert.Equal(t, model.AgeGroupAdult, member.AgeGroup)
	assert.NotEqual(t, uuid.Nil, member.ID)
}

func TestCreateSecondSelfRejected(t *testing.T) {
	repo := &fakeFamilyRepo{}
	s := newTestService(repo)

	_, err := s.EnsureSelf(context.Background(), "guest", "Me")
	require.NoError(t, err)

	_, err = s.Create(context.Background(), "guest", &model.CreateFamilyMemberRequest{
		Name:     "Impostor",
		Relation: model.SelfRelation,
	})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestDeleteSelfForbidden(t *testing.T) {
	repo := &fakeFamilyRepo{}
	s := newTestService(repo)

	self, err := s.EnsureSelf(context.Background(), "guest", "Me")
	require.NoError(t, err)

	err = s.Delete(context.Background(), "guest", self.ID)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrForbidden, appErr.Code)

	// Still present.
	members, err := s.List(context.Background(), "guest")
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestDeleteRegularMember(t *testing.T) {
	repo := &fakeFamilyRepo{}
	s := newTestService(repo)

	member, err := s.Create(context.Background(), "guest", &model.CreateFamilyMemberRequest{
		Name:     "Appa",
		Relation: "father",
	})
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), "guest", member.ID))
	members, err := s.List(context.Background(), "guest")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestEnsureSelfIsIdempotent(t *testing.T) {
	repo := &fakeFamilyRepo{}
	s := newTestService(repo)

	first, err := s.EnsureSelf(context.Background(), "guest", "Asha")
	require.NoError(t, err)
	assert.Equal(t, model.SelfRelation, first.Relation)
	assert.Equal(t, "Asha", first.Name)

	second, err := s.EnsureSelf(context.Background(), "guest", "Someone Else")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "self is created once per scope")
	assert.Len(t, repo.members, 1)
}

func TestUpdateAppliesPartialFields(t *testing.T) {
	repo := &fakeFamilyRepo{}
	s := newTestService(repo)

	member, err := s.Create(context.Background(), "guest", &model.CreateFamilyMemberRequest{
		Name:     "Meera",
		Relation: "sister",
		AgeGroup: "teen",
	})
	require.NoError(t, err)

	ageGroup := "adult"
	pregnant := true
	updated, err := s.Update(context.Background(), "guest", member.ID, &model.UpdateFamilyMemberRequest{
		AgeGroup: &ageGroup,
		Pregnant: &pregnant,
	})
	require.NoError(t, err)
	assert.Equal(t, "Meera", updated.Name, "untouched fields survive")
	assert.Equal(t, model.AgeGroupAdult, updated.AgeGroup)
	assert.True(t, updated.Pregnant)
}
