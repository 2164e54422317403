package usecase_test

import (
	"context"
	"testing"

	"go-jobseeker-backend/internal/domain"
	"go-jobseeker-backend/internal/usecase"
	"go-jobseeker-backend/pkg/apperror"
	"go-jobseeker-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavedJobs(t *testing.T) {
	ctx := context.Background()
	actor := domain.Identity{UserID: "u1"}
	users := newMemUsers(&domain.User{ID: "u1", Email: "ada@example.com"})
	uc := usecase.NewJobPreferenceUsecase(users, validation.New())

	_, err := uc.SaveJob(ctx, actor, "u1", "job-1")
	require.NoError(t, err)
	updated, err := uc.SaveJob(ctx, actor, "u1", "job-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"job-1"}, updated.SavedJobs)

	updated, err = uc.UnsaveJob(ctx, actor, "u1", "job-1")
	require.NoError(t, err)
	assert.Empty(t, updated.SavedJobs)

	_, err = uc.SaveJob(ctx, actor, "u1", "  ")
	assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))

	_, err = uc.SaveJob(ctx, domain.Identity{UserID: "u2"}, "u1", "job-2")
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}

func TestNotInterestedCategories(t *testing.T) {
	ctx := context.Background()
	actor := domain.Identity{UserID: "u1"}
	users := newMemUsers(&domain.User{ID: "u1", Email: "ada@example.com"})
	uc := usecase.NewJobPreferenceUsecase(users, validation.New())

	c := domain.NotInterestedCategory{Category: "Sales", Subcategory: "Retail"}
	_, err := uc.MarkNotInterested(ctx, actor, "u1", c)
	require.NoError(t, err)
	_, err = uc.MarkNotInterested(ctx, actor, "u1", domain.NotInterestedCategory{Category: " Sales ", Subcategory: "Retail"})
	require.NoError(t, err)
	updated, err := uc.MarkNotInterested(ctx, actor, "u1", domain.NotInterestedCategory{Category: "Sales"})
	require.NoError(t, err)
	assert.Len(t, updated.NotInterestedJobCategories, 2, "pairs are deduplicated")

	updated, err = uc.UnmarkNotInterested(ctx, actor, "u1", c)
	require.NoError(t, err)
	assert.Equal(t, []domain.NotInterestedCategory{{Category: "Sales"}}, updated.NotInterestedJobCategories)

	_, err = uc.MarkNotInterested(ctx, actor, "u1", domain.NotInterestedCategory{})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestRecordApplication(t *testing.T) {
	ctx := context.Background()
	actor := domain.Identity{UserID: "u1"}
	users := newMemUsers(&domain.User{ID: "u1", Email: "ada@example.com"})
	uc := usecase.NewJobPreferenceUsecase(users, validation.New())

	updated, err := uc.RecordApplication(ctx, actor, "u1", "job-9")
	require.NoError(t, err)
	require.Len(t, updated.AppliedJobs, 1)
	assert.Equal(t, "job-9", updated.AppliedJobs[0].JobID)
	assert.False(t, updated.AppliedJobs[0].AppliedAt.IsZero())

	updated, err = uc.RecordApplication(ctx, actor, "u1", "job-9")
	require.NoError(t, err)
	assert.Len(t, updated.AppliedJobs, 1)
}
