package usecase

import (
	"context"
	"strings"
	"time"

	"go-jobseeker-backend/internal/domain"
	"go-jobseeker-backend/pkg/apperror"
	"go-jobseeker-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type jobPreferenceUsecase struct {
	users    domain.UserRepository
	validate *validator.Validate
	now      func() time.Time
}

func NewJobPreferenceUsecase(users domain.UserRepository, validate *validator.Validate) domain.JobPreferenceUsecase {
	return &jobPreferenceUsecase{users: users, validate: validate, now: time.Now}
}

func jobRef(jobID string) (string, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return "", apperror.BadRequest("job_id is required")
	}
	if len(jobID) > 128 {
		return "", apperror.BadRequest("job_id is too long")
	}
	return jobID, nil
}

func (u *jobPreferenceUsecase) SaveJob(ctx context.Context, actor domain.Identity, userID, jobID string) (*domain.User, error) {
	if err := requireOwner(actor, userID); err != nil {
		return nil, err
	}
	jobID, err := jobRef(jobID)
	if err != nil {
		return nil, err
	}
	return u.users.AddSavedJob(ctx, userID, jobID)
}

func (u *jobPreferenceUsecase) UnsaveJob(ctx context.Context, actor domain.Identity, userID, jobID string) (*domain.User, error) {
	if err := requireOwner(actor, userID); err != nil {
		return nil, err
	}
	jobID, err := jobRef(jobID)
	if err != nil {
		return nil, err
	}
	return u.users.RemoveSavedJob(ctx, userID, jobID)
}

func (u *jobPreferenceUsecase) category(c domain.NotInterestedCategory) (domain.NotInterestedCategory, error) {
	c.Category = strings.TrimSpace(c.Category)
	c.Subcategory = strings.TrimSpace(c.Subcategory)
	if err := u.validate.Struct(c); err != nil {
		return c, apperror.Validation(validation.FormatValidationErrors(err))
	}
	return c, nil
}

func (u *jobPreferenceUsecase) MarkNotInterested(ctx context.Context, actor domain.Identity, userID string, c domain.NotInterestedCategory) (*domain.User, error) {
	if err := requireOwner(actor, userID); err != nil {
		return nil, err
	}
	c, err := u.category(c)
	if err != nil {
		return nil, err
	}
	return u.users.AddNotInterested(ctx, userID, c)
}

func (u *jobPreferenceUsecase) UnmarkNotInterested(ctx context.Context, actor domain.Identity, userID string, c domain.NotInterestedCategory) (*domain.User, error) {
	if err := requireOwner(actor, userID); err != nil {
		return nil, err
	}
	c, err := u.category(c)
	if err != nil {
		return nil, err
	}
	return u.users.RemoveNotInterested(ctx, userID, c)
}

func (u *jobPreferenceUsecase) RecordApplication(ctx context.Context, actor domain.Identity, userID, jobID string) (*domain.User, error) {
	if err := requireOwner(actor, userID); err != nil {
		return nil, err
	}
	jobID, err := jobRef(jobID)
	if err != nil {
		return nil, err
	}
	return u.users.AddAppliedJob(ctx, userID, domain.AppliedJob{JobID: jobID, AppliedAt: u.now().UTC()})
}
