package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go-jobseeker-backend/internal/domain"
	"go-jobseeker-backend/internal/usecase"
	"go-jobseeker-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func pdfUpload(name string) domain.ResumeUpload {
	return domain.ResumeUpload{Filename: name, Data: pdfBytes, ClientIP: "203.0.113.7"}
}

func newResumeFixture(t *testing.T, user *domain.User, limiter usecase.UploadGuard) (*memUsers, *memBlobs, domain.ResumeUsecase) {
	t.Helper()
	users := newMemUsers(user)
	blobs := newMemBlobs()
	uc := usecase.NewResumeUsecase(users, blobs, nil, limiter, nil, 1<<20)
	return users, blobs, uc
}

func TestAddResume_FirstIsPrimary(t *testing.T) {
	ctx := context.Background()
	actor := domain.Identity{UserID: "u1"}
	users, blobs, uc := newResumeFixture(t, &domain.User{ID: "u1", Email: "ada@example.com"}, nil)

	updated, err := uc.Add(ctx, actor, "u1", pdfUpload("cv.pdf"))
	require.NoError(t, err)
	require.Len(t, updated.Resumes, 1)

	r := updated.Resumes[0]
	assert.True(t, r.IsPrimary)
	assert.False(t, r.IsDownloadable)
	assert.Equal(t, "cv.pdf", r.Name)
	assert.Equal(t, "PDF", r.Extension)
	assert.Equal(t, "application/pdf", r.MimeType)
	assert.Equal(t, int64(len(pdfBytes)), r.Size)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, r.URL, updated.ResumeURL)

	updated, err = uc.Add(ctx, actor, "u1", pdfUpload("cv2.pdf"))
	require.NoError(t, err)
	require.Len(t, updated.Resumes, 2)
	assert.False(t, updated.Resumes[1].IsPrimary)
	assert.Equal(t, updated.Resumes[1].URL, users.get("u1").ResumeURL, "legacy mirror follows the latest upload")
	assert.Equal(t, 2, blobs.count())
}

func TestAddResume_LimitLeavesNoOrphan(t *testing.T) {
	ctx := context.Background()
	actor := domain.Identity{UserID: "u1"}
	users, blobs, uc := newResumeFixture(t, &domain.User{ID: "u1", Email: "ada@example.com"}, nil)

	for i := 0; i < domain.MaxResumes; i++ {
		_, err := uc.Add(ctx, actor, "u1", pdfUpload(fmt.Sprintf("cv%d.pdf", i)))
		require.NoError(t, err)
	}

	_, err := uc.Add(ctx, actor, "u1", pdfUpload("one-too-many.pdf"))
	require.Error(t, err)
	assert.Equal(t, apperror.KindLimitExceeded, apperror.KindOf(err))
	assert.Len(t, users.get("u1").Resumes, domain.MaxResumes)
	assert.Equal(t, domain.MaxResumes, blobs.count())
}

func TestAddResume_RejectsBadFiles(t *testing.T) {
	ctx := context.Background()
	actor := domain.Identity{UserID: "u1"}
	users, blobs, uc := newResumeFixture(t, &domain.User{ID: "u1", Email: "ada@example.com"}, nil)

	cases := map[string]domain.ResumeUpload{
		"empty":         {Filename: "cv.pdf"},
		"executable":    {Filename: "cv.exe", Data: []byte("MZ\x90\x00")},
		"spoofed pdf":   {Filename: "cv.pdf", Data: []byte("MZ\x90\x00 not a pdf")},
		"exceeds limit": {Filename: "cv.pdf", Data: append(append([]byte{}, pdfBytes...), make([]byte, 1<<20)...)},
	}
	for name, upload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Add(ctx, actor, "u1", upload)
			require.Error(t, err)
			assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))
		})
	}
	assert.Empty(t, users.get("u1").Resumes)
	assert.Zero(t, blobs.count())
}

func TestAddResume_RateLimited(t *testing.T) {
	limiter := new(MockUploadGuard)
	limiter.On("AllowUpload", mock.Anything, "203.0.113.7", "u1").Return(false, 42, nil)
	_, blobs, uc := newResumeFixture(t, &domain.User{ID: "u1", Email: "ada@example.com"}, limiter)

	_, err := uc.Add(context.Background(), domain.Identity{UserID: "u1"}, "u1", pdfUpload("cv.pdf"))
	assert.Equal(t, apperror.KindTooManyRequests, apperror.KindOf(err))
	assert.Zero(t, blobs.count())
	limiter.AssertExpectations(t)
}

func TestAddResume_LimiterBackendDownAllowsUpload(t *testing.T) {
	limiter := new(MockUploadGuard)
	limiter.On("AllowUpload", mock.Anything, "203.0.113.7", "u1").Return(false, 60, errors.New("redis: connection refused"))
	users, blobs, uc := newResumeFixture(t, &domain.User{ID: "u1", Email: "ada@example.com"}, limiter)

	updated, err := uc.Add(context.Background(), domain.Identity{UserID: "u1"}, "u1", pdfUpload("cv.pdf"))
	require.NoError(t, err)
	assert.Len(t, updated.Resumes, 1)
	assert.Len(t, users.get("u1").Resumes, 1)
	assert.Equal(t, 1, blobs.count())
	limiter.AssertExpectations(t)
}

func TestAddResume_StorageFailure(t *testing.T) {
	users, blobs, uc := newResumeFixture(t, &domain.User{ID: "u1", Email: "ada@example.com"}, nil)
	blobs.uploadErr = errors.New("bucket unreachable")

	_, err := uc.Add(context.Background(), domain.Identity{UserID: "u1"}, "u1", pdfUpload("cv.pdf"))
	assert.Equal(t, apperror.KindExternalService, apperror.KindOf(err))
	assert.Empty(t, users.get("u1").Resumes)
}

func TestAddResume_ReplacesLegacyBlob(t *testing.T) {
	_, blobs, uc := newResumeFixture(t, &domain.User{
		ID:              "u1",
		Email:           "ada@example.com",
		ResumeURL:       "https://cdn.test/resumes/legacy.pdf",
		ResumeStorageID: "resumes/legacy.pdf",
	}, nil)

	updated, err := uc.Add(context.Background(), domain.Identity{UserID: "u1"}, "u1", pdfUpload("cv.pdf"))
	require.NoError(t, err)
	assert.NotEqual(t, "resumes/legacy.pdf", updated.ResumeStorageID)
	assert.Contains(t, blobs.deleted, "resumes/legacy.pdf")
}

func TestRemoveResume(t *testing.T) {
	ctx := context.Background()
	actor := domain.Identity{UserID: "u1"}
	users, blobs, uc := newResumeFixture(t, &domain.User{ID: "u1", Email: "ada@example.com"}, nil)

	first, err := uc.Add(ctx, actor, "u1", pdfUpload("a.pdf"))
	require.NoError(t, err)
	_, err = uc.Add(ctx, actor, "u1", pdfUpload("b.pdf"))
	require.NoError(t, err)
	primaryID := first.Resumes[0].ID

	updated, err := uc.Remove(ctx, actor, "u1", primaryID)
	require.NoError(t, err)
	require.Len(t, updated.Resumes, 1)
	assert.False(t, updated.Resumes[0].IsPrimary, "no automatic promotion")
	assert.Equal(t, 1, blobs.count())

	_, err = uc.Remove(ctx, actor, "u1", primaryID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Len(t, users.get("u1").Resumes, 1)

	updated, err = uc.Remove(ctx, actor, "u1", updated.Resumes[0].ID)
	require.NoError(t, err)
	assert.Empty(t, updated.Resumes)
	assert.Empty(t, updated.ResumeURL)
	assert.Zero(t, blobs.count())
}

func TestSetPrimaryAndDownloadable(t *testing.T) {
	ctx := context.Background()
	actor := domain.Identity{UserID: "u1"}
	users, _, uc := newResumeFixture(t, &domain.User{ID: "u1", Email: "ada@example.com"}, nil)

	var ids []string
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		u, err := uc.Add(ctx, actor, "u1", pdfUpload(name))
		require.NoError(t, err)
		ids = append(ids, u.Resumes[len(u.Resumes)-1].ID)
	}

	updated, err := uc.SetPrimary(ctx, actor, "u1", ids[1])
	require.NoError(t, err)
	primaries := 0
	for _, r := range updated.Resumes {
		if r.IsPrimary {
			primaries++
			assert.Equal(t, ids[1], r.ID)
		}
	}
	assert.Equal(t, 1, primaries)

	updated, err = uc.SetDownloadable(ctx, actor, "u1", ids[2], true)
	require.NoError(t, err)
	assert.True(t, updated.Resumes[2].IsDownloadable)
	assert.True(t, users.get("u1").ResumeDownloadable)

	_, err = uc.SetPrimary(ctx, actor, "u1", "missing")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = uc.SetPrimary(ctx, domain.Identity{UserID: "u2"}, "u1", ids[0])
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	list, err := uc.List(ctx, actor, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 3)
}
