package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go-jobseeker-backend/internal/domain"
	"go-jobseeker-backend/pkg/apperror"
	"go-jobseeker-backend/pkg/logger"
	"go-jobseeker-backend/pkg/security"
	"go-jobseeker-backend/pkg/security/antivirus"

	"github.com/google/uuid"
)

const resumeBlobKind = "resumes"

// UploadGuard throttles uploads per client IP and per user.
type UploadGuard interface {
	AllowUpload(ctx context.Context, ip, userID string) (bool, int, error)
}

type resumeUsecase struct {
	users    domain.UserRepository
	blobs    domain.BlobStorage
	scanner  antivirus.Scanner
	limiter  UploadGuard
	secLog   *security.SecurityLogger
	maxBytes int64

	now   func() time.Time
	newID func() string
}

func NewResumeUsecase(
	users domain.UserRepository,
	blobs domain.BlobStorage,
	scanner antivirus.Scanner,
	limiter UploadGuard,
	secLog *security.SecurityLogger,
	maxBytes int64,
) domain.ResumeUsecase {
	if scanner == nil {
		scanner = antivirus.NewNoOpScanner()
	}
	if secLog == nil {
		secLog = security.NopSecurityLogger()
	}
	return &resumeUsecase{
		users:    users,
		blobs:    blobs,
		scanner:  scanner,
		limiter:  limiter,
		secLog:   secLog,
		maxBytes: maxBytes,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func resumeErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrResumeNotFound):
		return apperror.NotFound("Resume not found")
	case errors.Is(err, domain.ErrResumeLimit):
		return apperror.LimitExceeded(fmt.Sprintf("A maximum of %d resumes is allowed, delete one before uploading", domain.MaxResumes))
	default:
		return err
	}
}

func (u *resumeUsecase) List(ctx context.Context, actor domain.Identity, userID string) ([]domain.Resume, error) {
	if err := requireOwner(actor, userID); err != nil {
		return nil, err
	}
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Resumes == nil {
		return []domain.Resume{}, nil
	}
	return user.Resumes, nil
}

// checkUpload applies size, rate, content and malware checks before anything
// is stored.
func (u *resumeUsecase) checkUpload(ctx context.Context, userID string, upload domain.ResumeUpload) (security.FileValidationResult, error) {
	var none security.FileValidationResult

	if len(upload.Data) == 0 {
		return none, apperror.BadRequest("File is empty")
	}
	if u.maxBytes > 0 && int64(len(upload.Data)) > u.maxBytes {
		return none, apperror.BadRequest(fmt.Sprintf("File exceeds the maximum size of %d bytes", u.maxBytes))
	}

	if u.limiter != nil {
		allowed, retryAfter, err := u.limiter.AllowUpload(ctx, upload.ClientIP, userID)
		// A failing limiter backend fails open; the per-IP route limit still applies.
		if err != nil {
			logger.Log.Warn("upload limiter failed, allowing upload", "error", err, "user_id", userID)
		} else if !allowed {
			u.secLog.LogUploadRejected(ctx, userID, upload.ClientIP, "rate_limited")
			return none, apperror.TooManyRequests("Too many uploads, try again later").
				WithDetails(map[string]int{"retry_after_seconds": retryAfter})
		}
	}

	result := security.ValidateFile(upload.Filename, upload.Data)
	if !result.Valid {
		u.secLog.LogUploadRejected(ctx, userID, upload.ClientIP, result.Error)
		return none, apperror.BadRequest("Invalid resume file: " + result.Error).
			WithDetails(map[string][]string{"allowed_extensions": security.GetAllowedExtensions()})
	}

	scan := u.scanner.Scan(ctx, upload.Filename, bytes.NewReader(upload.Data))
	if scan.Error != nil {
		return none, apperror.ExternalService("Virus scan is unavailable", scan.Error)
	}
	if scan.Infected {
		u.secLog.LogUploadRejected(ctx, userID, upload.ClientIP, "malware:"+scan.ThreatName)
		return none, apperror.BadRequest("File rejected by virus scan")
	}

	return result, nil
}

func (u *resumeUsecase) Add(ctx context.Context, actor domain.Identity, userID string, upload domain.ResumeUpload) (*domain.User, error) {
	if err := requireOwner(actor, userID); err != nil {
		return nil, err
	}

	checked, err := u.checkUpload(ctx, userID, upload)
	if err != nil {
		return nil, err
	}

	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	// Checked before the upload so a full list never leaves an orphaned blob
	if len(user.Resumes) >= domain.MaxResumes {
		return nil, resumeErr(domain.ErrResumeLimit)
	}

	stored, err := u.blobs.Upload(ctx, upload.Data, upload.Filename, resumeBlobKind)
	if err != nil {
		return nil, apperror.ExternalService("Failed to store resume file", err)
	}

	entry := domain.Resume{
		ID:         u.newID(),
		Name:       filepath.Base(upload.Filename),
		URL:        stored.URL,
		StorageID:  stored.StorageID,
		Size:       int64(len(upload.Data)),
		MimeType:   checked.DetectedMIME,
		Extension:  domain.ResumeExtension(upload.Filename),
		UploadedAt: u.now().UTC(),
	}

	legacyID := user.ResumeStorageID
	list, err := domain.AppendResume(user.Resumes, entry)
	if err != nil {
		u.deleteBlob(ctx, stored.StorageID)
		return nil, resumeErr(err)
	}
	user.Resumes = list
	user.MirrorLatestResume()

	if err := u.users.UpdateResumes(ctx, user); err != nil {
		u.deleteBlob(ctx, stored.StorageID)
		return nil, err
	}

	// A pre-list legacy résumé is superseded by the new upload
	if legacyID != "" && !user.ReferencesStorage(legacyID) {
		u.deleteBlob(ctx, legacyID)
	}

	return user, nil
}

func (u *resumeUsecase) Remove(ctx context.Context, actor domain.Identity, userID, resumeID string) (*domain.User, error) {
	if err := requireOwner(actor, userID); err != nil {
		return nil, err
	}

	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	list, removed, err := domain.RemoveResume(user.Resumes, resumeID)
	if err != nil {
		return nil, resumeErr(err)
	}
	user.Resumes = list
	user.MirrorLatestResume()

	if err := u.users.UpdateResumes(ctx, user); err != nil {
		return nil, err
	}

	u.deleteBlob(ctx, removed.StorageID)
	return user, nil
}

func (u *resumeUsecase) SetPrimary(ctx context.Context, actor domain.Identity, userID, resumeID string) (*domain.User, error) {
	return u.rewrite(ctx, actor, userID, func(list []domain.Resume) ([]domain.Resume, error) {
		return domain.SetPrimaryResume(list, resumeID)
	})
}

func (u *resumeUsecase) SetDownloadable(ctx context.Context, actor domain.Identity, userID, resumeID string, downloadable bool) (*domain.User, error) {
	return u.rewrite(ctx, actor, userID, func(list []domain.Resume) ([]domain.Resume, error) {
		return domain.SetResumeDownloadable(list, resumeID, downloadable)
	})
}

// rewrite applies a pure list transformation and stores the result in one
// version-guarded write.
func (u *resumeUsecase) rewrite(ctx context.Context, actor domain.Identity, userID string, change func([]domain.Resume) ([]domain.Resume, error)) (*domain.User, error) {
	if err := requireOwner(actor, userID); err != nil {
		return nil, err
	}

	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	list, err := change(user.Resumes)
	if err != nil {
		return nil, resumeErr(err)
	}
	user.Resumes = list
	user.MirrorLatestResume()

	if err := u.users.UpdateResumes(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// deleteBlob never fails the caller; errors are only logged.
func (u *resumeUsecase) deleteBlob(ctx context.Context, storageID string) {
	if storageID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := u.blobs.Delete(ctx, storageID); err != nil {
		logger.Log.Warn("blob delete failed", "storage_id", storageID, "error", err)
	}
}
