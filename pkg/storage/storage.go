package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"go-jobseeker-backend/config"
	"go-jobseeker-backend/internal/domain"
	"go-jobseeker-backend/pkg/security"

	"github.com/google/uuid"
)

// New returns the blob storage selected by STORAGE_PROVIDER.
func New(ctx context.Context, cfg *config.Config) (domain.BlobStorage, error) {
	switch cfg.StorageProvider {
	case "minio":
		return NewMinIOStorage(ctx, MinIOConfig{
			Endpoint:        cfg.MinIOEndpoint,
			AccessKeyID:     cfg.MinIOAccessKeyID,
			SecretAccessKey: cfg.MinIOSecretAccessKey,
			Bucket:          cfg.MinIOBucket,
			Region:          cfg.MinIORegion,
			UseSSL:          cfg.MinIOUseSSL,
			PublicBaseURL:   cfg.StoragePublicBaseURL,
		})
	case "s3", "":
		return NewS3Storage(ctx, S3ClientConfig{
			Provider:        S3Provider(cfg.S3Provider),
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
		}, cfg.StoragePublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.StorageProvider)
	}
}

// ObjectKey builds a collision-free key "<kind>/<uuid><ext>" that keeps the
// original extension but none of the client-supplied name.
func ObjectKey(kind, filename string) string {
	kind = strings.Trim(kind, "/")
	if kind == "" {
		kind = "files"
	}
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(kind, uuid.NewString()+ext)
}

// PublicURL joins a public base URL and an object key.
func PublicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

func contentTypeFor(data []byte) string {
	return security.DetectMIME(data)
}
