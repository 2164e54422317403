package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"go-jobseeker-backend/internal/domain"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	UseSSL          bool
	PublicBaseURL   string
}

// MinIOStorage stores blobs in a MinIO bucket, creating it on first use.
type MinIOStorage struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

var _ domain.BlobStorage = (*MinIOStorage)(nil)

func NewMinIOStorage(ctx context.Context, cfg MinIOConfig) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
		}
	}

	base := cfg.PublicBaseURL
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &MinIOStorage{client: client, bucket: cfg.Bucket, publicBaseURL: base}, nil
}

func (m *MinIOStorage) Upload(ctx context.Context, data []byte, filename, kind string) (*domain.StoredObject, error) {
	key := ObjectKey(kind, filename)

	opts := minio.PutObjectOptions{ContentType: contentTypeFor(data)}
	if _, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return nil, fmt.Errorf("put object %q: %w", key, err)
	}

	return &domain.StoredObject{URL: PublicURL(m.publicBaseURL, key), StorageID: key}, nil
}

// Delete is idempotent: a missing object counts as deleted.
func (m *MinIOStorage) Delete(ctx context.Context, storageID string) error {
	storageID = strings.TrimSpace(storageID)
	if storageID == "" {
		return nil
	}
	if err := m.client.RemoveObject(ctx, m.bucket, storageID, minio.RemoveObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("remove object %q: %w", storageID, err)
	}
	return nil
}
