package storage

import (
	"bytes"
	"context"
	"fmt"

	"go-jobseeker-backend/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Provider represents the S3-compatible storage provider
type S3Provider string

const (
	S3ProviderAWS    S3Provider = "aws"
	S3ProviderWasabi S3Provider = "wasabi"
)

type S3ClientConfig struct {
	Provider        S3Provider
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	// Endpoint overrides the provider endpoint (host only, e.g. "s3.ap-southeast-1.wasabisys.com")
	Endpoint string
}

// WasabiEndpoints maps regions to Wasabi endpoints
var WasabiEndpoints = map[string]string{
	"us-east-1":      "s3.us-east-1.wasabisys.com",
	"us-east-2":      "s3.us-east-2.wasabisys.com",
	"us-west-1":      "s3.us-west-1.wasabisys.com",
	"eu-central-1":   "s3.eu-central-1.wasabisys.com",
	"eu-west-1":      "s3.eu-west-1.wasabisys.com",
	"ap-northeast-1": "s3.ap-northeast-1.wasabisys.com",
	"ap-southeast-1": "s3.ap-southeast-1.wasabisys.com",
	"ap-southeast-2": "s3.ap-southeast-2.wasabisys.com",
}

func (c S3ClientConfig) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	if c.Provider == S3ProviderWasabi {
		if ep, ok := WasabiEndpoints[c.Region]; ok {
			return ep
		}
		return "s3.ap-southeast-1.wasabisys.com"
	}
	return ""
}

// NewS3Client creates an S3 client for AWS or Wasabi.
func NewS3Client(ctx context.Context, cfg S3ClientConfig) (*s3.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := cfg.endpoint()
	if endpoint == "" {
		return s3.NewFromConfig(awsCfg), nil
	}

	// Custom endpoints (Wasabi and friends) need path-style addressing
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String("https://" + endpoint)
		o.UsePathStyle = true
	}), nil
}

// S3Storage stores blobs in a single S3 bucket.
type S3Storage struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

var _ domain.BlobStorage = (*S3Storage)(nil)

func NewS3Storage(ctx context.Context, cfg S3ClientConfig, publicBaseURL string) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket not configured")
	}
	client, err := NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if publicBaseURL == "" {
		if ep := cfg.endpoint(); ep != "" {
			publicBaseURL = fmt.Sprintf("https://%s/%s", ep, cfg.Bucket)
		} else {
			publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &S3Storage{client: client, bucket: cfg.Bucket, publicBaseURL: publicBaseURL}, nil
}

func (s *S3Storage) Upload(ctx context.Context, data []byte, filename, kind string) (*domain.StoredObject, error) {
	key := ObjectKey(kind, filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentTypeFor(data)),
	})
	if err != nil {
		return nil, fmt.Errorf("put object %q: %w", key, err)
	}

	return &domain.StoredObject{URL: PublicURL(s.publicBaseURL, key), StorageID: key}, nil
}

// Delete removes the object; S3 reports success for missing keys.
func (s *S3Storage) Delete(ctx context.Context, storageID string) error {
	if storageID == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageID),
	})
	if err != nil {
		return fmt.Errorf("delete object %q: %w", storageID, err)
	}
	return nil
}
