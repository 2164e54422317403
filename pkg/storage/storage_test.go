package storage

import (
	"context"
	"strings"
	"testing"

	"go-jobseeker-backend/config"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	key := ObjectKey("resumes", "My CV (final).PDF")

	assert.True(t, strings.HasPrefix(key, "resumes/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))
	assert.NotContains(t, key, "My CV")
	assert.NotEqual(t, key, ObjectKey("resumes", "My CV (final).PDF"))

	assert.True(t, strings.HasPrefix(ObjectKey("", "a.txt"), "files/"))
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/resumes/a.pdf", PublicURL("https://cdn.example.com/", "/resumes/a.pdf"))
}

func TestS3ClientConfig_Endpoint(t *testing.T) {
	assert.Equal(t, "", S3ClientConfig{Provider: S3ProviderAWS}.endpoint())
	assert.Equal(t, "s3.eu-west-1.wasabisys.com", S3ClientConfig{Provider: S3ProviderWasabi, Region: "eu-west-1"}.endpoint())
	assert.Equal(t, "minio.local:9000", S3ClientConfig{Endpoint: "minio.local:9000"}.endpoint())
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), &config.Config{StorageProvider: "ftp"})
	assert.Error(t, err)
}
