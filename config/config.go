package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	AppEnv      string
	LogLevel    string
	DBUrl       string
	FrontendURL string
	// Access tokens
	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration
	// Password reset
	ResetCodeTTL time.Duration
	// ResetMaxAttempts wrong codes discard the pending reset code
	ResetMaxAttempts int
	// SMTP Configuration
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitLoginThreshold  int
	RateLimitGlobalThreshold int
	RateLimitUploadThreshold int
	FailedLoginBlockMinutes  int
	FailedLoginMaxAttempts   int
	UploadsPerMinute         int
	UploadsPerDay            int
	// Blob storage
	StorageProvider      string // "s3" or "minio"
	StoragePublicBaseURL string
	S3Provider           string // "aws" or "wasabi"
	S3AccessKeyID        string
	S3SecretAccessKey    string
	S3Region             string
	S3Bucket             string
	S3Endpoint           string
	MinIOEndpoint        string
	MinIOAccessKeyID     string
	MinIOSecretAccessKey string
	MinIOBucket          string
	MinIOUseSSL          bool
	MinIORegion          string
	// Uploads
	ResumeMaxBytes int64
	ClamAVAddress  string
	// Domain registry reconciliation, 0 disables the background job
	DomainReconcileInterval time.Duration
	// Security logging
	SecurityServiceName   string
	PersistSecurityEvents bool
}

func LoadConfig() (*Config, error) {
	// Only effective locally; ignored in production when the file is absent
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		AppEnv:      getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "debug"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		// Access tokens (default lifetime 7 days)
		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "jobseeker-backend"),
		JWTTTL:    time.Duration(getEnvInt("JWT_TTL_HOURS", 168)) * time.Hour,
		// Password reset
		ResetCodeTTL:     time.Duration(getEnvInt("RESET_CODE_TTL_MINUTES", 15)) * time.Minute,
		ResetMaxAttempts: getEnvInt("RESET_CODE_MAX_ATTEMPTS", 5),
		// SMTP Configuration
		SMTPHost:      getEnv("SMTP_HOST", "smtp-relay.brevo.com"),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", "noreply@jobseeker.local"),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Rate Limiting Configuration
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitLoginThreshold:  getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 10),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		RateLimitUploadThreshold: getEnvInt("RATE_LIMIT_UPLOAD_THRESHOLD", 20),
		FailedLoginBlockMinutes:  getEnvInt("FAILED_LOGIN_BLOCK_MINUTES", 15),
		FailedLoginMaxAttempts:   getEnvInt("FAILED_LOGIN_MAX_ATTEMPTS", 5),
		UploadsPerMinute:         getEnvInt("UPLOADS_PER_MINUTE", 10),
		UploadsPerDay:            getEnvInt("UPLOADS_PER_DAY", 50),
		// Blob storage
		StorageProvider:      strings.ToLower(getEnv("STORAGE_PROVIDER", "s3")),
		StoragePublicBaseURL: strings.TrimRight(getEnv("STORAGE_PUBLIC_BASE_URL", ""), "/"),
		S3Provider:           getEnv("S3_PROVIDER", "aws"),
		S3AccessKeyID:        getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey:    getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Region:             getEnv("S3_REGION", "ap-southeast-1"),
		S3Bucket:             getEnv("S3_BUCKET", "resumes"),
		S3Endpoint:           getEnv("S3_ENDPOINT", ""),
		MinIOEndpoint:        getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKeyID:     getEnv("MINIO_ACCESS_KEY_ID", ""),
		MinIOSecretAccessKey: getEnv("MINIO_SECRET_ACCESS_KEY", ""),
		MinIOBucket:          getEnv("MINIO_BUCKET", "resumes"),
		MinIOUseSSL:          getEnvBool("MINIO_USE_SSL", false),
		MinIORegion:          getEnv("MINIO_REGION", ""),
		// Uploads
		ResumeMaxBytes: int64(getEnvInt("RESUME_MAX_BYTES", 5<<20)),
		ClamAVAddress:  getEnv("CLAMAV_ADDRESS", ""),
		// Reconciliation
		DomainReconcileInterval: time.Duration(getEnvInt("DOMAIN_RECONCILE_INTERVAL_MINUTES", 60)) * time.Minute,
		// Security logging
		SecurityServiceName:   getEnv("SECURITY_SERVICE_NAME", "jobseeker-backend"),
		PersistSecurityEvents: getEnvBool("PERSIST_SECURITY_EVENTS", true),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}

	if cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is missing. Tokens cannot be issued or verified.")
	}

	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
