package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go-jobseeker-backend/config"
	_ "go-jobseeker-backend/docs" // Important for Swagger
	"go-jobseeker-backend/internal/delivery/http/middleware"
	v1 "go-jobseeker-backend/internal/delivery/http/v1"
	"go-jobseeker-backend/internal/domain"
	"go-jobseeker-backend/internal/repository/postgres"
	"go-jobseeker-backend/internal/usecase"
	"go-jobseeker-backend/pkg/auth"
	"go-jobseeker-backend/pkg/database"
	"go-jobseeker-backend/pkg/email"
	"go-jobseeker-backend/pkg/logger"
	"go-jobseeker-backend/pkg/redis"
	"go-jobseeker-backend/pkg/security"
	"go-jobseeker-backend/pkg/security/antivirus"
	"go-jobseeker-backend/pkg/storage"
	"go-jobseeker-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// @title           Job Seeker Backend API
// @version         1.0
// @description     Profiles, résumés and work-domain registry for job seekers.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting jobseeker backend", "port", cfg.Port, "env", cfg.AppEnv)

	secLog := security.NewSecurityLogger(cfg.SecurityServiceName, cfg.AppEnv)
	defer func() { _ = secLog.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := postgres.EnsureSchema(ctx, dbPool); err != nil {
		logger.Log.Error("Failed to prepare schema", "error", err)
		os.Exit(1)
	}

	if cfg.PersistSecurityEvents {
		secLog.SetPersistFunc(security.NewSecurityEventRepository(dbPool).PersistEvent)
	}

	// 4. Setup Redis (optional)
	var redisClient *goredis.Client
	if cfg.UpstashRedisURL != "" {
		redisClient, err = redis.Connect(ctx, redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword})
		if err != nil {
			logger.Log.Warn("Redis unavailable, using in-memory rate limiting", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// 5. Setup external services
	blobs, err := storage.New(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to initialize blob storage", "provider", cfg.StorageProvider, "error", err)
		os.Exit(1)
	}

	scanner := antivirus.New(cfg.ClamAVAddress)
	if !scanner.Available(ctx) {
		logger.Log.Warn("Antivirus scanner not reachable, uploads will be rejected until it is", "scanner", scanner.Name())
	}

	emailService := email.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - reset codes will not be delivered")
	}

	// 6. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	domainRepo := postgres.NewWorkDomainRepository(dbPool)
	tx := postgres.NewTransactor(dbPool)

	// 7. Setup UseCases
	validate := validation.New()
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	loginTracker := security.NewLoginTracker(redisClient, security.LoginTrackerConfig{
		MaxAttempts:   cfg.FailedLoginMaxAttempts,
		AttemptWindow: time.Duration(cfg.FailedLoginBlockMinutes) * time.Minute,
		BlockDuration: time.Duration(cfg.FailedLoginBlockMinutes) * time.Minute,
	}, secLog)
	uploadLimiter := security.NewUploadLimiter(redisClient, cfg.UploadsPerMinute, cfg.UploadsPerDay)

	workDomainUC := usecase.NewWorkDomainUsecase(userRepo, domainRepo, tx)
	profileUC := usecase.NewProfileUsecase(userRepo, workDomainUC, tx, validate)
	resumeUC := usecase.NewResumeUsecase(userRepo, blobs, scanner, uploadLimiter, secLog, cfg.ResumeMaxBytes)
	jobPreferenceUC := usecase.NewJobPreferenceUsecase(userRepo, validate)
	origins := strings.Split(cfg.FrontendURL, ",")
	authUC := usecase.NewAuthUsecase(userRepo, tx, tokens, loginTracker, emailService, secLog, usecase.AuthOptions{
		ResetCodeTTL:     cfg.ResetCodeTTL,
		ResetMaxAttempts: cfg.ResetMaxAttempts,
		ResetURL:         strings.TrimRight(strings.TrimSpace(origins[0]), "/") + "/reset-password",
	})

	checks := map[string]usecase.HealthCheck{"database": dbPool.Ping}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redis.HealthCheck(ctx, redisClient) }
	}
	healthUC := usecase.NewHealthUsecase(checks)

	// 8. Domain registry: seed, repair, then keep repairing in the background
	if err := workDomainUC.SeedCatalog(ctx); err != nil {
		logger.Log.Error("Failed to seed work domains", "error", err)
		os.Exit(1)
	}
	reconcile(ctx, workDomainUC)
	if cfg.DomainReconcileInterval > 0 {
		go reconcileLoop(ctx, workDomainUC, cfg.DomainReconcileInterval)
	}

	// 9. Setup Router
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
	rateLimiter := middleware.NewRateLimiter(redisClient, secLog)
	go rateLimiter.Cleanup(ctx, 5*time.Minute)

	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:          authUC,
		ProfileUC:       profileUC,
		ResumeUC:        resumeUC,
		WorkDomainUC:    workDomainUC,
		JobPreferenceUC: jobPreferenceUC,
		HealthUC:        healthUC,
		RateLimiter:     rateLimiter,
		GlobalLimit:     middleware.DefaultRateLimitConfig(cfg.RateLimitGlobalThreshold, window),
		AuthLimit:       middleware.AuthRateLimitConfig(cfg.RateLimitLoginThreshold, window),
		UploadLimit:     middleware.UploadRateLimitConfig(cfg.RateLimitUploadThreshold, window),
		SecurityLogger:  secLog,
		AllowedOrigins:  origins,
		IsProduction:    cfg.IsProduction(),
		ResumeMaxBytes:  cfg.ResumeMaxBytes,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			stop()
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

func reconcile(ctx context.Context, uc domain.WorkDomainUsecase) {
	report, err := uc.Reconcile(ctx)
	if err != nil {
		logger.Log.Error("Domain registry reconcile failed", "error", err)
		return
	}
	logger.Log.Info("Domain registry reconciled", "changed", report.Changed, "members", report.Members)
}

// reconcileLoop rebuilds the registry from users until ctx is cancelled.
func reconcileLoop(ctx context.Context, uc domain.WorkDomainUsecase, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reconcile(ctx, uc)
		}
	}
}
