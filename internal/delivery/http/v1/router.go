package v1

import (
	"net/http"

	"go-jobseeker-backend/internal/delivery/http/middleware"
	"go-jobseeker-backend/internal/delivery/http/response"
	"go-jobseeker-backend/internal/domain"
	"go-jobseeker-backend/internal/usecase"
	"go-jobseeker-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC          domain.AuthUsecase
	ProfileUC       domain.ProfileUsecase
	ResumeUC        domain.ResumeUsecase
	WorkDomainUC    domain.WorkDomainUsecase
	JobPreferenceUC domain.JobPreferenceUsecase
	HealthUC        usecase.HealthUsecase

	RateLimiter    *middleware.RateLimiter
	GlobalLimit    middleware.RateLimitConfig
	AuthLimit      middleware.RateLimitConfig
	UploadLimit    middleware.RateLimitConfig
	SecurityLogger *security.SecurityLogger

	AllowedOrigins []string
	IsProduction   bool
	ResumeMaxBytes int64
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.CORSMiddleware(deps.AllowedOrigins, deps.IsProduction)) // CORS must be first
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware(deps.IsProduction))
	r.Use(middleware.Metrics())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorHandler())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")

	v1.GET("/health", func(c *gin.Context) {
		if deps.HealthUC == nil {
			response.Success(c, http.StatusOK, "System operational", nil)
			return
		}
		status, healthy := deps.HealthUC.Check(c.Request.Context())
		if !healthy {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	var authLimit, uploadLimit gin.HandlerFunc
	if deps.RateLimiter != nil {
		v1.Use(deps.RateLimiter.Middleware(deps.GlobalLimit))
		authLimit = deps.RateLimiter.Middleware(deps.AuthLimit)
		if deps.UploadLimit.Limit > 0 {
			uploadLimit = deps.RateLimiter.Middleware(deps.UploadLimit)
		}
	}

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.AuthUC, deps.SecurityLogger))
	protected.Use(middleware.CSRFMiddleware(deps.IsProduction))
	{
		NewAuthHandler(v1, protected, deps.AuthUC, deps.IsProduction, authLimit)
		NewDomainHandler(v1, protected, deps.WorkDomainUC)
		NewProfileHandler(protected, deps.ProfileUC, deps.WorkDomainUC)
		NewResumeHandler(protected, deps.ResumeUC, deps.ResumeMaxBytes, uploadLimit)
		NewJobPreferenceHandler(protected, deps.JobPreferenceUC)
	}

	return r
}
