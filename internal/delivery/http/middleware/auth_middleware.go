package middleware

import (
	"net/http"
	"strings"

	"go-jobseeker-backend/internal/delivery/http/response"
	"go-jobseeker-backend/internal/domain"
	"go-jobseeker-backend/pkg/apperror"
	"go-jobseeker-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

const (
	AuthCookieName = "auth_token"
	authViaCookie  = "AuthViaCookie"
)

// AuthMiddleware resolves the bearer token (header or auth_token cookie) into
// an identity and stores it on the gin context for handlers.
func AuthMiddleware(authUC domain.AuthUsecase, secLog *security.SecurityLogger) gin.HandlerFunc {
	if secLog == nil {
		secLog = security.NopSecurityLogger()
	}
	return func(c *gin.Context) {
		var tokenString string
		fromCookie := false

		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			tokenString = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		} else if cookie, err := c.Cookie(AuthCookieName); err == nil && cookie != "" {
			tokenString = cookie
			fromCookie = true
		}

		if tokenString == "" {
			secLog.LogUnauthorized(c.Request.Context(), c.ClientIP(), c.GetString("RequestID"), "missing_token")
			response.Abort(c, http.StatusUnauthorized, apperror.KindUnauthorized, "Authorization header or auth_token cookie required")
			return
		}

		identity, err := authUC.ResolveToken(c.Request.Context(), tokenString)
		if err != nil {
			if apperror.KindOf(err) != apperror.KindUnauthorized {
				c.Error(err)
				c.Abort()
				return
			}
			secLog.LogUnauthorized(c.Request.Context(), c.ClientIP(), c.GetString("RequestID"), err.Error())
			response.Abort(c, http.StatusUnauthorized, apperror.KindUnauthorized, err.Error())
			return
		}

		c.Set(string(domain.KeyUserID), identity.UserID)
		c.Set(string(domain.KeyUserEmail), identity.Email)
		c.Set(authViaCookie, fromCookie)

		c.Next()
	}
}

// Identity returns the caller resolved by AuthMiddleware. It is empty on
// public routes.
func Identity(c *gin.Context) domain.Identity {
	return domain.Identity{
		UserID: c.GetString(string(domain.KeyUserID)),
		Email:  c.GetString(string(domain.KeyUserEmail)),
	}
}
