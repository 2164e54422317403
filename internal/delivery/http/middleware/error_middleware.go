package middleware

import (
	"errors"
	"net/http"

	"go-jobseeker-backend/internal/delivery/http/response"
	"go-jobseeker-backend/pkg/apperror"
	"go-jobseeker-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code < http.StatusInternalServerError {
			response.Error(c, appErr.Code, appErr.Message, response.ErrorBody{
				Kind:    appErr.Kind,
				Details: appErr.Details,
			})
			return
		}

		// Internal details stay in the log
		code, kind, message := http.StatusInternalServerError, apperror.KindInternal, "An unexpected error occurred. Please try again later."
		if appErr != nil {
			code, kind = appErr.Code, appErr.Kind
			if appErr.Code != http.StatusInternalServerError {
				message = appErr.Message
			}
		}
		logger.Log.Error("request failed",
			"request_id", c.GetString("RequestID"),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", code,
			"error", err,
		)
		response.Error(c, code, message, response.ErrorBody{Kind: kind})
	}
}
