package v1

import (
	"errors"

	"go-jobseeker-backend/pkg/apperror"
	"go-jobseeker-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindJSON decodes the request body into req and records a client error on
// failure. Handlers return immediately when it reports false.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			c.Error(apperror.Validation(validation.FormatValidationErrors(err)))
		} else {
			c.Error(apperror.BadRequest("Request body must be valid JSON"))
		}
		return false
	}
	return true
}
