package apperror

import (
	"errors"
	"net/http"
)

// Error kinds exposed to clients in the "error.kind" field.
const (
	KindInvalidInput    = "INVALID_INPUT"
	KindUnauthorized    = "UNAUTHORIZED"
	KindForbidden       = "FORBIDDEN"
	KindNotFound        = "NOT_FOUND"
	KindInvalidDomain   = "INVALID_DOMAIN"
	KindUnknownField    = "UNKNOWN_FIELD"
	KindValidation      = "VALIDATION_ERROR"
	KindLimitExceeded   = "LIMIT_EXCEEDED"
	KindDuplicateKey    = "DUPLICATE_KEY"
	KindConflict        = "CONFLICT"
	KindExternalService = "EXTERNAL_SERVICE_FAILURE"
	KindTooManyRequests = "TOO_MANY_REQUESTS"
	KindInternal        = "INTERNAL"
)

type AppError struct {
	Code    int         `json:"code"`
	Kind    string      `json:"kind"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kindForStatus(code),
		Message: message,
		Err:     err,
	}
}

// WithDetails attaches a client-visible payload (valid catalog, offending keys, ...).
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, message, nil)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message, nil)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}

func Conflict(message string) *AppError {
	return New(http.StatusConflict, message, nil)
}

func DuplicateKey(message string) *AppError {
	e := New(http.StatusConflict, message, nil)
	e.Kind = KindDuplicateKey
	return e
}

func InvalidDomain(message string, validDomains []string) *AppError {
	e := New(http.StatusBadRequest, message, nil)
	e.Kind = KindInvalidDomain
	e.Details = map[string]interface{}{"valid_domains": validDomains}
	return e
}

func UnknownField(unknown, allowed []string) *AppError {
	e := New(http.StatusBadRequest, "Update contains fields that cannot be changed", nil)
	e.Kind = KindUnknownField
	e.Details = map[string]interface{}{
		"unknown_fields": unknown,
		"allowed_fields": allowed,
	}
	return e
}

func Validation(messages []string) *AppError {
	e := New(http.StatusBadRequest, "Validation failed", nil)
	e.Kind = KindValidation
	e.Details = messages
	return e
}

func LimitExceeded(message string) *AppError {
	e := New(http.StatusBadRequest, message, nil)
	e.Kind = KindLimitExceeded
	return e
}

func ExternalService(message string, err error) *AppError {
	return New(http.StatusBadGateway, message, err)
}

func TooManyRequests(message string) *AppError {
	return New(http.StatusTooManyRequests, message, nil)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Internal Server Error", err)
}

// KindOf returns the kind of err, or KindInternal when err is not an *AppError.
func KindOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func kindForStatus(code int) string {
	switch code {
	case http.StatusBadRequest:
		return KindInvalidInput
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusBadGateway:
		return KindExternalService
	case http.StatusTooManyRequests:
		return KindTooManyRequests
	default:
		return KindInternal
	}
}
