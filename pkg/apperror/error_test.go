package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"go-jobseeker-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	cases := []struct {
		err  *apperror.AppError
		code int
		kind string
	}{
		{apperror.BadRequest("x"), http.StatusBadRequest, apperror.KindInvalidInput},
		{apperror.NotFound("x"), http.StatusNotFound, apperror.KindNotFound},
		{apperror.Conflict("x"), http.StatusConflict, apperror.KindConflict},
		{apperror.DuplicateKey("x"), http.StatusConflict, apperror.KindDuplicateKey},
		{apperror.LimitExceeded("x"), http.StatusBadRequest, apperror.KindLimitExceeded},
		{apperror.InvalidDomain("x", []string{"Legal"}), http.StatusBadRequest, apperror.KindInvalidDomain},
		{apperror.UnknownField([]string{"a"}, []string{"b"}), http.StatusBadRequest, apperror.KindUnknownField},
		{apperror.ExternalService("x", nil), http.StatusBadGateway, apperror.KindExternalService},
		{apperror.Internal(errors.New("boom")), http.StatusInternalServerError, apperror.KindInternal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.err.Code)
		assert.Equal(t, tc.kind, tc.err.Kind)
	}
}

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("saving: %w", apperror.Conflict("stale"))
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(wrapped))
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(errors.New("plain")))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("db down")
	err := apperror.Internal(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Internal Server Error", err.Error())
}
