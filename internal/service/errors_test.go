package service

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesCode(t *testing.T) {
	detailed := &Error{Kind: KindAuthentication, Code: ErrInvalidToken.Code, Message: "expired", Err: errors.New("token is expired")}
	assert.ErrorIs(t, detailed, ErrInvalidToken)
	assert.NotErrorIs(t, detailed, ErrInvalidCredentials)

	wrapped := fmt.Errorf("verify: %w", ErrPostNotFound)
	assert.ErrorIs(t, wrapped, ErrPostNotFound)
}

func TestKindHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{ValidationError(map[string]string{"email": "bad"}), http.StatusBadRequest},
		{ErrDuplicateEmail, http.StatusBadRequest},
		{ErrFamilyNotFound, http.StatusNotFound},
		{ErrNotAuthorized, http.StatusForbidden},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{internalError(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Kind.HTTPStatus(), tt.err.Code)
	}
}

func TestAsError(t *testing.T) {
	e := AsError(fmt.Errorf("wrap: %w", ErrEmptyPost))
	assert.Equal(t, "EmptyPost", e.Code)

	boom := errors.New("boom")
	e = AsError(boom)
	assert.Equal(t, KindInternal, e.Kind)
	assert.ErrorIs(t, e, boom)
}
