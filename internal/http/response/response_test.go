package response_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/catalog/internal/http/response"
	"github.com/magabrotheeeer/catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/catalog/internal/lib/sl"
)

func TestFail(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "not found",
			err:        apperr.New(apperr.ErrNotFound, "Item not found"),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"message":"Item not found"}`,
		},
		{
			name:       "wrapped forbidden",
			err:        fmt.Errorf("op: %w", apperr.New(apperr.ErrForbidden, "Not authorized to delete this item")),
			wantStatus: http.StatusForbidden,
			wantBody:   `{"message":"Not authorized to delete this item"}`,
		},
		{
			name:       "internal error is hidden",
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"message":"Server error"}`,
		},
		{
			name:       "bare sentinel falls back to generic message",
			err:        apperr.ErrValidation,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"message":"Server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			response.Fail(rec, req, sl.Discard(), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestValidationError(t *testing.T) {
	type payload struct {
		Username string `validate:"required,min=3"`
		Email    string `validate:"omitempty,email"`
	}

	err := validator.New().Struct(payload{Username: "ab", Email: "nope"})
	require.Error(t, err)

	got := response.ValidationError(err.(validator.ValidationErrors))

	assert.Equal(t,
		"field username must be at least 3 characters, field email must be a valid email",
		got.Message)
}
