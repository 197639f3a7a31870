package register

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/catalog/internal/lib/sl"
	"github.com/magabrotheeeer/catalog/internal/models"
)

// Мок сервиса с методом Register
type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Register(ctx context.Context, username, email, password string) (models.AuthResult, error) {
	args := m.Called(ctx, username, email, password)
	return args.Get(0).(models.AuthResult), args.Error(1)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(m *ServiceMock)
		wantStatus int
		wantBody   string
	}{
		{
			name: "valid registration",
			body: `{"username":"alice","email":"alice@example.com","password":"secret1"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Register", mock.Anything, "alice", "alice@example.com", "secret1").
					Return(models.AuthResult{ID: "u1", Username: "alice", Email: "alice@example.com", Token: "tok"}, nil).Once()
			},
			wantStatus: http.StatusCreated,
			wantBody:   `{"_id":"u1","username":"alice","email":"alice@example.com","isAdmin":false,"token":"tok"}`,
		},
		{
			name:       "invalid json body",
			body:       `not a json`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"message":"Invalid request body"}`,
		},
		{
			name:       "missing password",
			body:       `{"username":"alice","email":"alice@example.com"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"message":"All fields are required"}`,
		},
		{
			name: "user exists",
			body: `{"username":"alice","email":"alice@example.com","password":"secret1"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(models.AuthResult{}, apperr.New(apperr.ErrDuplicate, "User already exists")).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"message":"User already exists"}`,
		},
		{
			name: "store error",
			body: `{"username":"alice","email":"alice@example.com","password":"secret1"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(models.AuthResult{}, errors.New("mongo: timeout")).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"message":"Server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.setupMock != nil {
				tt.setupMock(svc)
			}
			handler := New(sl.Discard(), svc)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString(tt.body))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
