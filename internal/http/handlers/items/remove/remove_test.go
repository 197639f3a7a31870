package remove

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/catalog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/catalog/internal/lib/sl"
	"github.com/magabrotheeeer/catalog/internal/models"
)

// MockService реализует интерфейс remove.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Delete(ctx context.Context, actor models.User, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

func TestRemoveHandler(t *testing.T) {
	alice := models.User{ID: "u1"}

	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное удаление",
			id:   "i1",
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, alice, "i1").Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message":"Item removed"}`,
		},
		{
			name: "товар не найден",
			id:   "zzz",
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, alice, "zzz").
					Return(apperr.New(apperr.ErrNotFound, "Item not found")).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"message":"Item not found"}`,
		},
		{
			name: "ошибка сервиса",
			id:   "i1",
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, alice, "i1").Return(errors.New("db error")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"message":"Server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodDelete, "/api/items/"+tt.id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithUser(ctx, alice))
			w := httptest.NewRecorder()

			New(sl.Discard(), svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
