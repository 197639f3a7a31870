package create

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/catalog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/catalog/internal/lib/sl"
	"github.com/magabrotheeeer/catalog/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, actor models.User, in models.ItemInput) (models.Item, error) {
	args := m.Called(ctx, actor, in)
	return args.Get(0).(models.Item), args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	alice := models.User{ID: "u1", Username: "alice"}

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "товар создан",
			body: `{"title":"Chair","description":"Oak","price":25,"category":"Home"}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, alice, mock.MatchedBy(func(in models.ItemInput) bool {
					return in.Title == "Chair" && in.Price != nil && *in.Price == 25
				})).Return(models.Item{ID: "i1", Title: "Chair", Owner: alice.Owner()}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"createdBy":{"_id":"u1","username":"alice"}`,
		},
		{
			name: "ошибка валидации",
			body: `{"title":"Chair"}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, alice, mock.Anything).
					Return(models.Item{}, apperr.New(apperr.ErrValidation, "Title, description, price and category are required")).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"message":"Title, description, price and category are required"`,
		},
		{
			name:           "битый json",
			body:           `[`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"message":"Invalid request body"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/items", bytes.NewBufferString(tt.body))
			req = req.WithContext(middlewarectx.WithUser(req.Context(), alice))
			w := httptest.NewRecorder()

			New(sl.Discard(), svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
