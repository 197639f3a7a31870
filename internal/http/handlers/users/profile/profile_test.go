package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/catalog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/catalog/internal/lib/sl"
	"github.com/magabrotheeeer/catalog/internal/models"
)

// MockService реализует интерфейс profile.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Profile(ctx context.Context, actor models.User) (models.User, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).(models.User), args.Error(1)
}

func TestProfileHandler(t *testing.T) {
	alice := models.User{ID: "u1", Username: "alice", Email: "a@x.com", PasswordHash: "hash"}

	t.Run("профиль без хэша пароля", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Profile", mock.Anything, alice).Return(alice, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
		req = req.WithContext(middlewarectx.WithUser(req.Context(), alice))
		w := httptest.NewRecorder()

		New(sl.Discard(), svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "hash")
		var got map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "alice", got["username"])
		assert.Equal(t, "u1", got["_id"])
		svc.AssertExpectations(t)
	})

	t.Run("пользователь удалён", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Profile", mock.Anything, alice).
			Return(models.User{}, apperr.New(apperr.ErrNotFound, "User not found")).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
		req = req.WithContext(middlewarectx.WithUser(req.Context(), alice))
		w := httptest.NewRecorder()

		New(sl.Discard(), svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"message":"User not found"}`, w.Body.String())
	})

	t.Run("нет пользователя в контексте", func(t *testing.T) {
		svc := new(MockService)
		w := httptest.NewRecorder()

		New(sl.Discard(), svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/profile", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		svc.AssertNotCalled(t, "Profile", mock.Anything, mock.Anything)
	})
}
