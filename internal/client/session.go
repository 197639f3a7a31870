package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/magabrotheeeer/catalog/internal/models"
)

// Session хранит вошедшего пользователя вместе с токеном и сохраняет его в файл.
// Пустая сессия означает, что пользователь не вошёл.
type Session struct {
	mu   sync.RWMutex
	path string
	user *models.AuthResult
}

// DefaultSessionPath возвращает ~/.catalog/session.json.
func DefaultSessionPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("client.DefaultSessionPath: %w", err)
	}
	return filepath.Join(home, ".catalog", "session.json"), nil
}

// NewSession создаёт пустую сессию, привязанную к файлу path.
// Пустой path даёт сессию только в памяти.
func NewSession(path string) *Session {
	return &Session{path: path}
}

// Load читает сессию из файла. Отсутствующий файл оставляет сессию пустой,
// повреждённый файл удаляется.
func (s *Session) Load() error {
	const op = "client.Session.Load"
	if s.path == "" {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var u models.AuthResult
	if err := json.Unmarshal(data, &u); err != nil || u.Token == "" {
		if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", op, rmErr)
		}
		s.set(nil)
		return nil
	}
	s.set(&u)
	return nil
}

// Save запоминает пользователя и записывает его в файл.
func (s *Session) Save(u models.AuthResult) error {
	const op = "client.Session.Save"
	s.set(&u)
	if s.path == "" {
		return nil
	}

	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Clear забывает пользователя и удаляет файл сессии.
func (s *Session) Clear() error {
	s.set(nil)
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("client.Session.Clear: %w", err)
	}
	return nil
}

// User возвращает текущего пользователя, если он вошёл.
func (s *Session) User() (models.AuthResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.AuthResult{}, false
	}
	return *s.user, true
}

// Token возвращает токен текущего пользователя или пустую строку.
func (s *Session) Token() string {
	u, _ := s.User()
	return u.Token
}

// IsAdmin сообщает, что вошёл администратор.
func (s *Session) IsAdmin() bool {
	u, _ := s.User()
	return u.IsAdmin
}

func (s *Session) set(u *models.AuthResult) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}
