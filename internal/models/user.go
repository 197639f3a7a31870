// Package models содержит доменные структуры каталога: пользователя,
// товар (item) и структуры частичного обновления с явной проверкой
// присутствия каждого поля.
package models

import "time"

// User представляет зарегистрированного пользователя.
// Хэш пароля никогда не сериализуется в JSON.
type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Owner возвращает краткое представление пользователя как владельца товара.
func (u User) Owner() Owner {
	return Owner{ID: u.ID, Username: u.Username}
}

// AuthResult — ответ на регистрацию, вход и смену профиля:
// данные пользователя вместе со свежим токеном.
type AuthResult struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
	Token    string `json:"token"`
}

// NewAuthResult собирает AuthResult из пользователя и токена.
func NewAuthResult(u User, token string) AuthResult {
	return AuthResult{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsAdmin:  u.IsAdmin,
		Token:    token,
	}
}

// ProfilePatch — частичное обновление профиля. nil означает "поле не передано".
// Смена пароля требует CurrentPassword.
type ProfilePatch struct {
	Username        *string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email"`
	Password        *string `json:"password,omitempty" validate:"omitempty,min=6,max=72"`
	CurrentPassword *string `json:"currentPassword,omitempty"`
}

// UserChanges — уже проверенные изменения пользователя, которые пишутся в хранилище.
type UserChanges struct {
	Username     *string
	Email        *string
	PasswordHash *string
}

// Empty сообщает, что изменений нет.
func (c UserChanges) Empty() bool {
	return c.Username == nil && c.Email == nil && c.PasswordHash == nil
}
