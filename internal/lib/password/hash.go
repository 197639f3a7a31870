// Package password реализует одностороннее хэширование паролей и их проверку.
//
// GetHash создаёт bcrypt-хэш со случайной солью для хранения в базе.
// Verify сравнивает пароль с хэшем за постоянное время и сообщает
// о несовпадении значением false, а не ошибкой.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cost — фактор стоимости bcrypt.
const Cost = 12

// MaxLength — bcrypt учитывает не более 72 байт пароля.
const MaxLength = 72

// ErrTooLong возвращается для паролей длиннее MaxLength байт.
var ErrTooLong = errors.New("password is too long")

// Hasher хэширует пароли с заданной стоимостью.
type Hasher struct {
	cost int
}

// NewHasher создаёт Hasher. Стоимость ниже bcrypt.MinCost заменяется на Cost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost {
		cost = Cost
	}
	return &Hasher{cost: cost}
}

// Default использует production-стоимость.
var Default = NewHasher(Cost)

// GetHash принимает пароль и возвращает его bcrypt-хэш.
func (h *Hasher) GetHash(raw string) (string, error) {
	const op = "password.GetHash"
	if len(raw) > MaxLength {
		return "", fmt.Errorf("%s: %w", op, ErrTooLong)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), h.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// Verify сообщает, соответствует ли пароль хэшу.
// Повреждённый хэш тоже даёт false.
func (h *Hasher) Verify(raw, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(raw)) == nil
}
