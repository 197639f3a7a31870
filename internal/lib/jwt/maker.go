// Package jwt реализует выпуск и проверку подписанных сессионных токенов.
//
// Токен содержит только идентификатор пользователя и срок действия,
// подписан HMAC-SHA256 серверным секретом и нигде не хранится:
// действительность определяется только подписью и exp внутри токена.
package jwt

import (
	"errors"
	"time"
)

var (
	// ErrTokenInvalid — токен повреждён, подписан другим ключом или не содержит id.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired — срок действия токена истёк.
	ErrTokenExpired = errors.New("token expired")
)

// DefaultTTL — время жизни токена по умолчанию.
const DefaultTTL = 24 * time.Hour

// Maker описывает интерфейс выпуска и разбора токенов.
type Maker interface {
	// GenerateToken выпускает токен для пользователя с идентификатором userID.
	GenerateToken(userID string) (string, error)
	// ParseToken проверяет подпись и срок действия и возвращает claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует Maker с секретным ключом и временем жизни токена.
type MakerImpl struct {
	secretKey []byte        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
	now       func() time.Time
}

// NewJWTMaker создаёт MakerImpl. Нулевой ttl заменяется на DefaultTTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &MakerImpl{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		now:       time.Now,
	}
}
