// Package jwt реализует выпуск и проверку пары access/refresh токенов.
//
// Maker определяет интерфейс сервиса токенов: выпуск пары и раздельная
// проверка access и refresh токенов, подписанных разными секретами.
// MakerImpl — конкретная реализация на HS256 с настраиваемыми сроками жизни.
package jwt

import (
	"errors"
	"time"
)

// Ошибки проверки токена. Session Gate различает их, чтобы отличать
// истёкший access-токен (прозрачное обновление) от подделки.
var (
	// ErrExpired — срок действия токена истёк.
	ErrExpired = errors.New("token expired")
	// ErrMalformed — строка не является корректным JWT.
	ErrMalformed = errors.New("token malformed")
	// ErrInvalidSignature — подпись не соответствует секрету.
	ErrInvalidSignature = errors.New("token signature invalid")
)

// Maker описывает интерфейс сервиса токенов.
//
// Выпуск пары — чистая операция подписи: сохранение refresh-токена
// за пользователем выполняет вызывающая сторона.
type Maker interface {
	// IssuePair подписывает пару токенов для пользователя.
	IssuePair(userUID string) (access string, refresh string, err error)
	// VerifyAccess проверяет access-токен и возвращает UID пользователя.
	VerifyAccess(token string) (string, error)
	// VerifyRefresh проверяет refresh-токен и возвращает UID пользователя.
	VerifyRefresh(token string) (string, error)
}

// MakerImpl реализует Maker с раздельными секретами для access и refresh
// токенов. Срок жизни access-токена много меньше срока refresh-токена.
type MakerImpl struct {
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewMaker создаёт новый экземпляр MakerImpl.
func NewMaker(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}
