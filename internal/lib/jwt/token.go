package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims описывает данные, хранящиеся в токене: только UID пользователя
// и стандартные поля (ExpiresAt, IssuedAt).
type Claims struct {
	UserUID string `json:"uid"`
	jwt.RegisteredClaims
}

// IssuePair подписывает access и refresh токены для пользователя.
// Токены привязаны к UID; побочных эффектов нет.
func (m *MakerImpl) IssuePair(userUID string) (string, string, error) {
	const op = "jwt.IssuePair"

	access, err := sign(userUID, m.accessSecret, m.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	refresh, err := sign(userUID, m.refreshSecret, m.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return access, refresh, nil
}

// VerifyAccess проверяет подпись и срок действия access-токена.
func (m *MakerImpl) VerifyAccess(token string) (string, error) {
	return verify(token, m.accessSecret)
}

// VerifyRefresh проверяет подпись и срок действия refresh-токена.
// Совпадение с единственным сохранённым refresh-токеном пользователя
// дополнительно проверяет вызывающая сторона.
func (m *MakerImpl) VerifyRefresh(token string) (string, error) {
	return verify(token, m.refreshSecret)
}

func sign(userUID, secret string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserUID: userUID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func verify(tokenStr, secret string) (string, error) {
	const op = "jwt.verify"

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", fmt.Errorf("%s: %w", op, ErrExpired)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", fmt.Errorf("%s: %w", op, ErrInvalidSignature)
		default:
			return "", fmt.Errorf("%s: %w", op, ErrMalformed)
		}
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("%s: %w", op, ErrMalformed)
	}
	return claims.UserUID, nil
}
