// Package resettoken реализует одноразовые токены восстановления пароля.
//
// New генерирует случайный непрозрачный токен, который уходит пользователю
// в письме. Hash возвращает его sha256-дайджест — в базе хранится только
// дайджест, поэтому утечка хранилища не раскрывает действующие токены.
package resettoken

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// New возвращает случайный токен из 32 байт энтропии в hex-представлении.
func New() (string, error) {
	const op = "resettoken.New"
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return hex.EncodeToString(buf), nil
}

// Hash возвращает hex-представление sha256-дайджеста токена.
func Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
