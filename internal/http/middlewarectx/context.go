// Package middlewarectx содержит HTTP middleware аутентификации и авторизации.
//
// SessionGate проверяет access-токен из cookie и при его истечении прозрачно
// обновляет пару токенов по refresh-токену с ротацией. Аутентифицированный
// пользователь кладётся в контекст запроса для дальнейших обработчиков.
// RequireRole и RequireEntitlement ограничивают доступ по роли и по праву
// доступа к курсу.
package middlewarectx

import (
	"context"
	"net/http"

	"github.com/brainxcel/lms-backend/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// CtxUser — ключ аутентифицированного пользователя в контексте.
const CtxUser Key = "user"

// UserFromContext извлекает аутентифицированного пользователя из контекста.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(CtxUser).(*models.User)
	return user, ok
}

// WithUser кладёт пользователя в контекст запроса.
func WithUser(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), CtxUser, user))
}
