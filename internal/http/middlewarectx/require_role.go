package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/brainxcel/lms-backend/internal/http/response"
	"github.com/brainxcel/lms-backend/internal/models"
)

// RequireRole возвращает middleware, пропускающий только перечисленные роли.
// Ставится после SessionGate: пользователь берётся из контекста.
func RequireRole(log *slog.Logger, roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				log.Error("user missing in request context")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication required", http.StatusUnauthorized))
				return
			}

			if _, ok := allowed[user.Role]; !ok {
				log.Warn("access denied by role",
					slog.String("uid", user.UID), slog.String("role", string(user.Role)))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("you do not have permission to perform this action", http.StatusForbidden))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
