package middlewarectx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"

	"github.com/brainxcel/lms-backend/internal/http/response"
)

// RequireEntitlement возвращает middleware, проверяющий право доступа
// к курсу из URL-параметра courseId. Доступ открыт персоналу платформы,
// владельцам действующей подписки и купившим этот курс.
func RequireEntitlement(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				log.Error("user missing in request context")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication required", http.StatusUnauthorized))
				return
			}

			if user.Role.IsStaff() {
				next.ServeHTTP(w, r)
				return
			}

			courseID := chi.URLParam(r, "courseId")
			if user.HasPurchased(courseID) || user.Subscription.IsActive(time.Now()) {
				next.ServeHTTP(w, r)
				return
			}

			log.Warn("course access denied",
				slog.String("uid", user.UID), slog.String("course_id", courseID))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("please subscribe to access this course", http.StatusBadRequest))
		})
	}
}
