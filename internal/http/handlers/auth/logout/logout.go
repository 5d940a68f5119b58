// Package logout обрабатывает выход пользователя из системы.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/brainxcel/lms-backend/internal/http/cookies"
	"github.com/brainxcel/lms-backend/internal/http/middlewarectx"
	"github.com/brainxcel/lms-backend/internal/http/response"
	"github.com/brainxcel/lms-backend/internal/lib/sl"
)

// Service описывает интерфейс сервиса аутентификации.
type Service interface {
	Logout(ctx context.Context, userUID string) error
}

// Handler обрабатывает запросы на выход.
type Handler struct {
	log  *slog.Logger
	auth Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, auth Service) *Handler {
	return &Handler{log: log, auth: auth}
}

// ServeHTTP godoc
// @Summary Выйти из системы
// @Description Очищает сохраненный refresh-токен и cookie с токенами
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response "Успешный выход"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Router /logout [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user missing in request context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required", http.StatusUnauthorized))
		return
	}

	if err := h.auth.Logout(r.Context(), user.UID); err != nil {
		log.Error("logout failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	cookies.Clear(w)
	log.Info("user logged out", slog.String("uid", user.UID))
	render.JSON(w, r, response.OK("user logged out successfully"))
}
