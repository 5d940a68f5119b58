// Package refresh обрабатывает явное обновление пары токенов по refresh-cookie.
package refresh

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/brainxcel/lms-backend/internal/http/cookies"
	"github.com/brainxcel/lms-backend/internal/http/response"
	"github.com/brainxcel/lms-backend/internal/lib/sl"
	"github.com/brainxcel/lms-backend/internal/models"
	"github.com/brainxcel/lms-backend/internal/services/auth"
)

// Service описывает интерфейс сервиса аутентификации.
type Service interface {
	Refresh(ctx context.Context, presented string) (*models.User, auth.TokenPair, error)
}

// Handler обрабатывает запросы на обновление токенов.
type Handler struct {
	log        *slog.Logger
	auth       Service
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, auth Service, accessTTL, refreshTTL time.Duration) *Handler {
	return &Handler{log: log, auth: auth, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// ServeHTTP godoc
// @Summary Обновить пару токенов
// @Description Ротирует refresh-токен из cookie и выдает новую пару токенов
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response "Токены обновлены"
// @Failure 401 {object} response.ErrorResponse "Отсутствует refresh-токен"
// @Failure 403 {object} response.ErrorResponse "Сессия истекла"
// @Router /refresh-token [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	refreshCookie, err := r.Cookie(cookies.RefreshToken)
	if err != nil {
		log.Warn("refresh token cookie missing")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required", http.StatusUnauthorized))
		return
	}

	user, pair, err := h.auth.Refresh(r.Context(), refreshCookie.Value)
	if err != nil {
		log.Warn("refresh failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	cookies.SetTokenPair(w, pair.Access, pair.Refresh, h.accessTTL, h.refreshTTL)
	log.Info("token pair rotated", slog.String("uid", user.UID))
	render.JSON(w, r, response.OK("tokens refreshed successfully"))
}
