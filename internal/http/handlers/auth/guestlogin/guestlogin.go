// Package guestlogin обрабатывает вход в демонстрационную учетную запись.
package guestlogin

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
	GuestLogin(ctx context.Context) (*models.User, auth.TokenPair, error)
}

// Handler обрабатывает запросы гостевого входа.
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
// @Summary Войти как гость
// @Description Открывает cookie-сессию демонстрационной учетной записи с ролью GUEST
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response "Успешный вход"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /guest-login [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.guestlogin"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, pair, err := h.auth.GuestLogin(r.Context())
	if err != nil {
		log.Error("guest login failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	cookies.SetTokenPair(w, pair.Access, pair.Refresh, h.accessTTL, h.refreshTTL)
	log.Info("guest logged in", slog.String("uid", user.UID))
	render.JSON(w, r, response.OKWithData("guest logged in successfully", user))
}
