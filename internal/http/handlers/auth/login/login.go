// Package login обрабатывает вход пользователя по email и паролю.
package login

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/brainxcel/lms-backend/internal/http/cookies"
	"github.com/brainxcel/lms-backend/internal/http/response"
	"github.com/brainxcel/lms-backend/internal/lib/sl"
	"github.com/brainxcel/lms-backend/internal/models"
	"github.com/brainxcel/lms-backend/internal/services/auth"
)

// Request — входные данные для входа.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Service описывает интерфейс сервиса аутентификации.
type Service interface {
	Login(ctx context.Context, email, password string) (*models.User, auth.TokenPair, error)
}

// Handler обрабатывает запросы на вход.
type Handler struct {
	log        *slog.Logger
	auth       Service
	accessTTL  time.Duration
	refreshTTL time.Duration
	validate   *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, auth Service, accessTTL, refreshTTL time.Duration) *Handler {
	return &Handler{
		log:        log,
		auth:       auth,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		validate:   validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Войти в систему
// @Description Проверяет учетные данные и открывает cookie-сессию
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Учетные данные"
// @Success 200 {object} response.Response "Успешный вход"
// @Failure 401 {object} response.ErrorResponse "Неверный email или пароль"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.BadRequest("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	user, pair, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Warn("login failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	cookies.SetTokenPair(w, pair.Access, pair.Refresh, h.accessTTL, h.refreshTTL)
	log.Info("user logged in", slog.String("uid", user.UID))
	render.JSON(w, r, response.OKWithData("user logged in successfully", user))
}
