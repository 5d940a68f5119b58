// Package forgot обрабатывает запрос на восстановление пароля.
package forgot

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/brainxcel/lms-backend/internal/http/response"
	"github.com/brainxcel/lms-backend/internal/lib/sl"
)

// Request — входные данные для запроса восстановления.
type Request struct {
	Email string `json:"email" validate:"required,email"`
}

// Service описывает интерфейс сервиса восстановления пароля.
type Service interface {
	RequestReset(ctx context.Context, email string) error
}

// Handler обрабатывает запросы восстановления пароля.
type Handler struct {
	log      *slog.Logger
	reset    Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, reset Service) *Handler {
	return &Handler{log: log, reset: reset, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Запросить восстановление пароля
// @Description Отправляет на email одноразовую ссылку для смены пароля
// @Tags Password
// @Accept json
// @Produce json
// @Param request body Request true "Email пользователя"
// @Success 200 {object} response.Response "Письмо отправлено"
// @Failure 404 {object} response.ErrorResponse "Email не зарегистрирован"
// @Router /forgot-password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.password.forgot"

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

	if err := h.reset.RequestReset(r.Context(), req.Email); err != nil {
		log.Error("reset request failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("reset email queued")
	render.JSON(w, r, response.OK("reset password link has been sent to your email"))
}
