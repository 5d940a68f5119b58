// Package reset обрабатывает смену пароля по одноразовому токену из письма.
package reset

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/brainxcel/lms-backend/internal/http/response"
	"github.com/brainxcel/lms-backend/internal/lib/sl"
)

// Request — входные данные для смены пароля.
type Request struct {
	Password string `json:"password" validate:"required,min=8"`
}

// Service описывает интерфейс сервиса восстановления пароля.
type Service interface {
	RedeemReset(ctx context.Context, token, newPassword string) error
}

// Handler обрабатывает погашение токена восстановления.
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
// @Summary Сменить пароль по токену
// @Description Устанавливает новый пароль по одноразовому токену из письма
// @Tags Password
// @Accept json
// @Produce json
// @Param resetToken path string true "Токен из письма"
// @Param request body Request true "Новый пароль"
// @Success 200 {object} response.Response "Пароль изменен"
// @Failure 400 {object} response.ErrorResponse "Токен недействителен или истек"
// @Router /reset-password/{resetToken} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.password.reset"

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

	token := chi.URLParam(r, "resetToken")
	if err := h.reset.RedeemReset(r.Context(), token, req.Password); err != nil {
		log.Warn("reset redemption failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("password reset completed")
	render.JSON(w, r, response.OK("password changed successfully"))
}
