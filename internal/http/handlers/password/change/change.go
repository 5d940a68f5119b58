// Package change обрабатывает смену пароля аутентифицированного пользователя.
package change

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/brainxcel/lms-backend/internal/http/middlewarectx"
	"github.com/brainxcel/lms-backend/internal/http/response"
	"github.com/brainxcel/lms-backend/internal/lib/sl"
)

// Request — входные данные для смены пароля.
type Request struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// Service описывает интерфейс сервиса аутентификации.
type Service interface {
	ChangePassword(ctx context.Context, userUID, oldPassword, newPassword string) error
}

// Handler обрабатывает запросы на смену пароля.
type Handler struct {
	log      *slog.Logger
	auth     Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, auth Service) *Handler {
	return &Handler{log: log, auth: auth, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Сменить пароль
// @Description Меняет пароль после проверки старого
// @Tags Password
// @Accept json
// @Produce json
// @Param request body Request true "Старый и новый пароли"
// @Success 200 {object} response.Response "Пароль изменен"
// @Failure 400 {object} response.ErrorResponse "Старый пароль неверен"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Router /change-password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.password.change"

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

	if err := h.auth.ChangePassword(r.Context(), user.UID, req.OldPassword, req.NewPassword); err != nil {
		log.Warn("password change failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("password changed", slog.String("uid", user.UID))
	render.JSON(w, r, response.OK("password changed successfully"))
}
