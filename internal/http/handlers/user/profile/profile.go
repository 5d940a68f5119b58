// Package profile обрабатывает чтение профиля текущего пользователя.
package profile

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/brainxcel/lms-backend/internal/cache"
	"github.com/brainxcel/lms-backend/internal/http/middlewarectx"
	"github.com/brainxcel/lms-backend/internal/http/response"
	"github.com/brainxcel/lms-backend/internal/lib/sl"
	"github.com/brainxcel/lms-backend/internal/models"
)

// profileTTL — срок жизни профиля в кэше.
const profileTTL = 5 * time.Minute

// EntitlementService описывает интерфейс для ленивой проверки срока подписки.
type EntitlementService interface {
	ReconcileExpiry(ctx context.Context, user *models.User) (*models.User, error)
}

// Cache описывает интерфейс кэша профилей.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Handler обрабатывает запросы профиля.
type Handler struct {
	log         *slog.Logger
	entitlement EntitlementService
	cache       Cache
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, entitlement EntitlementService, cache Cache) *Handler {
	return &Handler{log: log, entitlement: entitlement, cache: cache}
}

// ServeHTTP godoc
// @Summary Профиль текущего пользователя
// @Description Возвращает профиль с актуальным состоянием подписки.
// @Description Активная подписка с истекшим сроком лениво переводится в completed.
// @Tags Users
// @Produce json
// @Success 200 {object} response.Response "Профиль пользователя"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Router /profile [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.profile"

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

	user, err := h.entitlement.ReconcileExpiry(r.Context(), user)
	if err != nil {
		log.Error("failed to reconcile subscription expiry", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	key := cache.ProfileKey(user.UID)
	var cached models.User
	hit, err := h.cache.Get(r.Context(), key, &cached)
	if err != nil {
		// Кэш недоступен, отдаём профиль из базы.
		log.Warn("profile cache read failed", sl.Err(err))
	}
	if hit {
		render.JSON(w, r, response.OKWithData("user details", cached))
		return
	}

	if err := h.cache.Set(r.Context(), key, user, profileTTL); err != nil {
		log.Warn("profile cache write failed", sl.Err(err))
	}
	render.JSON(w, r, response.OKWithData("user details", user))
}
