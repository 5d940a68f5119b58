// Package unsubscribe обрабатывает отмену подписки.
package unsubscribe

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/brainxcel/lms-backend/internal/http/middlewarectx"
	"github.com/brainxcel/lms-backend/internal/http/response"
	"github.com/brainxcel/lms-backend/internal/lib/sl"
	"github.com/brainxcel/lms-backend/internal/models"
)

// Service описывает интерфейс сервиса подписок.
type Service interface {
	CancelSubscription(ctx context.Context, user *models.User) error
}

// Handler обрабатывает запросы на отмену подписки.
type Handler struct {
	log         *slog.Logger
	entitlement Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, entitlement Service) *Handler {
	return &Handler{log: log, entitlement: entitlement}
}

// ServeHTTP godoc
// @Summary Отменить подписку
// @Description Отменяет действующую подписку через платежный шлюз
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Response "Подписка отменена"
// @Failure 400 {object} response.ErrorResponse "Нет действующей подписки"
// @Failure 403 {object} response.ErrorResponse "Персонал не имеет подписки"
// @Router /payments/unsubscribe [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.unsubscribe"

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

	if err := h.entitlement.CancelSubscription(r.Context(), user); err != nil {
		log.Warn("subscription cancellation failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("subscription cancelled", slog.String("uid", user.UID))
	render.JSON(w, r, response.OK("subscription cancelled successfully"))
}
