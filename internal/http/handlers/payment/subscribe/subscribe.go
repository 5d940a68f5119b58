// Package subscribe обрабатывает оформление подписки.
package subscribe

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
	BuySubscription(ctx context.Context, user *models.User) (*models.Subscription, error)
}

// Handler обрабатывает запросы на оформление подписки.
type Handler struct {
	log         *slog.Logger
	entitlement Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, entitlement Service) *Handler {
	return &Handler{log: log, entitlement: entitlement}
}

// ServeHTTP godoc
// @Summary Оформить подписку
// @Description Создает подписку в платежном шлюзе и возвращает ее идентификатор
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Response "Подписка создана"
// @Failure 400 {object} response.ErrorResponse "Подписка уже активна"
// @Failure 403 {object} response.ErrorResponse "Персонал не оформляет подписку"
// @Router /payments/subscribe [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.subscribe"

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

	sub, err := h.entitlement.BuySubscription(r.Context(), user)
	if err != nil {
		log.Warn("subscription purchase failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("subscription created", slog.String("subscription_id", sub.ID))
	render.JSON(w, r, response.OKWithData("subscribed successfully", map[string]any{
		"subscription_id": sub.ID,
	}))
}
