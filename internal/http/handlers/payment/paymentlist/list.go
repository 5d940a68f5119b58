// Package paymentlist обрабатывает просмотр журнала платежей администратором.
package paymentlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/brainxcel/lms-backend/internal/http/response"
	"github.com/brainxcel/lms-backend/internal/lib/sl"
	"github.com/brainxcel/lms-backend/internal/models"
)

// defaultLimit — число записей журнала по умолчанию.
const defaultLimit = 100

// Service описывает интерфейс журнала платежей.
type Service interface {
	ListPayments(ctx context.Context, limit int) ([]*models.Payment, error)
}

// Handler обрабатывает запросы списка платежей.
type Handler struct {
	log         *slog.Logger
	entitlement Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, entitlement Service) *Handler {
	return &Handler{log: log, entitlement: entitlement}
}

// ServeHTTP godoc
// @Summary Список платежей
// @Description Возвращает последние записи журнала платежей. Только для ADMIN.
// @Tags Payments
// @Produce json
// @Param limit query int false "Число записей (по умолчанию 100)"
// @Success 200 {object} response.Response "Записи журнала"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Router /payments [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			log.Error("invalid limit query parameter", slog.String("limit", raw))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BadRequest("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	payments, err := h.entitlement.ListPayments(r.Context(), limit)
	if err != nil {
		log.Error("failed to list payments", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	render.JSON(w, r, response.OKWithData("payments", map[string]any{
		"count":    len(payments),
		"payments": payments,
	}))
}
