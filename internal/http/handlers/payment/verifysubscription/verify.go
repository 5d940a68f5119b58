// Package verifysubscription обрабатывает проверку платежа за подписку.
package verifysubscription

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
	"github.com/brainxcel/lms-backend/internal/models"
)

// Request — данные платежа от платежного шлюза.
type Request struct {
	PaymentID string `json:"paymentId" validate:"required"`
	Signature string `json:"signature" validate:"required"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	Currency  string `json:"currency" validate:"required"`
}

// Service описывает интерфейс сервиса подписок.
type Service interface {
	VerifySubscriptionPayment(ctx context.Context, user *models.User,
		paymentID, signature string, amount int64, currency string) error
}

// Handler обрабатывает проверку платежей за подписку.
type Handler struct {
	log         *slog.Logger
	entitlement Service
	validate    *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, entitlement Service) *Handler {
	return &Handler{log: log, entitlement: entitlement, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Проверить платеж за подписку
// @Description Сверяет подпись платежа, активирует подписку и записывает платеж в журнал
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body Request true "Данные платежа"
// @Success 200 {object} response.Response "Платеж подтвержден"
// @Failure 400 {object} response.ErrorResponse "Подпись не совпала или платеж уже записан"
// @Router /payments/verify/subscription [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.verifysubscription"

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

	err := h.entitlement.VerifySubscriptionPayment(r.Context(), user,
		req.PaymentID, req.Signature, req.Amount, req.Currency)
	if err != nil {
		log.Warn("subscription payment verification failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("subscription payment verified", slog.String("payment_id", req.PaymentID))
	render.JSON(w, r, response.OK("payment verified successfully"))
}
