// Package order обрабатывает создание заказа на разовую покупку курса.
package order

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
	"github.com/brainxcel/lms-backend/internal/paymentgateway"
)

// Request — входные данные для создания заказа.
type Request struct {
	CourseID string `json:"courseId" validate:"required"`
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"required"`
}

// Service описывает интерфейс сервиса покупок.
type Service interface {
	CreateOrder(ctx context.Context, user *models.User, courseID string,
		amount int64, currency string) (*paymentgateway.OrderResponse, error)
}

// Handler обрабатывает создание заказов.
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
// @Summary Создать заказ на покупку курса
// @Description Создает разовый заказ в платежном шлюзе
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body Request true "Курс и сумма"
// @Success 200 {object} response.Response "Заказ создан"
// @Failure 400 {object} response.ErrorResponse "Курс уже куплен"
// @Router /payments/order [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.order"

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

	orderResp, err := h.entitlement.CreateOrder(r.Context(), user, req.CourseID, req.Amount, req.Currency)
	if err != nil {
		log.Warn("order creation failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("order created", slog.String("order_id", orderResp.ID))
	render.JSON(w, r, response.OKWithData("order created successfully", orderResp))
}
