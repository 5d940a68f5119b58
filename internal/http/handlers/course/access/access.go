// Package access обрабатывает проверку права доступа к курсу.
// Сама проверка выполняется в middleware RequireEntitlement; обработчик
// лишь подтверждает доступ для прошедших запросов.
package access

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/brainxcel/lms-backend/internal/http/response"
)

// Handler подтверждает доступ к курсу.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Проверить доступ к курсу
// @Description Возвращает подтверждение, если у пользователя есть право доступа к курсу
// @Tags Courses
// @Produce json
// @Param courseId path string true "Идентификатор курса"
// @Success 200 {object} response.Response "Доступ открыт"
// @Failure 400 {object} response.ErrorResponse "Требуется подписка или покупка курса"
// @Router /courses/{courseId}/access [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.access"

	courseID := chi.URLParam(r, "courseId")
	h.log.Info("course access granted",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("course_id", courseID),
	)
	render.JSON(w, r, response.OKWithData("course access granted", map[string]string{
		"courseId": courseID,
	}))
}
