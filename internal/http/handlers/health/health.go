package health

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/brainxcel/lms-backend/internal/http/response"
)

type Handler struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Handler {
	return &Handler{
		log: log,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData("health", map[string]any{
		"status": "ok",
	}))
}
