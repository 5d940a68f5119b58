package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/brainxcel/lms-backend/internal/http/cookies"
	"github.com/brainxcel/lms-backend/internal/http/response"
	"github.com/brainxcel/lms-backend/internal/lib/jwt"
	"github.com/brainxcel/lms-backend/internal/lib/sl"
	"github.com/brainxcel/lms-backend/internal/models"
	"github.com/brainxcel/lms-backend/internal/services/auth"
)

// AuthService описывает интерфейс сервиса аутентификации для middleware.
type AuthService interface {
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
	Refresh(ctx context.Context, presented string) (*models.User, auth.TokenPair, error)
}

// SessionGate возвращает middleware, аутентифицирующий запрос по cookie.
//
// Валидный access-токен пропускает запрос сразу. Невалидный или истекший —
// запускает прозрачное обновление: refresh-токен сверяется с сохранённым
// и ротируется, клиент получает новую пару cookie. Отсутствие любой из
// cookie — 401; провал обновления — 403, требуется повторный вход.
func SessionGate(authService AuthService, accessTTL, refreshTTL time.Duration,
	log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SessionGate"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			accessCookie, err := r.Cookie(cookies.AccessToken)
			if err != nil {
				log.Warn("access token cookie missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication required", http.StatusUnauthorized))
				return
			}

			user, err := authService.Authenticate(r.Context(), accessCookie.Value)
			if err == nil {
				next.ServeHTTP(w, WithUser(r, user))
				return
			}

			// Обновление имеет смысл только при сбое самого токена.
			// Валидный токен несуществующего пользователя — не повод
			// для ротации: рендерим ошибку сервиса как есть.
			if !tokenFailure(err) {
				log.Warn("authentication failed", sl.Err(err))
				response.RenderError(w, r, err)
				return
			}

			refreshCookie, cookieErr := r.Cookie(cookies.RefreshToken)
			if cookieErr != nil {
				log.Warn("refresh token cookie missing", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication required", http.StatusUnauthorized))
				return
			}

			user, pair, err := authService.Refresh(r.Context(), refreshCookie.Value)
			if err != nil {
				log.Warn("transparent refresh failed", sl.Err(err))
				response.RenderError(w, r, err)
				return
			}

			cookies.SetTokenPair(w, pair.Access, pair.Refresh, accessTTL, refreshTTL)
			log.Info("session refreshed transparently", slog.String("uid", user.UID))
			next.ServeHTTP(w, WithUser(r, user))
		})
	}
}

// tokenFailure сообщает, что ошибка вызвана проверкой access-токена.
func tokenFailure(err error) bool {
	return errors.Is(err, jwt.ErrExpired) ||
		errors.Is(err, jwt.ErrMalformed) ||
		errors.Is(err, jwt.ErrInvalidSignature)
}
