package middlewarectx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/brainxcel/lms-backend/internal/apperr"
	"github.com/brainxcel/lms-backend/internal/http/cookies"
	"github.com/brainxcel/lms-backend/internal/lib/jwt"
	"github.com/brainxcel/lms-backend/internal/models"
	"github.com/brainxcel/lms-backend/internal/services/auth"
)

// expiredAccessErr воспроизводит ошибку Authenticate для истекшего токена.
func expiredAccessErr() error {
	return apperr.Wrap(apperr.KindUnauthorized, "invalid or expired access token", jwt.ErrExpired)
}

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, presented string) (*models.User, auth.TokenPair, error) {
	args := m.Called(ctx, presented)
	if args.Get(0) == nil {
		return nil, auth.TokenPair{}, args.Error(2)
	}
	return args.Get(0).(*models.User), args.Get(1).(auth.TokenPair), args.Error(2)
}

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func echoUser(t *testing.T, captured **models.User) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		require.True(t, ok)
		*captured = user
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionGate_ValidAccessToken(t *testing.T) {
	svc := new(MockAuthService)
	user := &models.User{UID: "uid-1", Role: models.RoleUser}
	svc.On("Authenticate", mock.Anything, "valid-access").Return(user, nil)

	var captured *models.User
	gate := SessionGate(svc, time.Hour, 168*time.Hour, noopLogger())
	handler := gate(echoUser(t, &captured))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: cookies.AccessToken, Value: "valid-access"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "uid-1", captured.UID)
	svc.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
}

func TestSessionGate_MissingAccessCookie(t *testing.T) {
	svc := new(MockAuthService)
	gate := SessionGate(svc, time.Hour, 168*time.Hour, noopLogger())
	handler := gate(http.NotFoundHandler())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionGate_TransparentRefresh(t *testing.T) {
	svc := new(MockAuthService)
	user := &models.User{UID: "uid-1", Role: models.RoleUser}
	svc.On("Authenticate", mock.Anything, "stale-access").
		Return(nil, expiredAccessErr())
	svc.On("Refresh", mock.Anything, "valid-refresh").
		Return(user, auth.TokenPair{Access: "new-access", Refresh: "new-refresh"}, nil)

	var captured *models.User
	gate := SessionGate(svc, time.Hour, 168*time.Hour, noopLogger())
	handler := gate(echoUser(t, &captured))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: cookies.AccessToken, Value: "stale-access"})
	r.AddCookie(&http.Cookie{Name: cookies.RefreshToken, Value: "valid-refresh"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)

	set := map[string]string{}
	for _, c := range w.Result().Cookies() {
		set[c.Name] = c.Value
	}
	assert.Equal(t, "new-access", set[cookies.AccessToken])
	assert.Equal(t, "new-refresh", set[cookies.RefreshToken])
}

func TestSessionGate_MissingRefreshCookie(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Authenticate", mock.Anything, "stale-access").
		Return(nil, expiredAccessErr())

	gate := SessionGate(svc, time.Hour, 168*time.Hour, noopLogger())
	handler := gate(http.NotFoundHandler())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: cookies.AccessToken, Value: "stale-access"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
}

func TestSessionGate_UnknownUserIsUnauthorized(t *testing.T) {
	svc := new(MockAuthService)
	// Подпись токена валидна, но пользователя уже нет в базе:
	// обновление пары бессмысленно, сразу 401.
	svc.On("Authenticate", mock.Anything, "orphan-access").
		Return(nil, apperr.New(apperr.KindUnauthorized, "user not found"))

	gate := SessionGate(svc, time.Hour, 168*time.Hour, noopLogger())
	handler := gate(http.NotFoundHandler())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: cookies.AccessToken, Value: "orphan-access"})
	r.AddCookie(&http.Cookie{Name: cookies.RefreshToken, Value: "orphan-refresh"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
}

func TestSessionGate_RefreshFailureIsSessionExpired(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Authenticate", mock.Anything, "stale-access").
		Return(nil, expiredAccessErr())
	svc.On("Refresh", mock.Anything, "rotated-away").
		Return(nil, auth.TokenPair{}, apperr.New(apperr.KindSessionExpired, "session expired, please login again"))

	gate := SessionGate(svc, time.Hour, 168*time.Hour, noopLogger())
	handler := gate(http.NotFoundHandler())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: cookies.AccessToken, Value: "stale-access"})
	r.AddCookie(&http.Cookie{Name: cookies.RefreshToken, Value: "rotated-away"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "session expired")
}
