package login

import (
	"bytes"
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
	"github.com/brainxcel/lms-backend/internal/models"
	"github.com/brainxcel/lms-backend/internal/services/auth"
)

type MockService struct{ mock.Mock }

func (m *MockService) Login(ctx context.Context, email, password string) (*models.User, auth.TokenPair, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, auth.TokenPair{}, args.Error(2)
	}
	return args.Get(0).(*models.User), args.Get(1).(auth.TokenPair), args.Error(2)
}

func newHandler(svc *MockService) *Handler {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return New(slog.New(h), svc, time.Hour, 168*time.Hour)
}

func TestLogin(t *testing.T) {
	svc := new(MockService)
	user := &models.User{UID: "uid-1", Email: "student@example.com", Role: models.RoleUser}
	svc.On("Login", mock.Anything, "student@example.com", "secret123").
		Return(user, auth.TokenPair{Access: "acc", Refresh: "ref"}, nil)

	body := bytes.NewBufferString(`{"email":"student@example.com","password":"secret123"}`)
	r := httptest.NewRequest(http.MethodPost, "/login", body)
	w := httptest.NewRecorder()
	newHandler(svc).ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)

	set := map[string]*http.Cookie{}
	for _, c := range w.Result().Cookies() {
		set[c.Name] = c
	}
	require.Contains(t, set, cookies.AccessToken)
	require.Contains(t, set, cookies.RefreshToken)
	assert.Equal(t, "acc", set[cookies.AccessToken].Value)
	assert.Equal(t, "ref", set[cookies.RefreshToken].Value)
	assert.True(t, set[cookies.AccessToken].HttpOnly)
	assert.True(t, set[cookies.AccessToken].Secure)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := new(MockService)
	svc.On("Login", mock.Anything, "student@example.com", "wrong").
		Return(nil, auth.TokenPair{}, apperr.New(apperr.KindUnauthorized, "email or password does not match"))

	body := bytes.NewBufferString(`{"email":"student@example.com","password":"wrong"}`)
	r := httptest.NewRequest(http.MethodPost, "/login", body)
	w := httptest.NewRecorder()
	newHandler(svc).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "email or password does not match")
	assert.Empty(t, w.Result().Cookies())
}

func TestLogin_ValidationFailure(t *testing.T) {
	svc := new(MockService)

	body := bytes.NewBufferString(`{"email":"not-an-email"}`)
	r := httptest.NewRequest(http.MethodPost, "/login", body)
	w := httptest.NewRecorder()
	newHandler(svc).ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_MalformedBody(t *testing.T) {
	svc := new(MockService)

	r := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	newHandler(svc).ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
