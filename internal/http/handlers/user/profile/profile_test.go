package profile

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

	"github.com/brainxcel/lms-backend/internal/http/middlewarectx"
	"github.com/brainxcel/lms-backend/internal/models"
)

type MockEntitlement struct{ mock.Mock }

func (m *MockEntitlement) ReconcileExpiry(ctx context.Context, user *models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockCache struct{ mock.Mock }

func (m *MockCache) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func newHandler(ent *MockEntitlement, c *MockCache) *Handler {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return New(slog.New(h), ent, c)
}

func TestProfile_CacheMiss(t *testing.T) {
	ent := new(MockEntitlement)
	c := new(MockCache)

	user := &models.User{UID: "uid-1", Email: "student@example.com", Role: models.RoleUser}
	ent.On("ReconcileExpiry", mock.Anything, user).Return(user, nil)
	c.On("Get", mock.Anything, "profile:uid-1", mock.Anything).Return(false, nil)
	c.On("Set", mock.Anything, "profile:uid-1", user, profileTTL).Return(nil)

	r := httptest.NewRequest(http.MethodGet, "/profile", nil)
	r = middlewarectx.WithUser(r, user)
	w := httptest.NewRecorder()
	newHandler(ent, c).ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "student@example.com")
	c.AssertExpectations(t)
}

func TestProfile_CacheHit(t *testing.T) {
	ent := new(MockEntitlement)
	c := new(MockCache)

	user := &models.User{UID: "uid-1", Email: "student@example.com", Role: models.RoleUser}
	ent.On("ReconcileExpiry", mock.Anything, user).Return(user, nil)
	c.On("Get", mock.Anything, "profile:uid-1", mock.Anything).
		Run(func(args mock.Arguments) {
			cached := args.Get(2).(*models.User)
			*cached = *user
		}).Return(true, nil)

	r := httptest.NewRequest(http.MethodGet, "/profile", nil)
	r = middlewarectx.WithUser(r, user)
	w := httptest.NewRecorder()
	newHandler(ent, c).ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProfile_CacheFailureFallsThrough(t *testing.T) {
	ent := new(MockEntitlement)
	c := new(MockCache)

	user := &models.User{UID: "uid-1", Email: "student@example.com", Role: models.RoleUser}
	ent.On("ReconcileExpiry", mock.Anything, user).Return(user, nil)
	c.On("Get", mock.Anything, "profile:uid-1", mock.Anything).Return(false, assert.AnError)
	c.On("Set", mock.Anything, "profile:uid-1", user, profileTTL).Return(assert.AnError)

	r := httptest.NewRequest(http.MethodGet, "/profile", nil)
	r = middlewarectx.WithUser(r, user)
	w := httptest.NewRecorder()
	newHandler(ent, c).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "student@example.com")
}

func TestProfile_NoUserInContext(t *testing.T) {
	ent := new(MockEntitlement)
	c := new(MockCache)

	r := httptest.NewRequest(http.MethodGet, "/profile", nil)
	w := httptest.NewRecorder()
	newHandler(ent, c).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
