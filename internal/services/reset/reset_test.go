package reset

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/brainxcel/lms-backend/internal/apperr"
	"github.com/brainxcel/lms-backend/internal/lib/password"
	"github.com/brainxcel/lms-backend/internal/lib/resettoken"
	"github.com/brainxcel/lms-backend/internal/models"
	"github.com/brainxcel/lms-backend/internal/storage"
)

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	args := m.Called(ctx, tokenHash, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) SetResetToken(ctx context.Context, uid, tokenHash string, expiry time.Time) error {
	args := m.Called(ctx, uid, tokenHash, expiry)
	return args.Error(0)
}

func (m *MockUserRepository) ClearResetToken(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func (m *MockUserRepository) ResetPassword(ctx context.Context, uid, passwordHash string) error {
	args := m.Called(ctx, uid, passwordHash)
	return args.Error(0)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(job models.EmailJob) error {
	args := m.Called(job)
	return args.Error(0)
}

func newService(users *MockUserRepository, emails *MockPublisher) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return New(users, emails, 15*time.Minute, "https://brainxcel.io", log)
}

func TestRequestReset(t *testing.T) {
	users := new(MockUserRepository)
	emails := new(MockPublisher)
	svc := newService(users, emails)

	user := &models.User{UID: "uid-1", Email: "student@example.com", FullName: "Student One"}
	users.On("GetUserByEmail", mock.Anything, "student@example.com").Return(user, nil)

	var storedHash string
	users.On("SetResetToken", mock.Anything, "uid-1", mock.AnythingOfType("string"),
		mock.MatchedBy(func(expiry time.Time) bool {
			return expiry.After(time.Now().Add(14 * time.Minute))
		})).Run(func(args mock.Arguments) {
		storedHash = args.String(2)
	}).Return(nil)

	emails.On("Publish", mock.MatchedBy(func(job models.EmailJob) bool {
		return job.To == "student@example.com" &&
			strings.Contains(job.Body, "https://brainxcel.io/reset-password/")
	})).Run(func(args mock.Arguments) {
		// В письме лежит исходный токен, в базе — только его хеш.
		job := args.Get(0).(models.EmailJob)
		start := strings.Index(job.Body, "/reset-password/") + len("/reset-password/")
		token := job.Body[start : start+64]
		assert.Equal(t, storedHash, resettoken.Hash(token))
		assert.NotEqual(t, storedHash, token)
	}).Return(nil)

	require.NoError(t, svc.RequestReset(context.Background(), "student@example.com"))
	users.AssertExpectations(t)
	emails.AssertExpectations(t)
}

func TestRequestReset_UnknownEmail(t *testing.T) {
	users := new(MockUserRepository)
	emails := new(MockPublisher)
	svc := newService(users, emails)

	users.On("GetUserByEmail", mock.Anything, "nobody@example.com").
		Return(nil, storage.ErrNotFound)

	err := svc.RequestReset(context.Background(), "nobody@example.com")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	emails.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestRequestReset_PublishFailureClearsToken(t *testing.T) {
	users := new(MockUserRepository)
	emails := new(MockPublisher)
	svc := newService(users, emails)

	user := &models.User{UID: "uid-1", Email: "student@example.com"}
	users.On("GetUserByEmail", mock.Anything, "student@example.com").Return(user, nil)
	users.On("SetResetToken", mock.Anything, "uid-1", mock.Anything, mock.Anything).Return(nil)
	users.On("ClearResetToken", mock.Anything, "uid-1").Return(nil)
	emails.On("Publish", mock.Anything).Return(assert.AnError)

	err := svc.RequestReset(context.Background(), "student@example.com")
	assert.True(t, apperr.IsKind(err, apperr.KindUpstream))
	users.AssertCalled(t, "ClearResetToken", mock.Anything, "uid-1")
}

func TestRedeemReset(t *testing.T) {
	users := new(MockUserRepository)
	emails := new(MockPublisher)
	svc := newService(users, emails)

	token, err := resettoken.New()
	require.NoError(t, err)

	user := &models.User{UID: "uid-1", Email: "student@example.com"}
	users.On("GetUserByResetToken", mock.Anything, resettoken.Hash(token), mock.Anything).
		Return(user, nil)
	users.On("ResetPassword", mock.Anything, "uid-1", mock.MatchedBy(func(hash string) bool {
		return password.CompareHash(hash, "newsecret") == nil
	})).Return(nil)

	require.NoError(t, svc.RedeemReset(context.Background(), token, "newsecret"))
	users.AssertExpectations(t)
}

func TestRedeemReset_InvalidOrExpired(t *testing.T) {
	users := new(MockUserRepository)
	emails := new(MockPublisher)
	svc := newService(users, emails)

	users.On("GetUserByResetToken", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, storage.ErrNotFound)

	err := svc.RedeemReset(context.Background(), "stale-token", "newsecret")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	users.AssertNotCalled(t, "ResetPassword", mock.Anything, mock.Anything, mock.Anything)
}
