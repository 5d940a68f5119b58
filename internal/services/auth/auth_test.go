package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainxcel/lms-backend/internal/apperr"
	"github.com/brainxcel/lms-backend/internal/lib/jwt"
	"github.com/brainxcel/lms-backend/internal/models"
	"github.com/brainxcel/lms-backend/internal/storage"
)

// fakeUserRepo — репозиторий в памяти для тестов жизненного цикла сессии.
type fakeUserRepo struct {
	byUID   map[string]*models.User
	byEmail map[string]string
	nextUID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byUID:   make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user models.User) (string, error) {
	if _, ok := r.byEmail[user.Email]; ok {
		return "", storage.ErrDuplicate
	}
	r.nextUID++
	uid := fmt.Sprintf("uid-%d", r.nextUID)
	user.UID = uid
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	r.byUID[uid] = &user
	r.byEmail[user.Email] = uid
	return uid, nil
}

func (r *fakeUserRepo) GetUser(_ context.Context, uid string) (*models.User, error) {
	user, ok := r.byUID[uid]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	uid, ok := r.byEmail[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return r.GetUser(ctx, uid)
}

func (r *fakeUserRepo) UpdateRefreshToken(_ context.Context, uid string, token *string) error {
	user, ok := r.byUID[uid]
	if !ok {
		return storage.ErrNotFound
	}
	user.RefreshToken = token
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, uid, hash string) error {
	user, ok := r.byUID[uid]
	if !ok {
		return storage.ErrNotFound
	}
	user.PasswordHash = hash
	return nil
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newTestService(t *testing.T, repo *fakeUserRepo) *Service {
	t.Helper()
	maker := jwt.NewMaker("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	return New(repo, maker, "guest@brainxcel.io", newNoopLogger())
}

func TestRegister_OpensSession(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo)

	user, pair, err := svc.Register(context.Background(), "Student One", "student@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.StatusCompleted, user.Subscription.Status)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)

	stored, err := repo.GetUser(context.Background(), user.UID)
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, pair.Refresh, *stored.RefreshToken)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo)

	_, _, err := svc.Register(context.Background(), "Student One", "student@example.com", "secret123")
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), "Impostor", "student@example.com", "secret456")
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo)

	_, _, err := svc.Register(context.Background(), "Student One", "student@example.com", "secret123")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantKind apperr.Kind
		wantOK   bool
	}{
		{name: "valid credentials", email: "student@example.com", password: "secret123", wantOK: true},
		{name: "wrong password", email: "student@example.com", password: "wrong", wantKind: apperr.KindUnauthorized},
		{name: "unknown email", email: "nobody@example.com", password: "secret123", wantKind: apperr.KindUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, pair, err := svc.Login(context.Background(), tt.email, tt.password)
			if tt.wantOK {
				require.NoError(t, err)
				assert.NotEmpty(t, pair.Access)
				assert.Equal(t, tt.email, user.Email)
				return
			}
			assert.True(t, apperr.IsKind(err, tt.wantKind))
		})
	}
}

func TestRefresh_RotationInvalidatesPreviousToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo)

	_, pair, err := svc.Register(context.Background(), "Student One", "student@example.com", "secret123")
	require.NoError(t, err)

	_, rotated, err := svc.Refresh(context.Background(), pair.Refresh)
	require.NoError(t, err)
	assert.NotEqual(t, pair.Refresh, rotated.Refresh)

	// Прежний токен криптографически валиден, но уже перезаписан.
	_, _, err = svc.Refresh(context.Background(), pair.Refresh)
	assert.True(t, apperr.IsKind(err, apperr.KindSessionExpired))

	_, _, err = svc.Refresh(context.Background(), rotated.Refresh)
	assert.NoError(t, err)
}

func TestRefresh_GarbageToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo)

	_, _, err := svc.Refresh(context.Background(), "not-a-jwt")
	assert.True(t, apperr.IsKind(err, apperr.KindSessionExpired))
}

func TestLogout_ClearsRefreshToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo)

	user, pair, err := svc.Register(context.Background(), "Student One", "student@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), user.UID))

	stored, err := repo.GetUser(context.Background(), user.UID)
	require.NoError(t, err)
	assert.Nil(t, stored.RefreshToken)

	_, _, err = svc.Refresh(context.Background(), pair.Refresh)
	assert.True(t, apperr.IsKind(err, apperr.KindSessionExpired))
}

func TestAuthenticate(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo)

	user, pair, err := svc.Register(context.Background(), "Student One", "student@example.com", "secret123")
	require.NoError(t, err)

	got, err := svc.Authenticate(context.Background(), pair.Access)
	require.NoError(t, err)
	assert.Equal(t, user.UID, got.UID)

	_, err = svc.Authenticate(context.Background(), "garbage")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestAuthenticate_ExpiredAccessToken(t *testing.T) {
	repo := newFakeUserRepo()
	expired := jwt.NewMaker("access-secret", "refresh-secret", -time.Minute, 24*time.Hour)
	svc := New(repo, expired, "guest@brainxcel.io", newNoopLogger())

	_, pair, err := svc.Register(context.Background(), "Student One", "student@example.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), pair.Access)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestGuestLogin_CreatesAccountOnce(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo)

	first, _, err := svc.GuestLogin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.RoleGuest, first.Role)

	second, _, err := svc.GuestLogin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.UID, second.UID)
	assert.Len(t, repo.byUID, 1)
}

// racingGuestRepo имитирует проигрыш гонки за создание гостевой записи:
// вставка упирается в уникальность email, хотя запись появилась после
// первоначальной проверки.
type racingGuestRepo struct {
	*fakeUserRepo
	rivalEmail string
}

func (r *racingGuestRepo) CreateUser(ctx context.Context, user models.User) (string, error) {
	if user.Email == r.rivalEmail {
		if _, err := r.fakeUserRepo.CreateUser(ctx, models.User{
			Email:        r.rivalEmail,
			FullName:     "Guest",
			Role:         models.RoleGuest,
			Subscription: models.Subscription{Status: models.StatusCompleted},
		}); err != nil {
			return "", err
		}
		return "", storage.ErrDuplicate
	}
	return r.fakeUserRepo.CreateUser(ctx, user)
}

func TestGuestLogin_ConcurrentFirstLogin(t *testing.T) {
	repo := &racingGuestRepo{fakeUserRepo: newFakeUserRepo(), rivalEmail: "guest@brainxcel.io"}
	maker := jwt.NewMaker("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	svc := New(repo, maker, "guest@brainxcel.io", newNoopLogger())

	user, pair, err := svc.GuestLogin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.RoleGuest, user.Role)
	assert.NotEmpty(t, pair.Access)
	assert.Len(t, repo.byUID, 1)
}

func TestChangePassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo)

	user, _, err := svc.Register(context.Background(), "Student One", "student@example.com", "secret123")
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), user.UID, "wrong-old", "newsecret")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	require.NoError(t, svc.ChangePassword(context.Background(), user.UID, "secret123", "newsecret"))

	_, _, err = svc.Login(context.Background(), "student@example.com", "newsecret")
	assert.NoError(t, err)
}
