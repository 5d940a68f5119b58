// Package auth содержит бизнес-логику жизненного цикла сессии:
// регистрация, вход, выход, прозрачное обновление пары токенов
// с ротацией refresh-токена и смена пароля.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/brainxcel/lms-backend/internal/apperr"
	"github.com/brainxcel/lms-backend/internal/lib/jwt"
	"github.com/brainxcel/lms-backend/internal/lib/password"
	"github.com/brainxcel/lms-backend/internal/lib/resettoken"
	"github.com/brainxcel/lms-backend/internal/lib/sl"
	"github.com/brainxcel/lms-backend/internal/models"
	"github.com/brainxcel/lms-backend/internal/storage"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateRefreshToken(ctx context.Context, userUID string, token *string) error
	UpdatePassword(ctx context.Context, userUID, passwordHash string) error
}

// TokenPair — пара bearer-токенов, доставляемая клиенту в cookie.
type TokenPair struct {
	Access  string
	Refresh string
}

// Service отвечает за аутентификацию и управление сессией.
type Service struct {
	users      UserRepository
	tokens     jwt.Maker
	guestEmail string
	log        *slog.Logger
}

// New создает новый экземпляр Service.
func New(users UserRepository, tokens jwt.Maker, guestEmail string, log *slog.Logger) *Service {
	return &Service{
		users:      users,
		tokens:     tokens,
		guestEmail: guestEmail,
		log:        log,
	}
}

// Register создает нового пользователя с ролью USER и сразу открывает сессию.
// Пароль хранится только в виде bcrypt-хеша.
func (s *Service) Register(ctx context.Context, fullName, email, rawPassword string) (*models.User, TokenPair, error) {
	const op = "auth.Register"

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, TokenPair{}, apperr.Wrap(apperr.KindUpstream, "failed to register user", err)
	}

	user := models.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: hashed,
		Role:         models.RoleUser,
		Subscription: models.Subscription{Status: models.StatusCompleted},
	}
	uid, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, TokenPair{}, apperr.New(apperr.KindConflict, "email already exists")
		}
		return nil, TokenPair{}, apperr.Wrap(apperr.KindUpstream, "failed to register user", err)
	}

	created, err := s.users.GetUser(ctx, uid)
	if err != nil {
		return nil, TokenPair{}, apperr.Wrap(apperr.KindUpstream, "failed to register user", err)
	}

	pair, err := s.openSession(ctx, created.UID)
	if err != nil {
		s.log.Error("failed to open session after registration", slog.String("op", op), sl.Err(err))
		return nil, TokenPair{}, err
	}
	return created, pair, nil
}

// Login проверяет учетные данные и открывает новую сессию.
// Несуществующий email и неверный пароль неразличимы для клиента.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*models.User, TokenPair, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, TokenPair{}, apperr.New(apperr.KindUnauthorized, "email or password does not match")
		}
		return nil, TokenPair{}, apperr.Wrap(apperr.KindUpstream, "failed to login", err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, TokenPair{}, apperr.New(apperr.KindUnauthorized, "email or password does not match")
	}

	pair, err := s.openSession(ctx, user.UID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}

// GuestLogin открывает сессию демонстрационной учетной записи с ролью GUEST.
// Учетная запись создается при первом обращении со случайным паролем.
func (s *Service) GuestLogin(ctx context.Context) (*models.User, TokenPair, error) {
	const op = "auth.GuestLogin"

	user, err := s.users.GetUserByEmail(ctx, s.guestEmail)
	if errors.Is(err, storage.ErrNotFound) {
		randomPassword, genErr := resettoken.New()
		if genErr != nil {
			return nil, TokenPair{}, apperr.Wrap(apperr.KindUpstream, "failed to login as guest", genErr)
		}
		hashed, hashErr := password.GetHash(randomPassword)
		if hashErr != nil {
			return nil, TokenPair{}, apperr.Wrap(apperr.KindUpstream, "failed to login as guest", hashErr)
		}
		uid, createErr := s.users.CreateUser(ctx, models.User{
			Email:        s.guestEmail,
			FullName:     "Guest",
			PasswordHash: hashed,
			Role:         models.RoleGuest,
			Subscription: models.Subscription{Status: models.StatusCompleted},
		})
		switch {
		case errors.Is(createErr, storage.ErrDuplicate):
			// Параллельный первый вход успел создать учетную запись.
			user, err = s.users.GetUserByEmail(ctx, s.guestEmail)
		case createErr != nil:
			return nil, TokenPair{}, apperr.Wrap(apperr.KindUpstream, "failed to login as guest", createErr)
		default:
			s.log.Info("guest account created", slog.String("op", op))
			user, err = s.users.GetUser(ctx, uid)
		}
	}
	if err != nil {
		return nil, TokenPair{}, apperr.Wrap(apperr.KindUpstream, "failed to login as guest", err)
	}

	pair, err := s.openSession(ctx, user.UID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}

// Authenticate проверяет access-токен и возвращает его владельца.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	uid, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "invalid or expired access token", err)
	}
	user, err := s.users.GetUser(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.New(apperr.KindUnauthorized, "user not found")
		}
		return nil, apperr.Wrap(apperr.KindUpstream, "failed to authenticate", err)
	}
	return user, nil
}

// Refresh проверяет refresh-токен, сверяет его с единственным сохранённым
// значением и ротирует пару: новый refresh-токен перезаписывает старый,
// после чего прежний токен непригоден даже при валидной подписи.
// Любой сбой означает, что сессия истекла и требуется повторный вход.
func (s *Service) Refresh(ctx context.Context, presented string) (*models.User, TokenPair, error) {
	const op = "auth.Refresh"

	uid, err := s.tokens.VerifyRefresh(presented)
	if err != nil {
		return nil, TokenPair{}, apperr.Wrap(apperr.KindSessionExpired, "session expired, please login again", err)
	}
	user, err := s.users.GetUser(ctx, uid)
	if err != nil {
		return nil, TokenPair{}, apperr.Wrap(apperr.KindSessionExpired, "session expired, please login again", err)
	}
	if user.RefreshToken == nil || *user.RefreshToken != presented {
		s.log.Warn("presented refresh token does not match stored one", slog.String("op", op))
		return nil, TokenPair{}, apperr.New(apperr.KindSessionExpired, "session expired, please login again")
	}

	pair, err := s.openSession(ctx, user.UID)
	if err != nil {
		return nil, TokenPair{}, apperr.Wrap(apperr.KindSessionExpired, "session expired, please login again", err)
	}
	return user, pair, nil
}

// Logout закрывает сессию: сохранённый refresh-токен очищается.
func (s *Service) Logout(ctx context.Context, userUID string) error {
	if err := s.users.UpdateRefreshToken(ctx, userUID, nil); err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to logout", err)
	}
	return nil
}

// ChangePassword меняет пароль после проверки старого.
func (s *Service) ChangePassword(ctx context.Context, userUID, oldPassword, newPassword string) error {
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to change password", err)
	}
	if err := password.CompareHash(user.PasswordHash, oldPassword); err != nil {
		return apperr.New(apperr.KindValidation, "old password is incorrect")
	}
	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to change password", err)
	}
	if err := s.users.UpdatePassword(ctx, userUID, hashed); err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to change password", err)
	}
	return nil
}

// openSession выпускает пару токенов и перезаписывает сохранённый
// refresh-токен пользователя (инвариант единственного активного токена).
func (s *Service) openSession(ctx context.Context, userUID string) (TokenPair, error) {
	access, refresh, err := s.tokens.IssuePair(userUID)
	if err != nil {
		return TokenPair{}, apperr.Wrap(apperr.KindUpstream, "failed to issue tokens", err)
	}
	if err := s.users.UpdateRefreshToken(ctx, userUID, &refresh); err != nil {
		return TokenPair{}, apperr.Wrap(apperr.KindUpstream, "failed to persist refresh token", err)
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}
