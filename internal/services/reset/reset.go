// Package reset содержит бизнес-логику восстановления пароля:
// выпуск одноразового токена, доставку ссылки по почте и смену пароля
// по предъявленному токену.
package reset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/brainxcel/lms-backend/internal/apperr"
	"github.com/brainxcel/lms-backend/internal/lib/password"
	"github.com/brainxcel/lms-backend/internal/lib/resettoken"
	"github.com/brainxcel/lms-backend/internal/lib/sl"
	"github.com/brainxcel/lms-backend/internal/models"
	"github.com/brainxcel/lms-backend/internal/storage"
)

// UserRepository описывает контракт хранилища для восстановления пароля.
type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
	SetResetToken(ctx context.Context, userUID, tokenHash string, expiry time.Time) error
	ClearResetToken(ctx context.Context, userUID string) error
	ResetPassword(ctx context.Context, userUID, passwordHash string) error
}

// EmailPublisher публикует задания на отправку писем восстановления.
type EmailPublisher interface {
	Publish(job models.EmailJob) error
}

// Service реализует выпуск и погашение токенов восстановления пароля.
type Service struct {
	users      UserRepository
	emails     EmailPublisher
	resetTTL   time.Duration
	appBaseURL string
	log        *slog.Logger
}

// New создает новый экземпляр Service.
func New(users UserRepository, emails EmailPublisher, resetTTL time.Duration,
	appBaseURL string, log *slog.Logger) *Service {
	return &Service{
		users:      users,
		emails:     emails,
		resetTTL:   resetTTL,
		appBaseURL: appBaseURL,
		log:        log,
	}
}

// RequestReset выпускает одноразовый токен восстановления и отправляет
// пользователю ссылку по почте. В базе хранится только хеш токена;
// если письмо опубликовать не удалось, токен сразу очищается.
func (s *Service) RequestReset(ctx context.Context, email string) error {
	const op = "reset.RequestReset"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.KindNotFound, "email not registered")
		}
		return apperr.Wrap(apperr.KindUpstream, "failed to request password reset", err)
	}

	token, err := resettoken.New()
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to request password reset", err)
	}
	expiry := time.Now().Add(s.resetTTL)
	if err := s.users.SetResetToken(ctx, user.UID, resettoken.Hash(token), expiry); err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to request password reset", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.appBaseURL, token)
	job := models.EmailJob{
		To:      user.Email,
		Subject: "Reset password",
		Body: fmt.Sprintf("<p>Hi %s,</p><p>Click <a href=%q>here</a> to reset your password. "+
			"The link is valid for %d minutes.</p>", user.FullName, resetURL, int(s.resetTTL.Minutes())),
	}
	if err := s.emails.Publish(job); err != nil {
		// Ссылка не дойдёт до пользователя, висящий токен бесполезен.
		if clearErr := s.users.ClearResetToken(ctx, user.UID); clearErr != nil {
			s.log.Error("failed to clear dangling reset token", slog.String("op", op), sl.Err(clearErr))
		}
		return apperr.Wrap(apperr.KindUpstream, "failed to send reset email", err)
	}

	s.log.Info("password reset requested", slog.String("op", op), slog.String("uid", user.UID))
	return nil
}

// RedeemReset меняет пароль по одноразовому токену. Токен ищется по хешу
// среди неистекших; успешная смена пароля очищает токен, повтор невозможен.
func (s *Service) RedeemReset(ctx context.Context, token, newPassword string) error {
	const op = "reset.RedeemReset"

	user, err := s.users.GetUserByResetToken(ctx, resettoken.Hash(token), time.Now())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.KindValidation, "reset token is invalid or expired")
		}
		return apperr.Wrap(apperr.KindUpstream, "failed to reset password", err)
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to reset password", err)
	}
	if err := s.users.ResetPassword(ctx, user.UID, hashed); err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to reset password", err)
	}

	s.log.Info("password reset redeemed", slog.String("op", op), slog.String("uid", user.UID))
	return nil
}
