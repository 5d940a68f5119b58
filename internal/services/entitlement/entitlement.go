// Package entitlement содержит бизнес-логику подписок и покупок курсов:
// машину состояний подписки, проверку подписи платежей, журнал платежей
// и ленивое истечение подписки при чтении профиля.
package entitlement

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/brainxcel/lms-backend/internal/apperr"
	"github.com/brainxcel/lms-backend/internal/cache"
	"github.com/brainxcel/lms-backend/internal/lib/sl"
	"github.com/brainxcel/lms-backend/internal/models"
	"github.com/brainxcel/lms-backend/internal/paymentgateway"
	"github.com/brainxcel/lms-backend/internal/storage"
)

// Repository описывает контракт хранилища для подписок и журнала платежей.
type Repository interface {
	UpdateSubscription(ctx context.Context, userUID string, sub models.Subscription) error
	AddPurchasedCourse(ctx context.Context, userUID, courseID string) error
	CreatePayment(ctx context.Context, payment models.Payment) error
	PaymentExists(ctx context.Context, paymentID string) (bool, error)
	ListPayments(ctx context.Context, limit int) ([]*models.Payment, error)
}

// Gateway описывает контракт внешнего платёжного шлюза.
type Gateway interface {
	CreateSubscription(ctx context.Context, planID string) (*paymentgateway.SubscriptionResponse, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (*paymentgateway.SubscriptionResponse, error)
	CreateOrder(ctx context.Context, amount int64, currency string) (*paymentgateway.OrderResponse, error)
}

// ProfileCache инвалидирует кэшированный профиль после мутаций подписки.
type ProfileCache interface {
	Invalidate(ctx context.Context, key string) error
}

// EmailPublisher публикует задания на отправку транзакционных писем.
type EmailPublisher interface {
	Publish(job models.EmailJob) error
}

// Service реализует операции подписки и покупки курсов.
type Service struct {
	repo         Repository
	gateway      Gateway
	cache        ProfileCache
	emails       EmailPublisher
	keySecret    string
	planID       string
	planDuration time.Duration
	log          *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, gateway Gateway, cache ProfileCache, emails EmailPublisher,
	keySecret, planID string, planDuration time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:         repo,
		gateway:      gateway,
		cache:        cache,
		emails:       emails,
		keySecret:    keySecret,
		planID:       planID,
		planDuration: planDuration,
		log:          log,
	}
}

// BuySubscription создает подписку в платёжном шлюзе и сохраняет её
// идентификатор и статус у пользователя. Персонал платформы подписку
// не оплачивает, действующая подписка не переоформляется.
func (s *Service) BuySubscription(ctx context.Context, user *models.User) (*models.Subscription, error) {
	const op = "entitlement.BuySubscription"

	if user.Role.IsStaff() {
		return nil, apperr.New(apperr.KindForbidden, "staff members cannot purchase a subscription")
	}
	if user.Subscription.IsActive(time.Now()) {
		return nil, apperr.New(apperr.KindConflict, "subscription is already active")
	}

	resp, err := s.gateway.CreateSubscription(ctx, s.planID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "failed to create subscription", err)
	}
	status, err := models.ParseSubscriptionStatus(resp.Status)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "failed to create subscription", err)
	}

	sub := models.Subscription{ID: resp.ID, Status: status}
	if err := s.repo.UpdateSubscription(ctx, user.UID, sub); err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "failed to create subscription", err)
	}
	s.invalidateProfile(ctx, op, user.UID)

	s.log.Info("subscription created",
		slog.String("op", op), slog.String("subscription_id", resp.ID))
	return &sub, nil
}

// VerifySubscriptionPayment проверяет подпись платежа за подписку.
// Персонал платформы подписку не оплачивает, как и при оформлении.
// Платёж с уже записанным идентификатором отклоняется (идемпотентность).
// При совпадении подписи платёж попадает в журнал, подписка активируется
// и получает срок действия, а пользователю отправляется письмо.
func (s *Service) VerifySubscriptionPayment(ctx context.Context, user *models.User,
	paymentID, signature string, amount int64, currency string) error {
	const op = "entitlement.VerifySubscriptionPayment"

	if user.Role.IsStaff() {
		return apperr.New(apperr.KindForbidden, "staff members cannot purchase a subscription")
	}

	exists, err := s.repo.PaymentExists(ctx, paymentID)
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to verify payment", err)
	}
	if exists {
		return apperr.New(apperr.KindConflict, "payment already recorded")
	}

	subscriptionID := user.Subscription.ID
	if !s.signatureValid(paymentID+"|"+subscriptionID, signature) {
		return apperr.New(apperr.KindVerificationFailed, "payment verification failed, please try again")
	}

	payment := models.Payment{
		PaymentID:      paymentID,
		SubscriptionID: subscriptionID,
		Signature:      signature,
		Amount:         amount,
		Currency:       currency,
		UserUID:        user.UID,
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return apperr.New(apperr.KindConflict, "payment already recorded")
		}
		return apperr.Wrap(apperr.KindUpstream, "failed to verify payment", err)
	}

	expiresOn := time.Now().Add(s.planDuration)
	sub := models.Subscription{
		ID:        subscriptionID,
		Status:    models.StatusActive,
		ExpiresOn: &expiresOn,
	}
	if err := s.repo.UpdateSubscription(ctx, user.UID, sub); err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to verify payment", err)
	}
	s.invalidateProfile(ctx, op, user.UID)

	if err := s.emails.Publish(models.EmailJob{
		To:      user.Email,
		Subject: "Payment confirmed",
		Body: fmt.Sprintf("<p>Hi %s,</p><p>Your subscription payment %s has been verified. "+
			"Enjoy full access to all courses!</p>", user.FullName, paymentID),
	}); err != nil {
		// Подписка уже активирована, письмо не критично.
		s.log.Error("failed to publish confirmation email", slog.String("op", op), sl.Err(err))
	}

	s.log.Info("subscription payment verified",
		slog.String("op", op), slog.String("payment_id", paymentID))
	return nil
}

// CancelSubscription отменяет действующую подписку через платёжный шлюз
// и переводит её в терминальный статус, сообщённый шлюзом.
func (s *Service) CancelSubscription(ctx context.Context, user *models.User) error {
	const op = "entitlement.CancelSubscription"

	if user.Role.IsStaff() {
		return apperr.New(apperr.KindForbidden, "staff members do not have a subscription")
	}
	if user.Subscription.Status != models.StatusActive || user.Subscription.ID == "" {
		return apperr.New(apperr.KindConflict, "no active subscription to cancel")
	}

	resp, err := s.gateway.CancelSubscription(ctx, user.Subscription.ID)
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to cancel subscription", err)
	}
	status, err := models.ParseSubscriptionStatus(resp.Status)
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to cancel subscription", err)
	}

	if err := s.repo.UpdateSubscription(ctx, user.UID, models.Subscription{Status: status}); err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to cancel subscription", err)
	}
	s.invalidateProfile(ctx, op, user.UID)

	s.log.Info("subscription cancelled",
		slog.String("op", op), slog.String("subscription_id", user.Subscription.ID))
	return nil
}

// CreateOrder создает в шлюзе разовый заказ на покупку курса.
func (s *Service) CreateOrder(ctx context.Context, user *models.User, courseID string,
	amount int64, currency string) (*paymentgateway.OrderResponse, error) {
	const op = "entitlement.CreateOrder"

	if user.HasPurchased(courseID) {
		return nil, apperr.New(apperr.KindConflict, "course already purchased")
	}

	order, err := s.gateway.CreateOrder(ctx, amount, currency)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "failed to create order", err)
	}

	s.log.Info("course order created",
		slog.String("op", op), slog.String("order_id", order.ID), slog.String("course_id", courseID))
	return order, nil
}

// VerifyCoursePayment проверяет подпись платежа за разовую покупку курса
// и добавляет курс в список купленных. Конкурентная проверка того же
// платежа разрешается уникальностью записи журнала.
func (s *Service) VerifyCoursePayment(ctx context.Context, user *models.User,
	courseID, orderID, paymentID, signature string, amount int64, currency string) error {
	const op = "entitlement.VerifyCoursePayment"

	if user.HasPurchased(courseID) {
		return apperr.New(apperr.KindConflict, "course already purchased")
	}

	if !s.signatureValid(orderID+"|"+paymentID, signature) {
		return apperr.New(apperr.KindVerificationFailed, "payment verification failed, please try again")
	}

	payment := models.Payment{
		PaymentID:       paymentID,
		OrderID:         orderID,
		Signature:       signature,
		Amount:          amount,
		Currency:        currency,
		UserUID:         user.UID,
		CourseID:        courseID,
		CoursePurchased: true,
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return apperr.New(apperr.KindConflict, "payment already recorded")
		}
		return apperr.Wrap(apperr.KindUpstream, "failed to verify payment", err)
	}
	if err := s.repo.AddPurchasedCourse(ctx, user.UID, courseID); err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to verify payment", err)
	}
	s.invalidateProfile(ctx, op, user.UID)

	s.log.Info("course payment verified",
		slog.String("op", op), slog.String("payment_id", paymentID), slog.String("course_id", courseID))
	return nil
}

// ReconcileExpiry выполняет ленивую проверку срока подписки при чтении
// профиля: активная подписка с истекшим сроком переводится в completed,
// идентификатор и срок очищаются. Фоновых таймеров нет.
func (s *Service) ReconcileExpiry(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "entitlement.ReconcileExpiry"

	sub := user.Subscription
	if sub.Status != models.StatusActive || sub.ExpiresOn == nil || sub.ExpiresOn.After(time.Now()) {
		return user, nil
	}

	if err := s.repo.UpdateSubscription(ctx, user.UID, models.Subscription{Status: models.StatusCompleted}); err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "failed to refresh subscription state", err)
	}
	s.invalidateProfile(ctx, op, user.UID)

	updated := *user
	updated.Subscription = models.Subscription{Status: models.StatusCompleted}
	s.log.Info("subscription lapsed", slog.String("op", op), slog.String("uid", user.UID))
	return &updated, nil
}

// ListPayments возвращает последние записи журнала платежей.
func (s *Service) ListPayments(ctx context.Context, limit int) ([]*models.Payment, error) {
	payments, err := s.repo.ListPayments(ctx, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "failed to list payments", err)
	}
	return payments, nil
}

// signatureValid сверяет подпись HMAC-SHA256 от канонической строки
// платежа с подписью, присланной клиентом. Сравнение без утечек по времени.
func (s *Service) signatureValid(payload, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.keySecret))
	mac.Write([]byte(payload))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *Service) invalidateProfile(ctx context.Context, op, userUID string) {
	if err := s.cache.Invalidate(ctx, cache.ProfileKey(userUID)); err != nil {
		s.log.Error("failed to invalidate profile cache", slog.String("op", op), sl.Err(err))
	}
}
