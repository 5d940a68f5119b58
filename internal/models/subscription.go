package models

import (
	"fmt"
	"time"
)

// SubscriptionStatus — закрытое множество статусов подписки.
// Переходы между статусами выполняет только бизнес-логика платежей.
type SubscriptionStatus string

// Статусы подписки, повторяющие жизненный цикл платёжного шлюза.
// StatusCompleted — дефолтное состояние "нет активной подписки".
const (
	StatusCreated       SubscriptionStatus = "created"
	StatusAuthenticated SubscriptionStatus = "authenticated"
	StatusActive        SubscriptionStatus = "active"
	StatusPending       SubscriptionStatus = "pending"
	StatusHalted        SubscriptionStatus = "halted"
	StatusCancelled     SubscriptionStatus = "cancelled"
	StatusCompleted     SubscriptionStatus = "completed"
	StatusExpired       SubscriptionStatus = "expired"
)

// ParseSubscriptionStatus проверяет строковый статус на границе данных,
// в том числе статус, который сообщает платёжный шлюз.
func ParseSubscriptionStatus(s string) (SubscriptionStatus, error) {
	switch SubscriptionStatus(s) {
	case StatusCreated, StatusAuthenticated, StatusActive, StatusPending,
		StatusHalted, StatusCancelled, StatusCompleted, StatusExpired:
		return SubscriptionStatus(s), nil
	default:
		return "", fmt.Errorf("unknown subscription status: %q", s)
	}
}

// Subscription — встроенная в пользователя запись о подписке.
// ID — идентификатор подписки в платёжном шлюзе, пустой при отсутствии.
type Subscription struct {
	ID        string             `json:"id,omitempty"`
	Status    SubscriptionStatus `json:"status"`
	ExpiresOn *time.Time         `json:"expires_on,omitempty"`
}

// IsActive сообщает, действует ли подписка на данный момент времени.
func (s Subscription) IsActive(now time.Time) bool {
	if s.Status != StatusActive {
		return false
	}
	return s.ExpiresOn == nil || s.ExpiresOn.After(now)
}
