package models

import "time"

// Payment — неизменяемая запись в журнале платежей.
// PaymentID уникален и служит ключом идемпотентности проверки платежа.
// Запись помечена либо как покупка курса (CourseID + CoursePurchased),
// либо как оплата подписки (SubscriptionID).
type Payment struct {
	PaymentID       string    `json:"payment_id"`
	OrderID         string    `json:"order_id,omitempty"`
	SubscriptionID  string    `json:"subscription_id,omitempty"`
	Signature       string    `json:"-"`
	Amount          int64     `json:"amount"`
	Currency        string    `json:"currency"`
	UserUID         string    `json:"user_uid"`
	CourseID        string    `json:"course_id,omitempty"`
	CoursePurchased bool      `json:"course_purchased"`
	CreatedAt       time.Time `json:"created_at"`
}

// EmailJob — задание на отправку письма, публикуемое в очередь
// и обрабатываемое сервисом отправки.
type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
