package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/brainxcel/lms-backend/internal/models"
)

// CreatePayment добавляет неизменяемую запись в журнал платежей.
// Уникальный индекс по payment_id отклоняет повторную проверку того же
// платежа, в том числе при конкурентных запросах: возвращает ErrDuplicate.
func (s *Storage) CreatePayment(ctx context.Context, p models.Payment) error {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (payment_id, order_id, subscription_id, signature, amount,
			      currency, user_uid, course_id, course_purchased)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.DB.ExecContext(ctx, query,
		p.PaymentID, nullable(p.OrderID), nullable(p.SubscriptionID), p.Signature,
		p.Amount, p.Currency, p.UserUID, nullable(p.CourseID), p.CoursePurchased)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// PaymentExists проверяет, записан ли платёж с данным идентификатором шлюза.
func (s *Storage) PaymentExists(ctx context.Context, paymentID string) (bool, error) {
	const op = "storage.PaymentExists"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (SELECT 1 FROM payments WHERE payment_id = $1)`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, paymentID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ListPayments возвращает последние записи журнала платежей.
func (s *Storage) ListPayments(ctx context.Context, limit int) ([]*models.Payment, error) {
	const op = "storage.ListPayments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT payment_id, order_id, subscription_id, signature, amount, currency,
			      user_uid, course_id, course_purchased, created_at
			  FROM payments
			  ORDER BY created_at DESC
			  LIMIT $1`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Payment
	for rows.Next() {
		var p models.Payment
		var orderID, subscriptionID, courseID sql.NullString
		if err = rows.Scan(&p.PaymentID, &orderID, &subscriptionID, &p.Signature,
			&p.Amount, &p.Currency, &p.UserUID, &courseID, &p.CoursePurchased,
			&p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p.OrderID = orderID.String
		p.SubscriptionID = subscriptionID.String
		p.CourseID = courseID.String
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
