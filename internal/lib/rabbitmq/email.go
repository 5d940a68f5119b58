package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/brainxcel/lms-backend/internal/models"
)

// EmailPublisher публикует задания на отправку писем в очередь EmailQueue.
type EmailPublisher struct {
	ch *amqp.Channel
}

// NewEmailPublisher создает нового издателя заданий.
func NewEmailPublisher(ch *amqp.Channel) *EmailPublisher {
	return &EmailPublisher{ch: ch}
}

// Publish сериализует задание и отправляет его в очередь исходящих писем.
// Сообщения публикуются с постоянным режимом доставки, чтобы пережить
// перезапуск брокера.
func (p *EmailPublisher) Publish(job models.EmailJob) error {
	const op = "rabbitmq.EmailPublisher.Publish"

	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = p.ch.Publish("", EmailQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
