// Package rabbitmq содержит вспомогательные функции для работы с RabbitMQ:
// подключение с повторами, объявление очередей, публикация и потребление
// сообщений.
package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Connect устанавливает соединение с брокером, повторяя попытку
// retries раз с паузой delay между попытками.
func Connect(amqpURI string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"

	var conn *amqp.Connection
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		conn, err = amqp.Dial(amqpURI)
		if err == nil {
			return conn, nil
		}
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("%s: %w", op, err)
}

// SetupChannel открывает канал и объявляет все перечисленные очереди.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, q := range queues {
		if _, err := ch.QueueDeclare(q.QueueName, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("%s: declare %s: %w", op, q.QueueName, err)
		}
	}
	return ch, nil
}

// ConsumerMessage подписывается на очередь и передаёт тело каждого сообщения
// в handle. Сообщение подтверждается только после успешной обработки.
func ConsumerMessage(ctx context.Context, ch *amqp.Channel, queue string, handle func([]byte) error) error {
	const op = "rabbitmq.ConsumerMessage"

	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				if err := handle(msg.Body); err != nil {
					_ = msg.Nack(false, true)
					continue
				}
				_ = msg.Ack(false)
			}
		}
	}()
	return nil
}
