package rabbitmq

// QueueConfig описывает очередь и ключ маршрутизации для неё.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// EmailQueue — очередь исходящих транзакционных писем
// (восстановление пароля, подтверждение оплаты).
const EmailQueue = "email.outbound"

// GetEmailQueues возвращает очереди, которые обслуживает сервис отправки.
func GetEmailQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: EmailQueue, RoutingKey: EmailQueue},
	}
}
