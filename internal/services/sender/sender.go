// Package sender содержит бизнес-логику сервиса отправки писем:
// разбор заданий из очереди и доставку через SMTP транспорт.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/brainxcel/lms-backend/internal/lib/sl"
	"github.com/brainxcel/lms-backend/internal/lib/smtp"
	"github.com/brainxcel/lms-backend/internal/models"
)

// Service отправляет транзакционные письма по заданиям из очереди.
type Service struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(transport smtp.TransportInterface, log *slog.Logger) *Service {
	return &Service{transport: transport, log: log}
}

// HandleMessage разбирает задание из очереди и отправляет письмо.
// Ошибка возвращается вызывающему: сообщение вернётся в очередь.
func (s *Service) HandleMessage(body []byte) error {
	const op = "sender.HandleMessage"

	var job models.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		s.log.Error("failed to unmarshal email job", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.Send(job); err != nil {
		s.log.Error("failed to send email", slog.String("op", op), sl.Err(err))
		return err
	}
	s.log.Info("email sent", slog.String("op", op), slog.String("to", job.To))
	return nil
}

// Send доставляет одно письмо через SMTP транспорт.
func (s *Service) Send(job models.EmailJob) error {
	const op = "sender.Send"

	client, err := s.transport.Connect()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if quitErr := client.Quit(); quitErr != nil {
			_ = client.Close()
		}
	}()

	from := s.transport.GetSMTPUser()
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := client.Rcpt(job.To); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n"+
		"MIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		from, job.To, job.Subject, job.Body)
	if _, err := writer.Write([]byte(msg)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
