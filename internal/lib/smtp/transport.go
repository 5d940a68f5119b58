package smtp

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"

	"github.com/brainxcel/lms-backend/internal/config"
	"github.com/brainxcel/lms-backend/internal/lib/sl"
)

// Transport устанавливает аутентифицированные соединения с SMTP-сервером.
// Соединение без STARTTLS отклоняется: учетные данные передаются
// только по шифрованному каналу.
type Transport struct {
	host string
	addr string
	user string
	pass string
	log  *slog.Logger
}

// NewTransport создает новый экземпляр Transport из настроек почты.
func NewTransport(cfg *config.Config, log *slog.Logger) *Transport {
	return &Transport{
		host: cfg.SMTPHost,
		addr: net.JoinHostPort(cfg.SMTPHost, cfg.SMTPPort),
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		log:  log,
	}
}

// Connect открывает соединение, переводит его в TLS и проходит
// PLAIN-аутентификацию.
func (t *Transport) Connect() (Client, error) {
	const op = "smtp.Connect"

	client, err := smtp.Dial(t.addr)
	if err != nil {
		t.log.Error("failed to dial SMTP server", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := t.secure(client); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			t.log.Error("failed to close client", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &smtpClientWrapper{client: client}, nil
}

// secure требует STARTTLS и аутентифицируется на сервере.
func (t *Transport) secure(client *smtp.Client) error {
	if ok, _ := client.Extension("STARTTLS"); !ok {
		t.log.Error("SMTP server does not support STARTTLS")
		return errors.New("smtp server does not support STARTTLS")
	}
	tlsConfig := &tls.Config{
		ServerName: t.host,
		MinVersion: tls.VersionTLS12,
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		t.log.Error("failed to start TLS", sl.Err(err))
		return err
	}
	if err := client.Auth(smtp.PlainAuth("", t.user, t.pass, t.host)); err != nil {
		t.log.Error("smtp auth failed", sl.Err(err))
		return err
	}
	return nil
}

// GetSMTPUser возвращает имя пользователя SMTP, оно же адрес отправителя.
func (t *Transport) GetSMTPUser() string {
	return t.user
}

// smtpClientWrapper адаптирует *smtp.Client к интерфейсу Client.
type smtpClientWrapper struct {
	client *smtp.Client
}

func (w *smtpClientWrapper) Mail(from string) error {
	return w.client.Mail(from)
}

func (w *smtpClientWrapper) Rcpt(to string) error {
	return w.client.Rcpt(to)
}

func (w *smtpClientWrapper) Data() (io.WriteCloser, error) {
	return w.client.Data()
}

func (w *smtpClientWrapper) Quit() error {
	return w.client.Quit()
}

func (w *smtpClientWrapper) Close() error {
	return w.client.Close()
}
