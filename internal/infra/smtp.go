package infra

import (
	"fmt"
	"net/smtp"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending emails with PDF attachments.
// All sends go through a circuit breaker so a downed relay fast-fails instead
// of tying up worker goroutines on connection timeouts.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	addr     string
	cb       *CircuitBreaker
}

func NewMailer(cfg *config.Config, cb *CircuitBreaker) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		cb:       cb,
	}
}

// SendComprobante sends a PDF receipt to the customer email.
func (m *Mailer) SendComprobante(to, subject, body, pdfPath string) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}
	return m.send(e)
}

// SendAlerta sends a plain-text operational alert (oversell, low stock).
func (m *Mailer) SendAlerta(to, subject, body string) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)
	return m.send(e)
}

func (m *Mailer) send(e *email.Email) error {
	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	if m.cb == nil {
		return e.Send(m.addr, auth)
	}
	return m.cb.Execute(func() error {
		return e.Send(m.addr, auth)
	})
}

// CBState exposes the breaker state for the health endpoint.
func (m *Mailer) CBState() string {
	if m.cb == nil {
		return "disabled"
	}
	return m.cb.State().String()
}
