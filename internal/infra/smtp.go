package infra

import (
	"fmt"
	"net/smtp"

	"cantina/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends the guardian notices and closing reports through a plain SMTP
// relay, optionally attaching a generated PDF.
type Mailer struct {
	host string
	addr string
	user string
	pass string
	from string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host: cfg.SMTPHost,
		addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		user: cfg.SMTPUser,
		pass: cfg.SMTPPassword,
		from: fmt.Sprintf("Cantina Escolar <%s>", cfg.SMTPUser),
	}
}

// SendNotificacao sends a plain-text message. pdfPath, when non-empty, is
// attached; a missing file fails the send so the caller can retry.
func (m *Mailer) SendNotificacao(to, subject, body, pdfPath string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: anexar pdf: %w", err)
		}
	}

	return e.Send(m.addr, smtp.PlainAuth("", m.user, m.pass, m.host))
}
