package outreach

import (
	"crypto/md5"
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

// SMTPConfig holds the credentials for the sending mailbox.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Sender delivers outreach emails over SMTP.
type Sender struct {
	cfg SMTPConfig
}

// NewSender wires a Sender.
func NewSender(cfg SMTPConfig) *Sender {
	return &Sender{cfg: cfg}
}

// Send delivers one email and returns its tracking ID.
func (s *Sender) Send(e Email) (string, error) {
	if s.cfg.Host == "" || s.cfg.Username == "" || s.cfg.Password == "" {
		return "", fmt.Errorf("outreach: smtp credentials not configured")
	}
	if !strings.Contains(e.To, "@") {
		return "", fmt.Errorf("outreach: invalid recipient address %q", e.To)
	}

	id := emailID(e.Subject, e.To, time.Now().Unix())
	msg := buildMessage(s.cfg.Username, e)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := smtp.SendMail(addr, auth, s.cfg.Username, []string{e.To}, msg); err != nil {
		return id, fmt.Errorf("outreach: send to %s: %w", e.To, err)
	}
	return id, nil
}

// emailID derives a stable tracking ID from the message identity, so retries
// of the same send collapse onto one tracking row.
func emailID(subject, to string, timestamp int64) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s|%s|%d", subject, to, timestamp)))
	return fmt.Sprintf("%x", sum)
}

func buildMessage(from string, e Email) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", e.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", e.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(e.Body)
	return []byte(b.String())
}
