package utils

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"cleanblog/config"
)

// Message is an outbound plain text email.
type Message struct {
	To      string
	ReplyTo string
	Subject string
	Body    string
}

// Mailer delivers messages. Handlers depend on this interface so tests can
// substitute a recorder for the SMTP transport.
type Mailer interface {
	Send(msg Message) error
}

// SMTPMailer sends mail through the SMTP relay configured at startup.
type SMTPMailer struct {
	cfg *config.AppConfig
}

// NewSMTPMailer builds a mailer from the loaded configuration.
func NewSMTPMailer(cfg *config.AppConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send delivers a plain text email, using STARTTLS when configured.
func (m *SMTPMailer) Send(msg Message) error {
	cfg := m.cfg
	if cfg.SMTPHost == "" || cfg.SMTPFrom == "" {
		return fmt.Errorf("smtp not configured")
	}
	addr := net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort))
	var auth smtp.Auth
	if cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}

	fromName := cfg.SMTPFromName
	if fromName == "" {
		fromName = cfg.AppName
	}

	to := headerValue(msg.To)
	payload := compose(fromName, cfg.SMTPFrom, msg)

	if !cfg.SMTPTLS {
		return smtp.SendMail(addr, auth, cfg.SMTPFrom, []string{to}, payload)
	}

	// STARTTLS with timeouts so a stuck relay cannot hang the request.
	d := net.Dialer{Timeout: 5 * time.Second}
	conn, err := d.Dial("tcp", addr)
	if err != nil {
		return err
	}
	_ = conn.SetDeadline(time.Now().Add(15 * time.Second))
	host, _, _ := net.SplitHostPort(addr)
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()
	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if auth != nil {
		if err := c.Auth(auth); err != nil {
			return err
		}
	}
	if err := c.Mail(cfg.SMTPFrom); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	wc, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write(payload); err != nil {
		_ = wc.Close()
		return err
	}
	return wc.Close()
}

// compose assembles the RFC 5322 payload. Every caller-supplied value goes
// through headerValue first so form input cannot smuggle extra header lines.
func compose(fromName, from string, msg Message) []byte {
	headers := []string{
		fmt.Sprintf("From: %s <%s>", encodeRFC2047(headerValue(fromName)), headerValue(from)),
		"To: " + headerValue(msg.To),
		"Subject: " + encodeRFC2047(headerValue(msg.Subject)),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
	}
	if replyTo := headerValue(msg.ReplyTo); replyTo != "" {
		headers = append(headers, "Reply-To: "+replyTo)
	}
	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + msg.Body)
}

// headerValue strips CR and LF from a header value.
func headerValue(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

// encodeRFC2047 wraps a header value in RFC 2047 B encoding when it carries
// non-ASCII bytes.
func encodeRFC2047(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 128 {
			return fmt.Sprintf("=?UTF-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(s)))
		}
	}
	return s
}
