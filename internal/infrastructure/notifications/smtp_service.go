package notifications

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/you/authsvc/domain"
)

// SMTPServiceImpl implements domain.NotificationService over SMTP
type SMTPServiceImpl struct {
	host    string
	port    int
	user    string
	pass    string
	from    string
	timeout time.Duration
}

// NewSMTPService creates a new SMTP notification service
func NewSMTPService(host string, port int, user, pass, from string, timeout time.Duration) domain.NotificationService {
	return &SMTPServiceImpl{
		host:    host,
		port:    port,
		user:    user,
		pass:    pass,
		from:    from,
		timeout: timeout,
	}
}

// SendEmail implements domain.NotificationService. If no host is configured,
// the message is logged instead of sent.
func (s *SMTPServiceImpl) SendEmail(to, subject, body string) error {
	if s.host == "" {
		fmt.Printf("[MOCK EMAIL] To: %s, Subject: %s\n", to, subject)
		return nil
	}

	headers := []string{
		"From: " + s.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}
	msg := strings.Join(headers, "\r\n") + "\r\n\r\n" + body

	dialer := &net.Dialer{Timeout: s.timeout}
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(s.timeout))

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Quit()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}

	if s.user != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", s.user, s.pass, s.host)
			if err := client.Auth(auth); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}

	if err := client.Mail(s.from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	return w.Close()
}
