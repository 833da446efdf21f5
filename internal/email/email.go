// Package email is a fire-and-forget notification sink. Failures are logged
// and never surface to the operation that triggered the send.
package email

import (
	"fmt"
	"log/slog"
	"net/smtp"
)

// Sender delivers account lifecycle emails over SMTP. A Sender with an empty
// host is disabled: sends are logged and dropped, which keeps development
// setups working without a mail relay.
type Sender struct {
	host string
	port string
	from string
	auth smtp.Auth
}

// NewSender creates a Sender. Pass an empty host to disable delivery.
func NewSender(host, port, from, username, password string) *Sender {
	s := &Sender{host: host, port: port, from: from}
	if host != "" && username != "" {
		s.auth = smtp.PlainAuth("", username, password, host)
	}
	return s
}

// SendWelcome greets a newly registered user.
func (s *Sender) SendWelcome(to, name string) {
	subject := fmt.Sprintf("%s, welcome to Task It!", name)
	body := "Thank you for joining Task It! If you need help further up the road, don't hesitate to contact us."
	s.send(to, subject, body)
}

// SendCancellation acknowledges an account deletion.
func (s *Sender) SendCancellation(to, name string) {
	subject := fmt.Sprintf("Sorry to see you leave, %s!", name)
	body := "If you could state the reason for your leave, it would be very helpful for us in the future."
	s.send(to, subject, body)
}

func (s *Sender) send(to, subject, body string) {
	if s.host == "" {
		slog.Info("email delivery disabled, dropping message", "to", to, "subject", subject)
		return
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.from, to, subject, body)

	go func() {
		if err := smtp.SendMail(s.host+":"+s.port, s.auth, s.from, []string{to}, []byte(msg)); err != nil {
			slog.Warn("email send failed", "to", to, "subject", subject, "error", err)
		}
	}()
}
