package services

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

// MailNotifier tells an offline user that something arrived in a chat.
type MailNotifier interface {
	SendNewMessageEmail(to, recipientName, senderName, preview string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) MailNotifier {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendNewMessageEmail(to, recipientName, senderName, preview string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("New message from %s", senderName))

	body := fmt.Sprintf(`
		<h3>Hi %s,</h3>
		<p>%s sent you a message while you were away:</p>
		<blockquote>%s</blockquote>
		<p>Open the app to reply.</p>
	`, html.EscapeString(recipientName), html.EscapeString(senderName), html.EscapeString(preview))

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send new message email: %w", err)
	}
	return nil
}
