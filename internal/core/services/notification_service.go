package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"ember-portal/internal/config"
)

// NotificationService sends outbound mail. Delivery is best effort: a
// failed send is logged and never fails the calling operation. With no
// SMTP host configured the service is a no-op.
type NotificationService struct {
	cfg *config.Config
	// send is swappable so tests can capture outgoing mail
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewNotificationService creates a new notification service
func NewNotificationService(cfg *config.Config) *NotificationService {
	return &NotificationService{
		cfg:  cfg,
		send: smtp.SendMail,
	}
}

// Enabled reports whether outbound mail is configured
func (s *NotificationService) Enabled() bool {
	return s.cfg.SMTP.Host != "" && s.cfg.SMTP.From != ""
}

// WhitelistDecision notifies an applicant of their review outcome
func (s *NotificationService) WhitelistDecision(email, username, decision, note string) {
	subject := fmt.Sprintf("Whitelist application %s", strings.ToLower(decision))
	body := fmt.Sprintf("Hi %s,\r\n\r\nYour whitelist application is now %s.", username, decision)
	if note != "" {
		body += fmt.Sprintf("\r\n\r\nReviewer note: %s", note)
	}
	body += "\r\n"
	s.deliver(email, subject, body)
}

// TicketClosed notifies a ticket creator that their ticket was closed
func (s *NotificationService) TicketClosed(email, username, ticketSubject string) {
	subject := "Your support ticket was closed"
	body := fmt.Sprintf("Hi %s,\r\n\r\nYour ticket %q has been closed. Please rate how it was handled the next time you sign in.\r\n", username, ticketSubject)
	s.deliver(email, subject, body)
}

// deliver builds the RFC 5322 message and hands it to SMTP
func (s *NotificationService) deliver(to, subject, body string) {
	if !s.Enabled() || to == "" {
		return
	}

	from := s.cfg.SMTP.From
	fromHeader := from
	if s.cfg.SMTP.FromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", s.cfg.SMTP.FromName, from)
	}

	msg := strings.Join([]string{
		"From: " + fromHeader,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		body,
	}, "\r\n")

	addr := s.cfg.SMTP.Host + ":" + s.cfg.SMTP.Port

	var auth smtp.Auth
	if s.cfg.SMTP.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTP.Username, s.cfg.SMTP.Password, s.cfg.SMTP.Host)
	}

	if err := s.send(addr, auth, from, []string{to}, []byte(msg)); err != nil {
		log.Printf("⚠️ Mail to %s failed: %v", to, err)
		return
	}

	log.Printf("✅ Mail sent to %s: %s", to, subject)
}
