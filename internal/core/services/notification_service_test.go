package services

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"ember-portal/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	addr string
	to   []string
	msg  string
}

func newCaptureNotify(cfg *config.Config) (*NotificationService, *[]sentMail) {
	svc := NewNotificationService(cfg)
	var sent []sentMail
	svc.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr: addr, to: to, msg: string(msg)})
		return nil
	}
	return svc, &sent
}

func TestNotificationDisabledWithoutHost(t *testing.T) {
	svc, sent := newCaptureNotify(&config.Config{})

	assert.False(t, svc.Enabled())
	svc.TicketClosed("user@test.local", "user", "help")
	assert.Empty(t, *sent)
}

func TestNotificationWhitelistDecision(t *testing.T) {
	cfg := &config.Config{SMTP: config.SMTPConfig{
		Host: "mail.test.local", Port: "587",
		From: "noreply@test.local", FromName: "Ember Portal",
	}}
	svc, sent := newCaptureNotify(cfg)
	require.True(t, svc.Enabled())

	svc.WhitelistDecision("steve@test.local", "steve", "APPROVED", "welcome aboard")

	require.Len(t, *sent, 1)
	mail := (*sent)[0]
	assert.Equal(t, "mail.test.local:587", mail.addr)
	assert.Equal(t, []string{"steve@test.local"}, mail.to)
	assert.Contains(t, mail.msg, "From: Ember Portal <noreply@test.local>")
	assert.Contains(t, mail.msg, "Subject: Whitelist application approved")
	assert.Contains(t, mail.msg, "Reviewer note: welcome aboard")

	// headers and body are separated by a blank line
	assert.True(t, strings.Contains(mail.msg, "\r\n\r\n"))
}

func TestNotificationSendFailureSwallowed(t *testing.T) {
	cfg := &config.Config{SMTP: config.SMTPConfig{
		Host: "mail.test.local", Port: "587", From: "noreply@test.local",
	}}
	svc := NewNotificationService(cfg)
	svc.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		return errors.New("connection refused")
	}

	// must not panic or propagate; delivery is best effort
	svc.TicketClosed("user@test.local", "user", "help me")
}
