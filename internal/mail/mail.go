// Package mail delivers transactional email. The Sender interface is
// injected wherever mail is sent so tests can substitute a fake.
package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Sender sends transactional email.
type Sender interface {
	// SendResetOtp emails a password-reset code to the recipient.
	SendResetOtp(to, otp string) error
}

// SMTPConfig holds credentials for an SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender creates a sender for the given relay.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// SendResetOtp emails a password-reset code to the recipient.
func (s *SMTPSender) SendResetOtp(to, otp string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Password Reset OTP")
	m.SetBody("text/plain", fmt.Sprintf("Your OTP is %s. It is valid for 10 minutes.", otp))

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	return d.DialAndSend(m)
}
