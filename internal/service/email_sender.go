package service

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"

	"github.com/xxxsen/portfolio/internal/config"
	appErr "github.com/xxxsen/portfolio/internal/pkg/errors"
)

type EmailSender interface {
	Send(to, subject, htmlBody string) error
}

type smtpSender struct {
	cfg config.MailConfig
}

func NewEmailSender(cfg config.MailConfig) EmailSender {
	return &smtpSender{cfg: cfg}
}

func (s *smtpSender) Send(to, subject, htmlBody string) error {
	from := strings.TrimSpace(s.cfg.From)
	if from == "" && s.cfg.Username != "" {
		from = fmt.Sprintf("%q <%s>", "Portfolio Team", s.cfg.Username)
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || from == "" {
		return appErr.ErrInvalid
	}
	msg := email.NewEmail()
	msg.From = from
	msg.To = []string{to}
	msg.Subject = subject
	msg.HTML = []byte(htmlBody)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	return msg.Send(fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port), auth)
}
