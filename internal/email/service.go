// Package email sends customer-facing notifications over SMTP. The
// service is a no-op when SMTP is not configured.
package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

type Service struct {
	config Config
	server string
	auth   smtp.Auth
}

func NewService(config Config) *Service {
	return &Service{
		config: config,
		server: config.Host + ":" + config.Port,
		auth:   smtp.PlainAuth("", config.Username, config.Password, config.Host),
	}
}

func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.Port != "" && s.config.From != ""
}

func (s *Service) Send(to []string, subject, body string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	msg := []byte(fmt.Sprintf(
		"To: %s\r\n"+
			"From: %s\r\n"+
			"Subject: %s\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		strings.Join(to, ", "),
		from,
		subject,
		body,
	))

	return smtp.SendMail(s.server, s.auth, s.config.From, to, msg)
}

// SendComplaintReply forwards a support reply to the complainant.
func (s *Service) SendComplaintReply(to, complaintSubject, author, body string) error {
	return s.Send([]string{to}, "Re: "+complaintSubject, complaintReplyBody(author, body))
}

// SendVerificationDecision notifies a seller their application was
// approved or rejected.
func (s *Service) SendVerificationDecision(to, businessName, status, reason string) error {
	subject := fmt.Sprintf("Seller verification %s", status)
	return s.Send([]string{to}, subject, verificationDecisionBody(businessName, status, reason))
}

func complaintReplyBody(author, body string) string {
	return fmt.Sprintf("%s replied to your complaint:\r\n\r\n%s\r\n", author, body)
}

func verificationDecisionBody(businessName, status, reason string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your seller application for %q has been %s.\r\n", businessName, status)
	if reason != "" {
		fmt.Fprintf(&b, "\r\nReason: %s\r\n", reason)
	}
	return b.String()
}
