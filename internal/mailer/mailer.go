package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/carebridgehq/carebridge-backend/internal/config"
)

// Provider is the delivery transport behind the mailer.
type Provider interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Service renders account emails and hands them to a Provider.
type Service struct {
	provider  Provider
	fromEmail string
	baseURL   string
	templates map[string]*template.Template
}

func New(cfg *config.Config) (*Service, error) {
	var provider Provider
	switch cfg.MailProvider {
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("sendgrid API key is required")
		}
		provider = NewSendGridProvider(cfg.SendGridAPIKey, cfg.MailFromEmail, cfg.MailFromName)
	case "smtp":
		provider = NewSMTPProvider(
			cfg.SMTPHost,
			cfg.SMTPPort,
			cfg.SMTPUsername,
			cfg.SMTPPassword,
			cfg.MailFromEmail,
			cfg.MailFromName,
			cfg.SMTPUseTLS,
		)
	default:
		return nil, fmt.Errorf("unknown mail provider: %s", cfg.MailProvider)
	}

	return &Service{
		provider:  provider,
		fromEmail: cfg.MailFromEmail,
		baseURL:   cfg.BaseURL,
		templates: loadTemplates(),
	}, nil
}

func loadTemplates() map[string]*template.Template {
	return map[string]*template.Template{
		"verification":   template.Must(template.New("verification").Parse(verificationTemplate)),
		"password_reset": template.Must(template.New("password_reset").Parse(passwordResetTemplate)),
	}
}

func (s *Service) send(ctx context.Context, to, subject, templateName string, data map[string]interface{}) error {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return fmt.Errorf("template not found: %s", templateName)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	slog.Info("sending email", "to", to, "template", templateName)
	if err := s.provider.Send(ctx, to, subject, buf.String()); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendVerification sends the email-verification link for a pending token.
func (s *Service) SendVerification(ctx context.Context, toEmail, name, token string) error {
	return s.send(ctx, toEmail, "Verify your CareBridge email", "verification", map[string]interface{}{
		"Name":      name,
		"VerifyURL": fmt.Sprintf("%s/verify-email?token=%s", s.baseURL, token),
	})
}

// SendPasswordReset sends the password-reset link for a pending token.
func (s *Service) SendPasswordReset(ctx context.Context, toEmail, name, token string) error {
	return s.send(ctx, toEmail, "Reset your CareBridge password", "password_reset", map[string]interface{}{
		"Name":     name,
		"ResetURL": fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, token),
	})
}
