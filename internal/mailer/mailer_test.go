package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/carebridgehq/carebridge-backend/internal/config"
)

// mockProvider captures outgoing mail instead of delivering it.
type mockProvider struct {
	sent       []mockEmail
	shouldFail bool
}

type mockEmail struct {
	To      string
	Subject string
	Body    string
}

func (m *mockProvider) Send(ctx context.Context, to, subject, htmlBody string) error {
	if m.shouldFail {
		return errors.New("mock send failed")
	}
	m.sent = append(m.sent, mockEmail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func newTestService(provider *mockProvider) *Service {
	return &Service{
		provider:  provider,
		fromEmail: "test@carebridge.app",
		baseURL:   "http://localhost:3000",
		templates: loadTemplates(),
	}
}

func TestSendVerification_RendersLink(t *testing.T) {
	provider := &mockProvider{}
	svc := newTestService(provider)

	err := svc.SendVerification(context.Background(), "user@example.com", "Alice", "tok123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(provider.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(provider.sent))
	}

	email := provider.sent[0]
	if email.To != "user@example.com" {
		t.Errorf("to = %q", email.To)
	}
	if !strings.Contains(email.Body, "http://localhost:3000/verify-email?token=tok123") {
		t.Error("body missing verification link")
	}
	if !strings.Contains(email.Body, "Alice") {
		t.Error("body missing recipient name")
	}
}

func TestSendPasswordReset_RendersLink(t *testing.T) {
	provider := &mockProvider{}
	svc := newTestService(provider)

	err := svc.SendPasswordReset(context.Background(), "user@example.com", "", "tok456")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	body := provider.sent[0].Body
	if !strings.Contains(body, "http://localhost:3000/reset-password?token=tok456") {
		t.Error("body missing reset link")
	}
	// Empty name falls back to a generic greeting.
	if !strings.Contains(body, "Hi there") {
		t.Error("body missing fallback greeting")
	}
}

func TestSend_ProviderFailure(t *testing.T) {
	svc := newTestService(&mockProvider{shouldFail: true})

	if err := svc.SendVerification(context.Background(), "user@example.com", "Alice", "tok"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(&config.Config{MailProvider: "pigeon"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNew_SendGridRequiresAPIKey(t *testing.T) {
	_, err := New(&config.Config{MailProvider: "sendgrid"})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
}
