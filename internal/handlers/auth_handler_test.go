package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carebridgehq/carebridge-backend/internal/config"
	"github.com/carebridgehq/carebridge-backend/internal/middleware"
	"github.com/carebridgehq/carebridge-backend/internal/models"
	"github.com/carebridgehq/carebridge-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingMailer struct {
	verificationTokens []string
	resetTokens        []string
}

func (m *recordingMailer) SendVerification(ctx context.Context, toEmail, name, token string) error {
	m.verificationTokens = append(m.verificationTokens, token)
	return nil
}

func (m *recordingMailer) SendPasswordReset(ctx context.Context, toEmail, name, token string) error {
	m.resetTokens = append(m.resetTokens, token)
	return nil
}

func setupTestApp(t *testing.T) (*fiber.App, *recordingMailer, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:       "test-secret",
		JWTAccessExpiry: time.Hour,
	}
	mail := &recordingMailer{}
	svc := services.NewAccountService(db, cfg, mail)

	authHandler := NewAuthHandler(svc)
	app := fiber.New()
	auth := app.Group("/api/auth")
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Get("/verify-email", authHandler.VerifyEmail)
	auth.Post("/resend-verification", authHandler.ResendVerification)
	auth.Post("/forgot-password", authHandler.ForgotPassword)
	auth.Post("/reset-password", authHandler.ResetPassword)
	app.Get("/api/auth/me", middleware.JWTProtected(cfg), authHandler.Me)

	return app, mail, db
}

func postJSON(t *testing.T, app *fiber.App, path string, body map[string]string) *http.Response {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp
}

func TestSignupEndpoint(t *testing.T) {
	app, mail, _ := setupTestApp(t)

	resp := postJSON(t, app, "/api/auth/signup", map[string]string{
		"email": "a@x.com", "password": "pw1234567", "role": "customer",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var user map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&user)
	if user["email"] != "a@x.com" {
		t.Errorf("email = %v", user["email"])
	}
	if user["is_verified"] != false {
		t.Error("new account must report unverified")
	}
	if len(mail.verificationTokens) != 1 {
		t.Fatalf("expected 1 verification mail, got %d", len(mail.verificationTokens))
	}

	// Duplicate
	resp = postJSON(t, app, "/api/auth/signup", map[string]string{
		"email": "a@x.com", "password": "pw1234567", "role": "customer",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", resp.StatusCode)
	}

	// Disallowed role
	resp = postJSON(t, app, "/api/auth/signup", map[string]string{
		"email": "b@x.com", "password": "pw1234567", "role": "admin",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("admin role status = %d, want 403", resp.StatusCode)
	}
}

func TestVerifyAndLoginEndpoints(t *testing.T) {
	app, mail, _ := setupTestApp(t)

	postJSON(t, app, "/api/auth/signup", map[string]string{
		"email": "a@x.com", "password": "pw1234567", "role": "customer",
	})
	token := mail.verificationTokens[0]

	// Login before verification is gated.
	resp := postJSON(t, app, "/api/auth/login", map[string]string{
		"email": "a@x.com", "password": "pw1234567",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("unverified login status = %d, want 403", resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify-email?token="+token, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("verify request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify status = %d, want 200", resp.StatusCode)
	}

	// Second consumption fails.
	req = httptest.NewRequest(http.MethodGet, "/api/auth/verify-email?token="+token, nil)
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("token reuse status = %d, want 400", resp.StatusCode)
	}

	resp = postJSON(t, app, "/api/auth/login", map[string]string{
		"email": "a@x.com", "password": "pw1234567",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}

	var tokenResp map[string]string
	json.NewDecoder(resp.Body).Decode(&tokenResp)
	if tokenResp["access_token"] == "" {
		t.Fatal("missing access_token")
	}
	if tokenResp["token_type"] != "bearer" {
		t.Errorf("token_type = %q, want bearer", tokenResp["token_type"])
	}

	// The bearer token works against the protected /me route.
	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokenResp["access_token"])
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d, want 200", resp.StatusCode)
	}
	var me map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&me)
	if me["email"] != "a@x.com" {
		t.Errorf("me email = %v", me["email"])
	}

	// Wrong password and unknown email return the same status.
	wrong := postJSON(t, app, "/api/auth/login", map[string]string{
		"email": "a@x.com", "password": "wrongpass1",
	})
	unknown := postJSON(t, app, "/api/auth/login", map[string]string{
		"email": "ghost@x.com", "password": "pw1234567",
	})
	if wrong.StatusCode != http.StatusUnauthorized || unknown.StatusCode != http.StatusUnauthorized {
		t.Errorf("credential failures = %d/%d, want 401/401", wrong.StatusCode, unknown.StatusCode)
	}
}

func TestMeEndpoint_RejectsMissingToken(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestForgotPasswordEndpoint_UniformResponse(t *testing.T) {
	app, mail, _ := setupTestApp(t)

	postJSON(t, app, "/api/auth/signup", map[string]string{
		"email": "a@x.com", "password": "pw1234567", "role": "customer",
	})
	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify-email?token="+mail.verificationTokens[0], nil)
	if _, err := app.Test(req); err != nil {
		t.Fatalf("verify: %v", err)
	}

	known := postJSON(t, app, "/api/auth/forgot-password", map[string]string{"email": "a@x.com"})
	unknown := postJSON(t, app, "/api/auth/forgot-password", map[string]string{"email": "ghost@x.com"})

	if known.StatusCode != http.StatusOK || unknown.StatusCode != http.StatusOK {
		t.Fatalf("statuses = %d/%d, want 200/200", known.StatusCode, unknown.StatusCode)
	}

	knownBody, _ := io.ReadAll(known.Body)
	unknownBody, _ := io.ReadAll(unknown.Body)
	if !bytes.Equal(knownBody, unknownBody) {
		t.Error("known and unknown email responses must be indistinguishable")
	}

	if len(mail.resetTokens) != 1 {
		t.Errorf("expected 1 reset mail for the known account, got %d", len(mail.resetTokens))
	}
}

func TestResetPasswordEndpoint(t *testing.T) {
	app, mail, _ := setupTestApp(t)

	postJSON(t, app, "/api/auth/signup", map[string]string{
		"email": "a@x.com", "password": "pw1234567", "role": "customer",
	})
	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify-email?token="+mail.verificationTokens[0], nil)
	if _, err := app.Test(req); err != nil {
		t.Fatalf("verify: %v", err)
	}
	postJSON(t, app, "/api/auth/forgot-password", map[string]string{"email": "a@x.com"})

	resp := postJSON(t, app, "/api/auth/reset-password", map[string]string{
		"token": mail.resetTokens[0], "new_password": "newpassword1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reset status = %d, want 200", resp.StatusCode)
	}

	resp = postJSON(t, app, "/api/auth/login", map[string]string{
		"email": "a@x.com", "password": "newpassword1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("login with new password = %d, want 200", resp.StatusCode)
	}

	// Consumed token is rejected.
	resp = postJSON(t, app, "/api/auth/reset-password", map[string]string{
		"token": mail.resetTokens[0], "new_password": "anotherpass1",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("token reuse status = %d, want 400", resp.StatusCode)
	}
}

func TestEndpoints_InternalFaultsAreOpaque(t *testing.T) {
	app, _, db := setupTestApp(t)

	// Validation faults keep their message.
	resp := postJSON(t, app, "/api/auth/signup", map[string]string{
		"email": "a@x.com", "password": "short", "role": "customer",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("validation status = %d, want 400", resp.StatusCode)
	}

	// Persistence faults must not leak storage detail to the client.
	if err := db.Migrator().DropTable(&models.User{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	resp = postJSON(t, app, "/api/auth/signup", map[string]string{
		"email": "b@x.com", "password": "pw1234567", "role": "customer",
	})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("signup fault status = %d, want 500", resp.StatusCode)
	}
	var body map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&body)
	if body["message"] != "Internal server error" {
		t.Errorf("signup fault message = %q, want the generic one", body["message"])
	}

	resp = postJSON(t, app, "/api/auth/reset-password", map[string]string{
		"token": "sometoken", "new_password": "pw1234567",
	})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("reset fault status = %d, want 500", resp.StatusCode)
	}
	body = map[string]interface{}{}
	json.NewDecoder(resp.Body).Decode(&body)
	if body["message"] != "Internal server error" {
		t.Errorf("reset fault message = %q, want the generic one", body["message"])
	}
}
