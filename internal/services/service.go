package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/carebridgehq/carebridge-backend/internal/config"
	"github.com/carebridgehq/carebridge-backend/internal/dto"
	"github.com/carebridgehq/carebridge-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidRole          = errors.New("role not permitted")
	ErrInvalidCredentials   = errors.New("incorrect email or password")
	ErrCaregiverNotApproved = errors.New("caregiver account not approved")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrAlreadyVerified      = errors.New("email already verified")
	ErrUserNotFound         = errors.New("user not found")
	ErrProviderNotAllowed   = errors.New("action not available for social login accounts")
	ErrNotVerified          = errors.New("email not verified")
)

// Mailer dispatches account emails. Dispatch is a blocking external call
// and must never run inside a database transaction.
type Mailer interface {
	SendVerification(ctx context.Context, toEmail, name, token string) error
	SendPasswordReset(ctx context.Context, toEmail, name, token string) error
}

// AccountService orchestrates the account lifecycle: signup, login, email
// verification, password reset and OAuth login.
type AccountService struct {
	db             *gorm.DB
	tokens         *TokenIssuer
	mail           Mailer
	google         *GoogleJWKSClient
	facebook       *FacebookClient
	googleClientID string
}

func NewAccountService(db *gorm.DB, cfg *config.Config, mail Mailer) *AccountService {
	return &AccountService{
		db:             db,
		tokens:         NewTokenIssuer(cfg.JWTSecret, cfg.JWTAccessExpiry),
		mail:           mail,
		google:         NewGoogleJWKSClient(),
		facebook:       NewFacebookClient(),
		googleClientID: cfg.GoogleClientID,
	}
}

// Tokens exposes the session token issuer for callers that only need
// claim verification.
func (s *AccountService) Tokens() *TokenIssuer {
	return s.tokens
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an unverified local account and dispatches a
// verification email. Nothing is persisted when validation fails; a
// duplicate email racing past the existence check is caught by the
// unique constraint on insert.
func (s *AccountService) Signup(ctx context.Context, req *dto.SignupRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	if email == "" || len(req.Password) < 8 {
		return nil, fmt.Errorf("%w: email required and password must be at least 8 characters", ErrValidation)
	}

	role := models.UserRole(req.Role)
	if role != models.RoleCustomer && role != models.RoleCaregiver {
		return nil, ErrInvalidRole
	}

	var existing models.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	token, err := newActionToken()
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:                uuid.New(),
		Email:             email,
		HashedPassword:    &hash,
		FullName:          req.FullName,
		Role:              role,
		IsVerified:        false,
		VerificationToken: &token,
		AuthProvider:      models.ProviderEmail,
	}

	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// The account exists either way; a failed send is recoverable via
	// resend-verification.
	if err := s.mail.SendVerification(ctx, user.Email, user.FullName, token); err != nil {
		slog.Error("verification email dispatch failed", "error", err, "user_id", user.ID.String())
	}

	return &user, nil
}

// Login checks credentials and gates, then issues a bearer session token.
// Unknown email and wrong password are deliberately indistinguishable.
func (s *AccountService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.HashedPassword == nil || !VerifyPassword(req.Password, *user.HashedPassword) {
		return nil, ErrInvalidCredentials
	}

	if user.AuthProvider == models.ProviderEmail && !user.IsVerified {
		return nil, ErrNotVerified
	}

	if user.Role == models.RoleCaregiver && !user.IsApproved {
		return nil, ErrCaregiverNotApproved
	}

	accessToken, err := s.tokens.Issue(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	return &dto.TokenResponse{AccessToken: accessToken, TokenType: "bearer"}, nil
}

// VerifyEmail consumes a pending verification token and marks the
// account verified. A second consumption of the same token fails.
func (s *AccountService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := s.db.Where("verification_token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}
	if user.IsVerified {
		// The pending token belongs to a password reset; a verification
		// link must not consume it.
		return nil, ErrAlreadyVerified
	}

	return consumeActionToken(s.db, token, map[string]interface{}{"is_verified": true})
}

// ResendVerification rotates the pending token and re-sends the
// verification email. Already-verified accounts keep their state; the
// token is not rotated for them.
func (s *AccountService) ResendVerification(ctx context.Context, email string) error {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return ErrUserNotFound
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	token, err := rotateActionToken(s.db, &user)
	if err != nil {
		return err
	}

	if err := s.mail.SendVerification(ctx, user.Email, user.FullName, token); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

// RequestPasswordReset rotates the action token and sends a reset link.
// Only verified local-password accounts qualify; the handler converts
// ErrUserNotFound into the same response as success so the endpoint
// cannot be used to enumerate accounts.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return ErrUserNotFound
	}
	if user.AuthProvider != models.ProviderEmail {
		return ErrProviderNotAllowed
	}
	if !user.IsVerified {
		return ErrNotVerified
	}

	token, err := rotateActionToken(s.db, &user)
	if err != nil {
		return err
	}

	if err := s.mail.SendPasswordReset(ctx, user.Email, user.FullName, token); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

// ResetPassword consumes a pending token and replaces the password hash.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	if token == "" {
		return ErrInvalidToken
	}

	var user models.User
	if err := s.db.Where("verification_token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to look up token: %w", err)
	}
	if !user.IsVerified {
		return ErrNotVerified
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	_, err = consumeActionToken(s.db, token, map[string]interface{}{"hashed_password": hash})
	return err
}

// OAuthLogin verifies the provider credential, reconciles the external
// identity onto a local account and issues a session token.
func (s *AccountService) OAuthLogin(ctx context.Context, provider string, req *dto.OAuthRequest) (*dto.TokenResponse, error) {
	var (
		email        string
		displayName  string
		authProvider models.AuthProvider
	)

	switch models.AuthProvider(provider) {
	case models.ProviderGoogle:
		claims, err := s.google.VerifyIDToken(req.IDToken, s.googleClientID)
		if err != nil {
			return nil, fmt.Errorf("google authentication failed: %w", err)
		}
		email = claims.Email
		displayName = claims.Name
		authProvider = models.ProviderGoogle
	case models.ProviderFacebook:
		profile, err := s.facebook.VerifyAccessToken(req.AccessToken)
		if err != nil {
			return nil, fmt.Errorf("facebook authentication failed: %w", err)
		}
		email = profile.Email
		displayName = profile.Name
		authProvider = models.ProviderFacebook
	default:
		return nil, fmt.Errorf("unsupported oauth provider: %s", provider)
	}

	// Providers can mint valid credentials without an email claim (e.g. a
	// Google token issued without the email scope). Accounts are keyed by
	// email, so an assertion without one cannot be reconciled.
	if normalizeEmail(email) == "" {
		return nil, fmt.Errorf("%s assertion carries no email address: %w", provider, ErrInvalidCredentials)
	}

	if displayName == "" {
		displayName = req.FullName
	}

	user, err := s.reconcileExternalIdentity(authProvider, email, displayName)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	return &dto.TokenResponse{AccessToken: accessToken, TokenType: "bearer"}, nil
}

// UserByEmail loads a user by canonical email.
func (s *AccountService) UserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// ApproveCaregiver flips the approval gate for a caregiver account.
// Approval is an admin-only action; no other transition touches it.
func (s *AccountService) ApproveCaregiver(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, ErrUserNotFound
	}
	if user.Role != models.RoleCaregiver {
		return nil, ErrInvalidRole
	}

	if err := s.db.Model(&user).Update("is_approved", true).Error; err != nil {
		return nil, fmt.Errorf("failed to approve caregiver: %w", err)
	}
	user.IsApproved = true
	return &user, nil
}
