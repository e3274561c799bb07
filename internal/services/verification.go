package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/carebridgehq/carebridge-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// newActionToken returns an opaque single-use token with 32 bytes of
// crypto/rand entropy, base64url-encoded.
func newActionToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// rotateActionToken issues a fresh token for the user, overwriting any
// pending one. At most one verification or reset action is pending per
// user at a time.
func rotateActionToken(db *gorm.DB, user *models.User) (string, error) {
	token, err := newActionToken()
	if err != nil {
		return "", err
	}
	if err := db.Model(user).Update("verification_token", token).Error; err != nil {
		return "", fmt.Errorf("failed to store verification token: %w", err)
	}
	user.VerificationToken = &token
	return token, nil
}

// consumeActionToken looks up the user holding the token, then clears
// the token and applies updates via applyTokenConsume. Exactly one of
// any concurrent callers wins; the losers get ErrInvalidToken.
func consumeActionToken(db *gorm.DB, token string, updates map[string]interface{}) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := db.Where("verification_token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up verification token: %w", err)
	}

	if err := applyTokenConsume(db, user.ID, token, updates); err != nil {
		return nil, err
	}

	if err := db.First(&user, "id = ?", user.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}
	return &user, nil
}

// applyTokenConsume clears the token and applies updates in one
// conditional UPDATE. The WHERE clause re-checks the token, so a caller
// holding a token that was consumed or rotated after their read affects
// zero rows and gets ErrInvalidToken.
func applyTokenConsume(db *gorm.DB, id uuid.UUID, token string, updates map[string]interface{}) error {
	merged := map[string]interface{}{"verification_token": nil}
	for k, v := range updates {
		merged[k] = v
	}

	result := db.Model(&models.User{}).
		Where("id = ? AND verification_token = ?", id, token).
		Updates(merged)
	if result.Error != nil {
		return fmt.Errorf("failed to consume verification token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInvalidToken
	}
	return nil
}
