package services

import (
	"errors"
	"fmt"

	"github.com/carebridgehq/carebridge-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// reconcileExternalIdentity maps an OAuth identity assertion onto a local
// user record, keyed by canonical email.
//
// Existing user: the provider field follows the latest assertion
// (latest-provider-wins); id, role, password and verification state stay
// untouched. Unseen email: a verified customer account is created with no
// password. A concurrent create racing on the same email is resolved by
// the unique constraint, after which the winner's record is merged onto.
func (s *AccountService) reconcileExternalIdentity(provider models.AuthProvider, email, displayName string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		// Without an email key there is nothing to reconcile onto; creating
		// a record here would make every email-less assertion share it.
		return nil, ErrInvalidCredentials
	}

	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err == nil {
		if user.AuthProvider != provider {
			if err := s.db.Model(&user).Update("auth_provider", provider).Error; err != nil {
				return nil, fmt.Errorf("failed to update auth provider: %w", err)
			}
			user.AuthProvider = provider
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user = models.User{
		ID:           uuid.New(),
		Email:        email,
		FullName:     displayName,
		Role:         models.RoleCustomer,
		IsVerified:   true,
		AuthProvider: provider,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a create race; merge onto the record that won.
			return s.reconcileExternalIdentity(provider, email, displayName)
		}
		return nil, fmt.Errorf("failed to create social user: %w", err)
	}
	return &user, nil
}
