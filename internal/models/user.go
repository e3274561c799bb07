package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleCustomer  UserRole = "customer"
	RoleCaregiver UserRole = "caregiver"
)

type AuthProvider string

const (
	ProviderEmail    AuthProvider = "email"
	ProviderGoogle   AuthProvider = "google"
	ProviderFacebook AuthProvider = "facebook"
)

// User is the single identity record for both local and social accounts.
// Email is stored lowercased and is the cross-provider identity key.
// VerificationToken holds at most one pending action token (email
// verification or password reset); issuing a new one invalidates the prior.
type User struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email             string         `gorm:"size:255;not null;uniqueIndex" json:"email"`
	HashedPassword    *string        `gorm:"type:text" json:"-"`
	FullName          string         `gorm:"size:255" json:"full_name,omitempty"`
	Role              UserRole       `gorm:"size:20;not null" json:"role"`
	IsActive          bool           `gorm:"not null;default:true" json:"is_active"`
	IsVerified        bool           `gorm:"not null;default:false" json:"is_verified"`
	VerificationToken *string        `gorm:"size:64;uniqueIndex" json:"-"`
	AuthProvider      AuthProvider   `gorm:"size:20;not null;default:'email'" json:"-"`
	IsApproved        bool           `gorm:"not null;default:false" json:"is_approved"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
