package services

import (
	"time"

	"github.com/carebridgehq/carebridge-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the wire contract of a bearer session token.
type SessionClaims struct {
	Subject string // user email
	Role    models.UserRole
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	expiry time.Duration
}

func NewTokenIssuer(secret string, expiry time.Duration) *TokenIssuer {
	if expiry <= 0 {
		expiry = 60 * time.Minute
	}
	return &TokenIssuer{secret: []byte(secret), expiry: expiry}
}

func (t *TokenIssuer) Issue(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.Email,
		"role": string(user.Role),
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(t.expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify parses and validates a session token. It fails with
// ErrInvalidToken on a bad signature, malformed structure, wrong signing
// method, missing claims, or expiry.
func (t *TokenIssuer) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || role == "" {
		return nil, ErrInvalidToken
	}

	return &SessionClaims{Subject: sub, Role: models.UserRole(role)}, nil
}
