package service

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"obi-site/pkg/errors"
)

const (
	formTokenIssuer  = "obi-site"
	formTokenSubject = "enquiry-form"
)

// FormToken identifies one rendered enquiry form
type FormToken struct {
	Token     string    `json:"form_token"`
	FormID    string    `json:"form_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FormTokenService issues and verifies signed form tokens. The token's JWT ID
// is the form instance ID the submission guard locks on.
type FormTokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewFormTokenService creates the service. An empty secret gets a random one,
// which means tokens do not survive a restart; config only allows that in
// development.
func NewFormTokenService(secret string, ttl time.Duration) (*FormTokenService, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate form token secret: %w", err)
		}
	}
	return &FormTokenService{secret: key, ttl: ttl, now: time.Now}, nil
}

// Issue creates a token for a new form instance
func (s *FormTokenService) Issue() (*FormToken, error) {
	now := s.now()
	formID := uuid.NewString()
	expiresAt := now.Add(s.ttl)

	claims := jwt.RegisteredClaims{
		ID:        formID,
		Issuer:    formTokenIssuer,
		Subject:   formTokenSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, errors.NewInternalError("Failed to issue form token", err)
	}

	return &FormToken{Token: signed, FormID: formID, ExpiresAt: expiresAt}, nil
}

// Verify checks the signature and expiry and returns the form ID
func (s *FormTokenService) Verify(token string) (string, error) {
	if token == "" {
		return "", errors.NewValidationError("This form has expired, please reload the page", map[string]interface{}{
			"form_token": "missing",
		})
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(formTokenIssuer),
		jwt.WithSubject(formTokenSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || claims.ID == "" {
		return "", errors.NewValidationError("This form has expired, please reload the page", map[string]interface{}{
			"form_token": "invalid",
		})
	}

	return claims.ID, nil
}
