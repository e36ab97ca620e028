// Package auth implements the access-code login gate and JWT issuance.
// There is no self-service registration: the operator provisions a fixed
// list of email/access-code pairs and the server only ever authenticates
// against that list.
package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/nutricalc/nutricalc-backend/logger"
)

const issuer = "nutricalc"

// ErrInvalidCredentials is returned for any login failure. The caller gets no
// hint whether the email or the access code was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken is returned when a bearer token fails validation.
var ErrInvalidToken = errors.New("invalid token")

// Credential is one provisioned email/access-code pair. AccessCode may be a
// bcrypt hash or, for local development, a plain string.
type Credential struct {
	Email      string `json:"email"`
	AccessCode string `json:"accessCode"`
}

// Gate verifies logins against the provisioned credential list and signs
// session tokens.
type Gate struct {
	credentials map[string]string
	secret      []byte
	tokenTTL    time.Duration
}

// NewGate builds a gate over the given credentials.
func NewGate(credentials []Credential, secret string, tokenTTL time.Duration) (*Gate, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is not configured")
	}
	byEmail := make(map[string]string, len(credentials))
	for _, c := range credentials {
		email := normalizeEmail(c.Email)
		if email == "" || c.AccessCode == "" {
			continue
		}
		byEmail[email] = c.AccessCode
	}
	return &Gate{
		credentials: byEmail,
		secret:      []byte(secret),
		tokenTTL:    tokenTTL,
	}, nil
}

// LoadCredentials reads the provisioned credential list from a JSON file.
func LoadCredentials(path string) ([]Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	var creds []Credential
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials file: %w", err)
	}
	logger.Info("Credentials loaded", "path", path, "count", len(creds))
	return creds, nil
}

// Verify checks an email/access-code pair and returns the canonical email.
func (g *Gate) Verify(email, accessCode string) (string, error) {
	email = normalizeEmail(email)
	stored, ok := g.credentials[email]
	if !ok {
		// Burn a comparison anyway to keep timing uniform across
		// unknown emails and wrong codes.
		subtle.ConstantTimeCompare([]byte(accessCode), []byte("missing"))
		return "", ErrInvalidCredentials
	}

	if strings.HasPrefix(stored, "$2") {
		if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(accessCode)); err != nil {
			return "", ErrInvalidCredentials
		}
		return email, nil
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(accessCode)) != 1 {
		return "", ErrInvalidCredentials
	}
	return email, nil
}

// Token signs a session token for the given email.
func (g *Gate) Token(email string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   normalizeEmail(email),
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(g.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a session token and returns the subject email.
func (g *Gate) Parse(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
