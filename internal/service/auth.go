package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionTTL is how long an issued session token stays valid.
const SessionTTL = 10 * 24 * time.Hour

const tokenIssuer = "folio"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired session token")
	ErrNotConfigured      = errors.New("authentication is not configured")
)

// Claim is the identity carried inside a session token.
type Claim struct {
	Email string
}

// Secrets are the values the single administrator is configured with.
type Secrets struct {
	AdminEmail    string
	AdminPassword string
	TokenSecret   string
}

// AuthService checks the administrator's credentials and issues and
// verifies the signed tokens that back a session.
type AuthService struct {
	secrets Secrets
	now     func() time.Time
}

// Option customises an AuthService.
type Option func(*AuthService)

// WithClock replaces the clock used for iat/exp and for verification.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

func NewAuthService(secrets Secrets, opts ...Option) *AuthService {
	s := &AuthService{secrets: secrets, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckCredentials compares the submitted email and password against the
// configured administrator. The email is trimmed; the password is used as is.
// Every mismatch yields the same ErrInvalidCredentials.
func (s *AuthService) CheckCredentials(email, password string) (Claim, error) {
	if s.secrets.AdminEmail == "" || s.secrets.AdminPassword == "" {
		return Claim{}, fmt.Errorf("admin email and password: %w", ErrNotConfigured)
	}

	email = strings.TrimSpace(email)
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.secrets.AdminEmail))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.secrets.AdminPassword))
	if emailOK&passOK != 1 {
		return Claim{}, ErrInvalidCredentials
	}
	return Claim{Email: s.secrets.AdminEmail}, nil
}

// IssueToken creates a signed session token for claim, valid for SessionTTL.
// iat and exp have one-second resolution; every token carries its own jti,
// so two tokens issued within the same second still differ.
func (s *AuthService) IssueToken(claim Claim) (string, error) {
	if s.secrets.TokenSecret == "" {
		return "", fmt.Errorf("token secret: %w", ErrNotConfigured)
	}

	now := s.now()
	claims := jwtClaims{
		Email: claim.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
			Issuer:    tokenIssuer,
			ID:        uuid.Must(uuid.NewV7()).String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secrets.TokenSecret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks the token's signature and expiry and returns the claim
// it carries. Every rejection is reported as ErrInvalidToken.
func (s *AuthService) VerifyToken(tokenStr string) (Claim, error) {
	if s.secrets.TokenSecret == "" {
		return Claim{}, fmt.Errorf("token secret: %w", ErrNotConfigured)
	}

	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.secrets.TokenSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return Claim{}, ErrInvalidToken
	}
	if claims.Email == "" {
		return Claim{}, ErrInvalidToken
	}

	return Claim{Email: claims.Email}, nil
}

type jwtClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}
