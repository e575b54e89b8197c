package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecrets = Secrets{
	AdminEmail:    "admin@example.com",
	AdminPassword: "correct horse",
	TokenSecret:   "test-secret-key-for-jwt",
}

func newTestAuth(t *testing.T, opts ...Option) *AuthService {
	t.Helper()
	return NewAuthService(testSecrets, opts...)
}

func TestCheckCredentials(t *testing.T) {
	auth := newTestAuth(t)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"exact match", "admin@example.com", "correct horse", nil},
		{"email is trimmed", "  admin@example.com\n", "correct horse", nil},
		{"password is not trimmed", "admin@example.com", "correct horse ", ErrInvalidCredentials},
		{"email is case-sensitive", "Admin@example.com", "correct horse", ErrInvalidCredentials},
		{"wrong password", "admin@example.com", "battery staple", ErrInvalidCredentials},
		{"empty submission", "", "", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claim, err := auth.CheckCredentials(tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got error %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && claim.Email != "admin@example.com" {
				t.Errorf("Email: got %q", claim.Email)
			}
		})
	}
}

func TestCheckCredentialsNotConfigured(t *testing.T) {
	for _, secrets := range []Secrets{
		{AdminPassword: "x", TokenSecret: "y"},
		{AdminEmail: "a@b.c", TokenSecret: "y"},
	} {
		auth := NewAuthService(secrets)
		if _, err := auth.CheckCredentials("", ""); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("expected ErrNotConfigured, got %v", err)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	auth := newTestAuth(t)

	token, err := auth.IssueToken(Claim{Email: "admin@example.com"})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("expected a compact JWS, got %q", token)
	}

	claim, err := auth.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claim.Email != "admin@example.com" {
		t.Errorf("Email: got %q, want %q", claim.Email, "admin@example.com")
	}
}

func TestTokenExpiry(t *testing.T) {
	issued := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	now := issued
	auth := newTestAuth(t, WithClock(func() time.Time { return now }))

	token, err := auth.IssueToken(Claim{Email: "admin@example.com"})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	now = issued.Add(SessionTTL - time.Second)
	if _, err := auth.VerifyToken(token); err != nil {
		t.Fatalf("token should still be valid just before expiry: %v", err)
	}

	now = issued.Add(SessionTTL + time.Second)
	if _, err := auth.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestVerifyRejects(t *testing.T) {
	auth := newTestAuth(t)

	other := NewAuthService(Secrets{TokenSecret: "a-different-secret"})
	foreign, err := other.IssueToken(Claim{Email: "admin@example.com"})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	noEmail, err := auth.IssueToken(Claim{})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, jwtClaims{
		Email: "admin@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    tokenIssuer,
		},
	})
	wrongAlg, err := hs512.SignedString([]byte(testSecrets.TokenSecret))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	tests := map[string]string{
		"garbage":         "garbage.token.here",
		"empty":           "",
		"wrong secret":    foreign,
		"missing email":   noEmail,
		"wrong algorithm": wrongAlg,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := auth.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestTokenSecretNotConfigured(t *testing.T) {
	auth := NewAuthService(Secrets{AdminEmail: "a@b.c", AdminPassword: "x"})

	if _, err := auth.IssueToken(Claim{Email: "a@b.c"}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("IssueToken: expected ErrNotConfigured, got %v", err)
	}
	if _, err := auth.VerifyToken("anything"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("VerifyToken: expected ErrNotConfigured, got %v", err)
	}
}

func expiresAt(t *testing.T, token string) time.Time {
	t.Helper()
	claims := &jwtClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		t.Fatalf("ParseUnverified: %v", err)
	}
	if claims.ExpiresAt == nil {
		t.Fatal("token has no exp")
	}
	return claims.ExpiresAt.Time
}

func TestReissueWithinSameSecondDiffers(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	auth := newTestAuth(t, WithClock(func() time.Time { return now }))

	first, err := auth.IssueToken(Claim{Email: "admin@example.com"})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	second, err := auth.IssueToken(Claim{Email: "admin@example.com"})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if first == second {
		t.Error("tokens issued in the same second should still differ")
	}
	if _, err := auth.VerifyToken(second); err != nil {
		t.Errorf("VerifyToken: %v", err)
	}
}

func TestReissueExpiryStrictlyLater(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	auth := newTestAuth(t, WithClock(func() time.Time { return now }))

	first, err := auth.IssueToken(Claim{Email: "admin@example.com"})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	now = now.Add(time.Second)
	second, err := auth.IssueToken(Claim{Email: "admin@example.com"})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if !expiresAt(t, second).After(expiresAt(t, first)) {
		t.Errorf("second exp %v not after first %v", expiresAt(t, second), expiresAt(t, first))
	}
	if got := expiresAt(t, second).Sub(now); got != SessionTTL {
		t.Errorf("exp - now = %v, want %v", got, SessionTTL)
	}
}
