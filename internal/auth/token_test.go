package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.Issue(Claims{UserID: "u1", FamilyID: "f1", Email: "alice@example.com", Role: "admin"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	c, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if c.UserID != "u1" || c.FamilyID != "f1" || c.Email != "alice@example.com" || c.Role != "admin" {
		t.Errorf("claims = %+v", c)
	}
	if c.Subject != "u1" {
		t.Errorf("subject = %q, want %q", c.Subject, "u1")
	}
}

func TestDefaultTTL(t *testing.T) {
	m := NewTokenManager("s", 0)
	if m.ttl != 7*24*time.Hour {
		t.Errorf("ttl = %v, want 168h", m.ttl)
	}
}

func TestVerifyExpired(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	issuedAt := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issuedAt }

	token, err := m.Issue(Claims{UserID: "u1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	m.now = time.Now
	if _, err := m.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("verify expired = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyTampered(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	token, err := m.Issue(Claims{UserID: "u1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other := NewTokenManager("other-secret", time.Hour)
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("verify with wrong secret = %v, want ErrInvalidToken", err)
	}

	parts := strings.Split(token, ".")
	parts[2] = strings.Repeat("A", len(parts[2]))
	if _, err := m.Verify(strings.Join(parts, ".")); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("verify bad signature = %v, want ErrInvalidToken", err)
	}

	if _, err := m.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("verify garbage = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	c := &Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, c).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := m.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("verify none alg = %v, want ErrInvalidToken", err)
	}
}
