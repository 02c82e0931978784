package jwt

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestSigner(t *testing.T) *Signer {
	t.Helper()

	s, err := NewSigner(SignerConfig{
		TTL:           time.Hour,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("0123456789abcdef0123456789abcdef"),
		Issuer:        "techhatch",
	})
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}
	return s
}

func TestDecodeRoundTripsIssuedClaims(t *testing.T) {
	s := newTestSigner(t)

	token, err := s.Issue("ada@example.com", RoleRecruiter, "42")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if claims.Email() != "ada@example.com" {
		t.Fatalf("unexpected subject %q", claims.Email())
	}
	if claims.Role != RoleRecruiter {
		t.Fatalf("unexpected role %q", claims.Role)
	}
	if claims.UserID != "42" {
		t.Fatalf("unexpected user id %q", claims.UserID)
	}
	if claims.ExpiresAt == nil {
		t.Fatal("expected expiry claim")
	}
}

func TestDecodeDoesNotVerifySignature(t *testing.T) {
	s := newTestSigner(t)
	token, err := s.Issue("ada@example.com", RoleCandidate, "7")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "." + base64.RawURLEncoding.EncodeToString([]byte("forged"))

	claims, err := Decode(tampered)
	if err != nil {
		t.Fatalf("Decode should ignore signature, got %v", err)
	}
	if claims.Role != RoleCandidate {
		t.Fatalf("unexpected role %q", claims.Role)
	}
}

func TestDecodeAcceptsNumericUserID(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"bo@example.com","role":"CANDIDATE","userId":1234567890123,"exp":4102444800}`))
	token := header + "." + payload + ".c2ln"

	claims, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if claims.UserID != "1234567890123" {
		t.Fatalf("unexpected user id %q", claims.UserID)
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := []string{
		"",
		"abc",
		"a.b",
		"a.b.c.d",
		"!!!.???.***",
		base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256"}`)) + ".not-json.sig",
	}

	for _, tc := range cases {
		if _, err := Decode(tc); !errors.Is(err, ErrDecode) {
			t.Fatalf("Decode(%q): expected ErrDecode, got %v", tc, err)
		}
		var de *DecodeError
		if _, err := Decode(tc); !errors.As(err, &de) {
			t.Fatalf("Decode(%q): expected *DecodeError", tc)
		}
		if !IsExpired(tc, time.Now()) {
			t.Fatalf("IsExpired(%q) should be true for malformed input", tc)
		}
	}
}

func TestIsExpired(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	s := newTestSigner(t).WithClock(func() time.Time { return base })

	live, err := s.IssueWithTTL("a@example.com", RoleCandidate, "1", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	atBoundary, err := s.IssueWithTTL("a@example.com", RoleCandidate, "1", 0)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	stale, err := s.IssueWithTTL("a@example.com", RoleCandidate, "1", -time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	tests := []struct {
		name  string
		token string
		now   time.Time
		want  bool
	}{
		{"future expiry", live, base, false},
		{"just before expiry", live, base.Add(59 * time.Minute), false},
		{"exactly at expiry", atBoundary, base, true},
		{"past expiry", stale, base, true},
		{"live token later", live, base.Add(2 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsExpired(tt.token, tt.now); got != tt.want {
				t.Fatalf("IsExpired = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsExpiredWithoutExpiryClaim(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"a@example.com","role":"CANDIDATE"}`))
	token := header + "." + payload + ".c2ln"

	if _, err := Decode(token); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !IsExpired(token, time.Now()) {
		t.Fatal("token without exp must be expired")
	}
}

func TestSignerEd25519(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	s, err := NewSigner(SignerConfig{TTL: time.Minute, SigningMethod: MethodEd25519, PrivateKey: priv, KeyID: "k1"})
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}
	token, err := s.Issue("ed@example.com", RoleCandidate, "9")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	claims, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if claims.Email() != "ed@example.com" {
		t.Fatalf("unexpected subject %q", claims.Email())
	}
}

func TestNewSignerRejectsBadConfig(t *testing.T) {
	if _, err := NewSigner(SignerConfig{TTL: 0, PrivateKey: []byte("k")}); err == nil {
		t.Fatal("expected TTL error")
	}
	if _, err := NewSigner(SignerConfig{TTL: time.Minute}); err == nil {
		t.Fatal("expected missing key error")
	}
	if _, err := NewSigner(SignerConfig{TTL: time.Minute, SigningMethod: "rs512", PrivateKey: []byte("k")}); err == nil {
		t.Fatal("expected unsupported method error")
	}
}
