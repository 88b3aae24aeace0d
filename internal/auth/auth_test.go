package auth

import (
	"testing"
	"time"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword("correct horse", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("wrong horse", hash) {
		t.Error("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Generate(42, "batkhuslen")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	claims, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Username != "batkhuslen" {
		t.Errorf("Username = %q, want %q", claims.Username, "batkhuslen")
	}
}

func TestTokenValidation(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	tests := []struct {
		name  string
		token func() string
	}{
		{
			name: "expired token",
			token: func() string {
				expired := NewTokenIssuer("test-secret", -time.Minute)
				tok, _ := expired.Generate(1, "a")
				return tok
			},
		},
		{
			name: "wrong secret",
			token: func() string {
				other := NewTokenIssuer("other-secret", time.Hour)
				tok, _ := other.Generate(1, "a")
				return tok
			},
		},
		{
			name:  "garbage",
			token: func() string { return "not.a.token" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := issuer.Validate(tt.token()); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
