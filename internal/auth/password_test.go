package auth

import (
	"strings"
	"testing"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{name: "simple", password: "pw123456"},
		{name: "empty", password: ""},
		{name: "unicode", password: "pässwörd-日本語"},
		{name: "long", password: strings.Repeat("x", 512)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			if err != nil {
				t.Fatalf("HashPassword failed: %v", err)
			}
			if !VerifyPassword(tt.password, hash) {
				t.Errorf("VerifyPassword should accept the original password")
			}
			if VerifyPassword(tt.password+"x", hash) {
				t.Errorf("VerifyPassword should reject a different password")
			}
		})
	}
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := HashPassword("pw123456")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	second, err := HashPassword("pw123456")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if first == second {
		t.Errorf("identical passwords must not produce identical stored hashes")
	}
}

func TestHashPassword_Format(t *testing.T) {
	hash, err := HashPassword("pw123456")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	parts := strings.SplitN(hash, ":", 2)
	if len(parts) != 2 {
		t.Fatalf("expected salt:key format, got %q", hash)
	}
	if len(parts[0]) != saltBytes*2 {
		t.Errorf("expected %d hex chars of salt, got %d", saltBytes*2, len(parts[0]))
	}
	if len(parts[1]) != hashKeyLength*2 {
		t.Errorf("expected %d hex chars of key, got %d", hashKeyLength*2, len(parts[1]))
	}
}

func TestVerifyPassword_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		stored string
	}{
		{name: "empty", stored: ""},
		{name: "no separator", stored: "deadbeef"},
		{name: "bad salt hex", stored: "zz:deadbeef"},
		{name: "bad key hex", stored: "deadbeef:zz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if VerifyPassword("pw123456", tt.stored) {
				t.Errorf("malformed hash %q must not verify", tt.stored)
			}
		})
	}
}

func TestGenerateSessionToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateSessionToken()
		if err != nil {
			t.Fatalf("GenerateSessionToken failed: %v", err)
		}
		if len(token) != tokenBytes*2 {
			t.Fatalf("expected %d hex chars, got %d", tokenBytes*2, len(token))
		}
		if seen[token] {
			t.Fatalf("token collision after %d generations", i)
		}
		seen[token] = true
	}
}
