package cryptox

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestHashPassword_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	h1 := HashPassword(password, salt)
	h2 := HashPassword(password, salt)

	if !bytes.Equal(h1, h2) {
		t.Errorf("expected same result for same inputs, got different")
	}

	// argon2id(t=1, m=64MiB, p=4, len=32) snapshot
	expectedHex := "9290403300158e19f27e48e7087f7383b03065bf5b25ef23ebc40229616cd8b3"
	if hex.EncodeToString(h1) != expectedHex {
		t.Errorf("expected %s, got %s", expectedHex, hex.EncodeToString(h1))
	}
}

func TestHashPassword_DifferentSalts(t *testing.T) {
	password := []byte("secret-password")

	if bytes.Equal(HashPassword(password, []byte("salt-1")), HashPassword(password, []byte("salt-2"))) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestVerifyPassword(t *testing.T) {
	salt := NewSalt()
	if len(salt) != SaltSize {
		t.Fatalf("salt length = %d, want %d", len(salt), SaltSize)
	}
	hash := HashPassword([]byte("p1"), salt)

	tests := []struct {
		name     string
		password string
		salt     []byte
		hash     []byte
		want     bool
	}{
		{"match", "p1", salt, hash, true},
		{"wrong password", "p2", salt, hash, false},
		{"case sensitive", "P1", salt, hash, false},
		{"wrong salt", "p1", []byte("other"), hash, false},
		{"empty hash", "p1", salt, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyPassword([]byte(tt.password), tt.salt, tt.hash); got != tt.want {
				t.Fatalf("VerifyPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewSalt_Unique(t *testing.T) {
	if bytes.Equal(NewSalt(), NewSalt()) {
		t.Logf("warning: two salts identical; extremely unlikely")
	}
}
