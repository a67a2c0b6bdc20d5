package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	// MinCost keeps the test fast; production uses DefaultBcryptCost
	pm := NewPasswordManager(bcrypt.MinCost, MinPasswordLength)

	hash, err := pm.HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !pm.VerifyPassword("correct horse battery", hash) {
		t.Error("expected correct password to verify")
	}
	if pm.VerifyPassword("wrong password", hash) {
		t.Error("expected wrong password to fail verification")
	}
}

func TestHashPasswordTooLong(t *testing.T) {
	pm := NewPasswordManager(bcrypt.MinCost, MinPasswordLength)

	if _, err := pm.HashPassword(strings.Repeat("x", MaxPasswordLength+1)); err == nil {
		t.Error("expected error for over-long password")
	}
}

func TestValidatePassword(t *testing.T) {
	pm := NewPasswordManager(bcrypt.MinCost, 10)

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"long enough", "abcdefghij", false},
		{"too short", "abcdefghi", true},
		{"empty", "", true},
		{"too long", strings.Repeat("x", MaxPasswordLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pm.ValidatePassword(tt.password)
			if tt.wantErr && !errors.Is(err, ErrWeakPassword) {
				t.Errorf("error = %v, want ErrWeakPassword", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewPasswordManagerClampsSettings(t *testing.T) {
	pm := NewPasswordManager(0, 2)

	if pm.bcryptCost != DefaultBcryptCost {
		t.Errorf("bcrypt cost = %d, want %d", pm.bcryptCost, DefaultBcryptCost)
	}
	if pm.minPasswordLength != MinPasswordLength {
		t.Errorf("min length = %d, want %d", pm.minPasswordLength, MinPasswordLength)
	}
}
