package auth

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	manager := NewJWTManager("test-secret-key", time.Hour)

	employeeID := int64(7)
	claims := UserClaims{
		UserID:     "user-1",
		Username:   "operator",
		EmployeeID: &employeeID,
		IsAdmin:    true,
	}

	token, err := manager.GenerateAccessToken(claims)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	got, err := manager.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if got.UserID != claims.UserID || got.Username != claims.Username {
		t.Errorf("claims = %+v, want %+v", got, claims)
	}
	if got.EmployeeID == nil || *got.EmployeeID != employeeID {
		t.Errorf("employee id = %v, want %d", got.EmployeeID, employeeID)
	}
	if !got.IsAdmin {
		t.Error("expected admin claim to survive the round trip")
	}
}

func TestValidateAccessTokenExpired(t *testing.T) {
	manager := NewJWTManager("test-secret-key", -time.Minute)

	token, err := manager.GenerateAccessToken(UserClaims{UserID: "user-1", Username: "operator"})
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := manager.ValidateAccessToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("error = %v, want ErrTokenExpired", err)
	}
}

func TestValidateAccessTokenWrongSecret(t *testing.T) {
	manager := NewJWTManager("test-secret-key", time.Hour)
	other := NewJWTManager("different-secret", time.Hour)

	token, err := manager.GenerateAccessToken(UserClaims{UserID: "user-1", Username: "operator"})
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := other.ValidateAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateAccessTokenGarbage(t *testing.T) {
	manager := NewJWTManager("test-secret-key", time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := manager.ValidateAccessToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ValidateAccessToken(%q) error = %v, want ErrInvalidToken", token, err)
		}
	}
}
