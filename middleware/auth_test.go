package middleware

import (
	"testing"

	"learnhub_go/config"
	"learnhub_go/models"
)

func TestTokenRoundTrip(t *testing.T) {
	config.AppConfig = &config.Config{JWTSecret: "unit-test-secret-0123456789"}

	u := user(42, models.RoleTeacher)
	u.Email = "teacher@learnhub.local"

	token, err := GenerateToken(u)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "teacher@learnhub.local" {
		t.Errorf("Email = %q", claims.Email)
	}
	if claims.Role != models.RoleTeacher {
		t.Errorf("Role = %q, want TEACHER", claims.Role)
	}
	if claims.ExpiresAt != nil {
		t.Errorf("token carries an expiry, want none")
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	config.AppConfig = &config.Config{JWTSecret: "secret-one-0123456789abc"}

	token, err := GenerateToken(user(7, models.RoleStudent))
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	config.AppConfig = &config.Config{JWTSecret: "secret-two-0123456789abc"}
	if _, err := ParseToken(token); err == nil {
		t.Error("ParseToken accepted a token signed with a different secret")
	}
}

func TestParseTokenGarbage(t *testing.T) {
	config.AppConfig = &config.Config{JWTSecret: "unit-test-secret-0123456789"}

	if _, err := ParseToken("not.a.token"); err == nil {
		t.Error("ParseToken accepted garbage input")
	}
}
