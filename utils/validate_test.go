package utils

import (
	"strings"
	"testing"
)

func TestValidateStruct(t *testing.T) {
	type req struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=6"`
	}

	if err := ValidateStruct(&req{Email: "a@b.co", Password: "secret1"}); err != nil {
		t.Errorf("valid struct rejected: %v", err)
	}

	err := ValidateStruct(&req{Email: "not-an-email", Password: "ab"})
	if err == nil {
		t.Fatal("invalid struct accepted")
	}
	msg := err.Error()
	if !strings.Contains(msg, "email must be a valid email address") {
		t.Errorf("missing email message: %q", msg)
	}
	if !strings.Contains(msg, "password must be at least 6 characters") {
		t.Errorf("missing password message: %q", msg)
	}

	if err := ValidateStruct(&req{}); err == nil || !strings.Contains(err.Error(), "email is required") {
		t.Errorf("missing required message: %v", err)
	}
}
