package utils

import (
	"strings"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("changeme123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "changeme123" {
		t.Fatal("hash equals plaintext")
	}

	if err := CheckPassword("changeme123", hash); err != nil {
		t.Errorf("CheckPassword rejected the correct password: %v", err)
	}
	if err := CheckPassword("wrong-password", hash); err == nil {
		t.Error("CheckPassword accepted a wrong password")
	}
}

func TestGenerateRandomToken(t *testing.T) {
	a, err := GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("GenerateRandomToken: %v", err)
	}
	if len(a) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(a))
	}

	b, err := GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("GenerateRandomToken: %v", err)
	}
	if a == b {
		t.Error("two tokens are identical")
	}
}

func TestIsValidMeetURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://meet.google.com/abc-defg-hij", true},
		{"  https://meet.google.com/abc-defg-hij  ", true},
		{"http://meet.google.com/abc-defg-hij", false},
		{"https://meet.google.com/abc-defg-hijk", false},
		{"https://meet.google.com/ABC-DEFG-HIJ", false},
		{"https://zoom.us/j/123456", false},
		{"https://meet.google.com/", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValidMeetURL(tt.url); got != tt.want {
			t.Errorf("IsValidMeetURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestIsAllowedMimeType(t *testing.T) {
	allowed := []string{"application/pdf", "video/mp4", "image/png"}

	tests := []struct {
		mime string
		want bool
	}{
		{"application/pdf", true},
		{"APPLICATION/PDF", true},
		{"application/pdf; charset=binary", true},
		{" video/mp4 ", true},
		{"application/x-msdownload", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsAllowedMimeType(tt.mime, allowed); got != tt.want {
			t.Errorf("IsAllowedMimeType(%q) = %v, want %v", tt.mime, got, tt.want)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00world  "); got != "helloworld" {
		t.Errorf("SanitizeString = %q", got)
	}
	if got := SanitizeString(strings.Repeat(" ", 5)); got != "" {
		t.Errorf("SanitizeString(blank) = %q", got)
	}
}
