package utils

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is enforced at registration, password change and reset.
const MinPasswordLength = 6

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// CheckPassword compares a password with its hash
func CheckPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateRandomToken generates a random hex token of the given byte length.
func GenerateRandomToken(bytesLen int) (string, error) {
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// meetURLPattern matches Google Meet join links, e.g.
// https://meet.google.com/abc-defg-hij
var meetURLPattern = regexp.MustCompile(`^https://meet\.google\.com/[a-z]{3}-[a-z]{4}-[a-z]{3}$`)

// IsValidMeetURL reports whether url is a well-formed Google Meet link.
func IsValidMeetURL(url string) bool {
	return meetURLPattern.MatchString(strings.TrimSpace(url))
}

// IsAllowedMimeType checks a MIME type against an allow-list. Parameters after
// a semicolon (charset etc.) are ignored.
func IsAllowedMimeType(mimeType string, allowed []string) bool {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(mt, ";"); idx >= 0 {
		mt = strings.TrimSpace(mt[:idx])
	}
	for _, a := range allowed {
		if mt == strings.ToLower(a) {
			return true
		}
	}
	return false
}

// SanitizeString removes dangerous characters from string
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	return strings.TrimSpace(input)
}
