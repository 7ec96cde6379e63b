package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
)

// Registration re-using the email of a soft-deleted account passes the
// pre-check (First skips deleted rows) but still collides with the unique
// index. The collision must surface as a conflict, not a server error.
func TestRegisterReusedEmailConflict(t *testing.T) {
	mock := newMockDB(t)
	app := newTestApp(nil)
	ac := &AuthController{}
	app.Post("/auth/register", ac.Register)

	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'old@example.com' for key 'users.idx_users_email'"))
	mock.ExpectRollback()

	body := `{"name":"Old Account","email":"old@example.com","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}

	var got map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got["error"] != "Email already exists" {
		t.Errorf("error = %q, want email conflict message", got["error"])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func requestPasswordReset(t *testing.T, app *fiber.App, email string) (int, string) {
	t.Helper()

	body := `{"email":"` + email + `"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/forgot-password", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(raw)
}

// The reset endpoint must answer identically whether or not the email maps
// to an account, so it cannot be used to enumerate registered addresses.
func TestPasswordResetResponsesIndistinguishable(t *testing.T) {
	mock := newMockDB(t)
	app := newTestApp(nil)
	ac := &AuthController{}
	app.Post("/auth/forgot-password", ac.RequestPasswordReset)

	// Known email: a token gets generated and stored.
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).
			AddRow(1, "known@example.com"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `users`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	knownStatus, knownBody := requestPasswordReset(t, app, "known@example.com")

	// Unknown email: nothing to store.
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	unknownStatus, unknownBody := requestPasswordReset(t, app, "unknown@example.com")

	if knownStatus != unknownStatus {
		t.Errorf("status differs: known=%d unknown=%d", knownStatus, unknownStatus)
	}
	if knownBody != unknownBody {
		t.Errorf("body differs: known=%q unknown=%q", knownBody, unknownBody)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
