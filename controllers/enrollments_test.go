package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"learnhub_go/models"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/gorm"
)

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"gorm sentinel", gorm.ErrDuplicatedKey, true},
		{"wrapped sentinel", fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), true},
		{"mysql 1062 text", errors.New("Error 1062 (23000): Duplicate entry '2-1' for key 'enrollments.idx_student_course'"), true},
		{"unrelated error", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDuplicateKey(tt.err); got != tt.want {
				t.Errorf("isDuplicateKey(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// Unenrolling must free the (student_id, course_id) unique index slot, so a
// student who leaves a course can join it again. A soft delete would leave a
// tombstone row behind and turn the re-enrollment into a conflict.
func TestUnenrollThenReenroll(t *testing.T) {
	mock := newMockDB(t)

	student := &models.User{
		BaseModel: models.BaseModel{ID: 2},
		Name:      "Somchai",
		Email:     "somchai@example.com",
		Role:      models.RoleStudent,
	}
	app := newTestApp(student)
	ec := &EnrollmentController{}
	app.Post("/courses/:id/enroll", ec.EnrollSelf)
	app.Delete("/courses/:id/enroll", ec.UnenrollSelf)

	// Unenroll: the row is removed outright, not tombstoned.
	mock.ExpectQuery("SELECT (.+) FROM `enrollments`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "course_id", "status"}).
			AddRow(5, 2, 1, "active"))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `enrollments`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectAuditInsert(mock)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/courses/1/enroll", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unenroll status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	// Re-enroll the same pair: the insert must go through.
	mock.ExpectQuery("SELECT (.+) FROM `courses`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "active"}).
			AddRow(1, "Algebra", true))
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role"}).
			AddRow(2, "somchai@example.com", "STUDENT"))
	mock.ExpectQuery("SELECT (.+) FROM `enrollments`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `enrollments`").WillReturnResult(sqlmock.NewResult(6, 1))
	mock.ExpectCommit()
	expectAuditInsert(mock)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/courses/1/enroll", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("re-enroll status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnrollAlreadyEnrolledConflict(t *testing.T) {
	mock := newMockDB(t)

	student := &models.User{
		BaseModel: models.BaseModel{ID: 2},
		Email:     "somchai@example.com",
		Role:      models.RoleStudent,
	}
	app := newTestApp(student)
	ec := &EnrollmentController{}
	app.Post("/courses/:id/enroll", ec.EnrollSelf)

	mock.ExpectQuery("SELECT (.+) FROM `courses`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "active"}).
			AddRow(1, "Algebra", true))
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role"}).
			AddRow(2, "somchai@example.com", "STUDENT"))
	mock.ExpectQuery("SELECT (.+) FROM `enrollments`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "course_id"}).
			AddRow(5, 2, 1))

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/courses/1/enroll", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "Student is already enrolled in this course" {
		t.Errorf("error = %q, want enrollment conflict message", body["error"])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// Two concurrent enrollments can both pass the pre-check; the loser of the
// insert race still gets a conflict, not a server error.
func TestEnrollInsertRaceConflict(t *testing.T) {
	mock := newMockDB(t)

	student := &models.User{
		BaseModel: models.BaseModel{ID: 2},
		Email:     "somchai@example.com",
		Role:      models.RoleStudent,
	}
	app := newTestApp(student)
	ec := &EnrollmentController{}
	app.Post("/courses/:id/enroll", ec.EnrollSelf)

	mock.ExpectQuery("SELECT (.+) FROM `courses`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "active"}).
			AddRow(1, "Algebra", true))
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role"}).
			AddRow(2, "somchai@example.com", "STUDENT"))
	mock.ExpectQuery("SELECT (.+) FROM `enrollments`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `enrollments`").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '2-1' for key 'enrollments.idx_student_course'"))
	mock.ExpectRollback()

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/courses/1/enroll", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
