package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"learnhub_go/models"
	"learnhub_go/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
)

// Deleting a course removes its enrollments, materials, lectures, meetings
// and notices in one transaction. Enrollments go out hard so the unique
// index never holds rows for a course that no longer exists.
func TestDeleteCourseCascades(t *testing.T) {
	mock := newMockDB(t)

	admin := &models.User{
		BaseModel: models.BaseModel{ID: 1},
		Email:     "admin@example.com",
		Role:      models.RoleAdmin,
	}
	course := &models.Course{
		BaseModel: models.BaseModel{ID: 7},
		Title:     "Algebra",
		Active:    true,
	}

	app := newTestApp(admin)
	cc := &CourseController{Store: storage.NewLocalBackend(t.TempDir())}
	app.Delete("/courses/:id", func(c *fiber.Ctx) error {
		c.Locals("course", course)
		return cc.DeleteCourse(c)
	})

	mock.ExpectQuery("SELECT (.+) FROM `materials`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT (.+) FROM `lectures`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `enrollments`").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE `materials` SET `deleted_at`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE `lectures` SET `deleted_at`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE `meetings` SET `deleted_at`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `notices` SET `deleted_at`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `courses` SET `deleted_at`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectAuditInsert(mock)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/courses/7", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
