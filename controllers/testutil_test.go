package controllers

import (
	"testing"

	"learnhub_go/config"
	"learnhub_go/database"
	"learnhub_go/middleware"
	"learnhub_go/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB swaps database.DB for a sqlmock-backed connection for the
// duration of one test.
func newMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}

	prevDB := database.DB
	prevCfg := config.AppConfig
	database.DB = gdb
	config.AppConfig = &config.Config{}
	t.Cleanup(func() {
		database.DB = prevDB
		config.AppConfig = prevCfg
		sqlDB.Close()
	})
	return mock
}

// newTestApp builds a Fiber app with the given user injected the way the
// auth middleware would after validating a token. A nil user leaves the
// request anonymous.
func newTestApp(user *models.User) *fiber.App {
	app := fiber.New()
	if user != nil {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("user", user)
			c.Locals("claims", &middleware.Claims{
				UserID: user.ID,
				Email:  user.Email,
				Role:   user.Role,
			})
			return c.Next()
		})
	}
	return app
}

// expectAuditInsert matches the audit row written after a successful
// mutation.
func expectAuditInsert(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `activity_logs`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
}
