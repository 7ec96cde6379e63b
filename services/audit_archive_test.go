package services

import (
	"testing"

	"learnhub_go/database"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

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

	prev := database.DB
	database.DB = gdb
	t.Cleanup(func() {
		database.DB = prev
		sqlDB.Close()
	})
	return mock
}

func TestArchiveRefusesRecentCutoff(t *testing.T) {
	aas := &AuditArchiveService{}
	if err := aas.ArchiveOldActivities(3); err == nil {
		t.Fatal("expected error for cutoff younger than 7 days")
	}
}

// The batch query must be ordered oldest-first: Limit/Offset pagination is
// only stable with an ORDER BY, and the archive metadata records the first
// row's timestamp as the range start.
func TestArchiveBatchesOldestFirst(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery("SELECT (.+) FROM `activity_logs` WHERE created_at < (.+) ORDER BY created_at ASC").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	aas := &AuditArchiveService{}
	if err := aas.ArchiveOldActivities(30); err != nil {
		t.Fatalf("ArchiveOldActivities: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
