package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"

	"learnhub_go/models"

	"github.com/gofiber/fiber/v2"
)

func TestRecordActivityReturnsSinkError(t *testing.T) {
	orig := auditSink
	defer func() { auditSink = orig }()

	sinkErr := errors.New("sink unavailable")
	var captured *models.ActivityLog
	auditSink = func(al *models.ActivityLog) error {
		captured = al
		return sinkErr
	}

	app := fiber.New()
	app.Post("/things", func(c *fiber.Ctx) error {
		if err := RecordActivity(c, "CREATE", "things", 5, fiber.Map{"k": "v"}); !errors.Is(err, sinkErr) {
			t.Errorf("RecordActivity error = %v, want %v", err, sinkErr)
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/things", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Errorf("status = %d, want 201", resp.StatusCode)
	}

	if captured == nil {
		t.Fatal("sink never invoked")
	}
	if captured.Action != "CREATE" || captured.Resource != "things" || captured.ResourceID != 5 {
		t.Errorf("unexpected row: %+v", captured)
	}
	if len(captured.Details) == 0 {
		t.Error("details not serialized")
	}
}

// A failing audit write must never surface to the client.
func TestLogAuditSwallowsFailure(t *testing.T) {
	orig := auditSink
	defer func() { auditSink = orig }()

	auditSink = func(al *models.ActivityLog) error {
		return errors.New("sink down")
	}

	app := fiber.New()
	app.Post("/things", func(c *fiber.Ctx) error {
		LogAudit(c, "CREATE", "things", 1, nil)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "ok"})
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/things", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Errorf("status = %d, want 201", resp.StatusCode)
	}
}

func TestRecordActivityAttributesActor(t *testing.T) {
	orig := auditSink
	defer func() { auditSink = orig }()

	var captured *models.ActivityLog
	auditSink = func(al *models.ActivityLog) error {
		captured = al
		return nil
	}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", user(99, models.RoleAdmin))
		return c.Next()
	})
	app.Delete("/things/:id", func(c *fiber.Ctx) error {
		LogAudit(c, "DELETE", "things", 3, nil)
		return c.SendStatus(fiber.StatusOK)
	})

	if _, err := app.Test(httptest.NewRequest("DELETE", "/things/3", nil)); err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	if captured == nil {
		t.Fatal("sink never invoked")
	}
	if captured.UserID != 99 {
		t.Errorf("UserID = %d, want 99", captured.UserID)
	}
}
