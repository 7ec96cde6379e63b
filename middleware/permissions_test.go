package middleware

import (
	"net/http/httptest"
	"testing"

	"learnhub_go/models"

	"github.com/gofiber/fiber/v2"
)

func TestRoleAllowed(t *testing.T) {
	tests := []struct {
		name string
		cap  Capability
		role models.Role
		want bool
	}{
		{"admin creates course", CapCourseCreate, models.RoleAdmin, true},
		{"management creates course", CapCourseCreate, models.RoleManagement, true},
		{"teacher cannot create course", CapCourseCreate, models.RoleTeacher, false},
		{"head cannot create course", CapCourseCreate, models.RoleHead, false},
		{"student cannot create course", CapCourseCreate, models.RoleStudent, false},

		{"teacher updates course", CapCourseUpdate, models.RoleTeacher, true},
		{"head cannot update course", CapCourseUpdate, models.RoleHead, false},

		{"head deletes course", CapCourseDelete, models.RoleHead, true},
		{"student cannot delete course", CapCourseDelete, models.RoleStudent, false},

		{"only admin and management assign teachers", CapCourseAssignTeachers, models.RoleTeacher, false},
		{"admin assigns teachers", CapCourseAssignTeachers, models.RoleAdmin, true},

		{"student self-enrolls", CapEnrollSelf, models.RoleStudent, true},
		{"teacher cannot self-enroll", CapEnrollSelf, models.RoleTeacher, false},
		{"admin cannot self-enroll", CapEnrollSelf, models.RoleAdmin, false},

		{"head manages enrollments", CapEnrollmentManage, models.RoleHead, true},
		{"teacher cannot manage enrollments", CapEnrollmentManage, models.RoleTeacher, false},
		{"student cannot manage enrollments", CapEnrollmentManage, models.RoleStudent, false},

		{"teacher uploads material", CapMaterialUpload, models.RoleTeacher, true},
		{"head cannot upload material", CapMaterialUpload, models.RoleHead, false},
		{"student cannot upload material", CapMaterialUpload, models.RoleStudent, false},

		{"teacher creates lecture", CapLectureCreate, models.RoleTeacher, true},
		{"management cannot create lecture", CapLectureCreate, models.RoleManagement, false},
		{"teacher uploads recording", CapLectureUploadRecording, models.RoleTeacher, true},

		{"head creates meeting", CapMeetingCreate, models.RoleHead, true},
		{"admin cannot create meeting", CapMeetingCreate, models.RoleAdmin, false},
		{"management cannot create meeting", CapMeetingCreate, models.RoleManagement, false},

		{"admin creates notice", CapNoticeCreate, models.RoleAdmin, true},
		{"management cannot create notice", CapNoticeCreate, models.RoleManagement, false},
		{"student cannot create notice", CapNoticeCreate, models.RoleStudent, false},

		{"head manages users", CapUserManage, models.RoleHead, true},
		{"management cannot manage users", CapUserManage, models.RoleManagement, false},

		{"head views activities", CapActivityView, models.RoleHead, true},
		{"management cannot view activities", CapActivityView, models.RoleManagement, false},

		{"management generates reports", CapReportGenerate, models.RoleManagement, true},
		{"head cannot generate reports", CapReportGenerate, models.RoleHead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoleAllowed(tt.cap, tt.role); got != tt.want {
				t.Errorf("RoleAllowed(%q, %q) = %v, want %v", tt.cap, tt.role, got, tt.want)
			}
		})
	}
}

func TestEveryCapabilityHasRoles(t *testing.T) {
	for cap, roles := range capabilityRoles {
		if len(roles) == 0 {
			t.Errorf("capability %q has an empty role set", cap)
		}
		for _, r := range roles {
			if !r.Valid() {
				t.Errorf("capability %q names unknown role %q", cap, r)
			}
		}
	}
}

func TestUnknownCapabilityDeniesAll(t *testing.T) {
	for _, role := range models.AllRoles {
		if RoleAllowed("no.such.capability", role) {
			t.Errorf("unknown capability allowed role %q", role)
		}
	}
}

func TestRequireCapability(t *testing.T) {
	newApp := func(claims *Claims) *fiber.App {
		app := fiber.New()
		app.Use(func(c *fiber.Ctx) error {
			if claims != nil {
				c.Locals("claims", claims)
			}
			return c.Next()
		})
		app.Post("/courses", RequireCapability(CapCourseCreate), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusCreated)
		})
		return app
	}

	tests := []struct {
		name       string
		claims     *Claims
		wantStatus int
	}{
		{"no claims", nil, fiber.StatusUnauthorized},
		{"eligible role", &Claims{UserID: 1, Role: models.RoleAdmin}, fiber.StatusCreated},
		{"ineligible role", &Claims{UserID: 2, Role: models.RoleStudent}, fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(tt.claims)
			req := httptest.NewRequest("POST", "/courses", nil)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}
