package middleware

import (
	"learnhub_go/models"

	"github.com/gofiber/fiber/v2"
)

// Capability names one gated operation. The table below is the single source
// of truth for which roles may exercise it; ownership narrowing for TEACHER is
// applied on top by the ownership middleware, never instead of this check.
type Capability string

const (
	CapCourseCreate         Capability = "course.create"
	CapCourseUpdate         Capability = "course.update"
	CapCourseDelete         Capability = "course.delete"
	CapCourseAssignTeachers Capability = "course.assign-teachers"

	CapEnrollSelf       Capability = "enrollment.self"
	CapEnrollmentManage Capability = "enrollment.manage"

	CapMaterialUpload Capability = "material.upload"
	CapMaterialUpdate Capability = "material.update"
	CapMaterialDelete Capability = "material.delete"

	CapLectureCreate          Capability = "lecture.create"
	CapLectureUpdate          Capability = "lecture.update"
	CapLectureDelete          Capability = "lecture.delete"
	CapLectureUploadRecording Capability = "lecture.upload-recording"

	CapMeetingCreate Capability = "meeting.create"
	CapMeetingUpdate Capability = "meeting.update"
	CapMeetingDelete Capability = "meeting.delete"

	CapNoticeCreate Capability = "notice.create"
	CapNoticeUpdate Capability = "notice.update"
	CapNoticeDelete Capability = "notice.delete"

	CapUserManage     Capability = "user.manage"
	CapActivityView   Capability = "activity.view"
	CapReportGenerate Capability = "report.generate"
)

var capabilityRoles = map[Capability][]models.Role{
	CapCourseCreate:         {models.RoleAdmin, models.RoleManagement},
	CapCourseUpdate:         {models.RoleAdmin, models.RoleManagement, models.RoleTeacher},
	CapCourseDelete:         {models.RoleAdmin, models.RoleTeacher, models.RoleHead, models.RoleManagement},
	CapCourseAssignTeachers: {models.RoleAdmin, models.RoleManagement},

	CapEnrollSelf:       {models.RoleStudent},
	CapEnrollmentManage: {models.RoleAdmin, models.RoleHead, models.RoleManagement},

	CapMaterialUpload: {models.RoleAdmin, models.RoleTeacher, models.RoleManagement},
	CapMaterialUpdate: {models.RoleAdmin, models.RoleTeacher, models.RoleManagement},
	CapMaterialDelete: {models.RoleAdmin, models.RoleTeacher, models.RoleManagement},

	CapLectureCreate:          {models.RoleAdmin, models.RoleTeacher},
	CapLectureUpdate:          {models.RoleAdmin, models.RoleTeacher},
	CapLectureDelete:          {models.RoleAdmin, models.RoleTeacher},
	CapLectureUploadRecording: {models.RoleAdmin, models.RoleTeacher},

	CapMeetingCreate: {models.RoleTeacher, models.RoleHead},
	CapMeetingUpdate: {models.RoleTeacher, models.RoleHead},
	CapMeetingDelete: {models.RoleTeacher, models.RoleHead},

	CapNoticeCreate: {models.RoleTeacher, models.RoleHead, models.RoleAdmin},
	CapNoticeUpdate: {models.RoleTeacher, models.RoleHead, models.RoleAdmin},
	CapNoticeDelete: {models.RoleTeacher, models.RoleHead, models.RoleAdmin},

	CapUserManage:     {models.RoleAdmin, models.RoleHead},
	CapActivityView:   {models.RoleHead, models.RoleAdmin},
	CapReportGenerate: {models.RoleManagement, models.RoleAdmin},
}

// RolesFor returns the roles eligible for a capability.
func RolesFor(cap Capability) []models.Role {
	return capabilityRoles[cap]
}

// RoleAllowed reports whether role may exercise cap.
func RoleAllowed(cap Capability, role models.Role) bool {
	for _, r := range capabilityRoles[cap] {
		if r == role {
			return true
		}
	}
	return false
}

// RequireCapability checks the permission table for the capability. The 403
// body echoes the required role set and the actor's role for diagnosability.
func RequireCapability(cap Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*Claims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing user claims",
			})
		}

		if !RoleAllowed(cap, claims.Role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":          "Insufficient permissions",
				"capability":     cap,
				"required_roles": capabilityRoles[cap],
				"role":           claims.Role,
			})
		}

		return c.Next()
	}
}
