package middleware

import (
	"learnhub_go/database"
	"learnhub_go/models"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Ownership narrowing: a role-eligible TEACHER may only touch entities they
// own. Other eligible roles pass through; everyone else is rejected. These
// predicates are pure so they can be tested without a database.

// CanModifyCourse reports whether actor may mutate course. TEACHER must be a
// member of the course's teacher set.
func CanModifyCourse(actor *models.User, course *models.Course) bool {
	switch actor.Role {
	case models.RoleAdmin, models.RoleHead, models.RoleManagement:
		return true
	case models.RoleTeacher:
		for _, t := range course.Teachers {
			if t.ID == actor.ID {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// CanModifyMeeting reports whether actor may mutate meeting. TEACHER must be
// its creator.
func CanModifyMeeting(actor *models.User, meeting *models.Meeting) bool {
	switch actor.Role {
	case models.RoleAdmin, models.RoleHead, models.RoleManagement:
		return true
	case models.RoleTeacher:
		return meeting.CreatedByID == actor.ID
	default:
		return false
	}
}

// CanModifyNotice reports whether actor may mutate notice. TEACHER must be its
// poster.
func CanModifyNotice(actor *models.User, notice *models.Notice) bool {
	switch actor.Role {
	case models.RoleAdmin, models.RoleHead, models.RoleManagement:
		return true
	case models.RoleTeacher:
		return notice.PostedByID == actor.ID
	default:
		return false
	}
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// RequireCourseOwnership loads the target course (read-before-write) and
// applies CanModifyCourse. The loaded course is stashed in Locals("course")
// so the handler does not fetch it twice.
func RequireCourseOwnership() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := GetCurrentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found in context"})
		}

		id, err := paramID(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID"})
		}

		var course models.Course
		if err := database.DB.Preload("Teachers").First(&course, id).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
		}

		if !CanModifyCourse(user, &course) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "You are not a teacher of this course",
			})
		}

		c.Locals("course", &course)
		return c.Next()
	}
}

// RequireMeetingOwnership loads the target meeting and applies CanModifyMeeting.
func RequireMeetingOwnership() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := GetCurrentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found in context"})
		}

		id, err := paramID(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid meeting ID"})
		}

		var meeting models.Meeting
		if err := database.DB.First(&meeting, id).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Meeting not found"})
		}

		if !CanModifyMeeting(user, &meeting) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Only the meeting creator may modify it",
			})
		}

		c.Locals("meeting", &meeting)
		return c.Next()
	}
}

// RequireNoticeOwnership loads the target notice and applies CanModifyNotice.
func RequireNoticeOwnership() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := GetCurrentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found in context"})
		}

		id, err := paramID(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid notice ID"})
		}

		var notice models.Notice
		if err := database.DB.First(&notice, id).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Notice not found"})
		}

		if !CanModifyNotice(user, &notice) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Only the notice poster may modify it",
			})
		}

		c.Locals("notice", &notice)
		return c.Next()
	}
}
