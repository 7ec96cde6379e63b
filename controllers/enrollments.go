package controllers

import (
	"errors"
	"strconv"
	"strings"

	"learnhub_go/database"
	"learnhub_go/middleware"
	"learnhub_go/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type EnrollmentController struct{}

// isDuplicateKey recognizes a unique-index collision. Concurrent writers can
// both pass a First-based pre-check; the second one fails here instead.
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "Duplicate entry")
}

func (ec *EnrollmentController) enroll(c *fiber.Ctx, studentID, courseID uint) error {
	var course models.Course
	if err := database.DB.First(&course, courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}
	if !course.Active {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Course is not active"})
	}

	var student models.User
	if err := database.DB.First(&student, studentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}
	if student.Role != models.RoleStudent {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User is not a student"})
	}

	var existing models.Enrollment
	if err := database.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Student is already enrolled in this course"})
	}

	enrollment := models.Enrollment{StudentID: studentID, CourseID: courseID, Status: "active"}
	if err := database.DB.Create(&enrollment).Error; err != nil {
		if isDuplicateKey(err) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Student is already enrolled in this course"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to enroll student"})
	}

	middleware.LogAudit(c, "ENROLL", "enrollments", enrollment.ID, fiber.Map{
		"student_id": studentID,
		"course_id":  courseID,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Enrolled successfully",
		"enrollment": enrollment,
	})
}

// EnrollSelf enrolls the authenticated student into a course.
func (ec *EnrollmentController) EnrollSelf(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
	}

	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID"})
	}

	return ec.enroll(c, user.ID, uint(courseID))
}

// EnrollStudent enrolls a named student into a named course (staff).
func (ec *EnrollmentController) EnrollStudent(c *fiber.Ctx) error {
	var req struct {
		StudentID uint `json:"student_id"`
		CourseID  uint `json:"course_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.StudentID == 0 || req.CourseID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "student_id and course_id are required"})
	}

	return ec.enroll(c, req.StudentID, req.CourseID)
}

// BulkEnroll enrolls many students into one course. Failures are reported
// per student; the batch never aborts.
func (ec *EnrollmentController) BulkEnroll(c *fiber.Ctx) error {
	courseID64, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || courseID64 == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID"})
	}
	courseID := uint(courseID64)

	var course models.Course
	if err := database.DB.First(&course, courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	var req struct {
		StudentIDs []uint `json:"student_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if len(req.StudentIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "student_ids array is required"})
	}

	type result struct {
		StudentID    uint   `json:"student_id"`
		Status       string `json:"status"` // enrolled/duplicate/error
		EnrollmentID uint   `json:"enrollment_id,omitempty"`
		Error        string `json:"error,omitempty"`
	}

	results := make([]result, 0, len(req.StudentIDs))
	var enrolled, duplicates, failed int

	for _, studentID := range req.StudentIDs {
		var student models.User
		if err := database.DB.First(&student, studentID).Error; err != nil {
			failed++
			results = append(results, result{StudentID: studentID, Status: "error", Error: "Student not found"})
			continue
		}
		if student.Role != models.RoleStudent {
			failed++
			results = append(results, result{StudentID: studentID, Status: "error", Error: "User is not a student"})
			continue
		}

		var existing models.Enrollment
		if err := database.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&existing).Error; err == nil {
			duplicates++
			results = append(results, result{StudentID: studentID, Status: "duplicate", EnrollmentID: existing.ID})
			continue
		}

		enrollment := models.Enrollment{StudentID: studentID, CourseID: courseID, Status: "active"}
		if err := database.DB.Create(&enrollment).Error; err != nil {
			if isDuplicateKey(err) {
				duplicates++
				results = append(results, result{StudentID: studentID, Status: "duplicate"})
			} else {
				failed++
				results = append(results, result{StudentID: studentID, Status: "error", Error: "Failed to enroll student"})
			}
			continue
		}
		enrolled++
		middleware.LogAudit(c, "ENROLL", "enrollments", enrollment.ID, fiber.Map{
			"student_id": studentID,
			"course_id":  courseID,
			"bulk":       true,
		})
		results = append(results, result{StudentID: studentID, Status: "enrolled", EnrollmentID: enrollment.ID})
	}

	return c.JSON(fiber.Map{
		"message":    "Bulk enrollment processed",
		"course_id":  courseID,
		"processed":  len(req.StudentIDs),
		"enrolled":   enrolled,
		"duplicates": duplicates,
		"failed":     failed,
		"results":    results,
	})
}

// UnenrollSelf removes the authenticated student's enrollment in a course.
func (ec *EnrollmentController) UnenrollSelf(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
	}

	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID"})
	}

	var enrollment models.Enrollment
	if err := database.DB.Where("student_id = ? AND course_id = ?", user.ID, uint(courseID)).First(&enrollment).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Enrollment not found"})
	}

	// Hard delete: a soft-deleted row would keep the (student_id, course_id)
	// unique index occupied and block re-enrollment.
	if err := database.DB.Unscoped().Delete(&enrollment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to unenroll"})
	}

	middleware.LogAudit(c, "UNENROLL", "enrollments", enrollment.ID, fiber.Map{
		"student_id": user.ID,
		"course_id":  uint(courseID),
	})

	return c.JSON(fiber.Map{"message": "Unenrolled successfully"})
}

// Unenroll removes an enrollment by id (staff).
func (ec *EnrollmentController) Unenroll(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid enrollment ID"})
	}

	var enrollment models.Enrollment
	if err := database.DB.First(&enrollment, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Enrollment not found"})
	}

	if err := database.DB.Unscoped().Delete(&enrollment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to remove enrollment"})
	}

	middleware.LogAudit(c, "UNENROLL", "enrollments", enrollment.ID, fiber.Map{
		"student_id": enrollment.StudentID,
		"course_id":  enrollment.CourseID,
	})

	return c.JSON(fiber.Map{"message": "Enrollment removed"})
}

// ApproveEnrollment exists for API compatibility: enrollments are active on
// creation, so approval performs no state transition.
func (ec *EnrollmentController) ApproveEnrollment(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid enrollment ID"})
	}

	var enrollment models.Enrollment
	if err := database.DB.First(&enrollment, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Enrollment not found"})
	}

	return c.JSON(fiber.Map{
		"message":    "Enrollment is already active",
		"enrollment": enrollment,
	})
}

// GetCourseEnrollments lists the roster of a course.
func (ec *EnrollmentController) GetCourseEnrollments(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID"})
	}

	var course models.Course
	if err := database.DB.First(&course, uint(courseID)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	var enrollments []models.Enrollment
	if err := database.DB.Where("course_id = ?", uint(courseID)).Preload("Student").Find(&enrollments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch enrollments"})
	}

	return c.JSON(fiber.Map{
		"enrollments": enrollments,
		"total":       len(enrollments),
	})
}

// GetMyEnrollments lists the authenticated user's enrollments.
func (ec *EnrollmentController) GetMyEnrollments(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
	}

	var enrollments []models.Enrollment
	if err := database.DB.Where("student_id = ?", user.ID).Preload("Course").Find(&enrollments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch enrollments"})
	}

	return c.JSON(fiber.Map{
		"enrollments": enrollments,
		"total":       len(enrollments),
	})
}
