package controllers

import (
	"strconv"

	"learnhub_go/database"
	"learnhub_go/middleware"
	"learnhub_go/models"
	"learnhub_go/storage"
	"learnhub_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CourseController struct {
	Store storage.Backend
}

type courseRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

// GetCourses returns all courses (PUBLIC endpoint)
func (cc *CourseController) GetCourses(c *fiber.Ctx) error {
	var courses []models.Course

	query := database.DB.Model(&models.Course{})

	// Filter by active flag (default to active only)
	active := c.Query("active", "true")
	if active != "all" {
		query = query.Where("active = ?", active == "true")
	}

	if search := c.Query("search"); search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}

	if err := query.Preload("Teachers").Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch courses",
		})
	}

	return c.JSON(fiber.Map{
		"courses": courses,
		"total":   len(courses),
	})
}

// GetCourse returns a specific course by ID (PUBLIC endpoint)
func (cc *CourseController) GetCourse(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var course models.Course
	if err := database.DB.Preload("Teachers").First(&course, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course not found",
		})
	}

	return c.JSON(fiber.Map{
		"course": course,
	})
}

// CreateCourse creates a new course
func (cc *CourseController) CreateCourse(c *fiber.Ctx) error {
	var req courseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	course := models.Course{
		Title:       utils.SanitizeString(req.Title),
		Description: req.Description,
		Active:      true,
	}
	if req.Active != nil {
		course.Active = *req.Active
	}

	if err := database.DB.Create(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create course",
		})
	}

	middleware.LogAudit(c, "CREATE", "courses", course.ID, course)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Course created successfully",
		"course":  course,
	})
}

// UpdateCourse updates course metadata. The ownership middleware has already
// loaded the course and verified the actor; the teacher set is not touched
// here (see SetCourseTeachers).
func (cc *CourseController) UpdateCourse(c *fiber.Ctx) error {
	course, ok := c.Locals("course").(*models.Course)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Course not loaded",
		})
	}

	var req courseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = utils.SanitizeString(req.Title)
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) > 0 {
		if err := database.DB.Model(course).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update course",
			})
		}
	}

	middleware.LogAudit(c, "UPDATE", "courses", course.ID, updates)

	return c.JSON(fiber.Map{
		"message": "Course updated successfully",
		"course":  course,
	})
}

// DeleteCourse deletes a course and everything hanging off it: enrollments,
// materials, lectures, meetings and notices. Stored files are removed
// best-effort after the rows are gone.
func (cc *CourseController) DeleteCourse(c *fiber.Ctx) error {
	course, ok := c.Locals("course").(*models.Course)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Course not loaded",
		})
	}

	// Collect file references before the rows disappear
	var materials []models.Material
	database.DB.Where("course_id = ?", course.ID).Find(&materials)
	var lectures []models.Lecture
	database.DB.Where("course_id = ?", course.ID).Find(&lectures)

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("course_id = ?", course.ID).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.Material{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.Lecture{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.Meeting{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.Notice{}).Error; err != nil {
			return err
		}
		return tx.Delete(course).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete course",
		})
	}

	// File removal never blocks the deletion
	for _, m := range materials {
		if err := cc.Store.Remove(m.FileRef); err != nil {
			logrus.WithError(err).WithField("file_ref", m.FileRef).Warn("Failed to remove material file")
		}
	}
	for _, l := range lectures {
		if l.RecordingRef == "" {
			continue
		}
		if err := cc.Store.Remove(l.RecordingRef); err != nil {
			logrus.WithError(err).WithField("file_ref", l.RecordingRef).Warn("Failed to remove lecture recording")
		}
	}

	middleware.LogAudit(c, "DELETE", "courses", course.ID, fiber.Map{"title": course.Title})

	return c.JSON(fiber.Map{
		"message": "Course deleted successfully",
	})
}

// SetCourseTeachers replaces the course's teacher set. Separate capability
// from course.update: a teacher may edit metadata of their own course but not
// reassign teachers.
func (cc *CourseController) SetCourseTeachers(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var course models.Course
	if err := database.DB.First(&course, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course not found",
		})
	}

	var req struct {
		TeacherIDs []uint `json:"teacher_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var teachers []models.User
	if len(req.TeacherIDs) > 0 {
		if err := database.DB.Where("id IN ? AND role = ?", req.TeacherIDs, models.RoleTeacher).Find(&teachers).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to fetch teachers",
			})
		}
		if len(teachers) != len(req.TeacherIDs) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "One or more teacher IDs are invalid",
			})
		}
	}

	if err := database.DB.Model(&course).Association("Teachers").Replace(teachers); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to assign teachers",
		})
	}

	middleware.LogAudit(c, "UPDATE", "courses", course.ID, fiber.Map{
		"action":      "assign_teachers",
		"teacher_ids": req.TeacherIDs,
	})

	return c.JSON(fiber.Map{
		"message":  "Course teachers updated",
		"course":   course,
		"teachers": teachers,
	})
}
