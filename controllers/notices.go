package controllers

import (
	"strconv"

	"learnhub_go/database"
	"learnhub_go/middleware"
	"learnhub_go/models"
	"learnhub_go/utils"

	"github.com/gofiber/fiber/v2"
)

type NoticeController struct{}

type noticeRequest struct {
	Title    string `json:"title" validate:"required,min=1,max=255"`
	Body     string `json:"body" validate:"required"`
	CourseID *uint  `json:"course_id"`
}

// CreateNotice posts a notice, course-scoped or system-wide.
func (nc *NoticeController) CreateNotice(c *fiber.Ctx) error {
	var req noticeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if req.CourseID != nil {
		var course models.Course
		if err := database.DB.First(&course, *req.CourseID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
		}
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not authenticated"})
	}

	notice := models.Notice{
		CourseID:   req.CourseID,
		Title:      utils.SanitizeString(req.Title),
		Body:       req.Body,
		PostedByID: user.ID,
	}

	if err := database.DB.Create(&notice).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create notice"})
	}

	details := fiber.Map{"title": notice.Title}
	if req.CourseID != nil {
		details["course_id"] = *req.CourseID
	}
	middleware.LogAudit(c, "CREATE", "notices", notice.ID, details)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Notice created successfully",
		"notice":  notice,
	})
}

// GetNotices lists notices. course_id filters to one course, scope=system
// returns only system-wide notices.
func (nc *NoticeController) GetNotices(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Notice{})

	if courseID := c.Query("course_id"); courseID != "" {
		id, err := strconv.ParseUint(courseID, 10, 32)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID"})
		}
		query = query.Where("course_id = ?", uint(id))
	} else if c.Query("scope") == "system" {
		query = query.Where("course_id IS NULL")
	}

	var notices []models.Notice
	if err := query.Order("created_at DESC").Preload("PostedBy").Find(&notices).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch notices"})
	}

	return c.JSON(fiber.Map{
		"notices": notices,
		"total":   len(notices),
	})
}

// GetNotice returns a single notice.
func (nc *NoticeController) GetNotice(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid notice ID"})
	}

	var notice models.Notice
	if err := database.DB.Preload("PostedBy").Preload("Course").First(&notice, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Notice not found"})
	}

	return c.JSON(fiber.Map{"notice": notice})
}

// UpdateNotice edits a notice the caller owns. The ownership middleware has
// already loaded the row into Locals.
func (nc *NoticeController) UpdateNotice(c *fiber.Ctx) error {
	notice, ok := c.Locals("notice").(*models.Notice)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Notice not loaded"})
	}

	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = utils.SanitizeString(req.Title)
	}
	if req.Body != "" {
		updates["body"] = req.Body
	}

	if len(updates) > 0 {
		if err := database.DB.Model(notice).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update notice"})
		}
	}

	middleware.LogAudit(c, "UPDATE", "notices", notice.ID, updates)

	return c.JSON(fiber.Map{
		"message": "Notice updated successfully",
		"notice":  notice,
	})
}

// DeleteNotice removes a notice the caller owns.
func (nc *NoticeController) DeleteNotice(c *fiber.Ctx) error {
	notice, ok := c.Locals("notice").(*models.Notice)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Notice not loaded"})
	}

	if err := database.DB.Delete(notice).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete notice"})
	}

	middleware.LogAudit(c, "DELETE", "notices", notice.ID, fiber.Map{
		"title": notice.Title,
	})

	return c.JSON(fiber.Map{"message": "Notice deleted successfully"})
}
