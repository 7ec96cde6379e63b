package controllers

import (
	"strconv"
	"time"

	"learnhub_go/database"
	"learnhub_go/middleware"
	"learnhub_go/models"
	"learnhub_go/utils"

	"github.com/gofiber/fiber/v2"
)

type MeetingController struct{}

type meetingRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	JoinURL     string `json:"join_url" validate:"required"`
	ScheduledAt string `json:"scheduled_at"`
}

// CreateMeeting schedules a Google Meet session for a course.
func (mc *MeetingController) CreateMeeting(c *fiber.Ctx) error {
	courseID64, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID"})
	}
	courseID := uint(courseID64)

	var course models.Course
	if err := database.DB.First(&course, courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	var req meetingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if !utils.IsValidMeetURL(req.JoinURL) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "join_url must be a Google Meet link",
		})
	}

	var scheduledAt time.Time
	if req.ScheduledAt != "" {
		scheduledAt, err = time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "scheduled_at must be RFC3339"})
		}
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not authenticated"})
	}

	meeting := models.Meeting{
		CourseID:    courseID,
		Title:       utils.SanitizeString(req.Title),
		JoinURL:     req.JoinURL,
		ScheduledAt: scheduledAt,
		CreatedByID: user.ID,
	}

	if err := database.DB.Create(&meeting).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create meeting"})
	}

	middleware.LogAudit(c, "CREATE", "meetings", meeting.ID, fiber.Map{
		"course_id": courseID,
		"title":     meeting.Title,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Meeting created successfully",
		"meeting": meeting,
	})
}

// GetCourseMeetings lists a course's meetings.
func (mc *MeetingController) GetCourseMeetings(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID"})
	}

	var course models.Course
	if err := database.DB.First(&course, uint(courseID)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	var meetings []models.Meeting
	if err := database.DB.Where("course_id = ?", uint(courseID)).
		Order("scheduled_at ASC").
		Preload("CreatedBy").
		Find(&meetings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch meetings"})
	}

	return c.JSON(fiber.Map{
		"meetings": meetings,
		"total":    len(meetings),
	})
}

// UpdateMeeting updates a meeting the caller owns. The ownership middleware
// has already loaded the row into Locals.
func (mc *MeetingController) UpdateMeeting(c *fiber.Ctx) error {
	meeting, ok := c.Locals("meeting").(*models.Meeting)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Meeting not loaded"})
	}

	var req struct {
		Title       string `json:"title"`
		JoinURL     string `json:"join_url"`
		ScheduledAt string `json:"scheduled_at"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = utils.SanitizeString(req.Title)
	}
	if req.JoinURL != "" {
		if !utils.IsValidMeetURL(req.JoinURL) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "join_url must be a Google Meet link",
			})
		}
		updates["join_url"] = req.JoinURL
	}
	if req.ScheduledAt != "" {
		scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "scheduled_at must be RFC3339"})
		}
		updates["scheduled_at"] = scheduledAt
	}

	if len(updates) > 0 {
		if err := database.DB.Model(meeting).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update meeting"})
		}
	}

	middleware.LogAudit(c, "UPDATE", "meetings", meeting.ID, updates)

	return c.JSON(fiber.Map{
		"message": "Meeting updated successfully",
		"meeting": meeting,
	})
}

// DeleteMeeting removes a meeting the caller owns.
func (mc *MeetingController) DeleteMeeting(c *fiber.Ctx) error {
	meeting, ok := c.Locals("meeting").(*models.Meeting)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Meeting not loaded"})
	}

	if err := database.DB.Delete(meeting).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete meeting"})
	}

	middleware.LogAudit(c, "DELETE", "meetings", meeting.ID, fiber.Map{
		"course_id": meeting.CourseID,
		"title":     meeting.Title,
	})

	return c.JSON(fiber.Map{"message": "Meeting deleted successfully"})
}
