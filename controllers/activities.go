package controllers

import (
	"strconv"

	"learnhub_go/database"
	"learnhub_go/models"
	"learnhub_go/services"

	"github.com/gofiber/fiber/v2"
)

type ActivityController struct {
	Archiver *services.AuditArchiveService
}

func activityLimit(c *fiber.Ctx) int {
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	return limit
}

// GetActivities returns recent audit records, newest first.
func (ac *ActivityController) GetActivities(c *fiber.Ctx) error {
	query := database.DB.Model(&models.ActivityLog{})

	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if resource := c.Query("resource"); resource != "" {
		query = query.Where("resource = ?", resource)
	}

	var activities []models.ActivityLog
	if err := query.Order("created_at DESC").
		Limit(activityLimit(c)).
		Preload("User").
		Find(&activities).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch activities"})
	}

	return c.JSON(fiber.Map{
		"activities": activities,
		"total":      len(activities),
	})
}

// GetArchives lists completed audit archive exports.
func (ac *ActivityController) GetArchives(c *fiber.Ctx) error {
	archives, err := ac.Archiver.GetArchives()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch archives"})
	}

	return c.JSON(fiber.Map{
		"archives": archives,
		"total":    len(archives),
	})
}

// DownloadArchive streams a stored archive ZIP from S3.
func (ac *ActivityController) DownloadArchive(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid archive ID"})
	}

	reader, fileName, err := ac.Archiver.DownloadArchive(uint(id))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return c.SendStream(reader)
}

// GetEntityActivities returns the audit trail of a single record.
func (ac *ActivityController) GetEntityActivities(c *fiber.Ctx) error {
	resource := c.Params("resource")
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid resource ID"})
	}

	var activities []models.ActivityLog
	if err := database.DB.Where("resource = ? AND resource_id = ?", resource, uint(id)).
		Order("created_at DESC").
		Limit(activityLimit(c)).
		Preload("User").
		Find(&activities).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch activities"})
	}

	return c.JSON(fiber.Map{
		"activities": activities,
		"total":      len(activities),
	})
}

// GetUserActivities returns one user's recorded actions.
func (ac *ActivityController) GetUserActivities(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var activities []models.ActivityLog
	if err := database.DB.Where("user_id = ?", uint(id)).
		Order("created_at DESC").
		Limit(activityLimit(c)).
		Find(&activities).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch activities"})
	}

	return c.JSON(fiber.Map{
		"activities": activities,
		"total":      len(activities),
	})
}
