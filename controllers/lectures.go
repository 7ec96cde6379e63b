package controllers

import (
	"io"
	"strconv"
	"time"

	"learnhub_go/config"
	"learnhub_go/database"
	"learnhub_go/middleware"
	"learnhub_go/models"
	"learnhub_go/storage"
	"learnhub_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type LectureController struct {
	Store storage.Backend
}

type lectureRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	ScheduledAt string `json:"scheduled_at" validate:"required"`
}

// CreateLecture schedules a lecture for a course.
func (lc *LectureController) CreateLecture(c *fiber.Ctx) error {
	courseID64, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID"})
	}
	courseID := uint(courseID64)

	var course models.Course
	if err := database.DB.First(&course, courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	var req lectureRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "scheduled_at must be RFC3339"})
	}

	user, _ := middleware.GetCurrentUser(c)
	lecture := models.Lecture{
		CourseID:    courseID,
		Title:       utils.SanitizeString(req.Title),
		ScheduledAt: scheduledAt,
	}
	if user != nil {
		lecture.CreatedByID = user.ID
	}

	if err := database.DB.Create(&lecture).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create lecture"})
	}

	middleware.LogAudit(c, "CREATE", "lectures", lecture.ID, fiber.Map{
		"course_id": courseID,
		"title":     lecture.Title,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Lecture created successfully",
		"lecture": lecture,
	})
}

// GetCourseLectures lists a course's lectures ordered by schedule.
func (lc *LectureController) GetCourseLectures(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID"})
	}

	var course models.Course
	if err := database.DB.First(&course, uint(courseID)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	var lectures []models.Lecture
	if err := database.DB.Where("course_id = ?", uint(courseID)).
		Order("scheduled_at ASC").
		Preload("CreatedBy").
		Find(&lectures).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch lectures"})
	}

	return c.JSON(fiber.Map{
		"lectures": lectures,
		"total":    len(lectures),
	})
}

// UpdateLecture changes the title and/or schedule.
func (lc *LectureController) UpdateLecture(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid lecture ID"})
	}

	var lecture models.Lecture
	if err := database.DB.First(&lecture, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lecture not found"})
	}

	if ok, resp := requireCourseAccess(c, lecture.CourseID); !ok {
		return resp
	}

	var req struct {
		Title       string `json:"title"`
		ScheduledAt string `json:"scheduled_at"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = utils.SanitizeString(req.Title)
	}
	if req.ScheduledAt != "" {
		scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "scheduled_at must be RFC3339"})
		}
		updates["scheduled_at"] = scheduledAt
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&lecture).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update lecture"})
		}
	}

	middleware.LogAudit(c, "UPDATE", "lectures", lecture.ID, updates)

	return c.JSON(fiber.Map{
		"message": "Lecture updated successfully",
		"lecture": lecture,
	})
}

// UploadRecording attaches a recording file to an existing lecture.
func (lc *LectureController) UploadRecording(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid lecture ID"})
	}

	var lecture models.Lecture
	if err := database.DB.First(&lecture, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lecture not found"})
	}

	if ok, resp := requireCourseAccess(c, lecture.CourseID); !ok {
		return resp
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}

	if fileHeader.Size > config.AppConfig.MaxRecordingSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File exceeds the maximum allowed size",
		})
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if !utils.IsAllowedMimeType(mimeType, config.AppConfig.RecordingMimeTypes) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File type is not allowed",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open uploaded file"})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read uploaded file"})
	}

	ref, err := lc.Store.Store(data, "recordings", fileHeader.Filename)
	if err != nil {
		logrus.WithError(err).Error("Failed to store recording file")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store file"})
	}

	oldRef := lecture.RecordingRef
	if err := database.DB.Model(&lecture).Update("recording_ref", ref).Error; err != nil {
		if rmErr := lc.Store.Remove(ref); rmErr != nil {
			logrus.WithError(rmErr).WithField("file_ref", ref).Warn("Failed to remove orphaned file")
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update lecture"})
	}

	// A replaced recording leaves no orphan behind
	if oldRef != "" {
		if err := lc.Store.Remove(oldRef); err != nil {
			logrus.WithError(err).WithField("file_ref", oldRef).Warn("Failed to remove previous recording")
		}
	}

	middleware.LogAudit(c, "UPLOAD_RECORDING", "lectures", lecture.ID, fiber.Map{
		"course_id": lecture.CourseID,
		"size":      fileHeader.Size,
	})

	return c.JSON(fiber.Map{
		"message": "Recording uploaded successfully",
		"lecture": lecture,
	})
}

// DownloadRecording streams a lecture's recording.
func (lc *LectureController) DownloadRecording(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid lecture ID"})
	}

	var lecture models.Lecture
	if err := database.DB.First(&lecture, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lecture not found"})
	}

	if lecture.RecordingRef == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lecture has no recording"})
	}

	reader, err := lc.Store.Resolve(lecture.RecordingRef)
	if err != nil {
		if err == storage.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "File not found"})
		}
		logrus.WithError(err).Error("Failed to resolve recording file")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read file"})
	}

	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+lecture.Title+`"`)
	return c.SendStream(reader)
}

// DeleteLecture removes the row, then its recording best-effort.
func (lc *LectureController) DeleteLecture(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid lecture ID"})
	}

	var lecture models.Lecture
	if err := database.DB.First(&lecture, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lecture not found"})
	}

	if ok, resp := requireCourseAccess(c, lecture.CourseID); !ok {
		return resp
	}

	if err := database.DB.Delete(&lecture).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete lecture"})
	}

	if lecture.RecordingRef != "" {
		if err := lc.Store.Remove(lecture.RecordingRef); err != nil {
			logrus.WithError(err).WithField("file_ref", lecture.RecordingRef).Warn("Failed to remove recording file")
		}
	}

	middleware.LogAudit(c, "DELETE", "lectures", lecture.ID, fiber.Map{
		"course_id": lecture.CourseID,
		"title":     lecture.Title,
	})

	return c.JSON(fiber.Map{"message": "Lecture deleted successfully"})
}
