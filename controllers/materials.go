package controllers

import (
	"io"
	"strconv"

	"learnhub_go/config"
	"learnhub_go/database"
	"learnhub_go/middleware"
	"learnhub_go/models"
	"learnhub_go/storage"
	"learnhub_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type MaterialController struct {
	Store storage.Backend
}

// requireCourseAccess enforces the ownership narrowing for operations whose
// route carries a child record ID rather than a course ID. When access is
// denied the response has already been written.
func requireCourseAccess(c *fiber.Ctx, courseID uint) (bool, error) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return false, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not authenticated"})
	}

	var course models.Course
	if err := database.DB.Preload("Teachers").First(&course, courseID).Error; err != nil {
		return false, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	if !middleware.CanModifyCourse(user, &course) {
		return false, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not manage this course"})
	}
	return true, nil
}

// UploadMaterial stores a file for a course and records a Material row.
// Size and MIME constraints are enforced before any byte is persisted.
func (mc *MaterialController) UploadMaterial(c *fiber.Ctx) error {
	courseID64, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID"})
	}
	courseID := uint(courseID64)

	var course models.Course
	if err := database.DB.First(&course, courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}

	title := utils.SanitizeString(c.FormValue("title"))
	if title == "" {
		title = fileHeader.Filename
	}

	materialType := models.MaterialType(c.FormValue("type", string(models.MaterialStudy)))
	if !materialType.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid material type"})
	}

	maxSize := config.AppConfig.MaxMaterialSize
	allowed := config.AppConfig.MaterialMimeTypes
	if materialType == models.MaterialRecorded {
		maxSize = config.AppConfig.MaxRecordingSize
		allowed = config.AppConfig.RecordingMimeTypes
	}

	if fileHeader.Size > maxSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File exceeds the maximum allowed size",
		})
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if !utils.IsAllowedMimeType(mimeType, allowed) {
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

	ref, err := mc.Store.Store(data, "materials", fileHeader.Filename)
	if err != nil {
		logrus.WithError(err).Error("Failed to store material file")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store file"})
	}

	user, _ := middleware.GetCurrentUser(c)
	material := models.Material{
		CourseID: courseID,
		Title:    title,
		Type:     materialType,
		FileRef:  ref,
		MimeType: mimeType,
		Size:     fileHeader.Size,
	}
	if user != nil {
		material.UploadedByID = user.ID
	}

	if err := database.DB.Create(&material).Error; err != nil {
		// Orphaned file; removal is best-effort
		if rmErr := mc.Store.Remove(ref); rmErr != nil {
			logrus.WithError(rmErr).WithField("file_ref", ref).Warn("Failed to remove orphaned file")
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create material"})
	}

	middleware.LogAudit(c, "CREATE", "materials", material.ID, fiber.Map{
		"course_id": courseID,
		"title":     title,
		"type":      materialType,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Material uploaded successfully",
		"material": material,
	})
}

// GetCourseMaterials lists the materials of a course.
func (mc *MaterialController) GetCourseMaterials(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID"})
	}

	var course models.Course
	if err := database.DB.First(&course, uint(courseID)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	query := database.DB.Where("course_id = ?", uint(courseID))
	if mt := c.Query("type"); mt != "" {
		query = query.Where("type = ?", mt)
	}

	var materials []models.Material
	if err := query.Preload("UploadedBy").Find(&materials).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch materials"})
	}

	return c.JSON(fiber.Map{
		"materials": materials,
		"total":     len(materials),
	})
}

// DownloadMaterial streams the stored file back to the client.
func (mc *MaterialController) DownloadMaterial(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid material ID"})
	}

	var material models.Material
	if err := database.DB.First(&material, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Material not found"})
	}

	reader, err := mc.Store.Resolve(material.FileRef)
	if err != nil {
		if err == storage.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "File not found"})
		}
		logrus.WithError(err).Error("Failed to resolve material file")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read file"})
	}

	if material.MimeType != "" {
		c.Set(fiber.HeaderContentType, material.MimeType)
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+material.Title+`"`)
	return c.SendStream(reader)
}

// UpdateMaterial changes title and/or type of a material.
func (mc *MaterialController) UpdateMaterial(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid material ID"})
	}

	var material models.Material
	if err := database.DB.First(&material, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Material not found"})
	}

	if ok, resp := requireCourseAccess(c, material.CourseID); !ok {
		return resp
	}

	var req struct {
		Title string `json:"title"`
		Type  string `json:"type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = utils.SanitizeString(req.Title)
	}
	if req.Type != "" {
		mt := models.MaterialType(req.Type)
		if !mt.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid material type"})
		}
		updates["type"] = mt
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&material).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update material"})
		}
	}

	middleware.LogAudit(c, "UPDATE", "materials", material.ID, updates)

	return c.JSON(fiber.Map{
		"message":  "Material updated successfully",
		"material": material,
	})
}

// DeleteMaterial removes the row, then the stored file best-effort.
func (mc *MaterialController) DeleteMaterial(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid material ID"})
	}

	var material models.Material
	if err := database.DB.First(&material, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Material not found"})
	}

	if ok, resp := requireCourseAccess(c, material.CourseID); !ok {
		return resp
	}

	if err := database.DB.Delete(&material).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete material"})
	}

	// A filesystem inconsistency never blocks the row deletion
	if err := mc.Store.Remove(material.FileRef); err != nil {
		logrus.WithError(err).WithField("file_ref", material.FileRef).Warn("Failed to remove material file")
	}

	middleware.LogAudit(c, "DELETE", "materials", material.ID, fiber.Map{
		"course_id": material.CourseID,
		"title":     material.Title,
	})

	return c.JSON(fiber.Map{"message": "Material deleted successfully"})
}
