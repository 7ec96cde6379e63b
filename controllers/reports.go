package controllers

import (
	"fmt"
	"time"

	"learnhub_go/database"
	"learnhub_go/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

type ReportController struct{}

// GetOverview returns aggregate counts across the platform.
func (rc *ReportController) GetOverview(c *fiber.Ctx) error {
	var (
		totalUsers       int64
		totalCourses     int64
		activeCourses    int64
		totalEnrollments int64
		totalMaterials   int64
		totalLectures    int64
	)

	database.DB.Model(&models.User{}).Count(&totalUsers)
	database.DB.Model(&models.Course{}).Count(&totalCourses)
	database.DB.Model(&models.Course{}).Where("active = ?", true).Count(&activeCourses)
	database.DB.Model(&models.Enrollment{}).Count(&totalEnrollments)
	database.DB.Model(&models.Material{}).Count(&totalMaterials)
	database.DB.Model(&models.Lecture{}).Count(&totalLectures)

	var roleCounts []struct {
		Role  models.Role `json:"role"`
		Count int64       `json:"count"`
	}
	database.DB.Model(&models.User{}).
		Select("role, COUNT(*) as count").
		Group("role").
		Scan(&roleCounts)

	return c.JSON(fiber.Map{
		"users":          totalUsers,
		"users_by_role":  roleCounts,
		"courses":        totalCourses,
		"active_courses": activeCourses,
		"enrollments":    totalEnrollments,
		"materials":      totalMaterials,
		"lectures":       totalLectures,
	})
}

type courseReportRow struct {
	CourseID    uint
	Title       string
	Active      bool
	Enrollments int64
	Materials   int64
	Lectures    int64
}

// ExportCourseReport writes a per-course XLSX summary and streams it back.
func (rc *ReportController) ExportCourseReport(c *fiber.Ctx) error {
	var courses []models.Course
	if err := database.DB.Order("id ASC").Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch courses"})
	}

	rows := make([]courseReportRow, 0, len(courses))
	for _, course := range courses {
		row := courseReportRow{CourseID: course.ID, Title: course.Title, Active: course.Active}
		database.DB.Model(&models.Enrollment{}).Where("course_id = ?", course.ID).Count(&row.Enrollments)
		database.DB.Model(&models.Material{}).Where("course_id = ?", course.ID).Count(&row.Materials)
		database.DB.Model(&models.Lecture{}).Where("course_id = ?", course.ID).Count(&row.Lectures)
		rows = append(rows, row)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Courses"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Title", "Active", "Enrollments", "Materials", "Lectures"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for i, row := range rows {
		values := []interface{}{row.CourseID, row.Title, row.Active, row.Enrollments, row.Materials, row.Lectures}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		logrus.WithError(err).Error("Failed to build course report")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build report"})
	}

	filename := fmt.Sprintf("course_report_%s.xlsx", time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}
