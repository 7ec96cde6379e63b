package seeders

import (
	"learnhub_go/database"
	"learnhub_go/models"
	"learnhub_go/utils"
	"log"
)

// SeedAll runs all seeders
func SeedAll() {
	log.Println("Starting database seeding...")

	SeedUsers()
	SeedCourses()

	log.Println("Database seeding completed successfully!")
}

// SeedUsers creates one bootstrap account per role so a fresh install is usable.
func SeedUsers() {
	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		log.Println("Users already seeded, skipping...")
		return
	}

	defaultPassword, err := utils.HashPassword("changeme123")
	if err != nil {
		log.Printf("Error hashing seed password: %v", err)
		return
	}

	users := []models.User{
		{Name: "System Admin", Email: "admin@learnhub.local", Password: defaultPassword, Role: models.RoleAdmin},
		{Name: "Head of Studies", Email: "head@learnhub.local", Password: defaultPassword, Role: models.RoleHead},
		{Name: "Management Office", Email: "management@learnhub.local", Password: defaultPassword, Role: models.RoleManagement},
	}

	for _, user := range users {
		if err := database.DB.Create(&user).Error; err != nil {
			log.Printf("Error seeding user %s: %v", user.Email, err)
		}
	}

	log.Println("Users seeded successfully")
}

// SeedCourses seeds a couple of starter courses.
func SeedCourses() {
	var count int64
	database.DB.Model(&models.Course{}).Count(&count)
	if count > 0 {
		log.Println("Courses already seeded, skipping...")
		return
	}

	courses := []models.Course{
		{Title: "Getting Started", Description: "Orientation course for new students", Active: true},
		{Title: "Beginner English", Description: "Foundations of English grammar and vocabulary", Active: true},
	}

	for _, course := range courses {
		if err := database.DB.Create(&course).Error; err != nil {
			log.Printf("Error seeding course %s: %v", course.Title, err)
		}
	}

	log.Println("Courses seeded successfully")
}
