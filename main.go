package main

import (
	"log"
	"os"

	"learnhub_go/config"
	"learnhub_go/database"
	"learnhub_go/database/seeders"
	"learnhub_go/middleware"
	"learnhub_go/routes"
	"learnhub_go/services"
	"learnhub_go/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

func init() {
	config.LoadConfig()
	setupLogging()
	database.Connect()
	seeders.SeedAll()
}

func main() {
	store := storage.New()

	archiver := services.NewAuditArchiveService()
	archiver.StartScheduler()
	defer archiver.Stop()

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    int(config.AppConfig.MaxRecordingSize),
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(middleware.LoggerMiddleware())

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "LearnHub API",
			"version": "1.0.0",
		})
	})

	// API routes
	routes.SetupRoutes(app, store, archiver)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":  "Route not found",
			"path":   c.Path(),
			"method": c.Method(),
		})
	})

	logrus.Infof("Server starting on port %s (%s)", config.AppConfig.Port, config.AppConfig.AppEnv)
	if err := app.Listen(":" + config.AppConfig.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// setupLogging configures logrus output and level from config
func setupLogging() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	if level, err := logrus.ParseLevel(config.AppConfig.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	if config.AppConfig.AppEnv == "development" {
		logrus.SetOutput(os.Stdout)
		return
	}

	if err := os.MkdirAll("logs", 0o755); err != nil {
		log.Printf("Warning: Could not create logs directory: %v", err)
	}
	file, err := os.OpenFile(config.AppConfig.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err == nil {
		logrus.SetOutput(file)
	}
}

// customErrorHandler handles application errors
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	logrus.WithFields(logrus.Fields{
		"error":  err.Error(),
		"path":   c.Path(),
		"method": c.Method(),
		"ip":     c.IP(),
		"status": code,
	}).Error("Request error")

	return c.Status(code).JSON(fiber.Map{
		"error":  message,
		"code":   code,
		"path":   c.Path(),
		"method": c.Method(),
	})
}
