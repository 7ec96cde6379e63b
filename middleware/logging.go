package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"learnhub_go/config"
	"learnhub_go/database"
	"learnhub_go/models"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// LoggerMiddleware logs HTTP requests
func LoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logrus.WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"duration":   duration.String(),
			"ip":         c.IP(),
			"user_agent": c.Get("User-Agent"),
		}).Info("HTTP Request")

		return err
	}
}

// auditSink persists one audit row. Kept as a variable so tests can simulate
// a failing sink; the default writes through the Redis cache when enabled and
// falls back to a direct database insert.
var auditSink = func(al *models.ActivityLog) error {
	if config.AppConfig != nil && config.AppConfig.UseRedisAuditCache {
		if err := cacheActivityLog(al); err == nil {
			return nil
		}
		// cache miss path falls through to the database
	}
	if database.DB == nil {
		return fmt.Errorf("database not initialized")
	}
	return database.DB.Create(al).Error
}

// RecordActivity appends one audit row for a completed mutation. It returns
// the write error so the call site visibly acknowledges it; callers must log
// and discard the error, never propagate it. The audit trail is best-effort
// and must not fail the primary operation.
func RecordActivity(c *fiber.Ctx, action, resource string, resourceID uint, details interface{}) error {
	var actorID uint
	if user, err := GetCurrentUser(c); err == nil {
		actorID = user.ID
	}

	var detailsJSON models.JSON
	if details != nil {
		if detailsBytes, err := json.Marshal(details); err == nil {
			detailsJSON = detailsBytes
		}
	}

	al := models.ActivityLog{
		UserID:     actorID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    detailsJSON,
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	}

	return auditSink(&al)
}

// LogAudit is the standard call-site wrapper: it acknowledges a failed audit
// write with a warning log and nothing else.
func LogAudit(c *fiber.Ctx, action, resource string, resourceID uint, details interface{}) {
	if err := RecordActivity(c, action, resource, resourceID, details); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"action":   action,
			"resource": resource,
		}).Warn("Failed to record audit activity")
	}
}

// cacheActivityLog stores an audit row in Redis with a 24-hour TTL. The
// archive service flushes cached rows to the database on a schedule.
func cacheActivityLog(al *models.ActivityLog) error {
	redisClient := database.GetRedisClient()
	if redisClient == nil {
		return fmt.Errorf("redis client is nil")
	}
	ctx := context.Background()

	logData, err := json.Marshal(al)
	if err != nil {
		return fmt.Errorf("failed to marshal audit row: %v", err)
	}

	cacheKey := fmt.Sprintf("audit:%d:%s:%d", al.UserID, al.Action, time.Now().UnixNano())

	if err := redisClient.Set(ctx, cacheKey, logData, 24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to cache audit row: %v", err)
	}

	// Sorted set lets the flush job drain rows in arrival order
	if err := redisClient.ZAdd(ctx, "audit:queue", &redis.Z{
		Score:  float64(time.Now().Unix()),
		Member: cacheKey,
	}).Err(); err != nil {
		logrus.WithError(err).Error("Failed to add audit row to processing queue")
	}

	return nil
}
