package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"learnhub_go/config"
	"learnhub_go/database"
	"learnhub_go/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditArchiveService flushes Redis-cached audit rows to the database and
// periodically exports old rows to S3 before pruning them.
type AuditArchiveService struct {
	redisClient *redis.Client
	awsConfig   aws.Config
	scheduler   *cron.Cron
}

// ArchivedActivity is the exported representation stored inside archives
type ArchivedActivity struct {
	ID         uint           `json:"id"`
	UserID     uint           `json:"user_id"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	ResourceID uint           `json:"resource_id"`
	Details    map[string]any `json:"details"`
	IPAddress  string         `json:"ip_address"`
	UserAgent  string         `json:"user_agent"`
	CreatedAt  time.Time      `json:"created_at"`
	UserEmail  string         `json:"user_email,omitempty"`
	UserRole   string         `json:"user_role,omitempty"`
}

func NewAuditArchiveService() *AuditArchiveService {
	cfg, err := awscfg.LoadDefaultConfig(context.Background(), awscfg.WithRegion(config.AppConfig.AWSRegion))
	if err != nil {
		logrus.WithError(err).Warn("Failed to load AWS config; archive uploads will fail until configured")
	}

	return &AuditArchiveService{
		redisClient: database.GetRedisClient(),
		awsConfig:   cfg,
	}
}

// FlushCachedToDatabase drains the Redis audit queue into the database.
func (aas *AuditArchiveService) FlushCachedToDatabase() error {
	if aas.redisClient == nil {
		return fmt.Errorf("redis client not available")
	}

	ctx := context.Background()

	queued, err := aas.redisClient.ZRangeByScore(ctx, "audit:queue", &redis.ZRangeBy{
		Min: "0",
		Max: fmt.Sprintf("%d", time.Now().Unix()),
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to read audit queue: %v", err)
	}

	var processedCount int
	var errorCount int

	for _, key := range queued {
		data, err := aas.redisClient.Get(ctx, key).Result()
		if err != nil {
			if err != redis.Nil {
				logrus.WithError(err).Errorf("Failed to get audit row for key: %s", key)
				errorCount++
				continue
			}
			// TTL expired before the flush; drop the queue entry
			aas.redisClient.ZRem(ctx, "audit:queue", key)
			continue
		}

		var activityLog models.ActivityLog
		if err := json.Unmarshal([]byte(data), &activityLog); err != nil {
			logrus.WithError(err).Errorf("Failed to unmarshal audit row for key: %s", key)
			errorCount++
			continue
		}

		if err := database.DB.Create(&activityLog).Error; err != nil {
			logrus.WithError(err).Error("Failed to save audit row to database")
			errorCount++
			continue
		}

		pipeline := aas.redisClient.Pipeline()
		pipeline.Del(ctx, key)
		pipeline.ZRem(ctx, "audit:queue", key)
		if _, err := pipeline.Exec(ctx); err != nil {
			logrus.WithError(err).Errorf("Failed to remove audit row from cache: %s", key)
		}

		processedCount++
	}

	if processedCount > 0 || errorCount > 0 {
		logrus.Infof("Flushed %d audit rows to database, %d errors", processedCount, errorCount)
	}
	return nil
}

// ArchiveOldActivities exports audit rows older than daysOld to S3 as a ZIP
// and deletes them from the database.
func (aas *AuditArchiveService) ArchiveOldActivities(daysOld int) error {
	if daysOld < 7 {
		return fmt.Errorf("minimum archive age is 7 days")
	}

	cutoffDate := time.Now().AddDate(0, 0, -daysOld)

	batchSize := 1000
	var allRows []ArchivedActivity

	for offset := 0; ; offset += batchSize {
		var logs []models.ActivityLog
		// Ordered so pagination is stable and allRows[0] is the oldest row,
		// which the archive metadata records as StartDate.
		err := database.DB.
			Preload("User").
			Where("created_at < ?", cutoffDate).
			Order("created_at ASC").
			Limit(batchSize).
			Offset(offset).
			Find(&logs).Error
		if err != nil {
			return fmt.Errorf("failed to fetch audit rows for archiving: %v", err)
		}
		if len(logs) == 0 {
			break
		}

		for _, log := range logs {
			row := ArchivedActivity{
				ID:         log.ID,
				UserID:     log.UserID,
				Action:     log.Action,
				Resource:   log.Resource,
				ResourceID: log.ResourceID,
				IPAddress:  log.IPAddress,
				UserAgent:  log.UserAgent,
				CreatedAt:  log.CreatedAt,
			}

			if len(log.Details) > 0 {
				var details map[string]any
				if err := json.Unmarshal(log.Details, &details); err == nil {
					row.Details = details
				}
			}

			if log.User.ID > 0 {
				row.UserEmail = log.User.Email
				row.UserRole = string(log.User.Role)
			}

			allRows = append(allRows, row)
		}
	}

	if len(allRows) == 0 {
		logrus.Info("No audit rows to archive")
		return nil
	}
	logrus.Infof("Archiving %d audit rows older than %s", len(allRows), cutoffDate.Format("2006-01-02"))

	archiveFileName := fmt.Sprintf("activity_logs_%s.zip", cutoffDate.Format("2006-01-02"))
	zipBuffer, err := aas.createZipArchive(allRows, archiveFileName)
	if err != nil {
		return fmt.Errorf("failed to create ZIP archive: %v", err)
	}

	s3Key := fmt.Sprintf("audit/archived/%d/%02d/%s",
		cutoffDate.Year(),
		cutoffDate.Month(),
		archiveFileName)

	if err := aas.uploadToS3(s3Key, zipBuffer); err != nil {
		return fmt.Errorf("failed to upload archive to S3: %v", err)
	}

	logrus.Infof("Uploaded audit archive to S3: %s", s3Key)

	result := database.DB.Unscoped().Where("created_at < ?", cutoffDate).Delete(&models.ActivityLog{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete archived audit rows: %v", result.Error)
	}

	logrus.Infof("Deleted %d archived audit rows from database", result.RowsAffected)

	archiveMetadata := models.ActivityArchive{
		FileName:    archiveFileName,
		S3Key:       s3Key,
		StartDate:   allRows[0].CreatedAt,
		EndDate:     cutoffDate,
		RecordCount: len(allRows),
		FileSize:    int64(zipBuffer.Len()),
		Status:      "completed",
	}
	if err := database.DB.Create(&archiveMetadata).Error; err != nil {
		logrus.WithError(err).Error("Failed to save archive metadata")
	}

	return nil
}

// createZipArchive writes the rows as JSON plus a CSV companion.
func (aas *AuditArchiveService) createZipArchive(rows []ArchivedActivity, fileName string) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	zipWriter := zip.NewWriter(buf)

	jsonFile, err := zipWriter.Create("activity_logs.json")
	if err != nil {
		return nil, fmt.Errorf("failed to create logs file in ZIP: %v", err)
	}

	encoder := json.NewEncoder(jsonFile)
	encoder.SetIndent("", "  ")
	payload := map[string]any{
		"export_date":    time.Now().UTC(),
		"record_count":   len(rows),
		"format_version": "1.0",
		"logs":           rows,
	}
	if err := encoder.Encode(payload); err != nil {
		return nil, fmt.Errorf("failed to encode logs to JSON: %v", err)
	}

	metadataFile, err := zipWriter.Create("metadata.json")
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata file in ZIP: %v", err)
	}
	metadata := map[string]any{
		"file_name":    fileName,
		"created_at":   time.Now().UTC(),
		"record_count": len(rows),
		"date_range": map[string]any{
			"start": rows[0].CreatedAt,
			"end":   rows[len(rows)-1].CreatedAt,
		},
		"schema_version": "1.0",
		"description":    "LearnHub Activity Log Archive",
	}
	if err := json.NewEncoder(metadataFile).Encode(metadata); err != nil {
		return nil, fmt.Errorf("failed to encode metadata to JSON: %v", err)
	}

	csvFile, err := zipWriter.Create("activity_logs.csv")
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV file in ZIP: %v", err)
	}

	csvFile.Write([]byte("ID,User ID,Email,Role,Action,Resource,Resource ID,IP Address,User Agent,Created At,Details\n"))
	for _, row := range rows {
		details := ""
		if row.Details != nil {
			if detailsBytes, err := json.Marshal(row.Details); err == nil {
				details = strings.ReplaceAll(string(detailsBytes), `"`, `""`)
			}
		}
		line := fmt.Sprintf("%d,%d,%s,%s,%s,%s,%d,%s,%s,%s,\"%s\"\n",
			row.ID,
			row.UserID,
			row.UserEmail,
			row.UserRole,
			row.Action,
			row.Resource,
			row.ResourceID,
			row.IPAddress,
			row.UserAgent,
			row.CreatedAt.Format("2006-01-02 15:04:05"),
			details,
		)
		csvFile.Write([]byte(line))
	}

	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close ZIP writer: %v", err)
	}

	return buf, nil
}

func (aas *AuditArchiveService) uploadToS3(key string, data *bytes.Buffer) error {
	if aas.awsConfig.Region == "" {
		return fmt.Errorf("AWS not configured")
	}

	s3Client := s3.NewFromConfig(aas.awsConfig)
	bucketName := config.AppConfig.S3BucketName

	_, err := s3Client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      &bucketName,
		Key:         &key,
		Body:        bytes.NewReader(data.Bytes()),
		ContentType: aws.String("application/zip"),
	})
	return err
}

func (aas *AuditArchiveService) downloadFromS3(key string) (io.ReadCloser, error) {
	if aas.awsConfig.Region == "" {
		return nil, fmt.Errorf("AWS not configured")
	}

	s3Client := s3.NewFromConfig(aas.awsConfig)
	bucketName := config.AppConfig.S3BucketName

	result, err := s3Client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: &bucketName,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	return result.Body, nil
}

// GetArchives lists archive metadata records, newest first.
func (aas *AuditArchiveService) GetArchives() ([]models.ActivityArchive, error) {
	var archives []models.ActivityArchive
	if err := database.DB.Order("created_at DESC").Find(&archives).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve archives: %v", err)
	}
	return archives, nil
}

// DownloadArchive fetches a stored archive from S3.
func (aas *AuditArchiveService) DownloadArchive(archiveID uint) (io.ReadCloser, string, error) {
	var archive models.ActivityArchive
	if err := database.DB.First(&archive, archiveID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, "", fmt.Errorf("archive not found")
		}
		return nil, "", fmt.Errorf("failed to retrieve archive: %v", err)
	}

	reader, err := aas.downloadFromS3(archive.S3Key)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download archive from S3: %v", err)
	}
	return reader, archive.FileName, nil
}

// StartScheduler runs the hourly flush and nightly archive jobs until Stop.
func (aas *AuditArchiveService) StartScheduler() {
	if aas.scheduler != nil {
		return
	}

	aas.scheduler = cron.New()

	aas.scheduler.AddFunc("@hourly", func() {
		if err := aas.FlushCachedToDatabase(); err != nil {
			logrus.WithError(err).Warn("Scheduled audit flush failed")
		}
	})

	aas.scheduler.AddFunc("0 3 * * *", func() {
		if err := aas.ArchiveOldActivities(config.AppConfig.AuditArchiveDays); err != nil {
			logrus.WithError(err).Warn("Scheduled audit archive failed")
		}
	})

	aas.scheduler.Start()
	logrus.Info("Audit maintenance scheduler started")
}

// Stop halts the scheduler, waiting for running jobs to finish.
func (aas *AuditArchiveService) Stop() {
	if aas.scheduler != nil {
		ctx := aas.scheduler.Stop()
		<-ctx.Done()
		aas.scheduler = nil
	}
}
