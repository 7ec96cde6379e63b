package config

import (
	"log"
	"strconv"
	"strings"
	"time"

	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// JWT
	JWTSecret string

	// AWS S3
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	S3BucketName       string

	// Server
	Port   string
	AppEnv string

	// File storage
	StorageBackend       string // "local" or "s3"
	LocalStorageRoot     string
	MaxMaterialSize      int64
	MaxRecordingSize     int64
	MaterialMimeTypes    []string
	RecordingMimeTypes   []string

	// Logging
	LogLevel string
	LogFile  string

	// Feature toggles
	UseRedisAuditCache bool
	SkipMigrate        bool
	AuditArchiveDays   int
}

func (c *Config) GetDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=True&loc=Local"
}

var AppConfig *Config

func LoadConfig() {
	useSSM := getEnv("USE_SSM", "false") == "true"

	var (
		ssmClient *ssm.SSM
		paramMap  map[string]string
	)

	// Stage & base path for SSM (allows multi-env without code changes)
	basePath := getEnv("SSM_BASE_PATH", "/learnhub")
	stage := getEnv("STAGE", getEnv("APP_ENV", "production"))
	basePath = strings.TrimRight(basePath, "/")
	prefix := basePath + "/" + stage

	if useSSM {
		sess, err := session.NewSession(&aws.Config{Region: aws.String(getEnv("AWS_REGION", "ap-southeast-1"))})
		if err != nil {
			log.Fatal("Failed to create AWS session:", err)
		}
		ssmClient = ssm.New(sess)
		log.Printf("Using AWS SSM Parameter Store (prefix=%s)", prefix)
		paramMap = fetchSSMParameters(ssmClient, prefix)
	} else {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: .env file not found, using environment variables")
		}
	}

	// Helper accessor respecting map / env fallback
	getVal := func(key, def string) string {
		if useSSM {
			uk := strings.ToUpper(key)
			if v, ok := paramMap[uk]; ok && v != "" {
				return v
			}
		}
		return getEnv(strings.ToUpper(key), def)
	}

	maxMaterialSize, err := strconv.ParseInt(getVal("MAX_MATERIAL_SIZE", "104857600"), 10, 64) // 100MB
	if err != nil {
		log.Fatal("Invalid MAX_MATERIAL_SIZE format:", err)
	}
	maxRecordingSize, err := strconv.ParseInt(getVal("MAX_RECORDING_SIZE", "524288000"), 10, 64) // 500MB
	if err != nil {
		log.Fatal("Invalid MAX_RECORDING_SIZE format:", err)
	}

	archiveDays, err := strconv.Atoi(getVal("AUDIT_ARCHIVE_DAYS", "30"))
	if err != nil {
		log.Fatal("Invalid AUDIT_ARCHIVE_DAYS format:", err)
	}

	AppConfig = &Config{
		DBHost:     getVal("DB_HOST", "localhost"),
		DBPort:     getVal("DB_PORT", "3306"),
		DBUser:     getVal("DB_USER", "root"),
		DBPassword: getVal("DB_PASSWORD", ""),
		DBName:     getVal("DB_NAME", "learnhub_go"),

		RedisHost:     getVal("REDIS_HOST", "localhost"),
		RedisPort:     getVal("REDIS_PORT", "6379"),
		RedisPassword: getVal("REDIS_PASSWORD", ""),

		JWTSecret: getVal("JWT_SECRET", "your_super_secret_jwt_key"),

		AWSRegion:          getVal("AWS_REGION", "ap-southeast-1"),
		AWSAccessKeyID:     getVal("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getVal("AWS_SECRET_ACCESS_KEY", ""),
		S3BucketName:       getVal("S3_BUCKET_NAME", "learnhub-storage"),

		Port:   getVal("PORT", "3000"),
		AppEnv: getVal("APP_ENV", "development"),

		StorageBackend:   strings.ToLower(getVal("STORAGE_BACKEND", "local")),
		LocalStorageRoot: getVal("LOCAL_STORAGE_ROOT", "uploads"),
		MaxMaterialSize:  maxMaterialSize,
		MaxRecordingSize: maxRecordingSize,
		MaterialMimeTypes: splitList(getVal("MATERIAL_MIME_TYPES",
			"application/pdf,application/msword,application/vnd.openxmlformats-officedocument.wordprocessingml.document,application/vnd.ms-powerpoint,application/vnd.openxmlformats-officedocument.presentationml.presentation,text/plain,image/jpeg,image/png,application/zip")),
		RecordingMimeTypes: splitList(getVal("RECORDING_MIME_TYPES",
			"video/mp4,video/webm,video/x-matroska,video/quicktime")),

		LogLevel: getVal("LOG_LEVEL", "info"),
		LogFile:  getVal("LOG_FILE", "logs/app.log"),

		UseRedisAuditCache: strings.ToLower(getVal("USE_REDIS_AUDIT_CACHE", "false")) == "true",
		SkipMigrate:        strings.ToLower(getVal("SKIP_MIGRATE", "false")) == "true",
		AuditArchiveDays:   archiveDays,
	}

	validateConfig(AppConfig, useSSM)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// fetchSSMParameters reads all parameters under prefix and returns a map with UPPERCASE keys.
func fetchSSMParameters(client *ssm.SSM, prefix string) map[string]string {
	out := make(map[string]string)
	next := aws.String("")
	for {
		in := &ssm.GetParametersByPathInput{
			Path:           aws.String(prefix),
			WithDecryption: aws.Bool(true),
			Recursive:      aws.Bool(true),
		}
		if *next != "" {
			in.NextToken = next
		}
		resp, err := client.GetParametersByPath(in)
		if err != nil {
			log.Printf("Warning: unable to fetch SSM parameters for prefix %s: %v", prefix, err)
			break
		}
		for _, p := range resp.Parameters {
			if p.Name == nil || p.Value == nil {
				continue
			}
			name := *p.Name
			// last segment after '/'
			idx := strings.LastIndex(name, "/")
			key := name
			if idx >= 0 {
				key = name[idx+1:]
			}
			if key == "" {
				continue
			}
			out[strings.ToUpper(key)] = *p.Value
		}
		if resp.NextToken == nil || *resp.NextToken == "" {
			break
		}
		next = resp.NextToken
	}
	return out
}

func validateConfig(c *Config, usedSSM bool) {
	// Only enforce stricter rules in production
	if strings.ToLower(c.AppEnv) != "production" {
		return
	}
	required := map[string]string{
		"DB_PASSWORD": c.DBPassword,
		"JWT_SECRET":  c.JWTSecret,
	}
	for k, v := range required {
		if strings.TrimSpace(v) == "" {
			log.Fatalf("Missing required secret %s in production (SSM=%v)", k, usedSSM)
		}
	}
	if len(c.JWTSecret) < 16 {
		log.Fatal("JWT_SECRET too short (min 16 chars)")
	}
	if c.StorageBackend != "local" && c.StorageBackend != "s3" {
		log.Fatalf("Unknown STORAGE_BACKEND %q (expected local or s3)", c.StorageBackend)
	}
}

// TokenBlacklistTTL is how long a logged-out token stays blacklisted in Redis.
// Tokens themselves carry no expiry, so the blacklist plus the user-exists
// check on each request are the only revocation mechanisms.
const TokenBlacklistTTL = 30 * 24 * time.Hour
