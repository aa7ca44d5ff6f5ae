package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

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
	DBSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// JWT
	JWTSecret    string
	JWTExpiresIn time.Duration
	RequireAuth  bool

	// Bootstrap administrator
	AdminUsername string
	AdminPassword string

	// Storage
	StorageDriver string
	UploadDir     string
	ImageMaxWidth int

	// AWS S3
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	S3BucketName       string

	// MinIO
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	// Server
	Port   string
	AppEnv string

	// File Upload
	MaxFileSize       int64
	AllowedExtensions string

	// Logging
	LogLevel string
	LogFile  string

	// Jobs
	LogFlushCron      string
	LogArchiveCron    string
	LogArchiveDays    int
	ExamStatusCron    string
	DashboardCacheTTL time.Duration

	// Feature Toggles
	UseRedisActivityLog bool
	SkipMigrate         bool
}

// GetDSN builds a PostgreSQL connection string for the gorm postgres driver.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

// RedisAddr returns host:port for the Redis client.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

var AppConfig *Config

// LoadConfig reads configuration from .env / process env, or from SSM
// Parameter Store when USE_SSM=true.
func LoadConfig() (*Config, error) {
	useSSM := getEnv("USE_SSM", "false") == "true"

	var paramMap map[string]string

	// Stage & base path for SSM (allows multi-env without code changes)
	basePath := strings.TrimRight(getEnv("SSM_BASE_PATH", "/college-office"), "/")
	stage := getEnv("STAGE", getEnv("APP_ENV", "production"))
	prefix := basePath + "/" + stage

	if useSSM {
		sess, err := session.NewSession(&aws.Config{Region: aws.String(getEnv("AWS_REGION", "ap-south-1"))})
		if err != nil {
			return nil, fmt.Errorf("create AWS session: %w", err)
		}
		log.Printf("Using AWS SSM Parameter Store (prefix=%s)", prefix)
		paramMap = fetchSSMParameters(ssm.New(sess), prefix)
	} else {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: .env file not found, using environment variables")
		}
	}

	getVal := func(key, def string) string {
		if v, ok := paramMap[strings.ToUpper(key)]; ok && v != "" {
			return v
		}
		return getEnv(strings.ToUpper(key), def)
	}

	jwtExpires, err := ParseExpiry(getVal("JWT_EXPIRES_IN", "12h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN: %w", err)
	}

	maxFileSize, err := strconv.ParseInt(getVal("MAX_FILE_SIZE", "10485760"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_FILE_SIZE: %w", err)
	}

	imageMaxWidth, err := strconv.Atoi(getVal("IMAGE_MAX_WIDTH", "1600"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMAGE_MAX_WIDTH: %w", err)
	}

	archiveDays, err := strconv.Atoi(getVal("LOG_ARCHIVE_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_ARCHIVE_DAYS: %w", err)
	}

	dashboardTTL, err := time.ParseDuration(getVal("DASHBOARD_CACHE_TTL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid DASHBOARD_CACHE_TTL: %w", err)
	}

	cfg := &Config{
		DBHost:     getVal("DB_HOST", "localhost"),
		DBPort:     getVal("DB_PORT", "5432"),
		DBUser:     getVal("DB_USER", "postgres"),
		DBPassword: getVal("DB_PASSWORD", ""),
		DBName:     getVal("DB_NAME", "college_office"),
		DBSSLMode:  getVal("DB_SSLMODE", "disable"),

		RedisHost:     getVal("REDIS_HOST", "localhost"),
		RedisPort:     getVal("REDIS_PORT", "6379"),
		RedisPassword: getVal("REDIS_PASSWORD", ""),

		JWTSecret:    getVal("JWT_SECRET", "your_secret_key_123"),
		JWTExpiresIn: jwtExpires,
		RequireAuth:  parseBool(getVal("REQUIRE_AUTH", "false")),

		AdminUsername: getVal("ADMIN_USERNAME", "admin"),
		AdminPassword: getVal("ADMIN_PASSWORD", ""),

		StorageDriver: strings.ToLower(getVal("STORAGE_DRIVER", "local")),
		UploadDir:     getVal("UPLOAD_DIR", "uploads"),
		ImageMaxWidth: imageMaxWidth,

		AWSRegion:          getVal("AWS_REGION", "ap-south-1"),
		AWSAccessKeyID:     getVal("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getVal("AWS_SECRET_ACCESS_KEY", ""),
		S3BucketName:       getVal("S3_BUCKET_NAME", "college-office-uploads"),

		MinIOEndpoint:  getVal("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey: getVal("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getVal("MINIO_SECRET_KEY", ""),
		MinIOBucket:    getVal("MINIO_BUCKET", "college-office"),
		MinIOUseSSL:    parseBool(getVal("MINIO_USE_SSL", "false")),

		Port:   getVal("PORT", "5000"),
		AppEnv: getVal("APP_ENV", "development"),

		MaxFileSize:       maxFileSize,
		AllowedExtensions: getVal("ALLOWED_EXTENSIONS", "jpg,jpeg,png,webp,gif,pdf,doc,docx"),

		LogLevel: getVal("LOG_LEVEL", "info"),
		LogFile:  getVal("LOG_FILE", "logs/app.log"),

		LogFlushCron:      getVal("LOG_FLUSH_CRON", "@every 10m"),
		LogArchiveCron:    getVal("LOG_ARCHIVE_CRON", "0 3 * * 0"),
		LogArchiveDays:    archiveDays,
		ExamStatusCron:    getVal("EXAM_STATUS_CRON", "@every 15m"),
		DashboardCacheTTL: dashboardTTL,

		UseRedisActivityLog: parseBool(getVal("USE_REDIS_ACTIVITY_LOG", "true")),
		SkipMigrate:         parseBool(getVal("SKIP_MIGRATE", "false")),
	}

	if err := Validate(cfg, useSSM); err != nil {
		return nil, err
	}

	AppConfig = cfg
	return cfg, nil
}

// ParseExpiry accepts time.ParseDuration syntax plus "d" (days) and "w" (weeks) suffixes.
func ParseExpiry(raw string) (time.Duration, error) {
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	s := strings.TrimSpace(strings.ToLower(raw))
	if len(s) < 2 {
		return 0, fmt.Errorf("unrecognised duration %q", raw)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return 0, fmt.Errorf("unrecognised duration %q", raw)
	}
	switch s[len(s)-1] {
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(n*7) * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("unrecognised duration %q", raw)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseBool(s string) bool {
	return strings.ToLower(strings.TrimSpace(s)) == "true"
}

// fetchSSMParameters reads all parameters under prefix and returns map with UPPERCASE keys.
func fetchSSMParameters(client *ssm.SSM, prefix string) map[string]string {
	out := make(map[string]string)
	var next *string
	for {
		in := &ssm.GetParametersByPathInput{
			Path:           aws.String(prefix),
			WithDecryption: aws.Bool(true),
			Recursive:      aws.Bool(true),
			NextToken:      next,
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
			key := name[strings.LastIndex(name, "/")+1:]
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

// Validate enforces the stricter production rules.
func Validate(c *Config, usedSSM bool) error {
	switch c.StorageDriver {
	case "local", "s3", "minio":
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if !c.IsProduction() {
		return nil
	}
	required := map[string]string{
		"DB_PASSWORD":    c.DBPassword,
		"JWT_SECRET":     c.JWTSecret,
		"ADMIN_PASSWORD": c.AdminPassword,
	}
	for k, v := range required {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("missing required secret %s in production (SSM=%v)", k, usedSSM)
		}
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET too short (min 16 chars)")
	}
	return nil
}
