package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/media-catalog/pkg/catalog"
)

// envSettings mirrors the supported environment variables. Values are kept as
// strings so an unset variable never overrides an earlier option.
type envSettings struct {
	Port        string `env:"PORT"`
	Environment string `env:"ENVIRONMENT"`
	LogLevel    string `env:"LOG_LEVEL"`
	LogFile     string `env:"LOG_FILE"`

	DatabaseURL   string `env:"DATABASE_URL"`
	DBSchema      string `env:"DB_SCHEMA"`
	MongoDatabase string `env:"MONGO_DATABASE"`
	AutoMigrate   string `env:"AUTO_MIGRATE"`

	StorageURL        string `env:"STORAGE_URL"`
	StoragePublicURL  string `env:"STORAGE_PUBLIC_URL"`
	S3Region          string `env:"S3_REGION"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle    string `env:"S3_USE_PATH_STYLE"`
	S3SSEAlgorithm    string `env:"S3_SSE_ALGORITHM"`
	S3SSEKMSKeyID     string `env:"S3_SSE_KMS_KEY_ID"`

	JWTSecret   string `env:"JWT_SECRET"`
	MaxUploadMB string `env:"MAX_UPLOAD_MB"`

	// comma separated
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS"`
}

// WithEnv applies environment variable overrides.
//
// Database:
//
//	DATABASE_URL - "memory", "postgres://..." / "postgresql://...", or "mongodb://..." / "mongodb+srv://..."
//
// Storage:
//
//	STORAGE_URL - one of:
//	              - "memory://" - In-memory storage (default)
//	              - "file:///path/to/data" - Filesystem storage
//	              - "s3://bucket?region=us-east-1&endpoint=https://s3.wasabisys.com" - S3 storage
//
// S3 credentials come from S3_ACCESS_KEY_ID / S3_SECRET_ACCESS_KEY.
// S3_SSE_ALGORITHM ("AES256" or "aws:kms") and S3_SSE_KMS_KEY_ID turn on
// server-side encryption of uploads.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var s envSettings
		if err := cleanenv.ReadEnv(&s); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return s.apply(c)
	}
}

// WithEnvFile reads the same keys from a file (.env, .yaml, .json or .toml).
// Process environment variables take precedence over the file.
func WithEnvFile(path string) Option {
	return func(c *ServerConfig) error {
		var s envSettings
		if err := cleanenv.ReadConfig(path, &s); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return s.apply(c)
	}
}

func (s envSettings) apply(c *ServerConfig) error {
	setString(&c.Port, s.Port)
	setString(&c.Environment, s.Environment)
	setString(&c.LogLevel, s.LogLevel)
	setString(&c.LogFile, s.LogFile)
	setString(&c.DBSchema, s.DBSchema)
	setString(&c.MongoDatabase, s.MongoDatabase)
	setString(&c.JWTSecret, s.JWTSecret)

	if err := applyDatabaseURL(s.DatabaseURL, c); err != nil {
		return err
	}
	if err := applyStorageURL(s.StorageURL, c); err != nil {
		return err
	}

	setString(&c.Storage.PublicURL, s.StoragePublicURL)
	setString(&c.Storage.Region, s.S3Region)
	setString(&c.Storage.Endpoint, s.S3Endpoint)
	setString(&c.Storage.AccessKeyID, s.S3AccessKeyID)
	setString(&c.Storage.SecretAccessKey, s.S3SecretAccessKey)
	setString(&c.Storage.SSEAlgorithm, s.S3SSEAlgorithm)
	setString(&c.Storage.SSEKMSKeyID, s.S3SSEKMSKeyID)

	if err := setBool(&c.Storage.UsePathStyle, "S3_USE_PATH_STYLE", s.S3UsePathStyle); err != nil {
		return err
	}
	if err := setBool(&c.AutoMigrate, "AUTO_MIGRATE", s.AutoMigrate); err != nil {
		return err
	}
	if s.CORSAllowedOrigins != "" {
		c.CORSAllowedOrigins = catalog.ParseTags(s.CORSAllowedOrigins)
	}
	if s.MaxUploadMB != "" {
		mb, err := strconv.ParseInt(s.MaxUploadMB, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer for MAX_UPLOAD_MB: %w", err)
		}
		c.MaxUploadMB = mb
	}
	return nil
}

// applyDatabaseURL auto-detects the database type from the URL scheme
func applyDatabaseURL(dbURL string, c *ServerConfig) error {
	switch {
	case dbURL == "":
		return nil
	case dbURL == "memory":
		c.DatabaseType = DatabaseMemory
		c.DatabaseURL = ""
	case strings.HasPrefix(dbURL, "postgres://"), strings.HasPrefix(dbURL, "postgresql://"):
		c.DatabaseType = DatabasePostgres
		c.DatabaseURL = dbURL
	case strings.HasPrefix(dbURL, "mongodb://"), strings.HasPrefix(dbURL, "mongodb+srv://"):
		c.DatabaseType = DatabaseMongo
		c.DatabaseURL = dbURL
	default:
		return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory', 'postgres://...' or 'mongodb://...')", dbURL)
	}
	return nil
}

// applyStorageURL configures the blob store from STORAGE_URL
func applyStorageURL(storageURL string, c *ServerConfig) error {
	switch {
	case storageURL == "":
		return nil
	case storageURL == "memory" || storageURL == "memory://":
		c.Storage.Type = StorageMemory
		return nil
	case strings.HasPrefix(storageURL, "file://"):
		path := strings.TrimPrefix(storageURL, "file://")
		if path == "" {
			return fmt.Errorf("filesystem path cannot be empty in STORAGE_URL")
		}
		c.Storage.Type = StorageFS
		c.Storage.BaseDir = path
		return nil
	case strings.HasPrefix(storageURL, "s3://"):
		u, err := url.Parse(storageURL)
		if err != nil {
			return fmt.Errorf("invalid STORAGE_URL: %w", err)
		}
		if u.Host == "" {
			return fmt.Errorf("S3 bucket name cannot be empty in STORAGE_URL")
		}
		c.Storage.Type = StorageS3
		c.Storage.Bucket = u.Host
		query := u.Query()
		setString(&c.Storage.Region, query.Get("region"))
		setString(&c.Storage.Endpoint, query.Get("endpoint"))
		if err := setBool(&c.Storage.UsePathStyle, "STORAGE_URL path_style", query.Get("path_style")); err != nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", storageURL)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key, raw string) error {
	if raw == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("invalid boolean for %s: %w", key, err)
	}
	*dst = parsed
	return nil
}
