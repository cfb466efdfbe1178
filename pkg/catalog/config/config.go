package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/media-catalog/internal/logging"
	"github.com/tendant/media-catalog/pkg/catalog"
	"github.com/tendant/media-catalog/pkg/catalog/repo/memory"
	repomongo "github.com/tendant/media-catalog/pkg/catalog/repo/mongodb"
	repopg "github.com/tendant/media-catalog/pkg/catalog/repo/postgres"
	fsstorage "github.com/tendant/media-catalog/pkg/catalog/storage/fs"
	memorystorage "github.com/tendant/media-catalog/pkg/catalog/storage/memory"
	s3storage "github.com/tendant/media-catalog/pkg/catalog/storage/s3"
)

const (
	DatabaseMemory   = "memory"
	DatabasePostgres = "postgres"
	DatabaseMongo    = "mongodb"

	StorageMemory = "memory"
	StorageFS     = "fs"
	StorageS3     = "s3"

	// DevJWTSecret is accepted outside production only
	DevJWTSecret = "dev-secret-change-me"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:          "8080",
		Environment:   "development",
		LogLevel:      "info",
		DatabaseType:  DatabaseMemory,
		DBSchema:      "catalog",
		MongoDatabase: "catalog",
		Storage: StorageConfig{
			Type:   StorageMemory,
			Region: "us-east-1",
		},
		JWTSecret:          DevJWTSecret,
		MaxUploadMB:        512,
		EnableEventLogging: true,
	}
}

// ServerConfig represents server configuration for the media catalog service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	LogLevel string
	LogFile  string

	// Database configuration
	DatabaseURL   string
	DatabaseType  string // "memory", "postgres", "mongodb"
	DBSchema      string // Postgres schema to use (default: catalog)
	MongoDatabase string
	AutoMigrate   bool

	Storage StorageConfig

	JWTSecret   string
	MaxUploadMB int64

	// CORSAllowedOrigins defaults to any origin when empty
	CORSAllowedOrigins []string

	EnableEventLogging bool
}

// StorageConfig describes the single blob store media is uploaded to
type StorageConfig struct {
	Type string // "memory", "fs", "s3"

	// fs
	BaseDir string

	// s3 and S3-compatible providers (Wasabi, MinIO)
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	// SSEAlgorithm turns on server-side encryption: "AES256" or "aws:kms"
	SSEAlgorithm string
	SSEKMSKeyID  string

	// PublicURL overrides the address prefix returned for uploaded objects
	PublicURL string
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.DatabaseType {
	case DatabaseMemory:
	case DatabasePostgres, DatabaseMongo:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required when using %s", c.DatabaseType)
		}
	default:
		return errors.New("database_type must be 'memory', 'postgres' or 'mongodb'")
	}

	switch c.Storage.Type {
	case StorageMemory:
	case StorageFS:
		if c.Storage.BaseDir == "" {
			return errors.New("storage base_dir is required for fs storage")
		}
	case StorageS3:
		if c.Storage.Bucket == "" {
			return errors.New("storage bucket is required for s3 storage")
		}
		switch c.Storage.SSEAlgorithm {
		case "", "AES256", "aws:kms":
		default:
			return fmt.Errorf("unsupported s3 sse algorithm: %s", c.Storage.SSEAlgorithm)
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.Environment == "production" && c.JWTSecret == DevJWTSecret {
		return errors.New("jwt_secret must be set in production")
	}

	if c.MaxUploadMB <= 0 {
		return errors.New("max_upload_mb must be positive")
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

// Logging returns the logger configuration for this server
func (c *ServerConfig) Logging() logging.Config {
	return logging.Config{
		Level:       c.LogLevel,
		Environment: c.Environment,
		File:        c.LogFile,
	}
}

// MaxUploadBytes is the request size limit for multipart content writes
func (c *ServerConfig) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// BuildService creates a Service instance from the server configuration.
// The returned cleanup releases database connections.
func (c *ServerConfig) BuildService(ctx context.Context, logger *slog.Logger) (catalog.Service, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	repo, cleanup, err := c.buildRepository(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build repository: %w", err)
	}

	store, err := c.buildBlobStore()
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to build storage backend %s: %w", c.Storage.Type, err)
	}

	options := []catalog.Option{
		catalog.WithRepository(repo),
		catalog.WithBlobStore(c.Storage.Type, store),
		catalog.WithLogger(logger),
	}
	if c.EnableEventLogging {
		options = append(options, catalog.WithEventSink(catalog.NewLogEventSink(logger)))
	}

	svc, err := catalog.New(options...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository(ctx context.Context) (catalog.Repository, func(), error) {
	switch c.DatabaseType {
	case DatabaseMemory:
		return memory.New(), func() {}, nil

	case DatabasePostgres:
		cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		// Optionally set search_path for the connection
		schema := c.DBSchema
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			if schema == "" {
				return nil
			}
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", pgx.Identifier{schema}.Sanitize()))
			return err
		}
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		if c.AutoMigrate {
			if schema != "" {
				if _, err := pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{schema}.Sanitize()); err != nil {
					pool.Close()
					return nil, nil, fmt.Errorf("failed to create schema %s: %w", schema, err)
				}
			}
			if err := repopg.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		return repopg.NewWithPool(pool), pool.Close, nil

	case DatabaseMongo:
		client, err := repomongo.Connect(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(shutdownCtx)
		}
		repo := repomongo.New(client.Database(c.MongoDatabase))
		if c.AutoMigrate {
			if err := repo.EnsureIndexes(ctx); err != nil {
				cleanup()
				return nil, nil, err
			}
		}
		return repo, cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// PingPostgres verifies connectivity to Postgres within five seconds, with
// search_path set to schema when one is given. The admin migrate command runs
// it before touching the schema.
func PingPostgres(ctx context.Context, databaseURL, schema string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", pgx.Identifier{schema}.Sanitize()))
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// buildBlobStore creates the BlobStore based on the storage configuration
func (c *ServerConfig) buildBlobStore() (catalog.BlobStore, error) {
	switch c.Storage.Type {
	case StorageMemory:
		if c.Storage.PublicURL != "" {
			return memorystorage.NewWithBaseURL(c.Storage.PublicURL), nil
		}
		return memorystorage.New(), nil

	case StorageFS:
		return fsstorage.New(fsstorage.Config{
			BaseDir:   c.Storage.BaseDir,
			URLPrefix: c.Storage.PublicURL,
		})

	case StorageS3:
		return s3storage.New(c.s3Config())

	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", c.Storage.Type)
	}
}

func (c *ServerConfig) s3Config() s3storage.Config {
	return s3storage.Config{
		Region:          c.Storage.Region,
		Bucket:          c.Storage.Bucket,
		AccessKeyID:     c.Storage.AccessKeyID,
		SecretAccessKey: c.Storage.SecretAccessKey,
		Endpoint:        c.Storage.Endpoint,
		UsePathStyle:    c.Storage.UsePathStyle,
		PublicURL:       c.Storage.PublicURL,
		EnableSSE:       c.Storage.SSEAlgorithm != "",
		SSEAlgorithm:    c.Storage.SSEAlgorithm,
		SSEKMSKeyID:     c.Storage.SSEKMSKeyID,
	}
}
