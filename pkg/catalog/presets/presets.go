package presets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/media-catalog/pkg/catalog"
	"github.com/tendant/media-catalog/pkg/catalog/config"
	memoryrepo "github.com/tendant/media-catalog/pkg/catalog/repo/memory"
	fsstorage "github.com/tendant/media-catalog/pkg/catalog/storage/fs"
	memorystorage "github.com/tendant/media-catalog/pkg/catalog/storage/memory"
)

// Configuration Presets
//
// Ready-made service setups for local development, tests and production.

// FixtureUserID owns the watchlist seeded by WithTestFixtures.
var FixtureUserID = uuid.MustParse("00000000-0000-4000-8000-000000000001")

// NewDevelopment creates a service for local development: in-memory
// records, media on disk under ./dev-data/ and lifecycle events logged.
//
// The cleanup function removes the storage directory.
//
//	svc, cleanup, err := presets.NewDevelopment()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cleanup()
func NewDevelopment(opts ...DevelopmentOption) (catalog.Service, func(), error) {
	cfg := &devConfig{
		storageDir: "./dev-data",
		urlPrefix:  "/media/",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	fsBackend, err := fsstorage.New(fsstorage.Config{
		BaseDir:   cfg.storageDir,
		URLPrefix: cfg.urlPrefix,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create filesystem storage: %w", err)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	svc, err := catalog.New(
		catalog.WithRepository(memoryrepo.New()),
		catalog.WithBlobStore("fs", fsBackend),
		catalog.WithLogger(logger),
		catalog.WithEventSink(catalog.NewLogEventSink(logger)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create service: %w", err)
	}

	cleanup := func() {
		os.RemoveAll(cfg.storageDir)
	}
	return svc, cleanup, nil
}

// NewTesting creates an isolated in-memory service for tests. Nothing is
// logged and nothing touches disk.
//
//	func TestMyFeature(t *testing.T) {
//	    svc := presets.NewTesting(t, presets.WithTestFixtures())
//	}
func NewTesting(t *testing.T, opts ...TestingOption) catalog.Service {
	t.Helper()

	cfg := &testConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	svc, err := catalog.New(
		catalog.WithRepository(memoryrepo.New()),
		catalog.WithBlobStore("memory", memorystorage.New()),
	)
	if err != nil {
		t.Fatalf("failed to create test service: %v", err)
	}

	if cfg.fixtures {
		if err := seedFixtures(context.Background(), svc); err != nil {
			t.Fatalf("failed to seed fixtures: %v", err)
		}
	}
	return svc
}

// NewProduction builds the service from environment variables and refuses
// the in-memory backends. The cleanup function closes database connections.
func NewProduction(opts ...config.Option) (catalog.Service, func(), error) {
	options := append([]config.Option{config.WithEnv(), config.WithEnvironment("production")}, opts...)
	cfg, err := config.Load(options...)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DatabaseType == config.DatabaseMemory {
		return nil, nil, errors.New("production preset requires a postgres or mongodb DATABASE_URL")
	}
	if cfg.Storage.Type == config.StorageMemory {
		return nil, nil, errors.New("production preset requires persistent storage (s3 or fs, not memory)")
	}
	return cfg.BuildService(context.Background(), slog.Default())
}

func seedFixtures(ctx context.Context, svc catalog.Service) error {
	if _, err := svc.CreateUser(ctx, catalog.CreateUserRequest{ID: FixtureUserID, Name: "Fixture Viewer"}); err != nil {
		return err
	}

	samples := []catalog.ContentFields{
		{
			Title:       catalog.Some("Sample Movie"),
			Category:    catalog.Some("Action"),
			Status:      catalog.Some(catalog.ContentStatusPublished),
			Tags:        catalog.Some("sample, movie"),
			ReleaseYear: catalog.Some(2021),
			Duration:    catalog.Some(120),
			PublishDate: catalog.Some(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
		},
		{
			Title:       catalog.Some("Sample Series"),
			Category:    catalog.Some("Drama"),
			Tags:        catalog.Some("sample, series"),
			PublishDate: catalog.Some(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		},
	}
	for i, fields := range samples {
		content, err := svc.CreateContent(ctx, catalog.CreateContentRequest{Fields: fields})
		if err != nil {
			return err
		}
		if i == 0 {
			if _, err := svc.AddToWatchlist(ctx, FixtureUserID, content.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

type devConfig struct {
	storageDir string
	urlPrefix  string
	logger     *slog.Logger
}

type testConfig struct {
	fixtures bool
}

// DevelopmentOption is a functional option for NewDevelopment
type DevelopmentOption func(*devConfig)

// WithDevStorage sets the development storage directory
func WithDevStorage(dir string) DevelopmentOption {
	return func(cfg *devConfig) {
		cfg.storageDir = dir
	}
}

// WithDevURLPrefix sets the prefix of the addresses returned for uploads
func WithDevURLPrefix(prefix string) DevelopmentOption {
	return func(cfg *devConfig) {
		cfg.urlPrefix = prefix
	}
}

// WithDevLogger routes service and event logs to logger
func WithDevLogger(logger *slog.Logger) DevelopmentOption {
	return func(cfg *devConfig) {
		cfg.logger = logger
	}
}

// TestingOption is a functional option for NewTesting
type TestingOption func(*testConfig)

// WithTestFixtures seeds a viewer, two sample contents and one watchlist entry
func WithTestFixtures() TestingOption {
	return func(cfg *testConfig) {
		cfg.fixtures = true
	}
}
