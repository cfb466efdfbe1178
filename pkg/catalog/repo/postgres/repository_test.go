package postgres

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/media-catalog/pkg/catalog"
)

// setupTestRepository connects to TEST_DATABASE_URL and migrates a throwaway schema
func setupTestRepository(t *testing.T) *Repository {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping postgres test in short mode")
	}
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("Skipping postgres test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	schema := "catalog_test_" + strings.ReplaceAll(uuid.NewString()[:8], "-", "")

	admin, err := pgx.Connect(ctx, dsn)
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	_, err = admin.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", schema))
	require.NoError(t, err)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
		return err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		_, _ = admin.Exec(context.Background(), fmt.Sprintf("DROP SCHEMA %s CASCADE", schema))
		_ = admin.Close(context.Background())
	})

	require.NoError(t, Migrate(ctx, pool))
	return NewWithPool(pool)
}

func testContent(title string, publish time.Time) *catalog.Content {
	year := 2021
	return &catalog.Content{
		ID:          uuid.New(),
		Title:       title,
		Category:    "Action",
		Status:      catalog.ContentStatusPublished,
		Visibility:  catalog.VisibilityPublic,
		Tags:        []string{"x", "y"},
		PublishDate: publish,
		ReleaseYear: &year,
		CreatedAt:   publish,
		UpdatedAt:   publish,
	}
}

func TestPostgresRepository_Content(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	older := testContent("older", base)
	newer := testContent("newer", base.Add(time.Hour))
	require.NoError(t, repo.SaveContent(ctx, older))
	require.NoError(t, repo.SaveContent(ctx, newer))

	got, err := repo.GetContent(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "older", got.Title)
	assert.Equal(t, []string{"x", "y"}, got.Tags)
	require.NotNil(t, got.ReleaseYear)
	assert.Equal(t, 2021, *got.ReleaseYear)
	assert.Nil(t, got.Duration)

	list, err := repo.ListContent(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].Title)

	require.NoError(t, repo.DeleteContent(ctx, older.ID))
	_, err = repo.GetContent(ctx, older.ID)
	assert.ErrorIs(t, err, catalog.ErrContentNotFound)
	assert.ErrorIs(t, repo.DeleteContent(ctx, older.ID), catalog.ErrContentNotFound)
}

func TestPostgresRepository_IncrementViews(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	content := testContent("Movie", time.Now().UTC())
	require.NoError(t, repo.SaveContent(ctx, content))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.IncrementViews(ctx, content.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// stale save does not reset the counter
	content.Title = "Movie (edited)"
	require.NoError(t, repo.SaveContent(ctx, content))

	got, err := repo.GetContent(ctx, content.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), got.Views)
	assert.Equal(t, "Movie (edited)", got.Title)

	_, err = repo.IncrementViews(ctx, uuid.New())
	assert.ErrorIs(t, err, catalog.ErrContentNotFound)
}

func TestPostgresRepository_Users(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC()
	user := &catalog.User{ID: uuid.New(), Name: "U1", Role: catalog.RoleUser, CreatedAt: now, UpdatedAt: now}

	require.NoError(t, repo.CreateUser(ctx, user))
	assert.ErrorIs(t, repo.CreateUser(ctx, user), catalog.ErrUserExists)

	got, err := repo.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Watchlist)
	assert.Empty(t, got.Watchlist)

	entry := catalog.WatchlistEntry{ContentID: uuid.New(), Title: "Movie", Meta: "2021 • Action", AddedAt: now}
	_, err = repo.AddWatchlistEntry(ctx, user.ID, entry)
	require.NoError(t, err)

	again, err := repo.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, again.Watchlist, 1)
	assert.Equal(t, entry.ContentID, again.Watchlist[0].ContentID)
	assert.Equal(t, "2021 • Action", again.Watchlist[0].Meta)

	_, err = repo.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, catalog.ErrUserNotFound)
}

func TestPostgresRepository_WatchlistEntries(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	user := &catalog.User{ID: uuid.New(), Name: "U1", Role: catalog.RoleUser, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.CreateUser(ctx, user))

	first := catalog.WatchlistEntry{ContentID: uuid.New(), Title: "A", AddedAt: now}
	second := catalog.WatchlistEntry{ContentID: uuid.New(), Title: "B", AddedAt: now}

	_, err := repo.AddWatchlistEntry(ctx, user.ID, first)
	require.NoError(t, err)
	watchlist, err := repo.AddWatchlistEntry(ctx, user.ID, second)
	require.NoError(t, err)
	require.Len(t, watchlist, 2)
	assert.Equal(t, second.ContentID, watchlist[1].ContentID)

	_, err = repo.AddWatchlistEntry(ctx, user.ID, first)
	assert.ErrorIs(t, err, catalog.ErrAlreadyInWatchlist)
	_, err = repo.AddWatchlistEntry(ctx, uuid.New(), first)
	assert.ErrorIs(t, err, catalog.ErrUserNotFound)

	watchlist, removed, err := repo.RemoveWatchlistEntry(ctx, user.ID, first.ContentID, now)
	require.NoError(t, err)
	assert.True(t, removed)
	require.Len(t, watchlist, 1)
	assert.Equal(t, second.ContentID, watchlist[0].ContentID)

	watchlist, removed, err = repo.RemoveWatchlistEntry(ctx, user.ID, first.ContentID, now)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Len(t, watchlist, 1)

	_, _, err = repo.RemoveWatchlistEntry(ctx, uuid.New(), first.ContentID, now)
	assert.ErrorIs(t, err, catalog.ErrUserNotFound)
}

func TestPostgresRepository_ConcurrentWatchlistAdds(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC()
	user := &catalog.User{ID: uuid.New(), Role: catalog.RoleUser, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.CreateUser(ctx, user))

	shared := uuid.New()
	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := repo.AddWatchlistEntry(ctx, user.ID, catalog.WatchlistEntry{ContentID: uuid.New(), AddedAt: now})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			if _, err := repo.AddWatchlistEntry(ctx, user.ID, catalog.WatchlistEntry{ContentID: shared, AddedAt: now}); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, catalog.ErrAlreadyInWatchlist)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	stored, err := repo.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Watchlist, n+1)
}
