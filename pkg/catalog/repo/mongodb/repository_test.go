package mongodb

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/media-catalog/pkg/catalog"
)

func setupTestRepository(t *testing.T) *Repository {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping mongo test in short mode")
	}
	uri := os.Getenv("TEST_MONGO_URL")
	if uri == "" {
		t.Skip("Skipping mongo test: TEST_MONGO_URL not set")
	}

	ctx := context.Background()
	client, err := Connect(ctx, uri)
	if err != nil {
		t.Skipf("mongo not available: %v", err)
	}

	db := client.Database("catalog_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	repo := New(db)
	require.NoError(t, repo.EnsureIndexes(ctx))
	return repo
}

func TestMongoRepository_Content(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)
	duration := 120

	older := &catalog.Content{ID: uuid.New(), Title: "older", Tags: []string{"x"}, PublishDate: base, CreatedAt: base, UpdatedAt: base}
	newer := &catalog.Content{ID: uuid.New(), Title: "newer", Duration: &duration, PublishDate: base.Add(time.Hour), CreatedAt: base, UpdatedAt: base}
	require.NoError(t, repo.SaveContent(ctx, older))
	require.NoError(t, repo.SaveContent(ctx, newer))

	list, err := repo.ListContent(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].Title)
	require.NotNil(t, list[0].Duration)
	assert.Equal(t, 120, *list[0].Duration)
	assert.Nil(t, list[1].ReleaseYear)

	got, err := repo.GetContent(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got.Tags)
	assert.True(t, base.Equal(got.PublishDate))

	require.NoError(t, repo.DeleteContent(ctx, older.ID))
	assert.ErrorIs(t, repo.DeleteContent(ctx, older.ID), catalog.ErrContentNotFound)
	_, err = repo.GetContent(ctx, older.ID)
	assert.ErrorIs(t, err, catalog.ErrContentNotFound)
}

func TestMongoRepository_IncrementViews(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC()
	content := &catalog.Content{ID: uuid.New(), Title: "Movie", PublishDate: now, CreatedAt: now, UpdatedAt: now}
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

	content.Title = "Movie (edited)"
	require.NoError(t, repo.SaveContent(ctx, content))

	got, err := repo.GetContent(ctx, content.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), got.Views)
	assert.Equal(t, "Movie (edited)", got.Title)

	_, err = repo.IncrementViews(ctx, uuid.New())
	assert.ErrorIs(t, err, catalog.ErrContentNotFound)
}

func TestMongoRepository_Users(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	user := &catalog.User{ID: uuid.New(), Name: "U1", Role: catalog.RoleUser}

	require.NoError(t, repo.CreateUser(ctx, user))
	assert.ErrorIs(t, repo.CreateUser(ctx, user), catalog.ErrUserExists)

	got, err := repo.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Watchlist)

	contentID := uuid.New()
	_, err = repo.AddWatchlistEntry(ctx, user.ID, catalog.WatchlistEntry{ContentID: contentID, Title: "Movie"})
	require.NoError(t, err)

	again, err := repo.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, again.Watchlist, 1)
	assert.Equal(t, contentID, again.Watchlist[0].ContentID)

	_, err = repo.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, catalog.ErrUserNotFound)
}

func TestMongoRepository_WatchlistEntries(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	user := &catalog.User{ID: uuid.New(), Name: "U1", Role: catalog.RoleUser, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.CreateUser(ctx, user))

	first := catalog.WatchlistEntry{ContentID: uuid.New(), Title: "A", AddedAt: now}
	second := catalog.WatchlistEntry{ContentID: uuid.New(), Title: "B", AddedAt: now}

	_, err := repo.AddWatchlistEntry(ctx, user.ID, first)
	require.NoError(t, err)
	watchlist, err := repo.AddWatchlistEntry(ctx, user.ID, second)
	require.NoError(t, err)
	require.Len(t, watchlist, 2)
	assert.Equal(t, "B", watchlist[1].Title)

	_, err = repo.AddWatchlistEntry(ctx, user.ID, first)
	assert.ErrorIs(t, err, catalog.ErrAlreadyInWatchlist)
	_, err = repo.AddWatchlistEntry(ctx, uuid.New(), first)
	assert.ErrorIs(t, err, catalog.ErrUserNotFound)

	watchlist, removed, err := repo.RemoveWatchlistEntry(ctx, user.ID, first.ContentID, now)
	require.NoError(t, err)
	assert.True(t, removed)
	require.Len(t, watchlist, 1)
	assert.Equal(t, second.ContentID, watchlist[0].ContentID)

	_, removed, err = repo.RemoveWatchlistEntry(ctx, user.ID, first.ContentID, now)
	require.NoError(t, err)
	assert.False(t, removed)

	_, _, err = repo.RemoveWatchlistEntry(ctx, uuid.New(), first.ContentID, now)
	assert.ErrorIs(t, err, catalog.ErrUserNotFound)
}

func TestMongoRepository_ConcurrentWatchlistAdds(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	user := &catalog.User{ID: uuid.New(), Role: catalog.RoleUser}
	require.NoError(t, repo.CreateUser(ctx, user))

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AddWatchlistEntry(ctx, user.ID, catalog.WatchlistEntry{ContentID: uuid.New()})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := repo.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Watchlist, n)
}
