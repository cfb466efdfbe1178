package presets

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/media-catalog/pkg/catalog"
)

func TestNewDevelopment(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dev-data")
	svc, cleanup, err := NewDevelopment(WithDevStorage(dir))
	require.NoError(t, err)
	require.NotNil(t, svc)

	content, err := svc.CreateContent(context.Background(), catalog.CreateContentRequest{
		Fields: catalog.ContentFields{Title: catalog.Some("Local clip")},
		Media: catalog.MediaUploads{
			Thumbnail: &catalog.FilePayload{FileName: "p.png", MimeType: "image/png", Reader: strings.NewReader("png")},
		},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(content.ThumbnailURL, "/media/thumbnails/"), content.ThumbnailURL)

	key := strings.TrimPrefix(content.ThumbnailURL, "/media/")
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	cleanup()
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "storage directory should be removed after cleanup")
}

func TestNewTesting(t *testing.T) {
	svc := NewTesting(t)

	contents, err := svc.ListContent(context.Background())
	require.NoError(t, err)
	assert.Empty(t, contents)
}

func TestNewTesting_WithFixtures(t *testing.T) {
	svc := NewTesting(t, WithTestFixtures())
	ctx := context.Background()

	contents, err := svc.ListContent(ctx)
	require.NoError(t, err)
	require.Len(t, contents, 2)
	assert.Equal(t, "Sample Movie", contents[0].Title)

	entries, err := svc.ListWatchlist(ctx, FixtureUserID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2021 • Action • 120m", entries[0].Meta)
}

func TestNewProduction_RejectsMemory(t *testing.T) {
	t.Setenv("DATABASE_URL", "memory")
	t.Setenv("JWT_SECRET", "prod-secret")

	_, _, err := NewProduction()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
