package fs

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

func TestFSBackend_RequiresBaseDir(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base directory is required")
}

func TestFSBackend_UploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	backend, err := New(Config{BaseDir: dir, URLPrefix: "http://localhost:8080/media/"})
	require.NoError(t, err)
	ctx := context.Background()

	url, err := backend.Upload(ctx, strings.NewReader("frame"), catalog.UploadParams{
		ObjectKey: "thumbnails/1-poster.jpg",
		MimeType:  "image/jpeg",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/thumbnails/1-poster.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "thumbnails", "1-poster.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "frame", string(data))

	require.NoError(t, backend.Delete(ctx, "thumbnails/1-poster.jpg"))
	_, err = os.Stat(filepath.Join(dir, "thumbnails", "1-poster.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestFSBackend_DeleteMissingKey(t *testing.T) {
	backend, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	ctx := context.Background()

	assert.NoError(t, backend.Delete(ctx, "videos/never-uploaded.mp4"))

	_, err = backend.Upload(ctx, strings.NewReader("clip"), catalog.UploadParams{ObjectKey: "videos/1-clip.mp4"})
	require.NoError(t, err)
	require.NoError(t, backend.Delete(ctx, "videos/1-clip.mp4"))
	assert.NoError(t, backend.Delete(ctx, "videos/1-clip.mp4"), "second delete of the same key")

	assert.Error(t, backend.Delete(ctx, "../outside"), "escaping keys are still rejected")
}

func TestFSBackend_DefaultURLPrefix(t *testing.T) {
	dir := t.TempDir()
	backend, err := New(Config{BaseDir: dir})
	require.NoError(t, err)

	url, err := backend.Upload(context.Background(), strings.NewReader("x"), catalog.UploadParams{ObjectKey: "videos/a.mp4"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "file://"))
	assert.True(t, strings.HasSuffix(url, "/videos/a.mp4"))
}

func TestFSBackend_RejectsEscapingKeys(t *testing.T) {
	backend, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	_, err = backend.Upload(context.Background(), strings.NewReader("x"), catalog.UploadParams{ObjectKey: "../outside.txt"})
	assert.Error(t, err)
}
