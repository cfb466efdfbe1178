package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tendant/media-catalog/pkg/catalog/objectkey"
)

// MediaConfig configures where media uploads are placed.
type MediaConfig struct {
	// Backend names the blob store in errors and logs
	Backend         string
	ThumbnailPrefix string
	VideoPrefix     string
	KeyGenerator    objectkey.Generator
}

// DefaultMediaConfig returns the standard thumbnails/ and videos/ layout.
func DefaultMediaConfig() MediaConfig {
	return MediaConfig{
		Backend:         "default",
		ThumbnailPrefix: "thumbnails",
		VideoPrefix:     "videos",
		KeyGenerator:    objectkey.NewRecommendedGenerator(),
	}
}

// Resolution is the outcome of resolving both media slots. Keys lists the
// objects uploaded by this resolution, so they can be discarded if the record
// is never persisted.
type Resolution struct {
	URLs MediaURLs
	Keys []string
}

// MediaResolver uploads the file payloads of a change request and produces
// the resulting media addresses.
//
// Slots are uploaded sequentially, thumbnail first. The first failure aborts
// the resolution: later slots are not attempted and the objects already
// uploaded are deleted best-effort.
type MediaResolver struct {
	store  BlobStore
	config MediaConfig
	logger *slog.Logger
}

// NewMediaResolver creates a resolver over store.
func NewMediaResolver(store BlobStore, config MediaConfig, logger *slog.Logger) *MediaResolver {
	defaults := DefaultMediaConfig()
	if config.Backend == "" {
		config.Backend = defaults.Backend
	}
	if config.ThumbnailPrefix == "" {
		config.ThumbnailPrefix = defaults.ThumbnailPrefix
	}
	if config.VideoPrefix == "" {
		config.VideoPrefix = defaults.VideoPrefix
	}
	if config.KeyGenerator == nil {
		config.KeyGenerator = defaults.KeyGenerator
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MediaResolver{store: store, config: config, logger: logger}
}

// Resolve uploads each supplied payload and returns the merged addresses.
// Slots without a payload pass existing through unchanged.
func (m *MediaResolver) Resolve(ctx context.Context, existing MediaURLs, uploads MediaUploads) (*Resolution, error) {
	res := &Resolution{URLs: existing}

	for _, slot := range []MediaSlot{SlotThumbnail, SlotVideo} {
		file := uploads.Get(slot)
		if file == nil {
			continue
		}

		key := m.config.KeyGenerator.GenerateKey(m.namespace(slot), file.FileName)
		url, err := m.upload(ctx, key, file)
		if err != nil {
			m.Discard(context.WithoutCancel(ctx), res)
			return nil, &StorageError{
				Backend: m.config.Backend,
				Slot:    slot,
				Key:     key,
				Op:      "upload",
				Err:     err,
			}
		}

		res.Keys = append(res.Keys, key)
		res.URLs.set(slot, url)
		m.logger.Debug("Media uploaded", "slot", slot, "key", key, "url", url)
	}

	return res, nil
}

// Discard deletes the objects uploaded by res. Failures are logged only.
func (m *MediaResolver) Discard(ctx context.Context, res *Resolution) {
	if res == nil {
		return
	}
	for _, key := range res.Keys {
		if err := m.store.Delete(ctx, key); err != nil {
			m.logger.Warn("Failed to discard uncommitted upload", "backend", m.config.Backend, "key", key, "error", err)
		}
	}
	res.Keys = nil
}

func (m *MediaResolver) upload(ctx context.Context, key string, file *FilePayload) (string, error) {
	if file.Reader == nil {
		return "", errors.New("empty payload")
	}
	url, err := m.store.Upload(ctx, file.Reader, UploadParams{
		ObjectKey: key,
		MimeType:  file.MimeType,
		Size:      file.Size,
	})
	if err != nil {
		return "", err
	}
	if url == "" {
		return "", errors.New("blob store returned no address")
	}
	return url, nil
}

func (m *MediaResolver) namespace(slot MediaSlot) string {
	if slot == SlotVideo {
		return m.config.VideoPrefix
	}
	return m.config.ThumbnailPrefix
}
