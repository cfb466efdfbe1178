package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repository  Repository
	blobStore   BlobStore
	backendName string
	mediaConfig MediaConfig
	media       *MediaResolver
	eventSink   EventSink
	logger      *slog.Logger
	now         func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the blob storage backend media is uploaded to
func WithBlobStore(name string, store BlobStore) Option {
	return func(s *service) {
		s.backendName = name
		s.blobStore = store
	}
}

// WithMediaConfig sets the key layout for media uploads
func WithMediaConfig(config MediaConfig) Option {
	return func(s *service) {
		s.mediaConfig = config
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		mediaConfig: DefaultMediaConfig(),
		now:         func() time.Time { return time.Now().UTC() },
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.blobStore == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.eventSink == nil {
		s.eventSink = NewNoopEventSink()
	}
	if s.backendName != "" {
		s.mediaConfig.Backend = s.backendName
	}
	s.media = NewMediaResolver(s.blobStore, s.mediaConfig, s.logger)

	return s, nil
}

// Content operations

func (s *service) ListContent(ctx context.Context) ([]*Content, error) {
	contents, err := s.repository.ListContent(ctx)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return contents, nil
}

func (s *service) GetContent(ctx context.Context, id uuid.UUID) (*Content, error) {
	content, err := s.repository.GetContent(ctx, id)
	if err != nil {
		return nil, &ContentError{ContentID: id, Op: "get", Err: err}
	}
	return content, nil
}

func (s *service) CreateContent(ctx context.Context, req CreateContentRequest) (*Content, error) {
	now := s.now()
	content := &Content{
		ID:          uuid.New(),
		Status:      ContentStatusDraft,
		Visibility:  VisibilityPublic,
		Tags:        []string{},
		PublishDate: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := applyFields(content, req.Fields); err != nil {
		return nil, &ContentError{ContentID: content.ID, Op: "create", Err: err}
	}

	res, err := s.media.Resolve(ctx, MediaURLs{}, req.Media)
	if err != nil {
		return nil, &ContentError{ContentID: content.ID, Op: "create", Err: err}
	}
	content.ThumbnailURL = res.URLs.Thumbnail
	content.VideoURL = res.URLs.Video

	if err := s.repository.SaveContent(ctx, content); err != nil {
		s.media.Discard(context.WithoutCancel(ctx), res)
		return nil, &ContentError{ContentID: content.ID, Op: "create", Err: err}
	}

	if err := s.eventSink.ContentCreated(ctx, content); err != nil {
		s.logger.WarnContext(ctx, "Event sink failed", "event", "content_created", "content_id", content.ID, "error", err)
	}

	return content, nil
}

func (s *service) UpdateContent(ctx context.Context, req UpdateContentRequest) (*Content, error) {
	content, err := s.repository.GetContent(ctx, req.ID)
	if err != nil {
		return nil, &ContentError{ContentID: req.ID, Op: "update", Err: err}
	}

	// Merge into a copy so a failed validation or upload leaves nothing half applied
	updated := *content
	updated.Tags = append([]string(nil), content.Tags...)
	if err := applyFields(&updated, req.Fields); err != nil {
		return nil, &ContentError{ContentID: req.ID, Op: "update", Err: err}
	}

	existing := MediaURLs{Thumbnail: content.ThumbnailURL, Video: content.VideoURL}
	res, err := s.media.Resolve(ctx, existing, req.Media)
	if err != nil {
		return nil, &ContentError{ContentID: req.ID, Op: "update", Err: err}
	}
	updated.ThumbnailURL = res.URLs.Thumbnail
	updated.VideoURL = res.URLs.Video
	updated.UpdatedAt = s.now()

	if err := s.repository.SaveContent(ctx, &updated); err != nil {
		s.media.Discard(context.WithoutCancel(ctx), res)
		return nil, &ContentError{ContentID: req.ID, Op: "update", Err: err}
	}

	if err := s.eventSink.ContentUpdated(ctx, &updated); err != nil {
		s.logger.WarnContext(ctx, "Event sink failed", "event", "content_updated", "content_id", updated.ID, "error", err)
	}

	return &updated, nil
}

// DeleteContent removes the record. Watchlist entries referencing it are left
// in place.
func (s *service) DeleteContent(ctx context.Context, id uuid.UUID) error {
	if err := s.repository.DeleteContent(ctx, id); err != nil {
		return &ContentError{ContentID: id, Op: "delete", Err: err}
	}

	if err := s.eventSink.ContentDeleted(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "Event sink failed", "event", "content_deleted", "content_id", id, "error", err)
	}

	return nil
}

func (s *service) IncrementView(ctx context.Context, id uuid.UUID) (*Content, error) {
	content, err := s.repository.IncrementViews(ctx, id)
	if err != nil {
		return nil, &ContentError{ContentID: id, Op: "increment_view", Err: err}
	}
	return content, nil
}

// applyFields copies every supplied field onto c.
func applyFields(c *Content, f ContentFields) error {
	if v, ok := f.Status.Get(); ok {
		if !v.IsValid() {
			return invalid("status", "unknown status %q", v)
		}
		c.Status = v
	}
	if v, ok := f.Visibility.Get(); ok {
		if !v.IsValid() {
			return invalid("visibility", "unknown visibility %q", v)
		}
		c.Visibility = v
	}
	if v, ok := f.ReleaseYear.Get(); ok {
		if v < 0 {
			return invalid("releaseYear", "must not be negative")
		}
		c.ReleaseYear = &v
	}
	if v, ok := f.Duration.Get(); ok {
		if v < 0 {
			return invalid("duration", "must not be negative")
		}
		c.Duration = &v
	}

	if v, ok := f.Title.Get(); ok {
		c.Title = v
	}
	if v, ok := f.Category.Get(); ok {
		c.Category = v
	}
	if v, ok := f.Description.Get(); ok {
		c.Description = v
	}
	if v, ok := f.Tags.Get(); ok {
		c.Tags = ParseTags(v)
	}
	if v, ok := f.PublishDate.Get(); ok && !v.IsZero() {
		c.PublishDate = v.UTC()
	}
	return nil
}
