package catalog

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// BlobStore defines the interface for media storage backends
type BlobStore interface {
	// Upload stores the payload under params.ObjectKey and returns its durable
	// retrievable address
	Upload(ctx context.Context, reader io.Reader, params UploadParams) (string, error)

	// Delete removes an object; used for best-effort cleanup of uploads that
	// were never committed to the catalog
	Delete(ctx context.Context, objectKey string) error
}

// UploadParams contains parameters for uploading an object
type UploadParams struct {
	ObjectKey string
	MimeType  string
	Size      int64
}

// Repository defines the interface for content and user persistence.
// Each method is atomic for a single record; there are no multi-record
// transactions.
type Repository interface {
	// Content operations
	ListContent(ctx context.Context) ([]*Content, error)
	GetContent(ctx context.Context, id uuid.UUID) (*Content, error)
	// SaveContent inserts or replaces by ID; it never overwrites the views
	// of an existing record
	SaveContent(ctx context.Context, content *Content) error
	DeleteContent(ctx context.Context, id uuid.UUID) error
	// IncrementViews adds one to the content's views atomically and returns
	// the updated record
	IncrementViews(ctx context.Context, id uuid.UUID) (*Content, error)

	// User operations
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	// AddWatchlistEntry appends entry to the user's watchlist unless an entry
	// for the same content is already there (ErrAlreadyInWatchlist). The check
	// and the append are one atomic write; the resulting watchlist is returned.
	AddWatchlistEntry(ctx context.Context, userID uuid.UUID, entry WatchlistEntry) ([]WatchlistEntry, error)
	// RemoveWatchlistEntry drops every entry for contentID in one atomic write.
	// removed is false, and nothing is written, when the content was absent.
	RemoveWatchlistEntry(ctx context.Context, userID, contentID uuid.UUID, updatedAt time.Time) (watchlist []WatchlistEntry, removed bool, err error)
}

// EventSink defines the interface for lifecycle notifications
type EventSink interface {
	// ContentCreated is fired when content is created
	ContentCreated(ctx context.Context, content *Content) error

	// ContentUpdated is fired when content is updated
	ContentUpdated(ctx context.Context, content *Content) error

	// ContentDeleted is fired when content is deleted
	ContentDeleted(ctx context.Context, contentID uuid.UUID) error

	// WatchlistChanged is fired after a watchlist add or remove is persisted
	WatchlistChanged(ctx context.Context, userID uuid.UUID, watchlist []WatchlistEntry) error
}
