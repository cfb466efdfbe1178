package catalog

import (
	"time"

	"github.com/google/uuid"
)

// ContentStatus is the domain type for content publication states.
type ContentStatus string

// Content status constants (typed).
const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
)

// IsValid reports whether s is a known content status.
func (s ContentStatus) IsValid() bool {
	switch s {
	case ContentStatusDraft, ContentStatusPublished:
		return true
	}
	return false
}

// Visibility is the domain type for who may see a content.
type Visibility string

// Visibility constants (typed).
const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// IsValid reports whether v is a known visibility.
func (v Visibility) IsValid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate:
		return true
	}
	return false
}

// UserRole distinguishes administrators from end users.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// MediaSlot names one of the two binary attachments a content carries.
type MediaSlot string

const (
	SlotThumbnail MediaSlot = "thumbnail"
	SlotVideo     MediaSlot = "video"
)

// Content represents one catalog-able media asset.
//
// ThumbnailURL and VideoURL hold blob store addresses; they are replaced only
// by a successful upload.
type Content struct {
	ID           uuid.UUID     `json:"id"`
	Title        string        `json:"title"`
	Category     string        `json:"category"`
	Description  string        `json:"description"`
	ThumbnailURL string        `json:"thumbnail"`
	VideoURL     string        `json:"video"`
	Status       ContentStatus `json:"status"`
	Visibility   Visibility    `json:"visibility"`
	Tags         []string      `json:"tags"`
	PublishDate  time.Time     `json:"publishDate"`
	ReleaseYear  *int          `json:"releaseYear,omitempty"`
	Duration     *int          `json:"duration,omitempty"` // minutes
	Views        int64         `json:"views"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// WatchlistEntry is a denormalized snapshot of a content taken when it was
// added to a watchlist. ContentID is a weak reference: the content may since
// have changed or been deleted.
type WatchlistEntry struct {
	ContentID uuid.UUID `json:"contentId"`
	Title     string    `json:"title"`
	Meta      string    `json:"meta"`
	Image     string    `json:"image"`
	AddedAt   time.Time `json:"addedAt"`
}

// User owns exactly one watchlist.
type User struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Role      UserRole         `json:"role"`
	Watchlist []WatchlistEntry `json:"watchlist"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// MediaURLs holds the resolved addresses of both media slots.
type MediaURLs struct {
	Thumbnail string `json:"thumbnail"`
	Video     string `json:"video"`
}

// Get returns the URL held for slot.
func (m MediaURLs) Get(slot MediaSlot) string {
	if slot == SlotVideo {
		return m.Video
	}
	return m.Thumbnail
}

func (m *MediaURLs) set(slot MediaSlot, url string) {
	if slot == SlotVideo {
		m.Video = url
		return
	}
	m.Thumbnail = url
}
