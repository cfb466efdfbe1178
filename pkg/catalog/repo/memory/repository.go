package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/media-catalog/pkg/catalog"
)

// Repository implements catalog.Repository using in-memory storage
type Repository struct {
	mu       sync.RWMutex
	contents map[uuid.UUID]*catalog.Content
	users    map[uuid.UUID]*catalog.User
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		contents: make(map[uuid.UUID]*catalog.Content),
		users:    make(map[uuid.UUID]*catalog.User),
	}
}

// Content operations

// ListContent returns all content, newest publish date first
func (r *Repository) ListContent(ctx context.Context) ([]*catalog.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*catalog.Content, 0, len(r.contents))
	for _, content := range r.contents {
		result = append(result, copyContent(content))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].PublishDate.Equal(result[j].PublishDate) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].PublishDate.After(result[j].PublishDate)
	})

	return result, nil
}

func (r *Repository) GetContent(ctx context.Context, id uuid.UUID) (*catalog.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	content, exists := r.contents[id]
	if !exists {
		return nil, catalog.ErrContentNotFound
	}
	return copyContent(content), nil
}

// SaveContent inserts or replaces the content by ID. The view counter of an
// existing record is kept.
func (r *Repository) SaveContent(ctx context.Context, content *catalog.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyContent(content)
	if existing, exists := r.contents[content.ID]; exists {
		stored.Views = existing.Views
	}
	r.contents[content.ID] = stored
	return nil
}

func (r *Repository) DeleteContent(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contents[id]; !exists {
		return catalog.ErrContentNotFound
	}
	delete(r.contents, id)
	return nil
}

func (r *Repository) IncrementViews(ctx context.Context, id uuid.UUID) (*catalog.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	content, exists := r.contents[id]
	if !exists {
		return nil, catalog.ErrContentNotFound
	}
	content.Views++
	return copyContent(content), nil
}

// User operations

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*catalog.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, catalog.ErrUserNotFound
	}
	return copyUser(user), nil
}

func (r *Repository) CreateUser(ctx context.Context, user *catalog.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ID]; exists {
		return catalog.ErrUserExists
	}
	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *Repository) AddWatchlistEntry(ctx context.Context, userID uuid.UUID, entry catalog.WatchlistEntry) ([]catalog.WatchlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[userID]
	if !exists {
		return nil, catalog.ErrUserNotFound
	}
	for _, existing := range user.Watchlist {
		if existing.ContentID == entry.ContentID {
			return nil, catalog.ErrAlreadyInWatchlist
		}
	}

	updated := copyUser(user)
	updated.Watchlist = append(updated.Watchlist, entry)
	updated.UpdatedAt = entry.AddedAt
	r.users[userID] = updated
	return copyUser(updated).Watchlist, nil
}

func (r *Repository) RemoveWatchlistEntry(ctx context.Context, userID, contentID uuid.UUID, updatedAt time.Time) ([]catalog.WatchlistEntry, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[userID]
	if !exists {
		return nil, false, catalog.ErrUserNotFound
	}

	kept := make([]catalog.WatchlistEntry, 0, len(user.Watchlist))
	for _, entry := range user.Watchlist {
		if entry.ContentID != contentID {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(user.Watchlist) {
		return kept, false, nil
	}

	updated := copyUser(user)
	updated.Watchlist = kept
	updated.UpdatedAt = updatedAt
	r.users[userID] = updated
	return copyUser(updated).Watchlist, true, nil
}

// Copies keep callers from mutating stored records through shared slices
func copyContent(c *catalog.Content) *catalog.Content {
	out := *c
	out.Tags = append([]string{}, c.Tags...)
	if c.ReleaseYear != nil {
		v := *c.ReleaseYear
		out.ReleaseYear = &v
	}
	if c.Duration != nil {
		v := *c.Duration
		out.Duration = &v
	}
	return &out
}

func copyUser(u *catalog.User) *catalog.User {
	out := *u
	out.Watchlist = append([]catalog.WatchlistEntry{}, u.Watchlist...)
	return &out
}
