package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the main interface for the media catalog
type Service interface {
	// Content operations
	ListContent(ctx context.Context) ([]*Content, error)
	GetContent(ctx context.Context, id uuid.UUID) (*Content, error)
	CreateContent(ctx context.Context, req CreateContentRequest) (*Content, error)
	UpdateContent(ctx context.Context, req UpdateContentRequest) (*Content, error)
	DeleteContent(ctx context.Context, id uuid.UUID) error
	IncrementView(ctx context.Context, id uuid.UUID) (*Content, error)

	// Watchlist operations
	ListWatchlist(ctx context.Context, userID uuid.UUID) ([]WatchlistEntry, error)
	AddToWatchlist(ctx context.Context, userID, contentID uuid.UUID) ([]WatchlistEntry, error)
	RemoveFromWatchlist(ctx context.Context, userID, contentID uuid.UUID) ([]WatchlistEntry, error)

	// User operations
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
}
