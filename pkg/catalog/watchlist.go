package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Watchlist operations
//
// A watchlist lives inside its User record. Adds and removes go through the
// repository's atomic watchlist writes so concurrent calls for one user
// never overwrite each other.

func (s *service) ListWatchlist(ctx context.Context, userID uuid.UUID) ([]WatchlistEntry, error) {
	user, err := s.repository.GetUser(ctx, userID)
	if err != nil {
		return nil, &UserError{UserID: userID, Op: "list_watchlist", Err: err}
	}
	return cloneWatchlist(user.Watchlist), nil
}

func (s *service) AddToWatchlist(ctx context.Context, userID, contentID uuid.UUID) ([]WatchlistEntry, error) {
	// Unknown users are reported before unknown content
	if _, err := s.repository.GetUser(ctx, userID); err != nil {
		return nil, &UserError{UserID: userID, Op: "add_watchlist", Err: err}
	}

	content, err := s.repository.GetContent(ctx, contentID)
	if err != nil {
		return nil, &ContentError{ContentID: contentID, Op: "add_watchlist", Err: err}
	}

	watchlist, err := s.repository.AddWatchlistEntry(ctx, userID, WatchlistEntry{
		ContentID: content.ID,
		Title:     content.Title,
		Meta:      WatchlistMeta(content),
		Image:     content.ThumbnailURL,
		AddedAt:   s.now(),
	})
	if err != nil {
		return nil, &UserError{UserID: userID, Op: "add_watchlist", Err: err}
	}
	s.watchlistChanged(ctx, userID, watchlist)

	return cloneWatchlist(watchlist), nil
}

// RemoveFromWatchlist drops every entry for contentID. Removing an absent
// content is a no-op and does not write the user.
func (s *service) RemoveFromWatchlist(ctx context.Context, userID, contentID uuid.UUID) ([]WatchlistEntry, error) {
	watchlist, removed, err := s.repository.RemoveWatchlistEntry(ctx, userID, contentID, s.now())
	if err != nil {
		return nil, &UserError{UserID: userID, Op: "remove_watchlist", Err: err}
	}
	if removed {
		s.watchlistChanged(ctx, userID, watchlist)
	}
	return cloneWatchlist(watchlist), nil
}

// User operations

func (s *service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	role := req.Role
	if role == "" {
		role = RoleUser
	}
	if role != RoleUser && role != RoleAdmin {
		return nil, invalid("role", "unknown role %q", role)
	}

	id := req.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	now := s.now()
	user := &User{
		ID:        id,
		Name:      req.Name,
		Email:     req.Email,
		Role:      role,
		Watchlist: []WatchlistEntry{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repository.CreateUser(ctx, user); err != nil {
		return nil, &UserError{UserID: id, Op: "create", Err: err}
	}
	return user, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.repository.GetUser(ctx, id)
	if err != nil {
		return nil, &UserError{UserID: id, Op: "get", Err: err}
	}
	if user.Watchlist == nil {
		user.Watchlist = []WatchlistEntry{}
	}
	return user, nil
}

func (s *service) watchlistChanged(ctx context.Context, userID uuid.UUID, watchlist []WatchlistEntry) {
	if err := s.eventSink.WatchlistChanged(ctx, userID, cloneWatchlist(watchlist)); err != nil {
		s.logger.WarnContext(ctx, "Event sink failed", "event", "watchlist_changed", "user_id", userID, "error", err)
	}
}

func cloneWatchlist(entries []WatchlistEntry) []WatchlistEntry {
	out := make([]WatchlistEntry, len(entries))
	copy(out, entries)
	return out
}
