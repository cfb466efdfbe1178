package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/media-catalog/pkg/catalog"
)

// AddToWatchlistRequest is the request body for adding a content to the watchlist
type AddToWatchlistRequest struct {
	ContentID string `json:"contentId" validate:"required"`
}

// WatchlistResponse is returned by watchlist writes
type WatchlistResponse struct {
	Message   string                   `json:"message"`
	Watchlist []catalog.WatchlistEntry `json:"watchlist"`
}

// ListWatchlist returns the caller's watchlist in insertion order
func (h *ContentHandler) ListWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	entries, err := h.service.ListWatchlist(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, "list watchlist", err)
		return
	}
	render.JSON(w, r, entries)
}

// AddToWatchlist snapshots a content onto the caller's watchlist
func (h *ContentHandler) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req AddToWatchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.logger, "add to watchlist", badRequest("body", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, h.logger, "add to watchlist", badRequest("contentId", err))
		return
	}
	contentID, err := uuid.Parse(req.ContentID)
	if err != nil {
		writeError(w, r, h.logger, "add to watchlist", badRequest("contentId", err))
		return
	}

	entries, err := h.service.AddToWatchlist(r.Context(), userID, contentID)
	if err != nil {
		writeError(w, r, h.logger, "add to watchlist", err)
		return
	}
	render.JSON(w, r, WatchlistResponse{Message: "Added to watchlist", Watchlist: entries})
}

// RemoveFromWatchlist drops every entry for the content. Removing an entry
// that is not there succeeds.
func (h *ContentHandler) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	contentID, ok := h.contentID(w, r, "contentId")
	if !ok {
		return
	}

	entries, err := h.service.RemoveFromWatchlist(r.Context(), userID, contentID)
	if err != nil {
		writeError(w, r, h.logger, "remove from watchlist", err)
		return
	}
	render.JSON(w, r, WatchlistResponse{Message: "Removed from watchlist", Watchlist: entries})
}

func (h *ContentHandler) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := UserIDFromContext(r.Context())
	if err != nil {
		writeMessage(w, r, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	return id, true
}
