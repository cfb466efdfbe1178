package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/tendant/media-catalog/pkg/catalog"
)

// DefaultMaxUploadBytes caps create/update bodies when no limit is configured
const DefaultMaxUploadBytes = 512 << 20

// ContentResponse wraps a content record with a status message
type ContentResponse struct {
	Message string           `json:"message"`
	Content *catalog.Content `json:"content"`
}

// ViewResponse is returned by the view counter endpoint
type ViewResponse struct {
	Message string `json:"message"`
	Views   int64  `json:"views"`
}

// ContentHandler serves /contents, including the caller's watchlist
type ContentHandler struct {
	service        catalog.Service
	auth           *Auth
	maxUploadBytes int64
	validate       *validator.Validate
	logger         *slog.Logger
}

// NewContentHandler creates a new content handler
func NewContentHandler(service catalog.Service, auth *Auth, maxUploadBytes int64, logger *slog.Logger) *ContentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &ContentHandler{
		service:        service,
		auth:           auth,
		maxUploadBytes: maxUploadBytes,
		validate:       validator.New(),
		logger:         logger,
	}
}

// Routes returns the routes for content
func (h *ContentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListContent)
	r.Get("/{id}", h.GetContent)
	r.Post("/{id}/view", h.IncrementView)

	// Routes for the authenticated user's watchlist
	r.Group(func(r chi.Router) {
		r.Use(h.auth.Verifier())
		r.Get("/watchlist", h.ListWatchlist)
		r.Post("/watchlist", h.AddToWatchlist)
		r.Delete("/watchlist/{contentId}", h.RemoveFromWatchlist)
	})

	// Admin-only writes
	r.Group(func(r chi.Router) {
		r.Use(h.auth.Verifier(), RequireAdmin)
		r.With(RequestSizeLimit(h.maxUploadBytes)).Post("/", h.CreateContent)
		r.With(RequestSizeLimit(h.maxUploadBytes)).Put("/{id}", h.UpdateContent)
		r.Delete("/{id}", h.DeleteContent)
	})

	return r
}

// ListContent returns every content record, newest first
func (h *ContentHandler) ListContent(w http.ResponseWriter, r *http.Request) {
	contents, err := h.service.ListContent(r.Context())
	if err != nil {
		writeError(w, r, h.logger, "list content", err)
		return
	}
	render.JSON(w, r, contents)
}

// GetContent returns a single content record
func (h *ContentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contentID(w, r, "id")
	if !ok {
		return
	}
	content, err := h.service.GetContent(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, "get content", err)
		return
	}
	render.JSON(w, r, content)
}

// CreateContent accepts a multipart form with optional thumbnail and video parts
func (h *ContentHandler) CreateContent(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	defer form.Close()

	content, err := h.service.CreateContent(r.Context(), catalog.CreateContentRequest{
		Fields: form.Fields,
		Media:  form.Media,
	})
	if err != nil {
		writeError(w, r, h.logger, "create content", err)
		return
	}

	h.logger.InfoContext(r.Context(), "Content created", "content_id", content.ID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, ContentResponse{Message: "Content uploaded successfully", Content: content})
}

// UpdateContent merges provided fields and replaces media for uploaded slots
func (h *ContentHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contentID(w, r, "id")
	if !ok {
		return
	}
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	defer form.Close()

	content, err := h.service.UpdateContent(r.Context(), catalog.UpdateContentRequest{
		ID:     id,
		Fields: form.Fields,
		Media:  form.Media,
	})
	if err != nil {
		writeError(w, r, h.logger, "update content", err)
		return
	}

	render.JSON(w, r, ContentResponse{Message: "Content updated successfully", Content: content})
}

// DeleteContent removes a content record. Stored media and watchlist
// snapshots are left in place.
func (h *ContentHandler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contentID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteContent(r.Context(), id); err != nil {
		writeError(w, r, h.logger, "delete content", err)
		return
	}
	writeMessage(w, r, http.StatusOK, "Content deleted successfully")
}

// IncrementView bumps the view counter by one
func (h *ContentHandler) IncrementView(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contentID(w, r, "id")
	if !ok {
		return
	}
	content, err := h.service.IncrementView(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, "increment view", err)
		return
	}
	render.JSON(w, r, ViewResponse{Message: "View count incremented", Views: content.Views})
}

func (h *ContentHandler) parseForm(w http.ResponseWriter, r *http.Request) (*contentForm, bool) {
	form, err := parseContentForm(r)
	if err != nil {
		if errors.Is(err, errRequestTooLarge) {
			writeMessage(w, r, http.StatusRequestEntityTooLarge, "Upload too large")
			return nil, false
		}
		writeError(w, r, h.logger, "parse form", err)
		return nil, false
	}
	return form, true
}

func (h *ContentHandler) contentID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, MessageResponse{Message: "Invalid content ID", Error: raw})
		return uuid.Nil, false
	}
	return id, true
}
