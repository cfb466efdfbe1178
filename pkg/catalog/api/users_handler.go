package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/tendant/media-catalog/pkg/catalog"
)

// CreateUserRequest is the request body for provisioning a user
type CreateUserRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"omitempty,email"`
	Role  string `json:"role" validate:"omitempty,oneof=user admin"`
}

// UserHandler provisions the users watchlists hang off
type UserHandler struct {
	service  catalog.Service
	auth     *Auth
	validate *validator.Validate
	logger   *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(service catalog.Service, auth *Auth, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		service:  service,
		auth:     auth,
		validate: validator.New(),
		logger:   logger,
	}
}

// Routes returns the routes for users
func (h *UserHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.auth.Verifier())

	r.Get("/me", h.GetCurrentUser)
	r.With(RequireAdmin).Post("/", h.CreateUser)

	return r
}

// CreateUser registers a user; admins only
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.logger, "create user", badRequest("body", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, h.logger, "create user", badRequest("user", err))
		return
	}

	var id uuid.UUID
	if req.ID != "" {
		parsed, err := uuid.Parse(req.ID)
		if err != nil {
			writeError(w, r, h.logger, "create user", badRequest("id", err))
			return
		}
		id = parsed
	}

	user, err := h.service.CreateUser(r.Context(), catalog.CreateUserRequest{
		ID:    id,
		Name:  req.Name,
		Email: req.Email,
		Role:  catalog.UserRole(req.Role),
	})
	if err != nil {
		writeError(w, r, h.logger, "create user", err)
		return
	}

	h.logger.InfoContext(r.Context(), "User created", "user_id", user.ID, "role", user.Role)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, user)
}

// GetCurrentUser returns the caller's user record
func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	id, err := UserIDFromContext(r.Context())
	if err != nil {
		writeMessage(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}
	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, "get user", err)
		return
	}
	render.JSON(w, r, user)
}
