package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/media-catalog/pkg/catalog"
)

// MessageResponse is the body of every non-list response
type MessageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, MessageResponse{Message: message})
}

// writeError maps err onto a status code. Server errors are logged and
// answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, op string, err error) {
	switch catalog.Kind(err) {
	case catalog.KindNotFound:
		message := "Not found"
		switch {
		case errors.Is(err, catalog.ErrContentNotFound):
			message = "Content not found"
		case errors.Is(err, catalog.ErrUserNotFound):
			message = "User not found"
		}
		writeMessage(w, r, http.StatusNotFound, message)

	case catalog.KindConflict:
		message := "Conflict"
		switch {
		case errors.Is(err, catalog.ErrAlreadyInWatchlist):
			message = "Content already in watchlist"
		case errors.Is(err, catalog.ErrUserExists):
			message = "User already exists"
		}
		writeMessage(w, r, http.StatusConflict, message)

	case catalog.KindValidation:
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, MessageResponse{Message: "Invalid request", Error: validationMessage(err)})

	case catalog.KindUpload:
		logger.ErrorContext(r.Context(), "Media upload failed", "op", op, "error", err)
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, MessageResponse{Message: "Upload failed", Error: uploadMessage(err)})

	default:
		logger.ErrorContext(r.Context(), "Request failed", "op", op, "error", err)
		writeMessage(w, r, http.StatusInternalServerError, "Server error")
	}
}

func validationMessage(err error) string {
	var ve *catalog.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return err.Error()
}

// uploadMessage names the failed media slot without backend details
func uploadMessage(err error) string {
	var se *catalog.StorageError
	if errors.As(err, &se) && se.Slot != "" {
		return fmt.Sprintf("%s upload failed", se.Slot)
	}
	return ""
}

func badRequest(field string, err error) error {
	return &catalog.ValidationError{Field: field, Err: err}
}
