package catalog

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrContentNotFound indicates a content was not found
	ErrContentNotFound = errors.New("content not found")

	// ErrUserNotFound indicates a user was not found
	ErrUserNotFound = errors.New("user not found")

	// ErrAlreadyInWatchlist indicates the content is already on the user's watchlist
	ErrAlreadyInWatchlist = errors.New("content already in watchlist")

	// ErrUserExists indicates a user with the same ID is already registered
	ErrUserExists = errors.New("user already exists")

	// ErrValidation indicates malformed input
	ErrValidation = errors.New("validation failed")

	// ErrUploadFailed indicates a blob store upload failed
	ErrUploadFailed = errors.New("upload failed")
)

// ErrorKind is the caller-facing classification of a failure.
type ErrorKind string

const (
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindValidation ErrorKind = "validation_error"
	KindUpload     ErrorKind = "upload_error"
	KindServer     ErrorKind = "server_error"
)

// Kind classifies err. Anything not recognised is a server error.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrContentNotFound), errors.Is(err, ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, ErrAlreadyInWatchlist), errors.Is(err, ErrUserExists):
		return KindConflict
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrUploadFailed):
		return KindUpload
	}
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return KindUpload
	}
	return KindServer
}

// ContentError represents an error related to content operations
type ContentError struct {
	ContentID uuid.UUID
	Op        string
	Err       error
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("content operation %s failed for content %s: %v", e.Op, e.ContentID, e.Err)
}

func (e *ContentError) Unwrap() error {
	return e.Err
}

// UserError represents an error related to user and watchlist operations
type UserError struct {
	UserID uuid.UUID
	Op     string
	Err    error
}

func (e *UserError) Error() string {
	return fmt.Sprintf("user operation %s failed for user %s: %v", e.Op, e.UserID, e.Err)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// StorageError represents a failed blob store call for one media slot
type StorageError struct {
	Backend string
	Slot    MediaSlot
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for %s key %s on backend %s: %v", e.Op, e.Slot, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrUploadFailed, e.Err}
}

// ValidationError reports a malformed input field
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Err}
}

// invalid builds a ValidationError from a message.
func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Err: fmt.Errorf(format, args...)}
}
