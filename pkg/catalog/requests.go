package catalog

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// FilePayload is one uploaded media file
type FilePayload struct {
	FileName string
	MimeType string
	Size     int64
	Reader   io.Reader
}

// MediaUploads holds the candidate uploads for each media slot. A nil slot
// keeps the existing address.
type MediaUploads struct {
	Thumbnail *FilePayload
	Video     *FilePayload
}

// Get returns the payload supplied for slot, or nil.
func (m MediaUploads) Get(slot MediaSlot) *FilePayload {
	if slot == SlotVideo {
		return m.Video
	}
	return m.Thumbnail
}

// ContentFields carries the metadata fields of a create or update. Unset
// fields keep their stored value on update and their default on create.
type ContentFields struct {
	Title       Optional[string]
	Category    Optional[string]
	Description Optional[string]
	Status      Optional[ContentStatus]
	Visibility  Optional[Visibility]
	// Tags is the raw comma-delimited tag list
	Tags        Optional[string]
	PublishDate Optional[time.Time]
	ReleaseYear Optional[int]
	Duration    Optional[int]
}

// CreateContentRequest contains parameters for creating new content
type CreateContentRequest struct {
	Fields ContentFields
	Media  MediaUploads
}

// UpdateContentRequest contains parameters for updating content
type UpdateContentRequest struct {
	ID     uuid.UUID
	Fields ContentFields
	Media  MediaUploads
}

// CreateUserRequest contains parameters for registering a user. A nil ID is
// replaced by a generated one.
type CreateUserRequest struct {
	ID    uuid.UUID
	Name  string
	Email string
	Role  UserRole
}
