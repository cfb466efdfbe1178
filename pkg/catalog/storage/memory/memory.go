package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/tendant/media-catalog/pkg/catalog"
)

// DefaultBaseURL prefixes the addresses returned by the in-memory backend
const DefaultBaseURL = "memory://"

var errObjectNotFound = errors.New("object not found")

// Backend is an in-memory implementation of the catalog.BlobStore interface
type Backend struct {
	mu              sync.RWMutex
	baseURL         string
	objects         map[string][]byte
	objectsMimeType map[string]string
}

// New creates a new in-memory storage backend
func New() *Backend {
	return NewWithBaseURL(DefaultBaseURL)
}

// NewWithBaseURL creates a backend whose addresses start with baseURL
func NewWithBaseURL(baseURL string) *Backend {
	return &Backend{
		baseURL:         baseURL,
		objects:         make(map[string][]byte),
		objectsMimeType: make(map[string]string),
	}
}

// Upload stores the payload and returns its address
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params catalog.UploadParams) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}

	mimeType := params.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[params.ObjectKey] = data
	b.objectsMimeType[params.ObjectKey] = mimeType
	return b.url(params.ObjectKey), nil
}

// Delete deletes content
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return errObjectNotFound
	}

	delete(b.objects, objectKey)
	delete(b.objectsMimeType, objectKey)
	return nil
}

// Object returns a stored payload and its MIME type
func (b *Backend) Object(objectKey string) ([]byte, string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey]
	if !exists {
		return nil, "", false
	}
	return append([]byte(nil), data...), b.objectsMimeType[objectKey], true
}

// Keys returns the keys of all stored objects
func (b *Backend) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		keys = append(keys, k)
	}
	return keys
}

func (b *Backend) url(objectKey string) string {
	if strings.HasSuffix(b.baseURL, "/") {
		return b.baseURL + objectKey
	}
	return b.baseURL + "/" + objectKey
}
