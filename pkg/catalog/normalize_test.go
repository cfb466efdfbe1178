package catalog

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestParseTags(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"x, y", []string{"x", "y"}},
		{"  drama ,comedy,", []string{"drama", "comedy"}},
		{"", []string{}},
		{",, ,", []string{}},
		{"single", []string{"single"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTags(tt.raw))
		})
	}
}

func TestWatchlistMeta(t *testing.T) {
	tests := []struct {
		name    string
		content Content
		want    string
	}{
		{"all parts", Content{ReleaseYear: intPtr(2021), Category: "Action", Duration: intPtr(120)}, "2021 • Action • 120m"},
		{"no year", Content{Category: "Action", Duration: intPtr(90)}, "Action • 90m"},
		{"category only", Content{Category: "Docs"}, "Docs"},
		{"nothing", Content{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WatchlistMeta(&tt.content))
		})
	}
}

func TestOptional(t *testing.T) {
	o := None[string]()
	assert.False(t, o.IsSet())
	assert.Equal(t, "fallback", o.Or("fallback"))

	o = Some("")
	v, ok := o.Get()
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestKind(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ""},
		{"content not found", &ContentError{ContentID: id, Op: "get", Err: ErrContentNotFound}, KindNotFound},
		{"user not found", &UserError{UserID: id, Op: "get", Err: ErrUserNotFound}, KindNotFound},
		{"duplicate", &UserError{UserID: id, Op: "add_watchlist", Err: ErrAlreadyInWatchlist}, KindConflict},
		{"validation", invalid("status", "bad"), KindValidation},
		{"storage", &StorageError{Slot: SlotVideo, Err: errors.New("timeout")}, KindUpload},
		{"wrapped storage", fmt.Errorf("create: %w", &StorageError{Err: errors.New("x")}), KindUpload},
		{"other", errors.New("boom"), KindServer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}
