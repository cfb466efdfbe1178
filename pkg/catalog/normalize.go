package catalog

import (
	"strconv"
	"strings"
)

// ParseTags splits a comma-delimited tag list into trimmed tags, keeping
// their order. Empty items are dropped, so malformed input such as ",, ,"
// yields an empty, non-nil slice.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// WatchlistMeta builds the display line of a watchlist entry, e.g.
// "2021 • Action • 120m". Parts the content lacks are left out.
func WatchlistMeta(c *Content) string {
	var parts []string
	if c.ReleaseYear != nil {
		parts = append(parts, strconv.Itoa(*c.ReleaseYear))
	}
	if c.Category != "" {
		parts = append(parts, c.Category)
	}
	if c.Duration != nil {
		parts = append(parts, strconv.Itoa(*c.Duration)+"m")
	}
	return strings.Join(parts, " • ")
}
