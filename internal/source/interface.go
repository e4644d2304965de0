package source

import (
	"context"
	"errors"

	"github.com/clipforge/clipforge/internal/domain"
)

// ErrNotSupported is returned by a Source asked about a platform it cannot serve.
var ErrNotSupported = errors.New("source does not support platform")

// VideoItem is the partial video description a single source can provide.
// Empty fields mean the source had no value for them.
type VideoItem struct {
	Title           string
	Author          string
	AuthorURL       string
	Thumbnail       string
	DurationSeconds int // 0 when unknown
	ProviderName    string
}

// Merge fills the empty fields of i from other.
func (i *VideoItem) Merge(other *VideoItem) {
	if other == nil {
		return
	}
	if i.Title == "" {
		i.Title = other.Title
	}
	if i.Author == "" {
		i.Author = other.Author
	}
	if i.AuthorURL == "" {
		i.AuthorURL = other.AuthorURL
	}
	if i.Thumbnail == "" {
		i.Thumbnail = other.Thumbnail
	}
	if i.DurationSeconds == 0 {
		i.DurationSeconds = other.DurationSeconds
	}
	if i.ProviderName == "" {
		i.ProviderName = other.ProviderName
	}
}

// IsComplete reports whether every field the result card shows is present.
func (i *VideoItem) IsComplete() bool {
	return i.Title != "" && i.Author != "" && i.Thumbnail != "" && i.DurationSeconds > 0
}

// Source defines the interface for video metadata sources.
type Source interface {
	// GetSourceID returns the unique identifier for this source.
	GetSourceID() string

	// Supports reports whether this source can describe videos of platform.
	Supports(platform domain.Platform) bool

	// Lookup describes the video at pageURL.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - platform: platform pageURL belongs to.
	//   - pageURL: normalized video page URL.
	// Returns:
	//   - *VideoItem: whatever fields the source could resolve.
	//   - error: non-nil if the lookup fails or the platform is not supported.
	Lookup(ctx context.Context, platform domain.Platform, pageURL string) (*VideoItem, error)
}
