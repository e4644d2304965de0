package service

import (
	"context"

	"github.com/clipforge/clipforge/internal/domain"
)

// MetadataFetcher resolves a user-supplied URL into video metadata.
// Failures should be *domain.FetchError or one of the domain URL errors so
// their message can be shown to the user as is.
type MetadataFetcher interface {
	Fetch(ctx context.Context, url string) (*domain.VideoMetadata, error)
}

// CaptionGenerator produces promotional copy for a video.
type CaptionGenerator interface {
	Generate(ctx context.Context, platform domain.Platform, url string) (*domain.CaptionAnalysis, error)
}
