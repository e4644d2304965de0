package domain

import "time"

// VideoMetadata describes a video resolved from a user-supplied URL.
// It is immutable once fetched.
type VideoMetadata struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Thumbnail   string   `json:"thumbnail"`
	Duration    string   `json:"duration"`
	Platform    Platform `json:"platform"`
	Author      string   `json:"author"`
	OriginalURL string   `json:"originalUrl"`
}

// CaptionAnalysis is an AI-generated promotional caption for a video.
type CaptionAnalysis struct {
	ViralCaption string   `json:"viralCaption"`
	Hashtags     []string `json:"hashtags"`
	Summary      string   `json:"summary"`

	// Platform and SourceURL record what the caption was generated for.
	Platform  Platform `json:"platform"`
	SourceURL string   `json:"sourceUrl"`
}

// Result pairs fetched metadata with an optional caption.
// Caption is nil when caption generation failed.
type Result struct {
	ID        string           `json:"id"`
	Metadata  VideoMetadata    `json:"metadata"`
	Caption   *CaptionAnalysis `json:"caption,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// HasCaption reports whether a caption is attached.
func (r *Result) HasCaption() bool {
	return r != nil && r.Caption != nil
}

// Matches reports whether c describes the same platform as the result's metadata.
func (r *Result) Matches(c *CaptionAnalysis) bool {
	if r == nil || c == nil {
		return false
	}
	return c.Platform == "" || c.Platform == r.Metadata.Platform
}

// WithCaption returns a copy of r carrying caption c. Metadata is shared unchanged.
func (r *Result) WithCaption(c *CaptionAnalysis) *Result {
	next := *r
	next.Caption = c
	return &next
}
