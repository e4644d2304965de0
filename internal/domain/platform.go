package domain

import (
	"fmt"
	"strings"
)

// Platform identifies the social network a video belongs to.
// Values include PlatformTikTok, PlatformInstagram, PlatformFacebook, PlatformYouTube, and PlatformTwitter.
type Platform string

const (
	PlatformTikTok    Platform = "TikTok"
	PlatformInstagram Platform = "Instagram"
	PlatformFacebook  Platform = "Facebook"
	PlatformYouTube   Platform = "YouTube"
	PlatformTwitter   Platform = "Twitter"
)

// AllPlatforms lists every platform the fetcher can report.
var AllPlatforms = []Platform{
	PlatformTikTok,
	PlatformInstagram,
	PlatformFacebook,
	PlatformYouTube,
	PlatformTwitter,
}

// SelectorPlatforms lists the platforms offered as tabs, in display order.
var SelectorPlatforms = []Platform{
	PlatformTikTok,
	PlatformInstagram,
	PlatformFacebook,
	PlatformYouTube,
}

// DefaultPlatform is the tab selected for a fresh session.
const DefaultPlatform = PlatformTikTok

// ParsePlatform resolves a platform name case-insensitively.
// Parameters:
//   - s: platform name such as "tiktok" or "YouTube".
// Returns:
//   - Platform: matching platform.
//   - error: non-nil if the name is unknown.
func ParsePlatform(s string) (Platform, error) {
	s = strings.TrimSpace(s)
	for _, p := range AllPlatforms {
		if strings.EqualFold(string(p), s) {
			return p, nil
		}
	}
	if strings.EqualFold(s, "x") {
		return PlatformTwitter, nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// IsValid reports whether p is a known platform.
func (p Platform) IsValid() bool {
	for _, known := range AllPlatforms {
		if p == known {
			return true
		}
	}
	return false
}

// IsSelectable reports whether p is shown as a selector tab.
func (p Platform) IsSelectable() bool {
	for _, known := range SelectorPlatforms {
		if p == known {
			return true
		}
	}
	return false
}

// Slug returns the lowercase identifier used in URLs and CSS classes.
func (p Platform) Slug() string {
	return strings.ToLower(string(p))
}

// Placeholder returns the URL input hint shown while p is the active tab.
func (p Platform) Placeholder() string {
	return fmt.Sprintf("Paste %s link here...", p)
}
