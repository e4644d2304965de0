package source

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/clipforge/clipforge/internal/domain"
)

// platformHosts maps registrable domains to platforms. Subdomains match too.
var platformHosts = map[string]domain.Platform{
	"tiktok.com":           domain.PlatformTikTok,
	"instagram.com":        domain.PlatformInstagram,
	"instagr.am":           domain.PlatformInstagram,
	"facebook.com":         domain.PlatformFacebook,
	"fb.watch":             domain.PlatformFacebook,
	"fb.com":               domain.PlatformFacebook,
	"youtube.com":          domain.PlatformYouTube,
	"youtu.be":             domain.PlatformYouTube,
	"youtube-nocookie.com": domain.PlatformYouTube,
	"twitter.com":          domain.PlatformTwitter,
	"x.com":                domain.PlatformTwitter,
}

// Target is a user-supplied URL resolved to a platform.
type Target struct {
	Platform domain.Platform
	URL      *url.URL
	VideoID  string // empty when the URL shape carries no id (short links)
	Handle   string // account name found in the path, without "@"
}

// String returns the normalized URL.
func (t *Target) String() string {
	return t.URL.String()
}

// Detect parses raw and resolves its platform.
// Parameters:
//   - raw: user input; a missing scheme defaults to https.
// Returns:
//   - *Target: normalized URL with platform and ids.
//   - error: domain.ErrInvalidURL or domain.ErrUnsupportedPlatform.
func Detect(raw string) (*Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, " \t\n") {
		return nil, domain.ErrInvalidURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, domain.ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, domain.ErrInvalidURL
	}

	host := strings.ToLower(u.Hostname())
	if !strings.Contains(host, ".") {
		return nil, domain.ErrInvalidURL
	}

	platform, ok := matchHost(host)
	if !ok {
		return nil, domain.ErrUnsupportedPlatform
	}

	u.Scheme = "https"
	u.Host = host
	u.Fragment = ""

	t := &Target{Platform: platform, URL: u}
	t.VideoID, t.Handle = extractIDs(platform, u)
	return t, nil
}

func matchHost(host string) (domain.Platform, bool) {
	for d, p := range platformHosts {
		if host == d || strings.HasSuffix(host, "."+d) {
			return p, true
		}
	}
	return "", false
}

var (
	tiktokVideoPath   = regexp.MustCompile(`^/@([^/]+)/(?:video|photo)/(\d+)`)
	instagramPostPath = regexp.MustCompile(`^/(?:[^/]+/)?(?:p|reel|reels|tv)/([A-Za-z0-9_-]+)`)
	facebookVideoPath = regexp.MustCompile(`^/(?:([^/]+)/videos/(?:[^/]+/)?|reel/)(\d+)`)
	twitterStatusPath = regexp.MustCompile(`^/([^/]+)/status(?:es)?/(\d+)`)
	youtubePathID     = regexp.MustCompile(`^/(?:shorts|embed|live|v)/([A-Za-z0-9_-]{6,})`)
)

// extractIDs pulls the platform video id and account handle out of u.
func extractIDs(platform domain.Platform, u *url.URL) (videoID, handle string) {
	path := u.EscapedPath()

	switch platform {
	case domain.PlatformYouTube:
		if strings.HasSuffix(u.Hostname(), "youtu.be") {
			return strings.Trim(path, "/"), ""
		}
		if v := u.Query().Get("v"); v != "" {
			return v, ""
		}
		if m := youtubePathID.FindStringSubmatch(path); m != nil {
			return m[1], ""
		}
		if strings.HasPrefix(path, "/@") {
			return "", strings.TrimPrefix(strings.SplitN(path[1:], "/", 2)[0], "@")
		}
	case domain.PlatformTikTok:
		if m := tiktokVideoPath.FindStringSubmatch(path); m != nil {
			return m[2], m[1]
		}
		if strings.HasPrefix(path, "/@") {
			return "", strings.TrimPrefix(strings.SplitN(path[1:], "/", 2)[0], "@")
		}
	case domain.PlatformInstagram:
		if m := instagramPostPath.FindStringSubmatch(path); m != nil {
			return m[1], ""
		}
	case domain.PlatformFacebook:
		if v := u.Query().Get("v"); v != "" {
			return v, ""
		}
		if m := facebookVideoPath.FindStringSubmatch(path); m != nil {
			return m[2], m[1]
		}
		if strings.HasSuffix(u.Hostname(), "fb.watch") {
			return strings.Trim(path, "/"), ""
		}
	case domain.PlatformTwitter:
		if m := twitterStatusPath.FindStringSubmatch(path); m != nil {
			return m[2], m[1]
		}
	}
	return "", ""
}
