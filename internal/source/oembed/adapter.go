package oembed

import (
	"context"
	"fmt"
	"strings"

	"github.com/clipforge/clipforge/internal/domain"
	"github.com/clipforge/clipforge/internal/source"
	"github.com/go-resty/resty/v2"
)

const SourceID = "oembed"

// Public oEmbed endpoints. Instagram and Facebook go through the Graph API
// and need an access token.
const (
	YouTubeEndpoint = "https://www.youtube.com/oembed"
	TikTokEndpoint  = "https://www.tiktok.com/oembed"
	TwitterEndpoint = "https://publish.twitter.com/oembed"
)

// Config holds endpoint overrides and credentials for the adapter.
type Config struct {
	Endpoints   map[domain.Platform]string
	GraphAPIURL string
	AccessToken string
}

// Adapter implements the Source interface on top of oEmbed providers.
type Adapter struct {
	client      *resty.Client
	endpoints   map[domain.Platform]string
	accessToken string
}

// NewAdapter creates an oEmbed adapter sharing client.
// Parameters:
//   - client: HTTP client carrying timeouts and user agent.
//   - cfg: endpoint overrides; nil uses the public endpoints only.
// Returns:
//   - *Adapter: initialized adapter.
func NewAdapter(client *resty.Client, cfg *Config) *Adapter {
	endpoints := map[domain.Platform]string{
		domain.PlatformYouTube: YouTubeEndpoint,
		domain.PlatformTikTok:  TikTokEndpoint,
		domain.PlatformTwitter: TwitterEndpoint,
	}
	a := &Adapter{client: client, endpoints: endpoints}
	if cfg == nil {
		return a
	}

	if cfg.AccessToken != "" && cfg.GraphAPIURL != "" {
		graph := strings.TrimSuffix(cfg.GraphAPIURL, "/")
		endpoints[domain.PlatformInstagram] = graph + "/instagram_oembed"
		endpoints[domain.PlatformFacebook] = graph + "/oembed_video"
		a.accessToken = cfg.AccessToken
	}
	for p, e := range cfg.Endpoints {
		endpoints[p] = e
	}
	return a
}

// GetSourceID returns the unique identifier for this source
func (a *Adapter) GetSourceID() string {
	return SourceID
}

// Supports reports whether an endpoint is configured for platform.
func (a *Adapter) Supports(platform domain.Platform) bool {
	_, ok := a.endpoints[platform]
	return ok
}

type oembedResponse struct {
	Type         string `json:"type"`
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	AuthorURL    string `json:"author_url"`
	ProviderName string `json:"provider_name"`
	ThumbnailURL string `json:"thumbnail_url"`
	// Graph API errors
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Lookup queries the platform's oEmbed endpoint for pageURL.
func (a *Adapter) Lookup(ctx context.Context, platform domain.Platform, pageURL string) (*source.VideoItem, error) {
	endpoint, ok := a.endpoints[platform]
	if !ok {
		return nil, source.ErrNotSupported
	}

	params := map[string]string{
		"url":    pageURL,
		"format": "json",
	}
	switch platform {
	case domain.PlatformTwitter:
		params["omit_script"] = "true"
	case domain.PlatformInstagram, domain.PlatformFacebook:
		if a.accessToken != "" {
			params["access_token"] = a.accessToken
		}
	}

	var resp oembedResponse
	httpResp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetHeader("Accept", "application/json").
		SetResult(&resp).
		SetError(&resp).
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to call oEmbed endpoint: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		if resp.Error != nil {
			return nil, fmt.Errorf("oEmbed endpoint returned HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		}
		return nil, fmt.Errorf("oEmbed endpoint returned HTTP %d", httpResp.StatusCode())
	}

	if resp.Title == "" && resp.AuthorName == "" && resp.ThumbnailURL == "" {
		return nil, fmt.Errorf("oEmbed response for %s carried no metadata", pageURL)
	}

	return &source.VideoItem{
		Title:        resp.Title,
		Author:       resp.AuthorName,
		AuthorURL:    resp.AuthorURL,
		Thumbnail:    resp.ThumbnailURL,
		ProviderName: resp.ProviderName,
	}, nil
}
