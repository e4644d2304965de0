package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/clipforge/clipforge/internal/domain"
	"github.com/clipforge/clipforge/internal/logger"
	"github.com/clipforge/clipforge/internal/source"
	"github.com/clipforge/clipforge/internal/source/oembed"
	"github.com/clipforge/clipforge/internal/source/opengraph"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/sync/singleflight"
)

// DefaultUserAgent is sent on every outbound metadata request.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ClipForgeBot/1.0; +https://clipforge.app/about)"

// defaultLookupTimeout bounds a shared lookup that no caller is waiting on.
const defaultLookupTimeout = 30 * time.Second

// MetadataConfig holds configuration for the metadata service.
type MetadataConfig struct {
	Timeout     time.Duration
	UserAgent   string
	AccessToken string
	GraphAPIURL string
	MaxPageSize int64
}

// MetadataService resolves video URLs through a chain of sources.
// Sources are consulted in order and their answers merged until every
// displayed field is known.
type MetadataService struct {
	sources       []source.Source
	group         singleflight.Group
	sanitizer     *bluemonday.Policy
	lookupTimeout time.Duration
}

// NewMetadataService creates the default oEmbed then OpenGraph chain.
// Parameters:
//   - cfg: timeouts, user agent and Graph API credentials.
//
// Returns:
//   - *MetadataService: initialized service.
func NewMetadataService(cfg *MetadataConfig) *MetadataService {
	if cfg == nil {
		cfg = &MetadataConfig{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", userAgent)
	client.SetHeader("Accept-Language", "en-US,en;q=0.8")

	svc := NewMetadataServiceWithSources(
		oembed.NewAdapter(client, &oembed.Config{
			GraphAPIURL: cfg.GraphAPIURL,
			AccessToken: cfg.AccessToken,
		}),
		opengraph.NewAdapter(client, cfg.MaxPageSize),
	)
	// One request per source in the chain.
	svc.lookupTimeout = 2 * timeout
	return svc
}

// NewMetadataServiceWithSources creates a service over an explicit source chain.
func NewMetadataServiceWithSources(sources ...source.Source) *MetadataService {
	return &MetadataService{
		sources:   sources,
		sanitizer:     bluemonday.StrictPolicy(),
		lookupTimeout: defaultLookupTimeout,
	}
}

// Fetch resolves rawURL into video metadata.
// Concurrent calls for the same normalized URL share one lookup; nothing is
// cached once it completes. The shared lookup is detached from every caller's
// cancellation and bounded by its own timeout instead; a cancelled caller
// returns ctx.Err() without failing the others.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - rawURL: URL as typed by the user.
//
// Returns:
//   - *domain.VideoMetadata: resolved metadata, owned by the caller.
//   - error: domain.ErrInvalidURL, domain.ErrUnsupportedPlatform or *domain.FetchError.
func (s *MetadataService) Fetch(ctx context.Context, rawURL string) (*domain.VideoMetadata, error) {
	target, err := source.Detect(rawURL)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldComponent: "metadata",
		logger.FieldPlatform:  string(target.Platform),
	})

	key := target.String()
	ch := s.group.DoChan(key, func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.lookupTimeout)
		defer cancel()
		return s.lookup(lookupCtx, target)
	})

	select {
	case <-ctx.Done():
		logger.CtxDebug(ctx, "Metadata lookup abandoned: url=%s, error=%v", key, ctx.Err())
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			logger.CtxDebug(ctx, "Metadata lookup shared: url=%s", key)
		}
		meta := *res.Val.(*domain.VideoMetadata)
		return &meta, nil
	}
}

func (s *MetadataService) lookup(ctx context.Context, target *source.Target) (*domain.VideoMetadata, error) {
	start := time.Now()
	pageURL := target.String()

	item := &source.VideoItem{}
	var errs []error
	for _, src := range s.sources {
		if !src.Supports(target.Platform) {
			continue
		}
		got, err := src.Lookup(ctx, target.Platform, pageURL)
		if err != nil {
			logger.CtxDebug(ctx, "Source lookup failed: source=%s, url=%s, error=%v", src.GetSourceID(), pageURL, err)
			errs = append(errs, fmt.Errorf("%s: %w", src.GetSourceID(), err))
			continue
		}
		item.Merge(got)
		if item.IsComplete() {
			break
		}
	}

	if item.Title == "" && item.Thumbnail == "" {
		cause := errors.Join(errs...)
		if cause == nil {
			cause = fmt.Errorf("no source returned details for %s", pageURL)
		}
		logger.With(logger.Fields{
			logger.FieldURL: pageURL,
		}).Since(start).WithStatus("failed").
			Warn(ctx, "Metadata lookup failed: error=%v", cause)
		return nil, domain.NewFetchError(target.Platform, cause)
	}

	meta := s.buildMetadata(target, item)
	logger.With(logger.Fields{
		logger.FieldURL: pageURL,
	}).Since(start).WithStatus("ok").
		Info(ctx, "Metadata resolved: id=%s", meta.ID)
	return meta, nil
}

func (s *MetadataService) buildMetadata(target *source.Target, item *source.VideoItem) *domain.VideoMetadata {
	pageURL := target.String()

	id := target.VideoID
	if id == "" {
		id = uuid.NewSHA1(uuid.NameSpaceURL, []byte(pageURL)).String()
	}

	title := s.plainText(item.Title)
	if title == "" {
		title = fmt.Sprintf("%s video", target.Platform)
	}

	author := s.plainText(item.Author)
	if author == "" && target.Handle != "" {
		author = "@" + target.Handle
	}
	if author == "" {
		author = "Unknown creator"
	}

	return &domain.VideoMetadata{
		ID:          id,
		Title:       title,
		Thumbnail:   safeImageURL(item.Thumbnail),
		Duration:    FormatDuration(item.DurationSeconds),
		Platform:    target.Platform,
		Author:      author,
		OriginalURL: pageURL,
	}
}

// plainText strips any markup from remote text and leaves it unescaped;
// templates escape on output.
func (s *MetadataService) plainText(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(text)))
}

func safeImageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "https://") || strings.HasPrefix(raw, "http://") {
		return raw
	}
	return ""
}

// FormatDuration renders seconds as M:SS, or H:MM:SS for an hour or more.
// Unknown durations render as "Unknown".
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "Unknown"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	sec := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
