package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clipforge/clipforge/internal/domain"
	"github.com/clipforge/clipforge/internal/logger"
	"github.com/clipforge/clipforge/internal/session"
	"github.com/google/uuid"
)

// errSuperseded stops a workflow whose submission is no longer current.
var errSuperseded = errors.New("submission superseded")

// DownloadService drives the download workflow for visitor sessions.
// Metadata is required; the caption is best-effort and its failure never
// fails a submission.
type DownloadService struct {
	fetcher  MetadataFetcher
	captions CaptionGenerator
	sessions session.Store
}

// NewDownloadService creates a new download service.
// Parameters:
//   - fetcher: resolves URLs into video metadata.
//   - captions: generates captions for resolved videos.
//   - sessions: per-visitor state store; may be nil when only Process is used.
//
// Returns:
//   - *DownloadService: initialized service.
func NewDownloadService(fetcher MetadataFetcher, captions CaptionGenerator, sessions session.Store) *DownloadService {
	return &DownloadService{
		fetcher:  fetcher,
		captions: captions,
		sessions: sessions,
	}
}

// Process runs one workflow outside of any session.
// Unlike Submit there is no session to leave untouched, so blank input is
// reported as domain.ErrInvalidURL.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - rawURL: URL as typed by the user.
//
// Returns:
//   - *domain.Result: metadata with an optional caption.
//   - error: the metadata failure; use domain.UserMessage for display.
func (s *DownloadService) Process(ctx context.Context, rawURL string) (*domain.Result, error) {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return nil, domain.ErrInvalidURL
	}
	return s.run(ctx, url, nil)
}

// run fetches metadata, calls onMetadata, then generates the caption.
// A false return from onMetadata abandons the workflow with errSuperseded.
func (s *DownloadService) run(ctx context.Context, url string, onMetadata func(*domain.VideoMetadata) bool) (*domain.Result, error) {
	meta, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if onMetadata != nil && !onMetadata(meta) {
		return nil, errSuperseded
	}

	result := &domain.Result{
		ID:        uuid.New().String(),
		Metadata:  *meta,
		CreatedAt: time.Now(),
	}
	if caption := s.generateCaption(ctx, meta.Platform, url); caption != nil {
		if result.Matches(caption) {
			result.Caption = caption
		} else {
			logger.CtxWarn(ctx, "Caption platform mismatch dropped: metadata=%s, caption=%s",
				meta.Platform, caption.Platform)
		}
	}
	return result, nil
}

// generateCaption returns nil when generation fails; the failure is logged only.
func (s *DownloadService) generateCaption(ctx context.Context, platform domain.Platform, url string) *domain.CaptionAnalysis {
	if s.captions == nil {
		return nil
	}
	start := time.Now()
	caption, err := s.captions.Generate(ctx, platform, url)
	entry := logger.With(logger.Fields{
		logger.FieldPlatform: string(platform),
	}).Since(start)
	if err == nil && caption == nil {
		err = errors.New("empty caption")
	}
	if err != nil {
		entry.WithStatus("failed").Warn(ctx, "Caption generation failed: url=%q, error=%v", url, err)
		return nil
	}
	entry.WithStatus("ok").Debug(ctx, "Caption generated: hashtags=%d", len(caption.Hashtags))
	return caption
}

// State returns the session, creating a fresh one if it does not exist yet.
func (s *DownloadService) State(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.sessions.Update(ctx, sessionID, func(*domain.Session) error {
		return session.ErrNoChange
	})
}

// Submit runs the workflow for rawURL on behalf of a session.
// Whitespace-only input leaves the session untouched. A metadata failure is
// recorded on the session, not returned; the error is only for store failures.
// Overlapping submissions are last-write-wins: a completion is applied only if
// no newer submission started meanwhile. Once started, a submission always
// settles, even if ctx is cancelled; the store writes run detached from it.
func (s *DownloadService) Submit(ctx context.Context, sessionID, rawURL string) (*domain.Session, error) {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return s.State(ctx, sessionID)
	}

	var gen uint64
	if _, err := s.sessions.Update(ctx, sessionID, func(sess *domain.Session) error {
		gen = sess.BeginSubmit(url)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to start submission: %w", err)
	}

	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldSessionID:  sessionID,
		logger.FieldGeneration: gen,
		logger.FieldComponent:  "download",
	})
	storeCtx := context.WithoutCancel(ctx)
	start := time.Now()
	logger.CtxInfo(ctx, "Submission started: url=%q", url)

	var storeErr error
	result, err := s.run(ctx, url, func(meta *domain.VideoMetadata) bool {
		current := false
		_, storeErr = s.sessions.Update(storeCtx, sessionID, func(sess *domain.Session) error {
			current = sess.MetadataResolved(gen, meta.Platform)
			if !current {
				return session.ErrNoChange
			}
			return nil
		})
		return storeErr == nil && current
	})

	switch {
	case storeErr != nil:
		return nil, fmt.Errorf("failed to record metadata: %w", storeErr)
	case errors.Is(err, errSuperseded):
		logger.CtxDebug(ctx, "Submission superseded before captioning")
		return s.State(storeCtx, sessionID)
	case err != nil:
		message := domain.UserMessage(err)
		logger.With(logger.Fields{logger.FieldURL: url}).
			Since(start).WithStatus("failed").
			Info(ctx, "Submission failed: error=%v", err)
		return s.settle(storeCtx, sessionID, func(sess *domain.Session) bool {
			return sess.FailSubmit(gen, message)
		})
	}

	logger.With(logger.Fields{
		logger.FieldURL:      url,
		logger.FieldPlatform: string(result.Metadata.Platform),
	}).Since(start).WithStatus("complete").
		Info(ctx, "Submission complete: video=%s, caption=%t", result.Metadata.ID, result.HasCaption())
	return s.settle(storeCtx, sessionID, func(sess *domain.Session) bool {
		return sess.CompleteSubmit(gen, result)
	})
}

// settle applies a completion; stale completions leave the session untouched.
func (s *DownloadService) settle(ctx context.Context, sessionID string, apply func(*domain.Session) bool) (*domain.Session, error) {
	sess, err := s.sessions.Update(ctx, sessionID, func(sess *domain.Session) error {
		if !apply(sess) {
			return session.ErrNoChange
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to settle submission: %w", err)
	}
	return sess, nil
}

// RegenerateCaption asks for a new caption for the session's current result.
// urlField, when not blank, replaces the session URL field first. Without a
// result this is a no-op. A failed or cancelled generation keeps the current
// result and always clears the regenerating flag.
func (s *DownloadService) RegenerateCaption(ctx context.Context, sessionID, urlField string) (*domain.Session, error) {
	urlField = strings.TrimSpace(urlField)

	var (
		ticket domain.RegenerationTicket
		ok     bool
	)
	sess, err := s.sessions.Update(ctx, sessionID, func(sess *domain.Session) error {
		ok = false
		if sess.Result == nil {
			return session.ErrNoChange
		}
		if urlField != "" {
			sess.URL = urlField
		}
		ticket, ok = sess.BeginRegenerate()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start regeneration: %w", err)
	}
	if !ok {
		return sess, nil
	}

	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldSessionID: sessionID,
		logger.FieldComponent: "regenerate",
	})
	caption := s.generateCaption(ctx, ticket.Platform, ticket.URL)

	applied := false
	sess, err = s.sessions.Update(context.WithoutCancel(ctx), sessionID, func(sess *domain.Session) error {
		applied = sess.CompleteRegenerate(ticket, caption)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to settle regeneration: %w", err)
	}
	if caption != nil && !applied {
		logger.CtxDebug(ctx, "Regenerated caption discarded: result=%s", ticket.ResultID)
	}
	return sess, nil
}

// Dismiss closes the result card and clears the URL field.
func (s *DownloadService) Dismiss(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.sessions.Update(ctx, sessionID, func(sess *domain.Session) error {
		sess.Dismiss()
		return nil
	})
}

// SelectTab changes the active platform tab.
// Returns domain.ErrPlatformNotSelectable for platforms without a tab.
func (s *DownloadService) SelectTab(ctx context.Context, sessionID string, platform domain.Platform) (*domain.Session, error) {
	if !platform.IsSelectable() {
		return nil, fmt.Errorf("%w: %q", domain.ErrPlatformNotSelectable, platform)
	}
	return s.sessions.Update(ctx, sessionID, func(sess *domain.Session) error {
		return sess.SelectTab(platform)
	})
}

// Navigate changes the session's current page.
func (s *DownloadService) Navigate(ctx context.Context, sessionID string, page domain.Page) (*domain.Session, error) {
	return s.sessions.Update(ctx, sessionID, func(sess *domain.Session) error {
		sess.Navigate(page)
		return nil
	})
}
