package domain

import (
	"fmt"
	"strings"
	"time"
)

// Page identifies which view a session is looking at.
type Page string

const (
	PageHome    Page = "home"
	PageAbout   Page = "about"
	PageContact Page = "contact"
	PageBlog    Page = "blog"
	PageTerms   Page = "terms"
	PagePrivacy Page = "privacy"
)

// AllPages lists every navigable page.
var AllPages = []Page{PageHome, PageAbout, PageContact, PageBlog, PageTerms, PagePrivacy}

// ParsePage resolves a page name; the empty string maps to PageHome.
func ParsePage(s string) (Page, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PageHome, nil
	}
	for _, p := range AllPages {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown page %q", s)
}

// Phase is the position of a session in the download request lifecycle.
// Resolved metadata and the start of captioning are recorded in one update,
// so a session moves from fetching straight to captioning.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseFetching    Phase = "fetching"
	PhaseFetchFailed Phase = "fetch_failed"
	PhaseCaptioning  Phase = "captioning"
	PhaseComplete    Phase = "complete"
)

// IsTerminal returns true once a submission has settled.
func (p Phase) IsTerminal() bool {
	return p == PhaseIdle || p == PhaseFetchFailed || p == PhaseComplete
}

// Session is the explicit application state of one visitor.
// It is only mutated through its methods, inside a store update.
type Session struct {
	ID        string   `json:"id"`
	Page      Page     `json:"page"`
	ActiveTab Platform `json:"activeTab"`
	URL       string   `json:"url"`

	Phase        Phase   `json:"phase"`
	Loading      bool    `json:"loading"`
	Regenerating bool    `json:"regenerating"`
	Error        string  `json:"error,omitempty"`
	Result       *Result `json:"result,omitempty"`

	// Generation increments on every submission; completions carrying an
	// older generation are discarded.
	Generation uint64 `json:"generation"`
	// RegenerationSeq increments on every caption regeneration.
	RegenerationSeq uint64 `json:"regenerationSeq"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// NewSession returns the initial state for a visitor.
func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		Page:      PageHome,
		ActiveTab: DefaultPlatform,
		Phase:     PhaseIdle,
		UpdatedAt: time.Now(),
	}
}

// BeginSubmit records a new submission of url and returns its generation.
// The previous error and result are cleared.
func (s *Session) BeginSubmit(url string) uint64 {
	s.Generation++
	s.URL = url
	s.Loading = true
	s.Regenerating = false
	s.Error = ""
	s.Result = nil
	s.Phase = PhaseFetching
	s.touch()
	return s.Generation
}

// IsCurrent reports whether gen is the latest submission.
func (s *Session) IsCurrent(gen uint64) bool {
	return s.Generation == gen
}

// FailSubmit settles submission gen with a user-facing message.
// Returns false if gen is stale and nothing changed.
func (s *Session) FailSubmit(gen uint64, message string) bool {
	if !s.IsCurrent(gen) {
		return false
	}
	s.Loading = false
	s.Error = message
	s.Result = nil
	s.Phase = PhaseFetchFailed
	s.touch()
	return true
}

// MetadataResolved moves submission gen into captioning and follows the
// detected platform with the active tab.
func (s *Session) MetadataResolved(gen uint64, platform Platform) bool {
	if !s.IsCurrent(gen) {
		return false
	}
	s.ActiveTab = platform
	s.Phase = PhaseCaptioning
	s.touch()
	return true
}

// CompleteSubmit settles submission gen with result.
func (s *Session) CompleteSubmit(gen uint64, result *Result) bool {
	if !s.IsCurrent(gen) {
		return false
	}
	s.ActiveTab = result.Metadata.Platform
	s.Loading = false
	s.Error = ""
	s.Result = result
	s.Phase = PhaseComplete
	s.touch()
	return true
}

// RegenerationTicket identifies one caption regeneration.
type RegenerationTicket struct {
	ResultID string
	Seq      uint64
	Platform Platform
	URL      string
}

// BeginRegenerate marks a caption regeneration as in flight.
// Returns false when there is no result to regenerate for.
func (s *Session) BeginRegenerate() (RegenerationTicket, bool) {
	if s.Result == nil {
		return RegenerationTicket{}, false
	}
	s.RegenerationSeq++
	s.Regenerating = true
	s.Phase = PhaseCaptioning
	s.touch()

	url := strings.TrimSpace(s.URL)
	if url == "" {
		url = s.Result.Metadata.OriginalURL
	}
	return RegenerationTicket{
		ResultID: s.Result.ID,
		Seq:      s.RegenerationSeq,
		Platform: s.Result.Metadata.Platform,
		URL:      url,
	}, true
}

// CompleteRegenerate settles a regeneration. A nil caption means generation
// failed and the current result is kept as is.
// Returns true if the caption was applied.
func (s *Session) CompleteRegenerate(t RegenerationTicket, caption *CaptionAnalysis) bool {
	if s.RegenerationSeq == t.Seq {
		s.Regenerating = false
		if s.Result != nil && !s.Loading {
			s.Phase = PhaseComplete
		}
	}
	applied := false
	if caption != nil && s.Result != nil && s.Result.ID == t.ResultID && s.Result.Matches(caption) {
		s.Result = s.Result.WithCaption(caption)
		applied = true
	}
	s.touch()
	return applied
}

// Dismiss clears the result and the URL field.
func (s *Session) Dismiss() {
	s.Result = nil
	s.URL = ""
	s.Error = ""
	s.Regenerating = false
	if !s.Loading {
		s.Phase = PhaseIdle
	}
	s.touch()
}

// SelectTab changes the active platform tab.
func (s *Session) SelectTab(p Platform) error {
	if !p.IsSelectable() {
		return fmt.Errorf("%w: %q", ErrPlatformNotSelectable, p)
	}
	s.ActiveTab = p
	s.touch()
	return nil
}

// Navigate changes the current page.
func (s *Session) Navigate(p Page) {
	s.Page = p
	s.touch()
}

// Clone returns a deep copy safe to hand out of a store.
func (s *Session) Clone() *Session {
	c := *s
	if s.Result != nil {
		r := *s.Result
		if s.Result.Caption != nil {
			caption := *s.Result.Caption
			caption.Hashtags = append([]string(nil), s.Result.Caption.Hashtags...)
			r.Caption = &caption
		}
		c.Result = &r
	}
	return &c
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}
