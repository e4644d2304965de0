package view

import (
	"html/template"

	"github.com/clipforge/clipforge/internal/domain"
)

// Site holds branding shown on every page.
type Site struct {
	Name         string
	Tagline      string
	ContactEmail string
	Year         int
}

// NavItem is one navigation link.
type NavItem struct {
	Label       string
	MobileLabel string
	Href        string
	Active      bool
}

// Tab is one platform selector tab.
type Tab struct {
	Platform domain.Platform
	Label    string
	Slug     string
	Active   bool
}

// Feature is one card of the features section.
type Feature struct {
	Title       string
	Description string
}

// ResultView is the result card.
type ResultView struct {
	Metadata        domain.VideoMetadata
	Caption         *domain.CaptionAnalysis
	PlatformSlug    string
	URL             string
	Regenerating    bool
	RegenerateLabel string
}

// PageData is everything a page template reads. It is derived from a session
// and carries no behaviour of its own.
type PageData struct {
	Site  Site
	Title string
	Page  domain.Page
	Nav   []NavItem

	Tabs        []Tab
	Placeholder string
	URL         string
	Loading     bool
	SubmitLabel string
	Error       string
	Result      *ResultView
	Features    []Feature

	// Body is the rendered Markdown of a static page.
	Body template.HTML
}

var pageTitles = map[domain.Page]string{
	domain.PageHome:    "Universal Video Downloader",
	domain.PageAbout:   "About",
	domain.PageContact: "Contact",
	domain.PageBlog:    "Blog",
	domain.PageTerms:   "Terms of Service",
	domain.PagePrivacy: "Privacy Policy",
}

var navItems = []NavItem{
	{Label: "Tools", MobileLabel: "Tools", Href: "/"},
	{Label: "About", MobileLabel: "About Us", Href: "/about"},
	{Label: "Blog", MobileLabel: "Blog", Href: "/blog"},
	{Label: "Contact", MobileLabel: "Contact", Href: "/contact"},
}

var features = []Feature{
	{Title: "Watermark Free", Description: "Clean output without logos."},
	{Title: "Lightning Fast", Description: "Processed in milliseconds."},
	{Title: "Safe & Secure", Description: "No logs. No logins. 100% private."},
	{Title: "All Devices", Description: "Works on Mobile, PC, Mac."},
	{Title: "HD Quality", Description: "Up to 4K resolution support."},
	{Title: "Universal", Description: "Supports all major platforms."},
}

// PagePath returns the URL path serving page.
func PagePath(page domain.Page) string {
	if page == domain.PageHome {
		return "/"
	}
	return "/" + string(page)
}

// NewPageData builds the view model for sess.
func NewPageData(site Site, sess *domain.Session) *PageData {
	page := sess.Page
	if _, ok := pageTitles[page]; !ok {
		page = domain.PageHome
	}

	data := &PageData{
		Site:        site,
		Title:       pageTitles[page],
		Page:        page,
		Placeholder: sess.ActiveTab.Placeholder(),
		URL:         sess.URL,
		Loading:     sess.Loading,
		SubmitLabel: "Download",
		Error:       sess.Error,
		Features:    features,
	}
	if sess.Loading {
		data.SubmitLabel = "Processing"
	}

	activeHref := PagePath(page)
	for _, item := range navItems {
		item.Active = item.Href == activeHref
		data.Nav = append(data.Nav, item)
	}

	for _, p := range domain.SelectorPlatforms {
		data.Tabs = append(data.Tabs, Tab{
			Platform: p,
			Label:    string(p),
			Slug:     p.Slug(),
			Active:   p == sess.ActiveTab,
		})
	}

	if r := sess.Result; r != nil {
		data.Result = &ResultView{
			Metadata:        r.Metadata,
			Caption:         r.Caption,
			PlatformSlug:    r.Metadata.Platform.Slug(),
			URL:             sess.URL,
			Regenerating:    sess.Regenerating,
			RegenerateLabel: "Regenerate",
		}
		if sess.Regenerating {
			data.Result.RegenerateLabel = "Regenerating..."
		}
	}
	return data
}
