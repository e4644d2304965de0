package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipforge/clipforge/internal/api/handler"
	"github.com/clipforge/clipforge/internal/api/middleware"
	"github.com/clipforge/clipforge/internal/domain"
	"github.com/clipforge/clipforge/internal/service"
	"github.com/clipforge/clipforge/internal/session"
	"github.com/clipforge/clipforge/internal/view"
)

const cookieName = "clipforge_session"

type fakeFetcher struct {
	err error
}

func (f *fakeFetcher) Fetch(ctx context.Context, rawURL string) (*domain.VideoMetadata, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.VideoMetadata{
		ID:          "123",
		Title:       "Cat",
		Thumbnail:   "https://example.com/cat.jpg",
		Duration:    "0:15",
		Platform:    domain.PlatformTikTok,
		Author:      "@user",
		OriginalURL: rawURL,
	}, nil
}

type fakeGenerator struct {
	err error
}

func (g *fakeGenerator) Generate(ctx context.Context, platform domain.Platform, rawURL string) (*domain.CaptionAnalysis, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &domain.CaptionAnalysis{
		ViralCaption: "Cats rule",
		Hashtags:     []string{"#cat", "#fyp"},
		Summary:      "A cat video.",
		Platform:     platform,
		SourceURL:    rawURL,
	}, nil
}

type testServer struct {
	router *gin.Engine
	cookie *http.Cookie
}

func newTestServer(t *testing.T, fetcher *fakeFetcher, generator *fakeGenerator, cors middleware.CORSConfig) *testServer {
	t.Helper()
	store := session.NewMemoryStore(time.Hour)
	t.Cleanup(func() { _ = store.Close() })

	renderer, err := view.NewRenderer(view.Site{
		Name:         "ClipForge",
		Tagline:      "Save anything.",
		ContactEmail: "support@example.com",
		Year:         2025,
	})
	require.NoError(t, err)

	downloads := service.NewDownloadService(fetcher, generator, store)
	router := SetupRouter(downloads, store, renderer, RouterConfig{
		Mode:    "test",
		CORS:    cors,
		Session: middleware.SessionConfig{CookieName: cookieName, TTL: time.Hour},
	})
	return &testServer{router: router}
}

// do sends req with the current session cookie and remembers any new one.
func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			s.cookie = c
		}
	}
	return rec
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *testServer) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *testServer) sendJSON(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return s.do(req)
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) handler.SessionResponse {
	t.Helper()
	var resp handler.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Session)
	return resp
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakeFetcher{}, &fakeGenerator{}, middleware.CORSConfig{})

	rec := srv.get("/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Nil(t, srv.cookie, "health checks do not create sessions")
}

func TestHomePage_CreatesSession(t *testing.T) {
	srv := newTestServer(t, &fakeFetcher{}, &fakeGenerator{}, middleware.CORSConfig{})

	rec := srv.get("/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Paste TikTok link here...")
	assert.Contains(t, rec.Body.String(), "Download")
	require.NotNil(t, srv.cookie)
	assert.NotEmpty(t, srv.cookie.Value)
	assert.True(t, srv.cookie.HttpOnly)

	first := srv.cookie.Value
	srv.get("/")
	assert.Equal(t, first, srv.cookie.Value, "existing session is reused")
}

func TestHomePage_UnknownCookieGetsNewSession(t *testing.T) {
	srv := newTestServer(t, &fakeFetcher{}, &fakeGenerator{}, middleware.CORSConfig{})
	srv.cookie = &http.Cookie{Name: cookieName, Value: "expired"}

	rec := srv.get("/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, "expired", srv.cookie.Value)
}

func TestStaticPages(t *testing.T) {
	srv := newTestServer(t, &fakeFetcher{}, &fakeGenerator{}, middleware.CORSConfig{})

	tests := []struct {
		path  string
		title string
	}{
		{"/about", "About"},
		{"/contact", "Contact"},
		{"/blog", "Blog"},
		{"/terms", "Terms of Service"},
		{"/privacy", "Privacy Policy"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := srv.get(tt.path)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), "<h1>"+tt.title+"</h1>")
		})
	}
}

func TestStaticAssets(t *testing.T) {
	srv := newTestServer(t, &fakeFetcher{}, &fakeGenerator{}, middleware.CORSConfig{})

	rec := srv.get("/static/app.css")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, srv.cookie)
}

func TestDownloadForm_RendersResult(t *testing.T) {
	srv := newTestServer(t, &fakeFetcher{}, &fakeGenerator{}, middleware.CORSConfig{})

	rec := srv.postForm("/download", url.Values{"url": {"https://tiktok.com/@user/video/123"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = srv.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Cat")
	assert.Contains(t, body, "@user")
	assert.Contains(t, body, "Cats rule")
	assert.Contains(t, body, "#fyp")
	assert.NotContains(t, body, "AI caption unavailable")
	assert.NotContains(t, body, "error-banner")
}

func TestDownloadForm_CaptionFailureShowsHint(t *testing.T) {
	srv := newTestServer(t, &fakeFetcher{}, &fakeGenerator{err: errors.New("quota")}, middleware.CORSConfig{})

	srv.postForm("/download", url.Values{"url": {"https://tiktok.com/@user/video/123"}})
	rec := srv.get("/")

	body := rec.Body.String()
	assert.Contains(t, body, "Cat")
	assert.Contains(t, body, "AI caption unavailable")
	assert.NotContains(t, body, "error-banner")
}

func TestDownloadForm_FetchFailureShowsError(t *testing.T) {
	fetchErr := domain.NewFetchError(domain.PlatformTikTok, errors.New("timeout"))
	srv := newTestServer(t, &fakeFetcher{err: fetchErr}, &fakeGenerator{}, middleware.CORSConfig{})

	srv.postForm("/download", url.Values{"url": {"https://tiktok.com/@user/video/123"}})
	rec := srv.get("/")

	body := rec.Body.String()
	assert.Contains(t, body, "error-banner")
	assert.Contains(t, body, "Could not retrieve video details from TikTok")
}

func TestRegenerateAndDismissForms(t *testing.T) {
	srv := newTestServer(t, &fakeFetcher{}, &fakeGenerator{}, middleware.CORSConfig{})
	srv.postForm("/download", url.Values{"url": {"https://tiktok.com/@user/video/123"}})

	rec := srv.postForm("/regenerate", url.Values{"url": {""}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/#result", rec.Header().Get("Location"))
	assert.Contains(t, srv.get("/").Body.String(), "Cats rule")

	rec = srv.postForm("/dismiss", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.NotContains(t, srv.get("/").Body.String(), "Cats rule")
}

func TestTabForm(t *testing.T) {
	srv := newTestServer(t, &fakeFetcher{}, &fakeGenerator{}, middleware.CORSConfig{})

	rec := srv.postForm("/tab", url.Values{"platform": {"youtube"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, srv.get("/").Body.String(), "Paste YouTube link here...")

	tests := []string{"twitter", "myspace", ""}
	for _, platform := range tests {
		t.Run(platform, func(t *testing.T) {
			rec := srv.postForm("/tab", url.Values{"platform": {platform}})
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAPI_ListPlatforms(t *testing.T) {
	srv := newTestServer(t, &fakeFetcher{}, &fakeGenerator{}, middleware.CORSConfig{})

	rec := srv.get("/api/v1/platforms")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Platforms []handler.PlatformInfo `json:"platforms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Platforms, len(domain.AllPlatforms))
	assert.Equal(t, domain.PlatformTikTok, resp.Platforms[0].Name)
	assert.Equal(t, "Paste TikTok link here...", resp.Platforms[0].Placeholder)
	assert.True(t, resp.Platforms[0].Selectable)
	assert.False(t, resp.Platforms[4].Selectable)
}

func TestAPI_SessionLifecycle(t *testing.T) {
	srv := newTestServer(t, &fakeFetcher{}, &fakeGenerator{}, middleware.CORSConfig{})

	rec := srv.get("/api/v1/session")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeSession(t, rec)
	assert.Equal(t, domain.PhaseIdle, resp.Session.Phase)
	assert.Equal(t, "Download", resp.SubmitLabel)

	rec = srv.sendJSON(http.MethodPost, "/api/v1/download", `{"url":"  https://tiktok.com/@user/video/123  "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeSession(t, rec)
	assert.Equal(t, domain.PhaseComplete, resp.Session.Phase)
	require.NotNil(t, resp.Session.Result)
	assert.Equal(t, "Cat", resp.Session.Result.Metadata.Title)
	require.NotNil(t, resp.Session.Result.Caption)
	assert.Equal(t, "Cats rule", resp.Session.Result.Caption.ViralCaption)

	rec = srv.sendJSON(http.MethodPost, "/api/v1/regenerate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, resp.Session.Result.ID, decodeSession(t, rec).Session.Result.ID)

	rec = srv.sendJSON(http.MethodDelete, "/api/v1/result", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeSession(t, rec)
	assert.Nil(t, resp.Session.Result)
	assert.Empty(t, resp.Session.URL)
}

func TestAPI_DownloadFetchFailure(t *testing.T) {
	srv := newTestServer(t, &fakeFetcher{err: domain.ErrUnsupportedPlatform}, &fakeGenerator{}, middleware.CORSConfig{})

	rec := srv.sendJSON(http.MethodPost, "/api/v1/download", `{"url":"https://example.com/video"}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeSession(t, rec)
	assert.Equal(t, "Unsupported platform", resp.Error)
	assert.Equal(t, domain.PhaseFetchFailed, resp.Session.Phase)
	assert.Nil(t, resp.Session.Result)
}

func TestAPI_BadRequests(t *testing.T) {
	srv := newTestServer(t, &fakeFetcher{}, &fakeGenerator{}, middleware.CORSConfig{})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"malformed download body", http.MethodPost, "/api/v1/download", `{"url":`},
		{"malformed regenerate body", http.MethodPost, "/api/v1/regenerate", `nope`},
		{"missing platform", http.MethodPut, "/api/v1/tab", `{}`},
		{"unknown platform", http.MethodPut, "/api/v1/tab", `{"platform":"myspace"}`},
		{"platform without tab", http.MethodPut, "/api/v1/tab", `{"platform":"Twitter"}`},
		{"unknown page", http.MethodPut, "/api/v1/page", `{"page":"pricing"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.sendJSON(tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestAPI_TabAndPage(t *testing.T) {
	srv := newTestServer(t, &fakeFetcher{}, &fakeGenerator{}, middleware.CORSConfig{})

	rec := srv.sendJSON(http.MethodPut, "/api/v1/tab", `{"platform":"instagram"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeSession(t, rec)
	assert.Equal(t, domain.PlatformInstagram, resp.Session.ActiveTab)
	assert.Equal(t, "Paste Instagram link here...", resp.Placeholder)

	rec = srv.sendJSON(http.MethodPut, "/api/v1/page", `{"page":"blog"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PageBlog, decodeSession(t, rec).Session.Page)
}

func TestAPI_CORS(t *testing.T) {
	srv := newTestServer(t, &fakeFetcher{}, &fakeGenerator{}, middleware.CORSConfig{
		AllowedOrigins: []string{"https://app.example.com"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/download", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := srv.do(req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/platforms", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = srv.do(req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
