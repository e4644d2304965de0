package opengraph

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipforge/clipforge/internal/domain"
)

const reelPage = `<!DOCTYPE html>
<html><head>
<title>Fallback title</title>
<meta property="og:title" content="Sunset reel">
<meta content="https://cdn.example/sunset.jpg" property="og:image">
<meta property="og:site_name" content="Instagram">
<meta name="twitter:creator" content="@golden_hour">
<meta property="og:video:duration" content="47">
</head><body><p>hi</p></body></html>`

func TestParse_OpenGraph(t *testing.T) {
	item, err := Parse(strings.NewReader(reelPage))
	require.NoError(t, err)

	assert.Equal(t, "Sunset reel", item.Title)
	assert.Equal(t, "https://cdn.example/sunset.jpg", item.Thumbnail)
	assert.Equal(t, "Instagram", item.ProviderName)
	assert.Equal(t, "golden_hour", item.Author)
	assert.Equal(t, 47, item.DurationSeconds)
}

func TestParse_Fallbacks(t *testing.T) {
	page := `<html><head><title> Plain title </title></head>
<body><meta itemprop="duration" content="PT3M5S"></body></html>`

	item, err := Parse(strings.NewReader(page))
	require.NoError(t, err)

	assert.Equal(t, "Plain title", item.Title)
	assert.Equal(t, 185, item.DurationSeconds)
	assert.Empty(t, item.Thumbnail)
}

func TestParse_JSONLDVideoObject(t *testing.T) {
	page := `<html><head>
<title>Site chrome</title>
<meta property="og:image" content="https://cdn.example/og.jpg">
<script type="application/ld+json">{"@context":"https://schema.org","@type":"BreadcrumbList"}</script>
<script type="application/ld+json">
{"@context":"https://schema.org","@graph":[
  {"@type":"WebPage","name":"Not the video"},
  {"@type":["VideoObject"],"name":"Lake timelapse",
   "thumbnailUrl":["https://cdn.example/ld.jpg"],
   "duration":"PT1M12S","author":{"@type":"Person","name":"@lake_cam"}}
]}
</script>
<script type="application/ld+json">{broken</script>
</head></html>`

	item, err := Parse(strings.NewReader(page))
	require.NoError(t, err)

	assert.Equal(t, "Lake timelapse", item.Title)
	assert.Equal(t, "lake_cam", item.Author)
	assert.Equal(t, 72, item.DurationSeconds)
	// OpenGraph tags win over JSON-LD.
	assert.Equal(t, "https://cdn.example/og.jpg", item.Thumbnail)
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"PT1M30S", 90},
		{"PT45S", 45},
		{"PT1H2M3S", 3723},
		{"P1DT1S", 86401},
		{"pt2m", 120},
		{"90", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseISODuration(tt.in))
		})
	}
}

func TestAdapter_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(reelPage))
	}))
	defer srv.Close()

	a := NewAdapter(resty.New(), 0)
	item, err := a.Lookup(context.Background(), domain.PlatformInstagram, srv.URL+"/reel/abc/")
	require.NoError(t, err)
	assert.Equal(t, "Sunset reel", item.Title)
}

func TestAdapter_LookupErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: reelPage},
		{name: "no metadata", status: http.StatusOK, body: `<html><body>login required</body></html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			a := NewAdapter(resty.New(), 0)
			_, err := a.Lookup(context.Background(), domain.PlatformFacebook, srv.URL)
			assert.Error(t, err)
		})
	}
}
