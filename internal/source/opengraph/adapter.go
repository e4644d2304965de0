package opengraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/clipforge/clipforge/internal/domain"
	"github.com/clipforge/clipforge/internal/source"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	SourceID = "opengraph"

	// DefaultMaxPageSize bounds how much of a page is read; meta tags live in <head>.
	DefaultMaxPageSize = 512 * 1024
)

// Adapter implements the Source interface by scraping OpenGraph tags and
// schema.org VideoObject JSON-LD from the video page.
type Adapter struct {
	client      *resty.Client
	maxPageSize int64
}

// NewAdapter creates an OpenGraph adapter sharing client.
func NewAdapter(client *resty.Client, maxPageSize int64) *Adapter {
	if maxPageSize <= 0 {
		maxPageSize = DefaultMaxPageSize
	}
	return &Adapter{client: client, maxPageSize: maxPageSize}
}

// GetSourceID returns the unique identifier for this source
func (a *Adapter) GetSourceID() string {
	return SourceID
}

// Supports returns true for every platform; any page may carry OpenGraph tags.
func (a *Adapter) Supports(platform domain.Platform) bool {
	return platform.IsValid()
}

// Lookup downloads pageURL and reads its meta tags.
func (a *Adapter) Lookup(ctx context.Context, platform domain.Platform, pageURL string) (*source.VideoItem, error) {
	httpResp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/html").
		SetDoNotParseResponse(true).
		Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	body := httpResp.RawBody()
	defer body.Close()

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		return nil, fmt.Errorf("page returned HTTP %d", httpResp.StatusCode())
	}

	item, err := Parse(io.LimitReader(body, a.maxPageSize))
	if err != nil {
		return nil, err
	}
	if item.Title == "" && item.Thumbnail == "" {
		return nil, fmt.Errorf("page %s carried no OpenGraph metadata", pageURL)
	}
	return item, nil
}

// Parse extracts a VideoItem from an HTML document.
func Parse(r io.Reader) (*source.VideoItem, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	tags := map[string]string{}
	var title string
	var ldBlocks []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Meta:
				key, content := metaPair(n)
				if key != "" && content != "" {
					if _, seen := tags[key]; !seen {
						tags[key] = content
					}
				}
			case atom.Title:
				if title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			case atom.Script:
				if isJSONLD(n) && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					ldBlocks = append(ldBlocks, n.FirstChild.Data)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	item := &source.VideoItem{
		Title:        first(tags, "og:title", "twitter:title"),
		Author:       first(tags, "author", "article:author", "twitter:creator", "og:video:director"),
		Thumbnail:    first(tags, "og:image", "og:image:url", "og:image:secure_url", "twitter:image"),
		ProviderName: first(tags, "og:site_name"),
	}
	for _, block := range ldBlocks {
		item.Merge(parseVideoObject(block))
	}
	if item.Title == "" {
		item.Title = title
	}
	item.Author = strings.TrimPrefix(item.Author, "@")

	if secs := first(tags, "og:video:duration", "video:duration"); secs != "" {
		if n, err := strconv.Atoi(secs); err == nil && n > 0 {
			item.DurationSeconds = n
		}
	}
	if item.DurationSeconds == 0 {
		if iso := first(tags, "duration"); iso != "" {
			item.DurationSeconds = ParseISODuration(iso)
		}
	}

	return item, nil
}

func isJSONLD(n *html.Node) bool {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, "type") {
			return strings.EqualFold(strings.TrimSpace(attr.Val), "application/ld+json")
		}
	}
	return false
}

// parseVideoObject returns the first schema.org VideoObject in a JSON-LD
// block, or nil. Blocks may hold a single node, an array or an @graph.
func parseVideoObject(block string) *source.VideoItem {
	var doc interface{}
	if err := json.Unmarshal([]byte(block), &doc); err != nil {
		return nil
	}
	node := findVideoObject(doc)
	if node == nil {
		return nil
	}
	return &source.VideoItem{
		Title:           ldString(node["name"]),
		Author:          ldString(node["author"]),
		Thumbnail:       ldString(node["thumbnailUrl"]),
		DurationSeconds: ParseISODuration(ldString(node["duration"])),
	}
}

func findVideoObject(v interface{}) map[string]interface{} {
	switch t := v.(type) {
	case []interface{}:
		for _, el := range t {
			if node := findVideoObject(el); node != nil {
				return node
			}
		}
	case map[string]interface{}:
		if isVideoType(t["@type"]) {
			return t
		}
		if graph, ok := t["@graph"]; ok {
			return findVideoObject(graph)
		}
	}
	return nil
}

func isVideoType(v interface{}) bool {
	switch t := v.(type) {
	case string:
		return t == "VideoObject"
	case []interface{}:
		for _, el := range t {
			if s, ok := el.(string); ok && s == "VideoObject" {
				return true
			}
		}
	}
	return false
}

// ldString flattens the shapes JSON-LD uses for a text value: a string, the
// first element of an array, or an object's name or url.
func ldString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []interface{}:
		if len(t) > 0 {
			return ldString(t[0])
		}
	case map[string]interface{}:
		if name := ldString(t["name"]); name != "" {
			return name
		}
		return ldString(t["url"])
	}
	return ""
}

// metaPair returns the key (property, name or itemprop) and content of a meta element.
func metaPair(n *html.Node) (key, content string) {
	for _, attr := range n.Attr {
		switch strings.ToLower(attr.Key) {
		case "property", "name", "itemprop":
			if key == "" {
				key = strings.ToLower(strings.TrimSpace(attr.Val))
			}
		case "content":
			content = strings.TrimSpace(attr.Val)
		}
	}
	return key, content
}

func first(tags map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := tags[k]; v != "" {
			return v
		}
	}
	return ""
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseISODuration converts an ISO 8601 duration such as "PT1M30S" to seconds.
// Returns 0 for anything it does not understand.
func ParseISODuration(s string) int {
	m := isoDuration.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return 0
	}
	units := []int{86400, 3600, 60, 1}
	total := 0
	for i, u := range units {
		if m[i+1] == "" {
			continue
		}
		n, _ := strconv.Atoi(m[i+1])
		total += n * u
	}
	return total
}
