package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/clipforge/clipforge/internal/domain"
	"github.com/clipforge/clipforge/internal/prompts"
	"github.com/go-resty/resty/v2"
	"github.com/microcosm-cc/bluemonday"
)

// DefaultCaptionBaseURL is Gemini's OpenAI-compatible endpoint.
const DefaultCaptionBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

const maxHashtags = 10

// ErrCaptionDisabled is returned when no caption model is configured.
var ErrCaptionDisabled = errors.New("caption generation is disabled")

// CaptionConfig holds configuration for the caption service.
type CaptionConfig struct {
	Enabled     bool
	Model       string
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
}

// CaptionService generates viral captions with an OpenAI-compatible chat model.
type CaptionService struct {
	client      *resty.Client
	model       string
	endpoint    string
	enabled     bool
	temperature float32
	maxTokens   int
	sanitizer   *bluemonday.Policy
}

// NewCaptionService creates a new caption service.
// The service is disabled when cfg is nil, disabled, or has no API key.
func NewCaptionService(cfg *CaptionConfig) *CaptionService {
	if cfg == nil || !cfg.Enabled || cfg.APIKey == "" {
		return &CaptionService{enabled: false}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(timeout)

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultCaptionBaseURL
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 400
	}

	return &CaptionService{
		client:      client,
		model:       cfg.Model,
		endpoint:    baseURL + "/chat/completions",
		enabled:     true,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
		sanitizer:   bluemonday.StrictPolicy(),
	}
}

// IsEnabled returns whether caption generation is available.
func (s *CaptionService) IsEnabled() bool {
	return s.enabled
}

// GetModel returns the model name being used.
func (s *CaptionService) GetModel() string {
	return s.model
}

type llmRequest struct {
	Model       string       `json:"model"`
	Messages    []llmMessage `json:"messages"`
	MaxTokens   int          `json:"max_tokens"`
	Temperature float32      `json:"temperature"`
}

type llmMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type llmResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate asks the model for a caption for the video at url.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - platform: platform the caption is written for.
//   - url: video URL given to the model.
//
// Returns:
//   - *domain.CaptionAnalysis: caption tagged with platform and url.
//   - error: ErrCaptionDisabled, a transport error, or an unusable answer.
func (s *CaptionService) Generate(ctx context.Context, platform domain.Platform, url string) (*domain.CaptionAnalysis, error) {
	if !s.enabled {
		return nil, ErrCaptionDisabled
	}

	req := llmRequest{
		Model: s.model,
		Messages: []llmMessage{
			{Role: "system", Content: prompts.CaptionSystemPrompt},
			{Role: "user", Content: prompts.CaptionUserPrompt(string(platform), url)},
		},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}

	var resp llmResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		SetError(&resp).
		Post(s.endpoint)

	if err != nil {
		return nil, fmt.Errorf("failed to call caption API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		errorMsg := fmt.Sprintf("HTTP %d", httpResp.StatusCode())
		if resp.Error != nil {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		}
		return nil, fmt.Errorf("caption API returned error: %s", errorMsg)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("caption API error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("no response from caption API (status: %d)", httpResp.StatusCode())
	}

	caption, err := s.parseResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	caption.Platform = platform
	caption.SourceURL = url
	return caption, nil
}

type captionPayload struct {
	ViralCaption string   `json:"viralCaption"`
	Hashtags     []string `json:"hashtags"`
	Summary      string   `json:"summary"`
}

// parseResponse extracts the first JSON object from the model answer.
// Models sometimes wrap it in prose or markdown fences.
func (s *CaptionService) parseResponse(content string) (*domain.CaptionAnalysis, error) {
	jsonStart := strings.Index(content, "{")
	if jsonStart == -1 {
		return nil, fmt.Errorf("no JSON found in caption response")
	}

	braceCount := 0
	inString := false
	escaped := false
	jsonEnd := -1
findJSON:
	for i := jsonStart; i < len(content); i++ {
		c := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			braceCount++
		case '}':
			braceCount--
			if braceCount == 0 {
				jsonEnd = i + 1
				break findJSON
			}
		}
	}

	if jsonEnd == -1 {
		return nil, fmt.Errorf("incomplete JSON in caption response")
	}

	var payload captionPayload
	if err := json.Unmarshal([]byte(content[jsonStart:jsonEnd]), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse caption JSON: %w", err)
	}

	caption := &domain.CaptionAnalysis{
		ViralCaption: s.plainText(payload.ViralCaption),
		Hashtags:     normalizeHashtags(payload.Hashtags),
		Summary:      s.plainText(payload.Summary),
	}
	if caption.ViralCaption == "" {
		return nil, fmt.Errorf("caption response has no viralCaption")
	}
	return caption, nil
}

func (s *CaptionService) plainText(text string) string {
	if s.sanitizer == nil {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(text)))
}

// normalizeHashtags prefixes tags with "#", drops spaces and duplicates and
// keeps the model's order.
func normalizeHashtags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.Join(strings.Fields(tag), "")
		tag = strings.TrimLeft(tag, "#")
		if tag == "" {
			continue
		}
		tag = "#" + tag
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
		if len(out) == maxHashtags {
			break
		}
	}
	return out
}
