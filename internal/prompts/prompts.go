package prompts

import (
	"fmt"
	"strings"
)

// CaptionSystemPrompt defines the role and output contract for caption generation.
const CaptionSystemPrompt = `You are a social media growth strategist who writes short, high-engagement copy for short-form video.

Rules:
- Write one viral caption of at most 150 characters. Emojis are welcome, clickbait lies are not.
- Suggest 5 to 8 hashtags that people on the given platform actually search for. Each starts with "#" and has no spaces.
- Write a one or two sentence summary of what the video is likely about, based only on the information provided.
- Never claim to have watched the video.

Answer with a single JSON object and nothing else:
{"viralCaption": "...", "hashtags": ["#...", "#..."], "summary": "..."}`

// platformStyle gives the model a hint about each platform's tone.
var platformStyle = map[string]string{
	"TikTok":    "playful, trend-driven, hook in the first three words",
	"Instagram": "aesthetic, aspirational, a call to save or share",
	"Facebook":  "warm, conversational, invites comments",
	"YouTube":   "curiosity-driven, promises a payoff, suits Shorts",
	"Twitter":   "punchy, witty, under 100 characters",
}

// CaptionUserPrompt builds the user message for a platform and video URL.
func CaptionUserPrompt(platform, url string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Platform: %s\n", platform)
	if style, ok := platformStyle[platform]; ok {
		fmt.Fprintf(&b, "Tone: %s\n", style)
	}
	fmt.Fprintf(&b, "Video URL: %s\n", url)
	b.WriteString("\nGenerate the caption JSON now.")
	return b.String()
}
