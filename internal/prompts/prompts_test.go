package prompts

import (
	"strings"
	"testing"
)

func TestCaptionUserPrompt(t *testing.T) {
	got := CaptionUserPrompt("TikTok", "https://tiktok.com/@user/video/123")

	for _, want := range []string{"Platform: TikTok", "Tone: playful", "Video URL: https://tiktok.com/@user/video/123"} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}

	unknown := CaptionUserPrompt("Vimeo", "https://vimeo.com/1")
	if strings.Contains(unknown, "Tone:") {
		t.Errorf("unknown platform should have no tone hint:\n%s", unknown)
	}
}
