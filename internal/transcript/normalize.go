package transcript

import (
	"regexp"
	"strings"
)

var (
	cueRe        = regexp.MustCompile(`\[[^\]]{0,40}\]`)
	speakerRe    = regexp.MustCompile(`>>+`)
	urlRe        = regexp.MustCompile(`https?://\S+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalize strips caption cues such as [Music], speaker change markers and
// URLs, then squeezes whitespace.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = cueRe.ReplaceAllString(text, " ")
	text = speakerRe.ReplaceAllString(text, " ")
	text = urlRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
