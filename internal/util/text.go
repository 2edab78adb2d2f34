package util

import (
	"regexp"
	"strings"
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	urlRe      = regexp.MustCompile(`(?:http|https|www)\S+`)
	mentionRe  = regexp.MustCompile(`@\w+`)
	hashtagRe  = regexp.MustCompile(`#(\w+)`)
)

// NormalizeWhitespace trims and collapses whitespace to single spaces.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// CleanTweetText prepares tweet text for sentiment scoring: lowercase,
// URLs and @mentions removed, hashtag symbols stripped (text kept),
// whitespace collapsed. The result is what gets persisted as
// processed_text alongside the scores.
func CleanTweetText(text string) string {
	s := strings.ToLower(text)
	s = urlRe.ReplaceAllString(s, "")
	s = mentionRe.ReplaceAllString(s, "")
	s = hashtagRe.ReplaceAllString(s, "$1")
	return NormalizeWhitespace(s)
}
