package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"memepulse/internal/model"
	"memepulse/internal/token"
	"memepulse/internal/util"
)

// RawRecord is a loosely-typed source record. Field names vary by
// source; values are whatever the container produced (strings for CSV,
// JSON scalars for JSON sources).
type RawRecord map[string]any

// synonyms maps each canonical field onto the source spellings that
// resolve to it. Consulted once per record; unrecognized fields are
// dropped. Extend here when a new export shape shows up.
var synonyms = map[string][]string{
	"tweet_id":            {"tweet_id", "id", "id_str"},
	"author_id":           {"author_id", "user_id"},
	"username":            {"username", "screen_name"},
	"display_name":        {"display_name", "name"},
	"followers_count":     {"followers_count"},
	"following_count":     {"following_count", "friends_count"},
	"author_tweet_count":  {"author_tweet_count", "statuses_count"},
	"author_created_at":   {"author_created_at"},
	"created_at":          {"created_at", "timestamp", "date"},
	"text":                {"text", "full_text", "tweet_text", "content", "tweet", "message"},
	"language":            {"language", "lang"},
	"retweet_count":       {"retweet_count", "retweets"},
	"reply_count":         {"reply_count", "replies"},
	"like_count":          {"like_count", "likes", "favorite_count", "favorites"},
	"quote_count":         {"quote_count", "quotes"},
	"referenced_tweet_id": {"referenced_tweet_id"},
	"token":               {"token", "symbol", "coin"},
	"sentiment_compound":  {"sentiment_compound"},
	"sentiment_positive":  {"sentiment_positive"},
	"sentiment_negative":  {"sentiment_negative"},
	"sentiment_neutral":   {"sentiment_neutral"},
	"processed_text":      {"processed_text"},
}

// lookup is the inverted synonym table, built once.
var lookup = func() map[string]string {
	m := make(map[string]string)
	for canonical, variants := range synonyms {
		for _, v := range variants {
			m[v] = canonical
		}
	}
	return m
}()

// Issue describes a problem with one raw record. Skipped issues mean
// the record produced no output; the rest are warnings on records that
// were still ingested.
type Issue struct {
	Source  string
	Index   int
	Reason  string
	Skipped bool
}

func (i Issue) String() string {
	return fmt.Sprintf("%s[%d]: %s", i.Source, i.Index, i.Reason)
}

// Normalizer maps heterogeneous raw records onto the canonical model.
// It holds no cross-record state; independent sources can be normalized
// concurrently.
type Normalizer struct {
	extractor *token.Extractor
	now       func() time.Time
}

// New returns a normalizer using ex for mention extraction. now is the
// wall clock used for the bad-timestamp fallback; nil means time.Now.
func New(ex *token.Extractor, now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{extractor: ex, now: now}
}

// Normalize converts records from one source into normalized tweets.
// Records that cannot be coerced into the minimum required fields are
// skipped, never aborting the batch; every skip or lossy fallback is
// reported as an Issue.
func (n *Normalizer) Normalize(records []RawRecord, source string) ([]model.NormalizedTweet, []Issue) {
	out := make([]model.NormalizedTweet, 0, len(records))
	var issues []Issue
	for i, rec := range records {
		nt, recIssues := n.normalizeOne(rec, source, i)
		issues = append(issues, recIssues...)
		if nt != nil {
			out = append(out, *nt)
		}
	}
	return out, issues
}

func (n *Normalizer) normalizeOne(rec RawRecord, source string, idx int) (*model.NormalizedTweet, []Issue) {
	fields := make(map[string]any, len(rec))
	for k, v := range rec {
		if canonical, ok := lookup[strings.ToLower(strings.TrimSpace(k))]; ok {
			fields[canonical] = v
		}
	}

	var issues []Issue

	text := asString(fields["text"])
	tok := n.extractor.Canonical(asString(fields["token"]))
	if strings.TrimSpace(text) == "" && tok != "" {
		// A bare token row still carries signal for the extractor.
		text = "$" + tok
	}
	if strings.TrimSpace(text) == "" {
		issues = append(issues, Issue{Source: source, Index: idx, Reason: "no usable text", Skipped: true})
		return nil, issues
	}

	rawCreated := asString(fields["created_at"])
	createdAt, ok := parseTime(fields["created_at"])
	if !ok {
		// Never drop data because of a bad date: fall back to the
		// ingestion wall clock and flag the record.
		createdAt = n.now().UTC()
		reason := fmt.Sprintf("unparseable created_at %q, using ingestion time", rawCreated)
		if rawCreated == "" {
			reason = "missing created_at, using ingestion time"
		}
		issues = append(issues, Issue{Source: source, Index: idx, Reason: reason})
	}

	id := asString(fields["tweet_id"])
	if id == "" {
		// Identity hashes the raw created_at string, not the parsed
		// time, so re-ingesting a dateless record yields the same row.
		id = FallbackID(text, rawCreated)
	}

	t := model.Tweet{
		ID:                id,
		AuthorID:          asString(fields["author_id"]),
		CreatedAt:         createdAt,
		Text:              text,
		Language:          asString(fields["language"]),
		RetweetCount:      asCount(fields["retweet_count"]),
		ReplyCount:        asCount(fields["reply_count"]),
		LikeCount:         asCount(fields["like_count"]),
		QuoteCount:        asCount(fields["quote_count"]),
		ReferencedTweetID: asString(fields["referenced_tweet_id"]),
	}

	tokens := n.extractor.Extract(text)
	if tok != "" && !contains(tokens, tok) {
		tokens = append(tokens, tok)
	}
	if extra, ok := rec["tokens"].([]string); ok {
		for _, raw := range extra {
			if c := n.extractor.Canonical(raw); c != "" && !contains(tokens, c) {
				tokens = append(tokens, c)
			}
		}
	}

	nt := &model.NormalizedTweet{Tweet: t, Tokens: tokens}
	if author := buildAuthor(fields); author != nil {
		nt.Author = author
		nt.Tweet.AuthorID = author.ID
	}
	if score := buildScore(t.ID, text, fields); score != nil {
		nt.Score = score
	}
	return nt, issues
}

func buildAuthor(fields map[string]any) *model.Author {
	id := asString(fields["author_id"])
	username := asString(fields["username"])
	if id == "" && username == "" {
		return nil
	}
	if id == "" {
		// Scraped profiles often lack a numeric id; the handle is the
		// only stable key the source gives us.
		id = username
	}
	a := &model.Author{
		ID:             id,
		Username:       username,
		DisplayName:    asString(fields["display_name"]),
		FollowersCount: asCount(fields["followers_count"]),
		FollowingCount: asCount(fields["following_count"]),
		TweetCount:     asCount(fields["author_tweet_count"]),
	}
	if ts, ok := parseTime(fields["author_created_at"]); ok {
		a.CreatedAt = ts
	}
	return a
}

// buildScore surfaces sentiment scores a source already carried so
// pre-scored datasets are not sent back through the scorer.
func buildScore(tweetID, text string, fields map[string]any) *model.SentimentScore {
	if _, ok := fields["sentiment_compound"]; !ok {
		return nil
	}
	processed := asString(fields["processed_text"])
	if processed == "" {
		processed = util.CleanTweetText(text)
	}
	return &model.SentimentScore{
		TweetID:       tweetID,
		Compound:      asFloat(fields["sentiment_compound"]),
		Positive:      asFloat(fields["sentiment_positive"]),
		Negative:      asFloat(fields["sentiment_negative"]),
		Neutral:       asFloat(fields["sentiment_neutral"]),
		ProcessedText: processed,
	}
}

func parseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), true
	case nil:
		return time.Time{}, false
	}
	s := asString(v)
	if strings.TrimSpace(s) == "" {
		return time.Time{}, false
	}
	// Numeric strings are treated as unix seconds or milliseconds.
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), true
		}
		if n > 1e9 {
			return time.Unix(n, 0).UTC(), true
		}
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func asCount(v any) int {
	n := int(asFloat(v))
	if n < 0 {
		return 0
	}
	return n
}

func asFloat(v any) float64 {
	switch f := v.(type) {
	case float64:
		return f
	case int:
		return float64(f)
	case int64:
		return float64(f)
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(f), 64); err == nil {
			return parsed
		}
	}
	return 0
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
