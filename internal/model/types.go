package model

import "time"

// Author is a tweet author as stored in the authors table.
// A tweet may have no resolvable author; author rows are overwritten
// on every re-import (latest-write-wins).
type Author struct {
	ID             string
	Username       string
	DisplayName    string
	FollowersCount int
	FollowingCount int
	TweetCount     int
	CreatedAt      time.Time
}

// Tweet is the canonical tweet row. ID is immutable once first written:
// re-importing the same tweet never mutates engagement counters already
// on disk (first-write-wins).
type Tweet struct {
	ID                string
	AuthorID          string // empty when no author resolved
	CreatedAt         time.Time
	Text              string
	Language          string
	RetweetCount      int
	ReplyCount        int
	LikeCount         int
	QuoteCount        int
	ReferencedTweetID string
}

// SentimentScore holds the VADER-convention scores for one tweet.
// Compound is roughly [-1,1]; Positive/Neutral/Negative are [0,1].
// Scores may be recomputed and replace prior values.
type SentimentScore struct {
	TweetID       string
	Compound      float64
	Positive      float64
	Neutral       float64
	Negative      float64
	ProcessedText string
}

// AggregateRow is one per-token, per-interval time bucket in
// token_sentiment_timeseries. Fully derived; overwritten on recompute.
type AggregateRow struct {
	Timestamp       time.Time
	Token           string
	Interval        string
	SentimentMean   float64
	SentimentStd    float64
	TweetCount      int
	PositiveRatio   float64
	NegativeRatio   float64
	NeutralRatio    float64
	EngagementScore float64
}

// JoinedRow is a tweet joined with its sentiment scores for one token,
// as consumed by the aggregator.
type JoinedRow struct {
	CreatedAt    time.Time
	Compound     float64
	Positive     float64
	Negative     float64
	Neutral      float64
	RetweetCount int
	LikeCount    int
	ReplyCount   int
	QuoteCount   int
}

// NormalizedTweet is the normalizer's output for one raw record: the
// canonical tweet, its author when one could be resolved, the tokens it
// mentions, and any sentiment scores the source already carried.
type NormalizedTweet struct {
	Tweet  Tweet
	Author *Author
	Tokens []string
	Score  *SentimentScore
}
