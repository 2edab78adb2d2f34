package store

import (
	"context"
	"database/sql"
	"time"

	"memepulse/internal/model"
)

// UnscoredTweet is a tweet still waiting for sentiment scores.
type UnscoredTweet struct {
	ID   string
	Text string
}

// UnscoredTweets returns up to batchSize tweets with no sentiment row,
// oldest first, for driving the external scorer.
func (d *DB) UnscoredTweets(ctx context.Context, batchSize int) ([]UnscoredTweet, error) {
	rows, err := d.sql.QueryContext(ctx, `
	SELECT t.tweet_id, t.text
	FROM tweets t
	LEFT JOIN vader_sentiment v ON t.tweet_id = v.tweet_id
	WHERE v.tweet_id IS NULL
	ORDER BY t.created_at
	LIMIT ?`, batchSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []UnscoredTweet
	for rows.Next() {
		var u UnscoredTweet
		if err := rows.Scan(&u.ID, &u.Text); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// JoinedRowsForToken returns every tweet mentioning token joined with
// its sentiment scores and engagement counters, ordered by timestamp.
// Tweets without scores are not part of the aggregation input.
func (d *DB) JoinedRowsForToken(ctx context.Context, tok string) ([]model.JoinedRow, error) {
	rows, err := d.sql.QueryContext(ctx, `
	SELECT t.created_at, v.compound_score, v.positive_score, v.negative_score, v.neutral_score,
	       t.retweet_count, t.like_count, t.reply_count, t.quote_count
	FROM tweets t
	JOIN tweet_tokens tt ON t.tweet_id = tt.tweet_id
	JOIN vader_sentiment v ON t.tweet_id = v.tweet_id
	WHERE tt.token = ?
	ORDER BY t.created_at`, tok)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.JoinedRow
	for rows.Next() {
		var ts string
		var r model.JoinedRow
		if err := rows.Scan(&ts, &r.Compound, &r.Positive, &r.Negative, &r.Neutral,
			&r.RetweetCount, &r.LikeCount, &r.ReplyCount, &r.QuoteCount); err != nil {
			return nil, err
		}
		t, err := time.ParseInLocation(timeLayout, ts, time.UTC)
		if err != nil {
			return nil, err
		}
		r.CreatedAt = t
		out = append(out, r)
	}
	return out, rows.Err()
}

// Tokens returns every distinct token with at least one mention.
func (d *DB) Tokens(ctx context.Context) ([]string, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT DISTINCT token FROM tweet_tokens ORDER BY token`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AggregateRows returns the stored timeseries for one (token, interval),
// ordered by bucket timestamp.
func (d *DB) AggregateRows(ctx context.Context, tok, interval string) ([]model.AggregateRow, error) {
	rows, err := d.sql.QueryContext(ctx, `
	SELECT timestamp, token, interval, sentiment_mean, sentiment_std, tweet_count,
	       positive_ratio, negative_ratio, neutral_ratio, engagement_score
	FROM token_sentiment_timeseries
	WHERE token = ? AND interval = ?
	ORDER BY timestamp`, tok, interval)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.AggregateRow
	for rows.Next() {
		var ts string
		var r model.AggregateRow
		if err := rows.Scan(&ts, &r.Token, &r.Interval, &r.SentimentMean, &r.SentimentStd,
			&r.TweetCount, &r.PositiveRatio, &r.NegativeRatio, &r.NeutralRatio, &r.EngagementScore); err != nil {
			return nil, err
		}
		t, err := time.ParseInLocation(timeLayout, ts, time.UTC)
		if err != nil {
			return nil, err
		}
		r.Timestamp = t
		out = append(out, r)
	}
	return out, rows.Err()
}

// SentimentByID returns the stored scores for one tweet, or
// sql.ErrNoRows.
func (d *DB) SentimentByID(ctx context.Context, tweetID string) (model.SentimentScore, error) {
	var s model.SentimentScore
	err := d.sql.QueryRowContext(ctx, `
	SELECT tweet_id, compound_score, positive_score, neutral_score, negative_score, processed_text
	FROM vader_sentiment WHERE tweet_id = ?`, tweetID).Scan(
		&s.TweetID, &s.Compound, &s.Positive, &s.Neutral, &s.Negative, &s.ProcessedText)
	return s, err
}

// CountRows returns the row count of one table. Table names are caller
// constants, not user input.
func (d *DB) CountRows(ctx context.Context, table string) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n)
	return n, err
}

// TweetByID returns one tweet row, or sql.ErrNoRows.
func (d *DB) TweetByID(ctx context.Context, id string) (model.Tweet, error) {
	var t model.Tweet
	var ts string
	var authorID, language, refID sql.NullString
	err := d.sql.QueryRowContext(ctx, `
	SELECT tweet_id, author_id, created_at, text, language,
	       retweet_count, reply_count, like_count, quote_count, referenced_tweet_id
	FROM tweets WHERE tweet_id = ?`, id).Scan(
		&t.ID, &authorID, &ts, &t.Text, &language,
		&t.RetweetCount, &t.ReplyCount, &t.LikeCount, &t.QuoteCount, &refID)
	if err != nil {
		return t, err
	}
	if parsed, perr := time.ParseInLocation(timeLayout, ts, time.UTC); perr == nil {
		t.CreatedAt = parsed
	}
	t.AuthorID = authorID.String
	t.Language = language.String
	t.ReferencedTweetID = refID.String
	return t, nil
}
