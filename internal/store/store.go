package store

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"memepulse/internal/model"
)

// timeLayout is the canonical timestamp encoding for every table.
const timeLayout = "2006-01-02 15:04:05"

// DB owns the relational schema and the transactional write path. It is
// the only component allowed to mutate persisted state.
type DB struct{ sql *sql.DB }

func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps writers serialized and makes :memory: safe.
	d.SetMaxOpenConns(1)
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		return nil, err
	}
	db := &DB{sql: d}
	if err := db.migrate(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS authors (
	  author_id TEXT PRIMARY KEY,
	  username TEXT NOT NULL,
	  display_name TEXT,
	  followers_count INTEGER,
	  following_count INTEGER,
	  tweet_count INTEGER,
	  created_at DATETIME,
	  updated_at DATETIME
	);
	CREATE TABLE IF NOT EXISTS tweets (
	  tweet_id TEXT PRIMARY KEY,
	  author_id TEXT,
	  created_at DATETIME NOT NULL,
	  text TEXT NOT NULL,
	  language TEXT,
	  retweet_count INTEGER DEFAULT 0,
	  reply_count INTEGER DEFAULT 0,
	  like_count INTEGER DEFAULT 0,
	  quote_count INTEGER DEFAULT 0,
	  referenced_tweet_id TEXT,
	  FOREIGN KEY (author_id) REFERENCES authors(author_id),
	  FOREIGN KEY (referenced_tweet_id) REFERENCES tweets(tweet_id)
	);
	CREATE TABLE IF NOT EXISTS tweet_tokens (
	  tweet_id TEXT,
	  token TEXT NOT NULL,
	  confidence REAL DEFAULT 1.0,
	  PRIMARY KEY (tweet_id, token),
	  FOREIGN KEY (tweet_id) REFERENCES tweets(tweet_id)
	);
	CREATE TABLE IF NOT EXISTS vader_sentiment (
	  tweet_id TEXT PRIMARY KEY,
	  compound_score REAL NOT NULL,
	  positive_score REAL NOT NULL,
	  neutral_score REAL NOT NULL,
	  negative_score REAL NOT NULL,
	  processed_text TEXT NOT NULL,
	  FOREIGN KEY (tweet_id) REFERENCES tweets(tweet_id)
	);
	CREATE TABLE IF NOT EXISTS token_sentiment_timeseries (
	  timestamp DATETIME NOT NULL,
	  token TEXT NOT NULL,
	  interval TEXT NOT NULL,
	  sentiment_mean REAL NOT NULL,
	  sentiment_std REAL NOT NULL,
	  tweet_count INTEGER NOT NULL,
	  positive_ratio REAL NOT NULL,
	  negative_ratio REAL NOT NULL,
	  neutral_ratio REAL NOT NULL,
	  engagement_score REAL NOT NULL,
	  PRIMARY KEY (timestamp, token, interval)
	);
	CREATE INDEX IF NOT EXISTS idx_tweets_created_at ON tweets(created_at);
	CREATE INDEX IF NOT EXISTS idx_tweet_tokens_token ON tweet_tokens(token);
	CREATE INDEX IF NOT EXISTS idx_sentiment_timeseries_token ON token_sentiment_timeseries(token);
	CREATE INDEX IF NOT EXISTS idx_sentiment_timeseries_timestamp ON token_sentiment_timeseries(timestamp);
	`)
	return err
}

// Batch is a set of writes applied in one transaction. A failure rolls
// the whole batch back; readers never see a partially applied batch.
type Batch struct{ tx *sql.Tx }

// WriteBatch runs fn inside a transaction, committing on nil error and
// rolling back otherwise.
func (d *DB) WriteBatch(ctx context.Context, fn func(b *Batch) error) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(&Batch{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// UpsertAuthor writes an author row, overwriting any prior row for the
// same id (latest-write-wins).
func (b *Batch) UpsertAuthor(ctx context.Context, a model.Author) error {
	_, err := b.tx.ExecContext(ctx, `
	INSERT OR REPLACE INTO authors
	(author_id, username, display_name, followers_count, following_count, tweet_count, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		a.ID, a.Username, a.DisplayName, a.FollowersCount, a.FollowingCount, a.TweetCount,
		nullTime(a.CreatedAt))
	return err
}

// InsertTweetIfAbsent writes a tweet row unless one already exists for
// the id (first-write-wins). Reports whether a new row was created.
func (b *Batch) InsertTweetIfAbsent(ctx context.Context, t model.Tweet) (bool, error) {
	res, err := b.tx.ExecContext(ctx, `
	INSERT OR IGNORE INTO tweets
	(tweet_id, author_id, created_at, text, language, retweet_count, reply_count, like_count, quote_count, referenced_tweet_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, nullString(t.AuthorID), t.CreatedAt.UTC().Format(timeLayout), t.Text, nullString(t.Language),
		t.RetweetCount, t.ReplyCount, t.LikeCount, t.QuoteCount, nullString(t.ReferencedTweetID))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// InsertMentionIfAbsent records a tweet/token association. An existing
// mention is never overwritten.
func (b *Batch) InsertMentionIfAbsent(ctx context.Context, tweetID, token string, confidence float64) error {
	_, err := b.tx.ExecContext(ctx, `
	INSERT OR IGNORE INTO tweet_tokens (tweet_id, token, confidence) VALUES (?, ?, ?)`,
		tweetID, token, confidence)
	return err
}

// UpsertSentimentScore writes sentiment scores for a tweet, replacing
// any prior scores (sentiment may be recomputed).
func (b *Batch) UpsertSentimentScore(ctx context.Context, s model.SentimentScore) error {
	_, err := b.tx.ExecContext(ctx, `
	INSERT OR REPLACE INTO vader_sentiment
	(tweet_id, compound_score, positive_score, neutral_score, negative_score, processed_text)
	VALUES (?, ?, ?, ?, ?, ?)`,
		s.TweetID, s.Compound, s.Positive, s.Neutral, s.Negative, s.ProcessedText)
	return err
}

// ReplaceAggregateBucket writes a timeseries row, overwriting any prior
// row for the same (timestamp, token, interval) key.
func (b *Batch) ReplaceAggregateBucket(ctx context.Context, r model.AggregateRow) error {
	_, err := b.tx.ExecContext(ctx, `
	INSERT OR REPLACE INTO token_sentiment_timeseries
	(timestamp, token, interval, sentiment_mean, sentiment_std, tweet_count,
	 positive_ratio, negative_ratio, neutral_ratio, engagement_score)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Timestamp.UTC().Format(timeLayout), r.Token, r.Interval,
		r.SentimentMean, r.SentimentStd, r.TweetCount,
		r.PositiveRatio, r.NegativeRatio, r.NeutralRatio, r.EngagementScore)
	return err
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeLayout)
}
