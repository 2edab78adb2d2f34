package score

import (
	"context"

	"golang.org/x/time/rate"

	"memepulse/internal/logging"
	"memepulse/internal/metrics"
	"memepulse/internal/model"
	"memepulse/internal/store"
	"memepulse/internal/util"
)

// Scores is the scorer's output tuple, VADER convention: Compound in
// roughly [-1,1], the rest in [0,1].
type Scores struct {
	Compound float64
	Positive float64
	Neutral  float64
	Negative float64
}

// Scorer computes sentiment for cleaned tweet text. The implementation
// is an external collaborator; this package only drives it.
type Scorer interface {
	Score(ctx context.Context, processedText string) (Scores, error)
}

// Driver walks unscored tweets in batches, cleans their text, invokes
// the scorer under a rate limit, and persists the results.
type Driver struct {
	db        *store.DB
	scorer    Scorer
	limiter   *rate.Limiter
	batchSize int
	log       *logging.Logger
}

// NewDriver builds a driver. rps<=0 disables rate limiting.
func NewDriver(db *store.DB, scorer Scorer, batchSize int, rps float64, burst int, log *logging.Logger) *Driver {
	var limiter *rate.Limiter
	if rps > 0 {
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &Driver{db: db, scorer: scorer, limiter: limiter, batchSize: batchSize, log: log.With("score")}
}

// ProcessUnscored scores every tweet with no sentiment row and returns
// how many were scored. Each batch commits as one transaction; a scorer
// or store failure surfaces after the prior batches have committed.
func (d *Driver) ProcessUnscored(ctx context.Context) (int, error) {
	total := 0
	for {
		batch, err := d.db.UnscoredTweets(ctx, d.batchSize)
		if err != nil {
			return total, err
		}
		if len(batch) == 0 {
			return total, nil
		}
		scored := make([]model.SentimentScore, 0, len(batch))
		for _, t := range batch {
			if d.limiter != nil {
				if err := d.limiter.Wait(ctx); err != nil {
					return total, err
				}
			}
			processed := util.CleanTweetText(t.Text)
			s, err := d.scorer.Score(ctx, processed)
			if err != nil {
				return total, err
			}
			scored = append(scored, model.SentimentScore{
				TweetID:       t.ID,
				Compound:      s.Compound,
				Positive:      s.Positive,
				Neutral:       s.Neutral,
				Negative:      s.Negative,
				ProcessedText: processed,
			})
		}
		err = d.db.WriteBatch(ctx, func(b *store.Batch) error {
			for _, s := range scored {
				if err := b.UpsertSentimentScore(ctx, s); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return total, err
		}
		total += len(scored)
		metrics.TweetsScored.Add(float64(len(scored)))
		d.log.Info("batch_scored", map[string]any{"count": len(scored)})
	}
}
