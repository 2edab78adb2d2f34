package aggregate

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"memepulse/internal/logging"
	"memepulse/internal/model"
	"memepulse/internal/store"
)

// Sentiment classification thresholds on the compound score, VADER
// convention.
const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// Engagement weights: 2*retweets + likes + 1.5*replies + 1.5*quotes,
// summed across a bucket's rows.
const (
	retweetWeight = 2.0
	likeWeight    = 1.0
	replyWeight   = 1.5
	quoteWeight   = 1.5
)

// Aggregator recomputes per-token, per-interval sentiment buckets from
// joined tweet+sentiment rows. Recomputing unchanged input yields
// identical rows; only buckets whose underlying row set changed differ
// after new tweets arrive.
type Aggregator struct {
	db  *store.DB
	log *logging.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(db *store.DB, log *logging.Logger) *Aggregator {
	return &Aggregator{db: db, log: log.With("aggregate"), locks: make(map[string]*sync.Mutex)}
}

// keyLock serializes aggregation per (token, interval). Different keys
// run concurrently.
func (a *Aggregator) keyLock(tok, interval string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := tok + "\x00" + interval
	l, ok := a.locks[key]
	if !ok {
		l = &sync.Mutex{}
		a.locks[key] = l
	}
	return l
}

// Aggregate recomputes and replaces every bucket for one token and
// interval. No joined rows is a no-op success, not an error.
func (a *Aggregator) Aggregate(ctx context.Context, tok, interval string) error {
	width, err := ParseInterval(interval)
	if err != nil {
		return err
	}
	l := a.keyLock(tok, interval)
	l.Lock()
	defer l.Unlock()

	rows, err := a.db.JoinedRowsForToken(ctx, tok)
	if err != nil {
		return err
	}
	buckets := Buckets(rows, tok, interval, width)
	if len(buckets) == 0 {
		return nil
	}
	err = a.db.WriteBatch(ctx, func(b *store.Batch) error {
		for _, r := range buckets {
			if err := b.ReplaceAggregateBucket(ctx, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	a.log.Info("aggregated", map[string]any{"token": tok, "interval": interval, "buckets": len(buckets)})
	return nil
}

// AggregateAll recomputes every mentioned token across the given
// intervals.
func (a *Aggregator) AggregateAll(ctx context.Context, intervals []string) error {
	tokens, err := a.db.Tokens(ctx)
	if err != nil {
		return err
	}
	for _, interval := range intervals {
		for _, tok := range tokens {
			if err := a.Aggregate(ctx, tok, interval); err != nil {
				return err
			}
		}
	}
	return nil
}

// Buckets partitions joined rows into interval buckets and computes the
// aggregate metrics for each, in ascending bucket order.
func Buckets(rows []model.JoinedRow, tok, interval string, width time.Duration) []model.AggregateRow {
	grouped := make(map[time.Time][]model.JoinedRow)
	for _, r := range rows {
		key := Truncate(r.CreatedAt, width)
		grouped[key] = append(grouped[key], r)
	}
	keys := make([]time.Time, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	out := make([]model.AggregateRow, 0, len(keys))
	for _, k := range keys {
		out = append(out, bucketMetrics(k, tok, interval, grouped[k]))
	}
	return out
}

func bucketMetrics(ts time.Time, tok, interval string, rows []model.JoinedRow) model.AggregateRow {
	n := float64(len(rows))
	var sum float64
	var pos, neg, neu int
	var engagement float64
	for _, r := range rows {
		sum += r.Compound
		switch {
		case r.Compound >= positiveThreshold:
			pos++
		case r.Compound <= negativeThreshold:
			neg++
		default:
			neu++
		}
		engagement += retweetWeight*float64(r.RetweetCount) +
			likeWeight*float64(r.LikeCount) +
			replyWeight*float64(r.ReplyCount) +
			quoteWeight*float64(r.QuoteCount)
	}
	mean := sum / n

	// Population standard deviation, computed from squared deviations
	// for stability on near-constant inputs. One row yields 0.
	var sq float64
	for _, r := range rows {
		d := r.Compound - mean
		sq += d * d
	}
	std := math.Sqrt(sq / n)

	return model.AggregateRow{
		Timestamp:       ts,
		Token:           tok,
		Interval:        interval,
		SentimentMean:   mean,
		SentimentStd:    std,
		TweetCount:      len(rows),
		PositiveRatio:   float64(pos) / n,
		NegativeRatio:   float64(neg) / n,
		NeutralRatio:    float64(neu) / n,
		EngagementScore: engagement,
	}
}
