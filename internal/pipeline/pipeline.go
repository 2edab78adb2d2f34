package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"memepulse/internal/aggregate"
	"memepulse/internal/logging"
	"memepulse/internal/metrics"
	"memepulse/internal/model"
	"memepulse/internal/normalize"
	"memepulse/internal/score"
	"memepulse/internal/store"
)

// Stats summarizes one ingestion run.
type Stats struct {
	Files          int
	FilesSkipped   int
	Records        int
	RecordsSkipped int
	TweetsInserted int
	TweetsScored   int
}

// Pipeline wires the normalizer, store, scorer driver, and aggregator
// into batch runs. Normalization fans out across workers; store writes
// stay serialized, one transaction per source file.
type Pipeline struct {
	db      *store.DB
	norm    *normalize.Normalizer
	agg     *aggregate.Aggregator
	workers int
	log     *logging.Logger
}

func New(db *store.DB, norm *normalize.Normalizer, agg *aggregate.Aggregator, workers int, log *logging.Logger) *Pipeline {
	if workers <= 0 {
		workers = 1
	}
	return &Pipeline{db: db, norm: norm, agg: agg, workers: workers, log: log.With("pipeline")}
}

// IngestDir normalizes and stores every .csv and .json file under dir.
// A bad file or bad record never halts the run; only store transaction
// failures do.
func (p *Pipeline) IngestDir(ctx context.Context, dir string) (Stats, error) {
	files, err := discoverFiles(dir)
	if err != nil {
		return Stats{}, err
	}
	return p.IngestFiles(ctx, files)
}

// IngestFiles ingests an explicit file list. Files are normalized
// concurrently and written in list order.
func (p *Pipeline) IngestFiles(ctx context.Context, files []string) (Stats, error) {
	var stats Stats
	batches := make([][]model.NormalizedTweet, len(files))
	issues := make([][]normalize.Issue, len(files))
	readErrs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records, err := readSource(path)
			if err != nil {
				readErrs[i] = err
				return nil
			}
			batches[i], issues[i] = p.norm.Normalize(records, filepath.Base(path))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	for i, path := range files {
		if readErrs[i] != nil {
			// Source-level failure: skip the file, keep the run going.
			stats.FilesSkipped++
			metrics.FilesSkipped.Inc()
			p.log.Error("source_skipped", map[string]any{"file": path, "error": readErrs[i].Error()})
			continue
		}
		stats.Files++
		for _, issue := range issues[i] {
			if issue.Skipped {
				stats.RecordsSkipped++
				metrics.RecordsSkipped.Inc()
			}
			p.log.Warn("record_issue", map[string]any{"source": issue.Source, "index": issue.Index, "reason": issue.Reason})
		}
		inserted, err := p.writeBatch(ctx, batches[i])
		if err != nil {
			// Transaction failures are never swallowed; the batch was
			// rolled back in full.
			return stats, err
		}
		stats.Records += len(batches[i])
		stats.TweetsInserted += inserted
		metrics.RecordsNormalized.Add(float64(len(batches[i])))
		metrics.TweetsInserted.Add(float64(inserted))
	}
	return stats, nil
}

// writeBatch persists one source file's normalized tweets as a single
// transaction and reports how many tweet rows were newly created.
func (p *Pipeline) writeBatch(ctx context.Context, nts []model.NormalizedTweet) (int, error) {
	inserted := 0
	err := p.db.WriteBatch(ctx, func(b *store.Batch) error {
		for _, nt := range nts {
			if nt.Author != nil {
				if err := b.UpsertAuthor(ctx, *nt.Author); err != nil {
					return err
				}
			}
			created, err := b.InsertTweetIfAbsent(ctx, nt.Tweet)
			if err != nil {
				return err
			}
			if created {
				inserted++
			}
			for _, tok := range nt.Tokens {
				if err := b.InsertMentionIfAbsent(ctx, nt.Tweet.ID, tok, 1.0); err != nil {
					return err
				}
			}
			if nt.Score != nil {
				if err := b.UpsertSentimentScore(ctx, *nt.Score); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// RunOnce executes one full pass: ingest the data directory, score
// unscored tweets, recompute every (token, interval) bucket.
func (p *Pipeline) RunOnce(ctx context.Context, dir string, driver *score.Driver, intervals []string) (Stats, error) {
	start := time.Now()
	metrics.IngestRuns.Inc()
	stats, err := p.IngestDir(ctx, dir)
	if err != nil {
		metrics.IngestErrors.Inc()
		return stats, err
	}
	if driver != nil {
		n, err := driver.ProcessUnscored(ctx)
		stats.TweetsScored = n
		if err != nil {
			metrics.IngestErrors.Inc()
			return stats, err
		}
	}
	aggStart := time.Now()
	if err := p.agg.AggregateAll(ctx, intervals); err != nil {
		metrics.IngestErrors.Inc()
		return stats, err
	}
	for _, interval := range intervals {
		metrics.AggregationRuns.WithLabelValues(interval).Inc()
	}
	metrics.ObserveAggregationDuration(aggStart)
	metrics.ObserveIngestDuration(start)
	p.log.Info("run_once", map[string]any{
		"files": stats.Files, "files_skipped": stats.FilesSkipped,
		"records": stats.Records, "records_skipped": stats.RecordsSkipped,
		"inserted": stats.TweetsInserted, "scored": stats.TweetsScored,
	})
	return stats, nil
}

func discoverFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv", ".json":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func readSource(path string) ([]normalize.RawRecord, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return normalize.ReadCSV(path)
	}
	return normalize.ReadJSON(path)
}
