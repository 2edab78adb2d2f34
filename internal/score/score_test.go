package score

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"memepulse/internal/logging"
	"memepulse/internal/model"
	"memepulse/internal/store"
)

// stubScorer scores by keyword, deterministically.
type stubScorer struct{ calls int }

func (s *stubScorer) Score(ctx context.Context, processedText string) (Scores, error) {
	s.calls++
	if strings.Contains(processedText, "moon") {
		return Scores{Compound: 0.8, Positive: 0.7, Neutral: 0.3}, nil
	}
	return Scores{Compound: -0.3, Negative: 0.4, Neutral: 0.6}, nil
}

func seedTweets(t *testing.T, db *store.DB, tweets ...model.Tweet) {
	t.Helper()
	ctx := context.Background()
	err := db.WriteBatch(ctx, func(b *store.Batch) error {
		for _, tw := range tweets {
			if _, err := b.InsertTweetIfAbsent(ctx, tw); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestDriverScoresUnscored(t *testing.T) {
	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	seedTweets(t, db,
		model.Tweet{ID: "1", CreatedAt: ts, Text: "$WIF to the MOON http://t.co/x @fren"},
		model.Tweet{ID: "2", CreatedAt: ts.Add(time.Minute), Text: "rugged again"},
	)

	scorer := &stubScorer{}
	d := NewDriver(db, scorer, 10, 0, 0, logging.New(nil))
	n, err := d.ProcessUnscored(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || scorer.calls != 2 {
		t.Fatalf("scored=%d calls=%d", n, scorer.calls)
	}
	// processed_text is the cleaned text that was scored.
	s, err := db.SentimentByID(ctx, "1")
	if err != nil {
		t.Fatal(err)
	}
	if s.ProcessedText != "$wif to the moon" {
		t.Fatalf("processed_text = %q", s.ProcessedText)
	}
	if s.Compound != 0.8 {
		t.Fatalf("compound = %v", s.Compound)
	}

	// Second run: nothing left to score.
	n, err = d.ProcessUnscored(ctx)
	if err != nil || n != 0 {
		t.Fatalf("second run scored %d err=%v", n, err)
	}
}

func TestDriverBatches(t *testing.T) {
	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var tweets []model.Tweet
	for i := 0; i < 5; i++ {
		tweets = append(tweets, model.Tweet{ID: string(rune('a' + i)), CreatedAt: ts.Add(time.Duration(i) * time.Second), Text: "gm"})
	}
	seedTweets(t, db, tweets...)
	d := NewDriver(db, &stubScorer{}, 2, 0, 0, logging.New(nil))
	n, err := d.ProcessUnscored(context.Background())
	if err != nil || n != 5 {
		t.Fatalf("scored %d err=%v", n, err)
	}
}

type failScorer struct{}

func (failScorer) Score(ctx context.Context, text string) (Scores, error) {
	return Scores{}, errors.New("scorer down")
}

func TestDriverSurfacesScorerError(t *testing.T) {
	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	seedTweets(t, db, model.Tweet{ID: "1", CreatedAt: time.Now().UTC(), Text: "gm"})
	d := NewDriver(db, failScorer{}, 10, 0, 0, logging.New(nil))
	if _, err := d.ProcessUnscored(context.Background()); err == nil {
		t.Fatal("expected scorer error surfaced")
	}
	n, _ := db.CountRows(context.Background(), "vader_sentiment")
	if n != 0 {
		t.Fatalf("failed batch partially persisted: %d rows", n)
	}
}

func TestHTTPScorer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"compound":0.5,"positive":0.6,"neutral":0.3,"negative":0.1}`))
	}))
	defer srv.Close()
	s := NewHTTPScorer(srv.URL)
	got, err := s.Score(context.Background(), "gm frens")
	if err != nil {
		t.Fatal(err)
	}
	if got.Compound != 0.5 || got.Positive != 0.6 || got.Neutral != 0.3 || got.Negative != 0.1 {
		t.Fatalf("bad scores: %+v", got)
	}
}

func TestHTTPScorerErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	if _, err := NewHTTPScorer(srv.URL).Score(context.Background(), "x"); err == nil {
		t.Fatal("expected status error")
	}
}
