package score

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPScorer calls an external sentiment service: POST {"text": ...}
// returning {"compound","positive","neutral","negative"}.
type HTTPScorer struct {
	url    string
	client *http.Client
}

func NewHTTPScorer(url string) *HTTPScorer {
	return &HTTPScorer{url: url, client: &http.Client{Timeout: 30 * time.Second}}
}

type scoreRequest struct {
	Text string `json:"text"`
}

type scoreResponse struct {
	Compound float64 `json:"compound"`
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

func (s *HTTPScorer) Score(ctx context.Context, processedText string) (Scores, error) {
	body, err := json.Marshal(scoreRequest{Text: processedText})
	if err != nil {
		return Scores{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return Scores{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return Scores{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return Scores{}, fmt.Errorf("scorer status %d", resp.StatusCode)
	}
	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Scores{}, err
	}
	return Scores{Compound: out.Compound, Positive: out.Positive, Neutral: out.Neutral, Negative: out.Negative}, nil
}
