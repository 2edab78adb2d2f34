package normalize

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadCSV(t *testing.T) {
	recs, err := readCSV(strings.NewReader("id,text,likes\n1,hello $WIF,5\n2,\"gm, frens\",0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0]["id"] != "1" || recs[0]["text"] != "hello $WIF" || recs[0]["likes"] != "5" {
		t.Fatalf("bad record: %v", recs[0])
	}
	if recs[1]["text"] != "gm, frens" {
		t.Fatalf("quoted cell mishandled: %v", recs[1])
	}
}

func TestReadCSVRaggedRows(t *testing.T) {
	recs, err := readCSV(strings.NewReader("id,text\n1,short row extra,cell\n2\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if _, ok := recs[1]["text"]; ok {
		t.Fatalf("missing cell should be absent: %v", recs[1])
	}
}

func TestReadCSVEmptyFileIsSourceError(t *testing.T) {
	if _, err := readCSV(strings.NewReader("")); err == nil {
		t.Fatal("expected error for headerless file")
	}
}

func TestReadJSONArray(t *testing.T) {
	path := writeFile(t, "a.json", `[
	  {"id_str": "1", "full_text": "gm $WIF", "favorite_count": 3,
	   "user": {"id_str": "u1", "screen_name": "degen", "name": "Degen",
	            "followers_count": 10, "friends_count": 20, "statuses_count": 30}},
	  "raw text tweet about bonk"
	]`)
	recs, err := ReadJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	r := recs[0]
	if r["id_str"] != "1" || r["full_text"] != "gm $WIF" {
		t.Fatalf("bad tweet fields: %v", r)
	}
	if r["author_id"] != "u1" || r["username"] != "degen" || r["display_name"] != "Degen" {
		t.Fatalf("author not flattened: %v", r)
	}
	if r["following_count"] != "20" || r["author_tweet_count"] != "30" {
		t.Fatalf("author metrics not flattened: %v", r)
	}
	if recs[1]["text"] != "raw text tweet about bonk" {
		t.Fatalf("raw string tweet mishandled: %v", recs[1])
	}
}

func TestReadJSONEnvelope(t *testing.T) {
	path := writeFile(t, "b.json", `{"data": [{"id": "5", "text": "hi",
	  "public_metrics": {"retweet_count": 2, "like_count": 9},
	  "entities": {"hashtags": [{"text": "bonk"}]}}]}`)
	recs, err := ReadJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	r := recs[0]
	if r["retweet_count"] != float64(2) || r["like_count"] != float64(9) {
		t.Fatalf("public_metrics not flattened: %v", r)
	}
	tokens, _ := r["tokens"].([]string)
	if len(tokens) != 1 || tokens[0] != "bonk" {
		t.Fatalf("hashtags not collected: %v", r["tokens"])
	}
}

func TestReadJSONSingleObject(t *testing.T) {
	path := writeFile(t, "c.json", `{"id": "7", "text": "solo", "tokens": ["wif", "bonk"]}`)
	recs, err := ReadJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0]["id"] != "7" {
		t.Fatalf("bad records: %v", recs)
	}
	tokens, _ := recs[0]["tokens"].([]string)
	if len(tokens) != 2 {
		t.Fatalf("tokens not collected: %v", recs[0]["tokens"])
	}
}

func TestReadJSONColumnar(t *testing.T) {
	path := writeFile(t, "d.json", `{"columns": {
	  "text": ["gm $WIF", "dumping $BONK"],
	  "created_at": ["2024-03-01T00:00:00Z", "2024-03-01T00:01:00Z"],
	  "like_count": [4, 1]
	}}`)
	recs, err := ReadJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(recs))
	}
	if recs[0]["text"] != "gm $WIF" || recs[0]["like_count"] != float64(4) {
		t.Fatalf("bad row 0: %v", recs[0])
	}
	if recs[1]["text"] != "dumping $BONK" || recs[1]["created_at"] != "2024-03-01T00:01:00Z" {
		t.Fatalf("bad row 1: %v", recs[1])
	}
}

func TestReadJSONMalformed(t *testing.T) {
	path := writeFile(t, "e.json", `{"tweets": [`)
	if _, err := ReadJSON(path); err == nil {
		t.Fatal("expected error for malformed container")
	}
}
