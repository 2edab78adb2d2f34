package normalize

import (
	"errors"
	"os"

	"github.com/tidwall/gjson"
)

// envelopeKeys are the wrapper fields JSON dumps hide their tweet
// arrays under, checked in order.
var envelopeKeys = []string{"tweets", "data", "results"}

// ReadJSON reads one JSON dump into raw records. Accepted shapes: a
// top-level array, an envelope object, a single tweet object, raw
// string tweets inside any of those, and column-oriented objects
// (one array per field).
func ReadJSON(path string) ([]RawRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(b) {
		return nil, errors.New("invalid JSON container")
	}
	root := gjson.ParseBytes(b)

	var docs []gjson.Result
	switch {
	case root.IsArray():
		docs = root.Array()
	case root.IsObject():
		for _, key := range envelopeKeys {
			if arr := root.Get(key); arr.IsArray() {
				docs = arr.Array()
				break
			}
		}
		if docs == nil {
			if cols, ok := columnarRecords(root); ok {
				return cols, nil
			}
			docs = []gjson.Result{root}
		}
	default:
		return nil, errors.New("unsupported JSON shape")
	}

	out := make([]RawRecord, 0, len(docs))
	for _, doc := range docs {
		out = append(out, jsonRecord(doc))
	}
	return out, nil
}

func jsonRecord(doc gjson.Result) RawRecord {
	rec := make(RawRecord)
	if doc.Type == gjson.String {
		// Raw-text tweet; identity and timestamp fall back downstream.
		rec["text"] = doc.String()
		return rec
	}
	doc.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		switch {
		case name == "user" || name == "author":
			flattenAuthor(rec, value)
		case name == "public_metrics":
			value.ForEach(func(k, v gjson.Result) bool {
				rec[k.String()] = v.Value()
				return true
			})
		case name == "entities":
			if tags := value.Get("hashtags"); tags.IsArray() {
				rec["tokens"] = appendTokens(rec["tokens"], tags, "text")
			}
		case name == "tokens":
			rec["tokens"] = appendTokens(rec["tokens"], value, "")
		case value.IsObject() || value.IsArray():
			// Unrecognized nested structure, dropped.
		default:
			rec[name] = value.Value()
		}
		return true
	})
	return rec
}

func flattenAuthor(rec RawRecord, user gjson.Result) {
	if !user.IsObject() {
		return
	}
	if id := first(user, "id_str", "id"); id != "" {
		rec["author_id"] = id
	}
	if u := first(user, "screen_name", "username"); u != "" {
		rec["username"] = u
	}
	if n := user.Get("name"); n.Exists() {
		rec["display_name"] = n.String()
	}
	metrics := user
	if pm := user.Get("public_metrics"); pm.IsObject() {
		metrics = pm
	}
	if v := metrics.Get("followers_count"); v.Exists() {
		rec["followers_count"] = v.Value()
	}
	if v := first(metrics, "friends_count", "following_count"); v != "" {
		rec["following_count"] = v
	}
	if v := first(metrics, "statuses_count", "tweet_count"); v != "" {
		rec["author_tweet_count"] = v
	}
	if v := user.Get("created_at"); v.Exists() {
		rec["author_created_at"] = v.String()
	}
}

// appendTokens collects a token list value (array of strings or objects
// carrying field, or one bare string) onto any tokens already found.
func appendTokens(existing any, value gjson.Result, field string) []string {
	out, _ := existing.([]string)
	add := func(r gjson.Result) {
		s := r.String()
		if field != "" && r.IsObject() {
			s = r.Get(field).String()
		}
		if s != "" {
			out = append(out, s)
		}
	}
	if value.IsArray() {
		for _, v := range value.Array() {
			add(v)
		}
	} else {
		add(value)
	}
	return out
}

func first(doc gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := doc.Get(k); v.Exists() {
			return v.String()
		}
	}
	return ""
}
