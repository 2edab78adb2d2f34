package token

import (
	"reflect"
	"testing"
)

func TestExtractCashtagAndAllowlist(t *testing.T) {
	ex := NewExtractor()
	got := ex.Extract("Just bought more $WIF and some bonk today!")
	want := []string{"BONK", "WIF"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExtractAliasesResolveToCanonical(t *testing.T) {
	ex := NewExtractor()
	got := ex.Extract("dogwifhat is flying, solana too, shibainu lagging")
	want := []string{"SHIB", "SOL", "WIF"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExtractStripsNoiseAffixes(t *testing.T) {
	ex := NewExtractor()
	got := ex.Extract("$THE_SLERF and $WOJAK_TOKEN looking strong")
	want := []string{"SLERF", "WOJAK"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExtractMergesBothMethods(t *testing.T) {
	// Found as cashtag and as bare allow-list word: one entry.
	ex := NewExtractor()
	got := ex.Extract("$BONK bonk BONK")
	want := []string{"BONK"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExtractRejectsShortAndEmpty(t *testing.T) {
	ex := NewExtractor()
	if got := ex.Extract("$a is too short"); len(got) != 0 {
		t.Fatalf("expected no tokens, got %v", got)
	}
	if got := ex.Extract(""); len(got) != 0 {
		t.Fatalf("expected no tokens for empty text, got %v", got)
	}
	if got := ex.Extract("   \n\t "); len(got) != 0 {
		t.Fatalf("expected no tokens for blank text, got %v", got)
	}
}

func TestExtractIgnoresUnknownBareWords(t *testing.T) {
	// Fixed vocabulary: a novel ticker without $ is missed on purpose.
	ex := NewExtractor()
	if got := ex.Extract("NEWCOIN123 just launched"); len(got) != 0 {
		t.Fatalf("expected no tokens, got %v", got)
	}
}

func TestExtractorExtraTokens(t *testing.T) {
	ex := NewExtractor("giga")
	got := ex.Extract("giga is pumping")
	want := []string{"GIGA"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCanonical(t *testing.T) {
	ex := NewExtractor()
	cases := map[string]string{
		"wif":        "WIF",
		"dogwifhat":  "WIF",
		"pepecoin":   "PEPE",
		"the_slerf":  "SLERF",
		"x":          "",
		"bad token!": "",
	}
	for in, want := range cases {
		if got := ex.Canonical(in); got != want {
			t.Fatalf("Canonical(%q) = %q, want %q", in, got, want)
		}
	}
}
