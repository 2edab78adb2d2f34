package util

import "testing"

func TestNormalizeWhitespace(t *testing.T) {
	if got := NormalizeWhitespace("  a \t b\n c  "); got != "a b c" {
		t.Fatalf("got %q", got)
	}
}

func TestCleanTweetText(t *testing.T) {
	cases := map[string]string{
		"WAGMI $WIF https://t.co/abc":     "wagmi $wif",
		"ask @someone about #bonk season": "ask about bonk season",
		"visit www.example.com for alpha": "visit for alpha",
		"  spaced \n out \t text  ":       "spaced out text",
		"plain text stays":                "plain text stays",
	}
	for in, want := range cases {
		if got := CleanTweetText(in); got != want {
			t.Fatalf("CleanTweetText(%q) = %q, want %q", in, got, want)
		}
	}
}
