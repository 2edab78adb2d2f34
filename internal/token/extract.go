package token

import (
	"regexp"
	"sort"
	"strings"
)

var (
	cashtagRe  = regexp.MustCompile(`\$([a-zA-Z0-9_]+)`)
	wordRe     = regexp.MustCompile(`\b[A-Za-z0-9_]+\b`)
	prefixRe   = regexp.MustCompile(`^(?:THE|TOKEN|COIN)_*`)
	suffixRe   = regexp.MustCompile(`_*(?:TOKEN|COIN)$`)
	validateRe = regexp.MustCompile(`^[A-Z0-9_]+$`)
)

// defaultAliases maps tracked symbols and their spelling variants onto
// the canonical symbol. Bare-word matching is restricted to this set;
// novel tickers are only picked up via the $SYMBOL form.
var defaultAliases = map[string]string{
	// Solana ecosystem
	"SOL": "SOL", "SOLANA": "SOL",
	// Popular meme coins
	"BONK": "BONK", "BONKZ": "BONK",
	"WIF": "WIF", "DOGWIFHAT": "WIF", "DOGHAT": "WIF",
	"MYRO": "MYRO", "MYROTHEDOG": "MYRO",
	"POPCAT": "POPCAT", "POP": "POPCAT",
	"BOOK": "BOOK", "BOOKMAP": "BOOK",
	"BOME": "BOME", "BOMEMAPPER": "BOME",
	"SAMO": "SAMO", "SAMOYEDCOIN": "SAMO",
	"GUANO": "GUANO", "GUANOAPES": "GUANO",
	"NOPE": "NOPE", "NOPETOKEN": "NOPE",
	"POPKING": "POPKING", "POPK": "POPKING",
	"DOGE": "DOGE", "DOGECOIN": "DOGE",
	"PEPE": "PEPE", "PEPECOIN": "PEPE",
	"SHIB": "SHIB", "SHIBAINU": "SHIB",
	"FLOKI": "FLOKI",
	"WOJAK": "WOJAK",
	"COPE":  "COPE",
	"DUST":  "DUST",
	"MEME":  "MEME",
	"SLERF": "SLERF",
	"TOAD":  "TOAD",
}

// Extractor finds token mentions in tweet text. It is a deliberately
// fixed-vocabulary lexical matcher: cashtags plus an allow-list of known
// symbols and aliases. Deterministic and side-effect-free.
type Extractor struct {
	aliases map[string]string
}

// NewExtractor returns an extractor with the default allow-list plus any
// extra symbols (added as their own canonical form).
func NewExtractor(extra ...string) *Extractor {
	aliases := make(map[string]string, len(defaultAliases)+len(extra))
	for k, v := range defaultAliases {
		aliases[k] = v
	}
	for _, s := range extra {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			aliases[s] = s
		}
	}
	return &Extractor{aliases: aliases}
}

// Extract returns the sorted set of token symbols mentioned in text.
// Empty or unusable text yields an empty set.
func (e *Extractor) Extract(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	upper := strings.ToUpper(text)

	candidates := make(map[string]struct{})
	for _, m := range cashtagRe.FindAllStringSubmatch(upper, -1) {
		candidates[m[1]] = struct{}{}
	}
	for _, w := range wordRe.FindAllString(upper, -1) {
		if canonical, ok := e.aliases[w]; ok {
			candidates[canonical] = struct{}{}
		}
	}

	out := make(map[string]struct{}, len(candidates))
	for c := range candidates {
		c = prefixRe.ReplaceAllString(c, "")
		c = suffixRe.ReplaceAllString(c, "")
		if len(c) >= 2 && validateRe.MatchString(c) {
			out[c] = struct{}{}
		}
	}

	tokens := make([]string, 0, len(out))
	for t := range out {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	return tokens
}

// Canonical maps a raw symbol through alias resolution and noise-affix
// stripping, returning "" when the result is not a valid symbol. Used
// for explicit token fields carried by source records.
func (e *Extractor) Canonical(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if canonical, ok := e.aliases[s]; ok {
		s = canonical
	}
	s = prefixRe.ReplaceAllString(s, "")
	s = suffixRe.ReplaceAllString(s, "")
	if len(s) < 2 || !validateRe.MatchString(s) {
		return ""
	}
	return s
}
