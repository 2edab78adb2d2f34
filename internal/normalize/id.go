package normalize

import (
	"crypto/sha256"
	"encoding/hex"

	"memepulse/internal/util"
)

// FallbackID derives a stable identity for a record with no native
// tweet id: SHA-256 over normalized text plus the source's raw
// created_at string, truncated to 16 bytes. The raw string is used so
// the id survives re-ingestion even when the date is missing or
// unparseable; the ingestion-clock fallback never leaks into identity.
// Two sources exporting the same text with the same date collapse onto
// one row, which is the dedup behavior ingestion wants.
func FallbackID(text, rawCreatedAt string) string {
	h := sha256.New()
	h.Write([]byte(util.NormalizeWhitespace(text)))
	h.Write([]byte{0})
	h.Write([]byte(rawCreatedAt))
	return "sha:" + hex.EncodeToString(h.Sum(nil)[:16])
}
