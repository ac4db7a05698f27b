package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"equity-noise-lab/internal/domain"
)

// ComputeEvidenceID computes a deterministic evidence_id using SHA256.
// Formula: SHA256(ticker|source_kind|provider|title|published_at)
// Returns hex-encoded hash (64 characters).
//
// The URL is deliberately excluded: collectors frequently rewrite tracking
// parameters between retrievals, and URL-level duplicate handling belongs to
// the dedupe pass, not identity.
func ComputeEvidenceID(
	ticker string,
	sourceKind domain.SourceKind,
	provider string,
	title string,
	publishedAt string,
) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%s",
		ticker,
		string(sourceKind),
		provider,
		title,
		publishedAt,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
