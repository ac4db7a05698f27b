package ingestion

import (
	"encoding/json"
	"fmt"
	"strings"

	"equity-noise-lab/internal/domain"
)

// wireItem is the collector-side evidence schema, shared by cache files and
// the live feed. Metric values ride in a nested object; quality flags from
// upstream audits are preserved on conversion.
type wireItem struct {
	ID          string   `json:"id"`
	Ticker      string   `json:"ticker"`
	SourceType  string   `json:"source_type"`
	Provider    string   `json:"provider"`
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	PublishedAt string   `json:"published_at_utc"`
	RetrievedAt string   `json:"retrieved_at_utc"`
	Excerpt     string   `json:"excerpt"`
	Tags        []string `json:"tags"`
	Metrics     struct {
		Sentiment  float64 `json:"sentiment"`
		Engagement int64   `json:"engagement"`
		Hype       float64 `json:"hype"`
		Shock      float64 `json:"shock"`
	} `json:"metrics"`
	QualityFlags []string `json:"quality_flags"`
}

// decodeEvidencePayload converts one raw collector payload into a domain item.
// The upstream "id" field is discarded: evidence identity is always the
// deterministic hash assigned during normalization.
func decodeEvidencePayload(payload []byte) (*domain.EvidenceItem, error) {
	var w wireItem
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, fmt.Errorf("decode evidence payload: %w", err)
	}
	return w.toDomain()
}

func (w *wireItem) toDomain() (*domain.EvidenceItem, error) {
	kind := domain.SourceKind(w.SourceType)
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown source_type %q", w.SourceType)
	}
	if w.Ticker == "" {
		return nil, fmt.Errorf("evidence payload missing ticker")
	}

	tags := make([]string, 0, len(w.Tags))
	for _, t := range w.Tags {
		tags = append(tags, strings.ToLower(t))
	}

	item := &domain.EvidenceItem{
		Ticker:      w.Ticker,
		SourceKind:  kind,
		Provider:    w.Provider,
		Title:       w.Title,
		URL:         w.URL,
		Excerpt:     w.Excerpt,
		PublishedAt: w.PublishedAt,
		RetrievedAt: w.RetrievedAt,
		Sentiment:   w.Metrics.Sentiment,
		Engagement:  w.Metrics.Engagement,
		Hype:        w.Metrics.Hype,
		Shock:       w.Metrics.Shock,
		Tags:        tags,
	}
	for _, f := range w.QualityFlags {
		item.AddFlag(f)
	}
	return item, nil
}
