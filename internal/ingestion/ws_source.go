package ingestion

import (
	"context"

	"github.com/rs/zerolog"

	"equity-noise-lab/internal/domain"
	"equity-noise-lab/internal/feed"
)

// WSEvidenceSource provides real-time evidence via WebSocket subscription.
type WSEvidenceSource struct {
	client  *feed.Client
	tickers []string
	logger  zerolog.Logger
}

// NewWSEvidenceSource creates a new WebSocket-based evidence source
// subscribed to the given tickers.
func NewWSEvidenceSource(client *feed.Client, tickers []string, logger zerolog.Logger) *WSEvidenceSource {
	return &WSEvidenceSource{
		client:  client,
		tickers: tickers,
		logger:  logger,
	}
}

// Subscribe returns a channel of evidence items from the live feed.
// The channel is closed when the context is cancelled or the feed closes.
func (s *WSEvidenceSource) Subscribe(ctx context.Context) (<-chan *domain.EvidenceItem, error) {
	notifCh, err := s.client.Subscribe(ctx, feed.TickerFilter{Tickers: s.tickers})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Strs("tickers", s.tickers).Msg("subscribed to evidence feed")

	itemsCh := make(chan *domain.EvidenceItem, 100)

	go func() {
		defer close(itemsCh)

		for {
			select {
			case <-ctx.Done():
				return
			case notif, ok := <-notifCh:
				if !ok {
					s.logger.Warn().Msg("evidence feed channel closed")
					return
				}

				item, err := decodeEvidencePayload(notif.Payload)
				if err != nil {
					s.logger.Warn().Err(err).Msg("dropping undecodable feed payload")
					continue
				}

				select {
				case itemsCh <- item:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return itemsCh, nil
}
