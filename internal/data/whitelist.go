package data

import (
	"context"

	"github.com/galzzz/drops-exporter/internal/biz/domain"
	"github.com/galzzz/drops-exporter/internal/biz/repo"
)

// whitelistSource fetches the whitelist over HTTP
type whitelistSource struct {
	http *HTTPTransport
}

// NewWhitelistSource creates a new whitelist source
func NewWhitelistSource(transport *HTTPTransport) repo.WhitelistSource {
	return &whitelistSource{http: transport}
}

// Fetch GETs endpointURL and decodes the whitelist payload
func (s *whitelistSource) Fetch(ctx context.Context, endpointURL string) (*domain.RemoteWhitelistPayload, error) {
	body, err := s.http.get(ctx, endpointURL)
	if err != nil {
		return nil, err
	}
	return decodeWhitelist(body)
}
