package data

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/galzzz/drops-exporter/internal/biz/domain"
)

const (
	jsonContentType = "application/json; charset=utf-8"
	maxBodyBytes    = 4 << 20
	userAgent       = "drops-exporter/1.0"
)

// HTTPTransport is the single outbound HTTP client shared by the whitelist
// source and the webhook. It is safe for concurrent use.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates a transport with the given request timeout
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPTransport{
		client: &http.Client{Timeout: timeout},
	}
}

// get issues a GET and returns the raw body of a 2xx response
func (t *HTTPTransport) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.TransportError{Op: "build GET request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Op: "GET", Err: err}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		drain(resp.Body)
		return nil, &domain.StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.TransportError{Op: "read body", Err: err}
	}
	return body, nil
}

// postJSON encodes v and POSTs it; the response body is discarded
func (t *HTTPTransport) postJSON(ctx context.Context, url string, v any, header http.Header) error {
	body, err := encodeJSON(v)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &domain.TransportError{Op: "build POST request", Err: err}
	}
	req.Header.Set("Content-Type", jsonContentType)
	req.Header.Set("User-Agent", userAgent)
	for k, vals := range header {
		for _, val := range vals {
			req.Header.Add(k, val)
		}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return &domain.TransportError{Op: "POST", Err: err}
	}
	defer resp.Body.Close()
	drain(resp.Body)

	if !isSuccess(resp.StatusCode) {
		return &domain.StatusError{Code: resp.StatusCode}
	}
	return nil
}

// encodeJSON is the codec used for every outbound body
func encodeJSON(v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode body: %w", err)
	}
	return body, nil
}

// decodeWhitelist parses a whitelist body. Blank bodies and a literal
// null yield domain.ErrEmptyPayload.
func decodeWhitelist(body []byte) (*domain.RemoteWhitelistPayload, error) {
	if strings.TrimSpace(string(body)) == "" {
		return nil, domain.ErrEmptyPayload
	}

	var payload *domain.RemoteWhitelistPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &domain.FormatError{Err: err}
	}
	if payload == nil {
		return nil, domain.ErrEmptyPayload
	}
	return payload, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, maxBodyBytes))
}
