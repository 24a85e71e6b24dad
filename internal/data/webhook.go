package data

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/galzzz/drops-exporter/internal/biz/domain"
	"github.com/galzzz/drops-exporter/internal/biz/repo"
)

const tokenTTL = 5 * time.Minute

// webhookRepo posts drop notifications to the webhook
type webhookRepo struct {
	http          *HTTPTransport
	signingSecret []byte
	now           func() time.Time
}

// NewWebhookRepo creates a new webhook repository. When signingSecret is
// set every request carries an HS256 bearer token over the payload.
func NewWebhookRepo(transport *HTTPTransport, signingSecret string) repo.WebhookRepo {
	r := &webhookRepo{
		http: transport,
		now:  time.Now,
	}
	if signingSecret != "" {
		r.signingSecret = []byte(signingSecret)
	}
	return r
}

// Post sends payload as JSON
func (r *webhookRepo) Post(ctx context.Context, endpointURL string, payload domain.NotificationPayload) error {
	var header http.Header
	if len(r.signingSecret) > 0 {
		token, err := r.sign(payload)
		if err != nil {
			return err
		}
		header = http.Header{"Authorization": []string{"Bearer " + token}}
	}
	return r.http.postJSON(ctx, endpointURL, payload, header)
}

func (r *webhookRepo) sign(payload domain.NotificationPayload) (string, error) {
	now := r.now()
	claims := jwt.MapClaims{
		"item":     payload.Item,
		"quantity": payload.Quantity,
		"iat":      now.Unix(),
		"exp":      now.Add(tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.signingSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign webhook token: %w", err)
	}
	return token, nil
}
