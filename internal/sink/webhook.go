package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bilgisen/zenstudio/internal/models"
)

// Webhook posts exports to an HTTP endpoint. The file name travels in the
// X-Export-Name header; a JSON response with a "location" field overrides
// the returned location.
type Webhook struct {
	client *resty.Client
	url    string
	token  string
}

func NewWebhook(url, token string) *Webhook {
	return &Webhook{
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetRetryCount(3).
			SetRetryWaitTime(2 * time.Second).
			SetRetryMaxWaitTime(10 * time.Second),
		url:   url,
		token: token,
	}
}

type webhookResponse struct {
	Location string `json:"location"`
}

func (w *Webhook) Deliver(ctx context.Context, name, contentType string, data []byte) (string, error) {
	req := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("X-Export-Name", name).
		SetBody(data)
	if w.token != "" {
		req.SetAuthToken(w.token)
	}

	resp, err := req.Post(w.url)
	if err != nil {
		return "", fmt.Errorf("%w: failed to post export to %s: %w", models.ErrIO, w.url, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: unexpected status code %d from %s", models.ErrIO, resp.StatusCode(), w.url)
	}

	var out webhookResponse
	if strings.Contains(resp.Header().Get("Content-Type"), "json") {
		if err := json.Unmarshal(resp.Body(), &out); err == nil && out.Location != "" {
			return out.Location, nil
		}
	}
	return strings.TrimRight(w.url, "/") + "#" + name, nil
}
