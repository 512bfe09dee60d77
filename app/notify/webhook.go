package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/lysyi3m/birdwatcher/app/feed"
)

const maxErrorBody = 4096

type Webhook struct {
	url        string
	httpClient *http.Client
	renderer   *Renderer
}

func NewWebhook(url string, httpClient *http.Client, renderer *Renderer) *Webhook {
	return &Webhook{
		url:        url,
		httpClient: httpClient,
		renderer:   renderer,
	}
}

// Deliver posts post to the webhook. A non-2xx answer is returned as a
// *DeliveryError; there is no retry.
func (w *Webhook) Deliver(ctx context.Context, post *feed.Post, channel Channel) error {
	payload := w.renderer.Run(post, channel)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &DeliveryError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	slog.Info("Webhook sent successfully", "post_id", post.ID, "status", resp.StatusCode, "embeds", len(payload.Embeds))
	return nil
}
