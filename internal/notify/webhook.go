package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/subguard/internal/logger"
	"github.com/MrSnakeDoc/subguard/internal/utils"
)

// Webhook POSTs each notification as JSON to a fixed URL.
type Webhook struct {
	url    string
	client *http.Client
	logger logger.Logger
}

// NewWebhook creates a webhook notifier. timeout bounds each delivery.
func NewWebhook(url string, timeout time.Duration, log logger.Logger) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: log,
	}
}

// Notify delivers n. Any non-2xx answer is an error so the caller does not
// mark the reminder as sent.
func (w *Webhook) Notify(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer utils.DrainClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}

	w.logger.Debug("notification delivered",
		logger.String("id", n.ID),
		logger.Int("status", resp.StatusCode))
	return nil
}
