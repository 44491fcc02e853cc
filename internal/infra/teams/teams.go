// Package teams delivers notifications to a Microsoft Teams incoming webhook.
package teams

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/rojanmagar2001/sitemap404/internal/logger"
	"github.com/rojanmagar2001/sitemap404/internal/ports"
)

// ErrNoWebhook is returned when no webhook URL is configured.
var ErrNoWebhook = errors.New("teams: webhook URL is not set")

const summary = "404 check result"

// MessageCard is the legacy connector card accepted by Teams webhooks.
type MessageCard struct {
	Type    string `json:"@type"`
	Context string `json:"@context"`
	Summary string `json:"summary"`
	Text    string `json:"text"`
}

// Notifier posts MessageCards to a webhook, retrying transient failures.
type Notifier struct {
	webhookURL string
	client     ports.HTTPClient
	log        logger.Logger
	retries    uint64
	timeout    time.Duration

	initialInterval time.Duration
}

func New(webhookURL string, client ports.HTTPClient, log logger.Logger, retries int, timeout time.Duration) *Notifier {
	if retries < 0 {
		retries = 0
	}
	return &Notifier{
		webhookURL:      webhookURL,
		client:          client,
		log:             log,
		retries:         uint64(retries),
		timeout:         timeout,
		initialInterval: 500 * time.Millisecond,
	}
}

// Notify delivers text. Transport errors, 429 and 5xx responses are retried
// with exponential backoff; other non-2xx responses fail immediately.
func (n *Notifier) Notify(ctx context.Context, text string) error {
	if n.webhookURL == "" {
		return ErrNoWebhook
	}

	body, err := json.Marshal(MessageCard{
		Type:    "MessageCard",
		Context: "https://schema.org/extensions",
		Summary: summary,
		Text:    text,
	})
	if err != nil {
		return fmt.Errorf("teams: encode card: %w", err)
	}

	attempt := 0
	op := func() error {
		attempt++
		err := n.post(ctx, body)
		if err != nil {
			n.log.Warn("Teams webhook attempt failed",
				logger.Int("attempt", attempt),
				logger.Error(err))
		}
		return err
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = n.initialInterval
	b := backoff.WithContext(backoff.WithMaxRetries(eb, n.retries), ctx)

	if err := backoff.Retry(op, b); err != nil {
		return fmt.Errorf("teams: deliver after %d attempt(s): %w", attempt, err)
	}
	return nil
}

func (n *Notifier) post(ctx context.Context, body []byte) error {
	reqCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	statusErr := fmt.Errorf("webhook responded %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return statusErr
	}
	return backoff.Permanent(statusErr)
}
