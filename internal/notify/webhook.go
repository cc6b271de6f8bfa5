package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	appLog "studyplan/internal/log"
)

// WebhookNotifier POSTs each message as JSON to a fixed URL.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(rawURL string) *WebhookNotifier {
	return &WebhookNotifier{
		url: rawURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// RequestPermission is granted for absolute http(s) URLs and denied otherwise.
func (w *WebhookNotifier) RequestPermission(context.Context) (Status, error) {
	u, err := url.Parse(w.url)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		appLog.Warn("webhook notifications denied", "url", redactURL(w.url))
		return StatusDenied, nil
	}
	return StatusGranted, nil
}

func (w *WebhookNotifier) Notify(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook %s: %w", redactURL(w.url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		appLog.Debug("webhook delivered", "url", redactURL(w.url), "status", resp.StatusCode)
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("webhook %s failed with status %d: %s", redactURL(w.url), resp.StatusCode, string(body))
}

// redactURL keeps scheme and host so that tokens in paths or query strings
// never reach the log.
//
//	https://hooks.example.com/services/T000/B000?token=abcd
//	-> https://hooks.example.com/...(redacted)
func redactURL(raw string) string {
	const redactedSuffix = "/...(redacted)"

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "webhook://...(redacted)"
	}
	return u.Scheme + "://" + u.Host + redactedSuffix
}
