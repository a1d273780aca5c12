// Package alert delivers operator-facing messages to a webhook channel.
// Delivery is best effort: the channel suppresses identical messages within
// a short upstream window, and a suppressed alert is not an error.
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/launchtrack/missioncontrol/model"
)

// Sender is what the engine needs from the alert channel.
type Sender interface {
	Post(ctx context.Context, title, body string) error
	PostEmbed(ctx context.Context, embed Embed) error
}

// Embed is a rich operator alert, used for archival notices.
type Embed struct {
	Title       string       `json:"title"`
	URL         string       `json:"url,omitempty"`
	Description string       `json:"description,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Image       *EmbedImage  `json:"image,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

type EmbedImage struct {
	URL string `json:"url"`
}

// Webhook posts alerts to a single webhook URL.
type Webhook struct {
	URL        string
	httpClient *http.Client
}

func NewWebhook(url string) *Webhook {
	return &Webhook{URL: url, httpClient: &http.Client{Timeout: 15 * time.Second}}
}

func (w *Webhook) Post(ctx context.Context, title, body string) error {
	content := title
	if body != "" {
		content += "\n" + body
	}
	return w.post(ctx, map[string]interface{}{"content": content})
}

func (w *Webhook) PostEmbed(ctx context.Context, embed Embed) error {
	return w.post(ctx, map[string]interface{}{"embeds": []Embed{embed}})
}

func (w *Webhook) post(ctx context.Context, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", w.URL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// 2xx and 204 are success; 429 means the channel suppressed or rate
	// limited the message, which is tolerated
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusTooManyRequests {
		return &model.StatusCodeError{URL: w.URL, Code: resp.StatusCode}
	}
	return nil
}
