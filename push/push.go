// Package push delivers end-user push notifications through the hosted push
// provider's REST API. Audience selection is by tag: devices subscribe to a
// notification window (e.g. TEN_MINUTES) and only receive pushes scoped to
// that tag.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/launchtrack/missioncontrol/model"
)

// Notification is one push dispatch.
type Notification struct {
	Heading     string
	Body        string
	ImageURL    string
	AudienceTag string
}

// Sender is what the notifier needs from the push provider.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// Client is the hosted push provider client.
type Client struct {
	URL        string // notification create endpoint
	AppID      string
	APIKey     string
	httpClient *http.Client
}

func New(url, appID, apiKey string) *Client {
	return &Client{
		URL:        url,
		AppID:      appID,
		APIKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type createNotificationBody struct {
	AppID      string            `json:"app_id"`
	ExternalID string            `json:"external_id"`
	Headings   map[string]string `json:"headings"`
	Contents   map[string]string `json:"contents"`
	BigPicture string            `json:"big_picture,omitempty"`
	Filters    []filter          `json:"filters"`
}

type filter struct {
	Field    string `json:"field"`
	Key      string `json:"key"`
	Relation string `json:"relation"`
	Value    string `json:"value"`
}

// Send dispatches a push to every device tagged with the notification's
// audience tag. The random external id makes an accidental duplicate
// dispatch idempotent on the provider side.
func (c *Client) Send(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(createNotificationBody{
		AppID:      c.AppID,
		ExternalID: uuid.NewString(),
		Headings:   map[string]string{"en": n.Heading},
		Contents:   map[string]string{"en": n.Body},
		BigPicture: n.ImageURL,
		Filters: []filter{
			{Field: "tag", Key: n.AudienceTag, Relation: "=", Value: "true"},
		},
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+c.APIKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &model.StatusCodeError{URL: c.URL, Code: resp.StatusCode}
	}
	return nil
}
