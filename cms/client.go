// Package cms is the client for the content store that holds the curated
// mission and rocket documents. The engine reads whole collections, fetches
// display enrichment for notifications, and patches the small set of fields
// reconciliation is authorised to change. Patches are fire-and-forget:
// errors are returned for logging but never retried inline, because the next
// reconciliation tick will re-emit the same patch.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/launchtrack/missioncontrol/model"
)

// Client talks to one content store dataset using one access token.
type Client struct {
	BaseURL    string
	Dataset    string
	Token      string
	httpClient *http.Client
}

// New creates a content store client. baseURL is the root of the store's
// HTTP API, e.g. "https://example.api.store.io/v1".
func New(baseURL, dataset, token string) *Client {
	return &Client{
		BaseURL:    baseURL,
		Dataset:    dataset,
		Token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// queryResponse wraps every query result the store returns.
type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

type mutationRequest struct {
	Mutations []mutation `json:"mutations"`
}

type mutation struct {
	Patch *patchMutation `json:"patch,omitempty"`
}

type patchMutation struct {
	ID     string                 `json:"id"`
	Set    map[string]interface{} `json:"set,omitempty"`
	Append *appendMutation        `json:"insert,omitempty"`
}

type appendMutation struct {
	After string        `json:"after"`
	Items []interface{} `json:"items"`
}

// Query runs a selector against the dataset and decodes the result into out.
func (c *Client) Query(ctx context.Context, selector string, out interface{}) error {
	u := fmt.Sprintf("%s/data/query/%s?query=%s", c.BaseURL, c.Dataset, url.QueryEscape(selector))
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &model.StatusCodeError{URL: u, Code: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var qr queryResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return err
	}
	return json.Unmarshal(qr.Result, out)
}

// Missions returns every mission document in the dataset.
func (c *Client) Missions(ctx context.Context) ([]model.Mission, error) {
	var missions []model.Mission
	err := c.Query(ctx, `*[_type=="mission"]`, &missions)
	return missions, err
}

// Rocket fetches the rocket document referenced by a mission, resolving the
// image asset to a plain URL for notification enrichment.
func (c *Client) Rocket(ctx context.Context, ref string) (model.Rocket, error) {
	var rockets []model.Rocket
	selector := fmt.Sprintf(`*[_type=="rocket" && _id=="%s"]{..., "imageUrl": image.asset->url}`, ref)
	if err := c.Query(ctx, selector, &rockets); err != nil {
		return model.Rocket{}, err
	}
	if len(rockets) == 0 {
		return model.Rocket{}, &model.RocketNotFoundError{Ref: ref}
	}
	return rockets[0], nil
}

// Patch sets fields on a single document.
func (c *Client) Patch(ctx context.Context, id string, fields map[string]interface{}) error {
	return c.mutate(ctx, mutation{Patch: &patchMutation{ID: id, Set: fields}})
}

// AppendRelation appends references to an array field on a document, e.g.
// boosters on a mission.
func (c *Client) AppendRelation(ctx context.Context, id string, field string, refs []string) error {
	items := make([]interface{}, len(refs))
	for i, ref := range refs {
		items[i] = map[string]string{"_ref": ref}
	}
	return c.mutate(ctx, mutation{Patch: &patchMutation{
		ID:     id,
		Append: &appendMutation{After: field + "[-1]", Items: items},
	}})
}

func (c *Client) mutate(ctx context.Context, m mutation) error {
	u := fmt.Sprintf("%s/data/mutate/%s", c.BaseURL, c.Dataset)
	payload, err := json.Marshal(mutationRequest{Mutations: []mutation{m}})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", u, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &model.StatusCodeError{URL: u, Code: resp.StatusCode}
	}
	return nil
}
