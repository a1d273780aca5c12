// Package launchapi is the read-only client for the external launch-tracking
// API. The listing is paginated: each page carries a `next` URL which is
// followed until empty. The engine never writes to this API.
package launchapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/launchtrack/missioncontrol/model"
)

type Client struct {
	URL        string
	httpClient *http.Client
}

func New(url string) *Client {
	return &Client{
		URL:        url,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) getPage(ctx context.Context, pageURL string) (model.LaunchPage, error) {
	var page model.LaunchPage
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return page, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return page, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return page, &model.StatusCodeError{URL: pageURL, Code: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return page, err
	}
	err = json.Unmarshal(body, &page)
	return page, err
}

// FetchFirstPage returns only the first page of the listing. The listing is
// ordered by net ascending, so this bounds the freshness of the records that
// matter most: the soonest launches.
func (c *Client) FetchFirstPage(ctx context.Context) ([]model.ExternalLaunch, error) {
	page, err := c.getPage(ctx, c.URL)
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

// FetchAll walks the next-page cursor until the listing is exhausted and
// returns every record. An error part-way through a crawl discards the
// partial results; the caller's cache keeps serving the previous snapshot.
func (c *Client) FetchAll(ctx context.Context) ([]model.ExternalLaunch, error) {
	var all []model.ExternalLaunch
	next := c.URL
	for next != "" {
		page, err := c.getPage(ctx, next)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Results...)
		next = page.Next
	}
	return all, nil
}
