package toggl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"toggl-opsync/internal/domain"
	"toggl-opsync/internal/errors"
	"toggl-opsync/internal/logging"
)

// Client is an authenticated Toggl Track API v9 client.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// NewClient creates a new Toggl client. baseURL is the API root without a
// trailing slash, e.g. "https://api.track.toggl.com/api/v9".
func NewClient(baseURL, apiToken string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  baseURL,
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// timeEntry mirrors the Toggl v9 wire format for a time entry.
// The API docs claim description can be null; in practice it is an empty
// string, so a plain string field covers both.
type timeEntry struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	Duration    int64      `json:"duration"`
	Start       time.Time  `json:"start"`
	Stop        *time.Time `json:"stop"`
}

// TimeEntries fetches all time entries started at or after since.
// Deleted entries are not reliably distinguishable in this endpoint, so
// entries removed on the Toggl side may still appear.
func (c *Client) TimeEntries(ctx context.Context, since time.Time) ([]domain.TimeEntry, error) {
	url := fmt.Sprintf("%s/me/time_entries?since=%d", c.baseURL, since.Unix())
	logging.Debugf("toggl: GET %s\n", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewTransportError("build toggl request", err)
	}
	// Toggl basic auth: the API token is the username, the password is the
	// literal "api_token".
	req.SetBasicAuth(c.apiToken, "api_token")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewTransportError("fetch toggl time entries", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.NewUnexpectedStatusError("fetch toggl time entries", resp.StatusCode, string(body))
	}

	var wire []timeEntry
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, errors.NewResponseShapeError("decode toggl time entries", err)
	}

	entries := make([]domain.TimeEntry, 0, len(wire))
	for _, w := range wire {
		entries = append(entries, domain.TimeEntry{
			ID:              w.ID,
			Description:     w.Description,
			DurationSeconds: w.Duration,
			Start:           w.Start,
			Stop:            w.Stop,
		})
	}
	logging.Debugf("toggl: fetched %d entries since %s\n", len(entries), since.Format(time.RFC3339))
	return entries, nil
}
