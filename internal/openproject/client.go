package openproject

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"toggl-opsync/internal/errors"
	"toggl-opsync/internal/logging"
	"toggl-opsync/internal/payload"
)

// Client is an authenticated OpenProject API v3 client.
type Client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	httpClient *http.Client
}

// NewClient creates a new OpenProject client. baseURL is the API v3 root
// without a trailing slash, e.g. "https://op.example.com/api/v3".
func NewClient(baseURL, apiKey string, pageSize int, timeout time.Duration) *Client {
	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		pageSize: pageSize,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// timeEntryCollection is the subset of the paged time_entries response this
// client reads.
type timeEntryCollection struct {
	Embedded *struct {
		Elements []struct {
			Comment struct {
				Raw string `json:"raw"`
			} `json:"comment"`
		} `json:"elements"`
	} `json:"_embedded"`
}

// ExistingEntryIDs returns the Toggl ids already recorded against one work
// package. Provenance is recovered from the comment field: the text before
// the first separator is the originating Toggl id. Comments written by hand
// without a separator are taken whole; that can only suppress a submission,
// never duplicate one.
//
// Fetching is scoped to a single work package on purpose. OpenProject would
// serve all time entries unfiltered, but that quickly becomes far more data
// than a sync run needs.
func (c *Client) ExistingEntryIDs(ctx context.Context, workPackageID string) ([]string, error) {
	filter := fmt.Sprintf(`[{"work_package":{"operator":"=","values":["%s"]}}]`, workPackageID)
	endpoint := fmt.Sprintf("%s/time_entries?pageSize=%d&filters=%s",
		c.baseURL, c.pageSize, url.QueryEscape(filter))
	logging.Debugf("openproject: GET %s\n", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.NewTransportError("build time entries query", err)
	}
	req.SetBasicAuth("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewTransportError("query existing time entries", err).
			WithContext("work_package", workPackageID)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.NewUnexpectedStatusError("query existing time entries", resp.StatusCode, string(body)).
			WithContext("work_package", workPackageID)
	}

	var page timeEntryCollection
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, errors.NewResponseShapeError("decode time entries for work package "+workPackageID, err)
	}
	if page.Embedded == nil {
		return nil, errors.NewResponseShapeError("time entries response for work package "+workPackageID+" has no _embedded.elements", nil)
	}

	var ids []string
	for _, element := range page.Embedded.Elements {
		raw := element.Comment.Raw
		if raw == "" {
			continue
		}
		id, _, _ := strings.Cut(raw, payload.CommentSeparator)
		ids = append(ids, id)
	}
	logging.Debugf("openproject: work package %s has %d recorded toggl ids\n", workPackageID, len(ids))
	return ids, nil
}

// Submit posts a single time entry to OpenProject.
func (c *Client) Submit(ctx context.Context, entry payload.TimeEntryRequest) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return errors.NewTransportError("encode time entry", err)
	}

	endpoint := c.baseURL + "/time_entries"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.NewTransportError("build time entry submission", err)
	}
	req.SetBasicAuth("apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewTransportError("submit time entry", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.NewUnexpectedStatusError("submit time entry", resp.StatusCode, string(respBody))
	}
	logging.Debugf("openproject: submitted entry, comment %q\n", entry.Comment.Raw)
	return nil
}
